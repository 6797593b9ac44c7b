package request

// ImportRequest carries one pasted or uploaded brokerage statement.
type ImportRequest struct {
	AccountType string `json:"accountType"`
	CSV         string `json:"csv"`
}
