package model

import (
	"fmt"
	"strings"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
)

// AccountType identifies one of the brokerage wrappers a client can hold.
type AccountType string

const (
	AccountFundAndShare AccountType = "Fund & Share"
	AccountSIPP         AccountType = "SIPP"
	AccountISA          AccountType = "ISA"
)

// AccountTypes lists every supported account type in display order.
var AccountTypes = []AccountType{AccountFundAndShare, AccountSIPP, AccountISA}

// Clients lists the display names reports iterate over.
var Clients = []string{"David", "Jen"}

// ParseAccountType matches s case-insensitively against the supported account types.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(s)
	for _, a := range AccountTypes {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAccountType, s)
}

// AccountKey identifies a ledger partition by display name and account type.
type AccountKey struct {
	ClientName  string      `json:"clientName"`
	AccountType AccountType `json:"accountType"`
}

func (k AccountKey) String() string {
	return k.ClientName + "/" + string(k.AccountType)
}
