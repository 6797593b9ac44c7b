package model

// Optional features reported by the version endpoint.
const (
	FeatureImportBatches    = "import_batches"
	FeatureStatementArchive = "statement_archive"
)

// VersionInfo reports the build, the schema migration state and which
// optional features the running instance supports.
type VersionInfo struct {
	AppVersion       string          `json:"app_version"`
	SchemaVersion    int64           `json:"schema_version"`
	LatestSchema     int64           `json:"latest_schema"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migration_needed"`
	MigrationMessage *string         `json:"migration_message,omitempty"`
}
