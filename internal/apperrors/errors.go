package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrBatchNotFound indicates that an import batch with the given ID does not exist.
	ErrBatchNotFound = errors.New("import batch not found")

	// ErrTransactionNotFound indicates that a ledger row with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSourceNotArchived indicates the batch was imported without an archived statement.
	ErrSourceNotArchived = errors.New("statement source not archived for batch")
)

// Statement errors are fatal to an import. Nothing is inserted when one is returned.
var (
	// ErrStatementFormat indicates the transactions header or a required column is missing.
	ErrStatementFormat = errors.New("unrecognised statement format")

	// ErrMissingClientInfo indicates the statement preamble lacks the client name or number.
	ErrMissingClientInfo = errors.New("client name or number not found in statement")

	// ErrEmptyStatement indicates no statement text was submitted.
	ErrEmptyStatement = errors.New("statement is empty")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidAccountType indicates an account type outside SIPP, ISA and Fund & Share.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrInvalidTransactionType indicates a stored or submitted type outside the known set.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidTicker indicates a price or ticker entry without a ticker.
	ErrInvalidTicker = errors.New("ticker is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	// ErrArchiveDisabled indicates statement archiving has no key configured.
	ErrArchiveDisabled = errors.New("statement archive is not configured")

	// ErrArchiveCorrupt indicates an archived statement failed verification.
	ErrArchiveCorrupt = errors.New("archived statement failed verification")

	ErrFailedToImportStatement = errors.New("failed to import statement")
	ErrFailedToRollbackBatch   = errors.New("failed to roll back import batch")
	ErrFailedToValuate         = errors.New("failed to calculate valuation")
	ErrFailedToGetVersionInfo  = errors.New("failed to get version information")
)
