package service

import (
	"database/sql"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

// Services is the full service graph over one database.
type Services struct {
	Cache     *ValuationCache
	System    *SystemService
	Import    *ImportService
	Batch     *BatchService
	Valuation *ValuationService
	Snapshot  *SnapshotService
	Report    *ReportService
	Export    *ExportService
	Reference *ReferenceService
}

// NewServices wires every repository and service against db. archive may be
// nil to disable statement archiving.
func NewServices(db *sql.DB, archive *Archive, cache *ValuationCache) *Services {
	transactionRepo := repository.NewTransactionRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	valuation := NewValuationService(transactionRepo, referenceRepo, cache)

	return &Services{
		Cache:     cache,
		System:    NewSystemService(db, batchRepo, archive),
		Import:    NewImportService(db, transactionRepo, batchRepo, referenceRepo, snapshotRepo, archive, cache),
		Batch:     NewBatchService(db, transactionRepo, batchRepo, snapshotRepo, archive, cache),
		Valuation: valuation,
		Snapshot:  NewSnapshotService(transactionRepo, snapshotRepo, valuation),
		Report:    NewReportService(transactionRepo, snapshotRepo, valuation),
		Export:    NewExportService(transactionRepo),
		Reference: NewReferenceService(transactionRepo, referenceRepo, cache),
	}
}
