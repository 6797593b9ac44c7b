package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/classifier"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/statement"
)

// duplicateDescriptionRunes caps descriptions echoed back for duplicate rows.
const duplicateDescriptionRunes = 80

// ImportService turns statement exports into ledger rows.
type ImportService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	batchRepo       *repository.BatchRepository
	referenceRepo   *repository.ReferenceRepository
	snapshotRepo    *repository.SnapshotRepository
	archive         *Archive
	cache           *ValuationCache
	locks           *keyedMutex
}

// NewImportService creates a new ImportService. archive and cache may be nil.
func NewImportService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	batchRepo *repository.BatchRepository,
	referenceRepo *repository.ReferenceRepository,
	snapshotRepo *repository.SnapshotRepository,
	archive *Archive,
	cache *ValuationCache,
) *ImportService {
	return &ImportService{
		db:              db,
		transactionRepo: transactionRepo,
		batchRepo:       batchRepo,
		referenceRepo:   referenceRepo,
		snapshotRepo:    snapshotRepo,
		archive:         archive,
		cache:           cache,
		locks:           newKeyedMutex(),
	}
}

// Import parses a statement and inserts its rows for the given account type.
//
// The statement is parsed and classified before any write. The batch, every
// accepted row and the batch totals are then written in one database
// transaction, so a format error or a failed commit leaves the ledger as it
// was. Imports for the same client number and account type are serialised.
//
// Parameters:
//   - ctx: Context for cancellation
//   - text: The raw CSV export including its preamble
//   - accountType: The account the statement belongs to
//
// Returns the import summary. Rows rejected by the dedupe gate, dropped for
// missing fields or failing to insert are reported in the result, not as errors.
func (s *ImportService) Import(ctx context.Context, text string, accountType model.AccountType) (*model.ImportResult, error) {
	log := logger.FromContext(ctx)

	accountType, err := model.ParseAccountType(string(accountType))
	if err != nil {
		return nil, err
	}

	stmt, err := statement.Parse(text)
	if err != nil {
		return nil, err
	}

	tickers, err := s.referenceRepo.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker reference: %w", err)
	}
	index := classifier.NewTickerIndex(tickers)
	log.Debug().
		Int("rows", len(stmt.Rows)).
		Int("tickers", index.Len()).
		Msg("statement parsed")

	candidates := make([]model.Transaction, len(stmt.Rows))
	for i, row := range stmt.Rows {
		txType := classifier.Classify(row.Reference, row.Description, row.Value)
		candidates[i] = model.Transaction{
			ClientName:   stmt.Client.Name,
			ClientNumber: stmt.Client.Number,
			AccountType:  accountType,
			TradeDate:    row.TradeDate,
			SettleDate:   row.SettleDate,
			Reference:    row.Reference,
			Description:  row.Description,
			Type:         txType,
			Ticker:       index.Resolve(txType, row.Description),
			UnitCost:     row.UnitCost,
			Quantity:     row.Quantity,
			Value:        row.Value,
		}
	}

	result := &model.ImportResult{
		ClientName:   stmt.Client.Name,
		ClientNumber: stmt.Client.Number,
		AccountType:  accountType,
		Duplicates:   []model.DuplicateRow{},
		Dropped:      stmt.Dropped,
		RowErrors:    []model.RowError{},
	}
	if result.Dropped == nil {
		result.Dropped = []model.DroppedRow{}
	}

	unlock := s.locks.Lock(stmt.Client.Number + "|" + string(accountType))
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	batchRepo := s.batchRepo.WithTx(tx)
	txRepo := s.transactionRepo.WithTx(tx)

	available, err := batchRepo.Available(ctx)
	if err != nil {
		return nil, err
	}
	if available {
		sealed, err := s.archive.Seal(text)
		if err != nil {
			return nil, err
		}
		batch := &model.ImportBatch{
			ClientName:   stmt.Client.Name,
			ClientNumber: stmt.Client.Number,
			AccountType:  accountType,
		}
		if err := batchRepo.Create(ctx, batch, sealed); err != nil {
			return nil, err
		}
		result.BatchID = &batch.ID
	} else {
		log.Warn().Msg("import_batch table missing, importing without batch tracking")
	}

	var earliest time.Time
	for i := range candidates {
		t := &candidates[i]
		line := stmt.Rows[i].Line
		t.ImportBatchID = result.BatchID

		dup, err := isDuplicate(ctx, txRepo, t)
		if err != nil {
			return nil, err
		}
		if dup {
			result.DuplicateCount++
			result.Duplicates = append(result.Duplicates, model.DuplicateRow{
				Line:        line,
				TradeDate:   t.TradeDate.Format(dateLayout),
				Reference:   t.Reference,
				Value:       t.Value,
				Description: truncateRunes(t.Description, duplicateDescriptionRunes),
			})
			continue
		}

		if err := txRepo.Insert(ctx, t); err != nil {
			log.Error().Err(err).Int("line", line).Str("reference", t.Reference).Msg("failed to insert statement row")
			result.RowErrors = append(result.RowErrors, model.RowError{Line: line, Error: err.Error()})
			continue
		}
		result.InsertedCount++
		if earliest.IsZero() || t.TradeDate.Before(earliest) {
			earliest = t.TradeDate
		}
	}

	key := model.AccountKey{ClientName: stmt.Client.Name, AccountType: accountType}
	if !earliest.IsZero() {
		removed, err := s.snapshotRepo.WithTx(tx).DeleteFrom(ctx, key, earliest)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			log.Info().
				Int("snapshots", removed).
				Str("from", earliest.Format(dateLayout)).
				Msg("stale snapshots removed")
		}
	}

	if result.BatchID != nil {
		if err := batchRepo.Finalize(ctx, *result.BatchID, result.InsertedCount, result.DuplicateCount); err != nil {
			log.Warn().Err(err).Str("batch_id", *result.BatchID).Msg("failed to finalize import batch")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	if !earliest.IsZero() {
		s.cache.InvalidateFrom(key, earliest)
	}

	log.Info().
		Str("client", stmt.Client.Name).
		Str("account", string(accountType)).
		Int("inserted", result.InsertedCount).
		Int("duplicates", result.DuplicateCount).
		Int("dropped", len(result.Dropped)).
		Int("row_errors", len(result.RowErrors)).
		Msg("statement imported")

	return result, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
