package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

// DefaultBatchListLimit is the number of batches listed when no limit is given.
const DefaultBatchListLimit = 5

// BatchService manages import batches after the fact.
type BatchService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	batchRepo       *repository.BatchRepository
	snapshotRepo    *repository.SnapshotRepository
	archive         *Archive
	cache           *ValuationCache
}

// NewBatchService creates a new BatchService. archive and cache may be nil.
func NewBatchService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	batchRepo *repository.BatchRepository,
	snapshotRepo *repository.SnapshotRepository,
	archive *Archive,
	cache *ValuationCache,
) *BatchService {
	return &BatchService{
		db:              db,
		transactionRepo: transactionRepo,
		batchRepo:       batchRepo,
		snapshotRepo:    snapshotRepo,
		archive:         archive,
		cache:           cache,
	}
}

// Rollback deletes every ledger row inserted by a batch and stamps the batch
// as rolled back. Rolling back an unknown or already rolled back batch is a
// no-op that reports zero deleted rows.
func (s *BatchService) Rollback(ctx context.Context, batchID string) (*model.RollbackResult, error) {
	available, err := s.batchRepo.Available(ctx)
	if err != nil {
		return nil, err
	}
	if !available {
		return &model.RollbackResult{BatchID: batchID}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txRepo := s.transactionRepo.WithTx(tx)

	footprint, err := txRepo.BatchFootprint(ctx, batchID)
	if err != nil {
		return nil, err
	}
	deleted, err := txRepo.DeleteByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	snapshotRepo := s.snapshotRepo.WithTx(tx)
	snapshots := 0
	for key, from := range footprint {
		removed, err := snapshotRepo.DeleteFrom(ctx, key, from)
		if err != nil {
			return nil, err
		}
		snapshots += removed
	}
	stamped, err := s.batchRepo.WithTx(tx).MarkRolledBack(ctx, batchID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rollback: %w", err)
	}

	for key, from := range footprint {
		s.cache.InvalidateFrom(key, from)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("batch_id", batchID).
		Int("deleted", deleted).
		Int("snapshots", snapshots).
		Bool("stamped", stamped).
		Msg("import batch rolled back")

	return &model.RollbackResult{BatchID: batchID, DeletedCount: deleted}, nil
}

// ListBatches returns the most recent batches, newest first.
// A non-positive limit uses DefaultBatchListLimit.
func (s *BatchService) ListBatches(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	if limit <= 0 {
		limit = DefaultBatchListLimit
	}
	return s.batchRepo.ListRecent(ctx, limit)
}

// GetBatch returns one batch.
func (s *BatchService) GetBatch(ctx context.Context, batchID string) (*model.ImportBatch, error) {
	return s.batchRepo.Get(ctx, batchID)
}

// BatchSource returns the original statement submitted with a batch.
func (s *BatchService) BatchSource(ctx context.Context, batchID string) (string, error) {
	sealed, err := s.batchRepo.Archive(ctx, batchID)
	if err != nil {
		return "", err
	}
	return s.archive.Open(sealed)
}
