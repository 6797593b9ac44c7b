package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// BatchRepository provides data access methods for the import_batch table.
type BatchRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBatchRepository creates a new BatchRepository with the provided database connection.
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *BatchRepository) WithTx(tx *sql.Tx) *BatchRepository {
	return &BatchRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *BatchRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Available reports whether batch tracking is present in the schema.
// Imports still proceed without it, but cannot be rolled back.
func (r *BatchRepository) Available(ctx context.Context) (bool, error) {
	var name string
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'import_batch'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return true, nil
}

// Create inserts a new open batch. archive is the sealed statement text and may be empty.
func (r *BatchRepository) Create(ctx context.Context, b *model.ImportBatch, archive string) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	var source any
	if archive != "" {
		source = archive
		b.HasSource = true
	}

	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO import_batch (id, client_name, client_number, account_type, created_at, source_archive)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.ClientName,
		b.ClientNumber,
		string(b.AccountType),
		formatTimestamp(b.CreatedAt),
		source,
	)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	return nil
}

// Finalize records the outcome counts of a batch.
func (r *BatchRepository) Finalize(ctx context.Context, id string, inserted, duplicates int) error {
	_, err := r.getQuerier().ExecContext(ctx, `
		UPDATE import_batch
		SET inserted_count = ?, duplicate_count = ?, finalized_at = ?
		WHERE id = ?
	`, inserted, duplicates, formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to finalize import batch: %w", err)
	}
	return nil
}

// MarkRolledBack stamps rolled_back_at once. It reports whether the stamp was applied.
func (r *BatchRepository) MarkRolledBack(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE import_batch SET rolled_back_at = ? WHERE id = ? AND rolled_back_at IS NULL`,
		formatTimestamp(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark import batch rolled back: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark import batch rolled back: %w", err)
	}
	return affected > 0, nil
}

// Get returns a batch by ID.
func (r *BatchRepository) Get(ctx context.Context, id string) (*model.ImportBatch, error) {
	row := r.getQuerier().QueryRowContext(ctx, batchSelect+` WHERE id = ?`, id)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListRecent returns the newest batches first.
func (r *BatchRepository) ListRecent(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	rows, err := r.getQuerier().QueryContext(ctx, batchSelect+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import batches: %w", err)
	}
	defer rows.Close()

	batches := []model.ImportBatch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import batches: %w", err)
	}
	return batches, nil
}

// Archive returns the sealed statement stored with a batch.
func (r *BatchRepository) Archive(ctx context.Context, id string) (string, error) {
	var source sql.NullString
	err := r.getQuerier().QueryRowContext(ctx, `SELECT source_archive FROM import_batch WHERE id = ?`, id).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrBatchNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read batch archive: %w", err)
	}
	if !source.Valid || source.String == "" {
		return "", apperrors.ErrSourceNotArchived
	}
	return source.String, nil
}

const batchSelect = `
	SELECT id, client_name, client_number, account_type, created_at,
	       inserted_count, duplicate_count, finalized_at, rolled_back_at,
	       source_archive IS NOT NULL
	FROM import_batch`

func scanBatch(row rowScanner) (*model.ImportBatch, error) {
	var b model.ImportBatch
	var account, createdAt string
	var finalizedAt, rolledBackAt sql.NullString

	err := row.Scan(
		&b.ID,
		&b.ClientName,
		&b.ClientNumber,
		&account,
		&createdAt,
		&b.InsertedCount,
		&b.DuplicateCount,
		&finalizedAt,
		&rolledBackAt,
		&b.HasSource,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import batch: %w", err)
	}

	b.AccountType = model.AccountType(account)
	if b.CreatedAt, err = ParseTime(createdAt); err != nil {
		return nil, err
	}
	if b.FinalizedAt, err = parseNullDate(finalizedAt); err != nil {
		return nil, err
	}
	if b.RolledBackAt, err = parseNullDate(rolledBackAt); err != nil {
		return nil, err
	}
	return &b, nil
}
