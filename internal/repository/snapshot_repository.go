package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// SnapshotRepository provides data access methods for the account_value_snapshot table.
// Insert never replaces an existing (client, account, date) row; a ledger
// change removes the affected rows with DeleteFrom instead.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SnapshotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// DeleteFrom removes every snapshot of an account dated on or after from and
// returns the number of rows removed.
func (r *SnapshotRepository) DeleteFrom(ctx context.Context, key model.AccountKey, from time.Time) (int, error) {
	result, err := r.getQuerier().ExecContext(ctx, `
		DELETE FROM account_value_snapshot
		WHERE client_name = ? AND account_type = ? AND date >= ?
	`, key.ClientName, string(key.AccountType), formatDate(from))
	if err != nil {
		return 0, fmt.Errorf("failed to delete account_value_snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete account_value_snapshot: %w", err)
	}
	return int(affected), nil
}

// Insert stores a snapshot unless one already exists for the same account and date.
// It reports whether a row was written.
func (r *SnapshotRepository) Insert(ctx context.Context, s *model.AccountSnapshot) (bool, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CalculatedAt.IsZero() {
		s.CalculatedAt = time.Now().UTC()
	}

	holdings, err := json.Marshal(s.HoldingsByCurrency)
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot holdings: %w", err)
	}

	result, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO account_value_snapshot
			(id, client_name, account_type, date, holdings_json, cash, total, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_name, account_type, date) DO NOTHING
	`,
		s.ID,
		s.ClientName,
		string(s.AccountType),
		s.Date,
		string(holdings),
		s.Cash.String(),
		s.Total.String(),
		formatTimestamp(s.CalculatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert account_value_snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert account_value_snapshot: %w", err)
	}
	return affected > 0, nil
}

// Get returns the snapshot of an account on a date, or nil when none exists.
func (r *SnapshotRepository) Get(ctx context.Context, key model.AccountKey, date time.Time) (*model.AccountSnapshot, error) {
	row := r.getQuerier().QueryRowContext(ctx, snapshotSelect+`
		WHERE client_name = ? AND account_type = ? AND date = ?
	`, key.ClientName, string(key.AccountType), formatDate(date))

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExistingDates returns the set of dates in [from, to] already snapshotted for an account.
func (r *SnapshotRepository) ExistingDates(ctx context.Context, key model.AccountKey, from, to time.Time) (map[string]struct{}, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT date
		FROM account_value_snapshot
		WHERE client_name = ? AND account_type = ? AND date >= ? AND date <= ?
	`, key.ClientName, string(key.AccountType), formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query account_value_snapshot: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]struct{})
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dates[d] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return dates, nil
}

// Stream calls callback for each snapshot of an account within [from, to], oldest first.
// Results are not buffered, so long ranges stay cheap.
func (r *SnapshotRepository) Stream(
	ctx context.Context,
	key model.AccountKey,
	from, to time.Time,
	callback func(s model.AccountSnapshot) error,
) error {
	rows, err := r.getQuerier().QueryContext(ctx, snapshotSelect+`
		WHERE client_name = ? AND account_type = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, key.ClientName, string(key.AccountType), formatDate(from), formatDate(to))
	if err != nil {
		return fmt.Errorf("failed to query account_value_snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return err
		}
		if err := callback(*s); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}

const snapshotSelect = `
	SELECT id, client_name, account_type, date, holdings_json, cash, total, calculated_at
	FROM account_value_snapshot`

func scanSnapshot(row rowScanner) (*model.AccountSnapshot, error) {
	var s model.AccountSnapshot
	var account, holdings, calculatedAt string

	err := row.Scan(
		&s.ID,
		&s.ClientName,
		&account,
		&s.Date,
		&holdings,
		&s.Cash,
		&s.Total,
		&calculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	s.AccountType = model.AccountType(account)
	s.HoldingsByCurrency = map[string]decimal.Decimal{}
	if err := json.Unmarshal([]byte(holdings), &s.HoldingsByCurrency); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot holdings: %w", err)
	}
	if s.CalculatedAt, err = ParseTime(calculatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse calculated_at: %w", err)
	}
	return &s, nil
}
