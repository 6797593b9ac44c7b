package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

const transactionColumns = `id, client_name, client_number, account_type, trade_date, settle_date,
	reference, description, type, ticker, unit_cost, quantity, value, import_batch_id, created_at`

// TransactionRepository provides data access methods for the ledger table.
// Rows are returned in replay order: trade date, then insertion order.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a ledger row. An ID and creation time are assigned when empty.
func (r *TransactionRepository) Insert(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO "transaction" (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.ClientName,
		t.ClientNumber,
		string(t.AccountType),
		formatDate(t.TradeDate),
		nullableDate(t.SettleDate),
		t.Reference,
		t.Description,
		string(t.Type),
		nullableString(t.Ticker),
		fixed(t.UnitCost, model.UnitCostScale),
		fixed(t.Quantity, model.QuantityScale),
		t.Value.StringFixed(model.ValueScale),
		nullableString(t.ImportBatchID),
		formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// IsDuplicate reports whether the ledger already holds a row with the same
// client number, account type, trade date, settle date, reference, value and
// quantity. Settle date and quantity compare null-safely, so two missing
// values are equal.
func (r *TransactionRepository) IsDuplicate(ctx context.Context, t *model.Transaction) (bool, error) {
	query := `
		SELECT 1
		FROM "transaction"
		WHERE client_number = ?
		AND account_type = ?
		AND trade_date = ?
		AND settle_date IS ?
		AND reference = ?
		AND value = ?
		AND quantity IS ?
		LIMIT 1
	`

	var found int
	err := r.getQuerier().QueryRowContext(ctx, query,
		t.ClientNumber,
		string(t.AccountType),
		formatDate(t.TradeDate),
		nullableDate(t.SettleDate),
		t.Reference,
		t.Value.StringFixed(model.ValueScale),
		fixed(t.Quantity, model.QuantityScale),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	return true, nil
}

// List returns the ledger rows matching f in replay order.
func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var conditions []string
	var args []any

	if f.ClientName != "" {
		conditions = append(conditions, "client_name = ?")
		args = append(args, f.ClientName)
	}
	if f.AccountType != "" {
		conditions = append(conditions, "account_type = ?")
		args = append(args, string(f.AccountType))
	}
	if !f.From.IsZero() {
		conditions = append(conditions, "trade_date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		conditions = append(conditions, "trade_date <= ?")
		args = append(args, formatDate(f.To))
	}
	if len(f.Types) > 0 {
		conditions = append(conditions, "type IN ("+placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}

	query := `SELECT ` + transactionColumns + ` FROM "transaction"`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY trade_date ASC, rowid ASC"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// DeleteByBatch removes every row inserted by the batch and returns how many were removed.
func (r *TransactionRepository) DeleteByBatch(ctx context.Context, batchID string) (int, error) {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "transaction" WHERE import_batch_id = ?`, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete batch transactions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted transactions: %w", err)
	}
	return int(affected), nil
}

// BatchFootprint returns, for each account touched by the batch, its earliest trade date.
func (r *TransactionRepository) BatchFootprint(ctx context.Context, batchID string) (map[model.AccountKey]time.Time, error) {
	query := `
		SELECT client_name, account_type, MIN(trade_date)
		FROM "transaction"
		WHERE import_batch_id = ?
		GROUP BY client_name, account_type
	`
	rows, err := r.getQuerier().QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch footprint: %w", err)
	}
	defer rows.Close()

	footprint := make(map[model.AccountKey]time.Time)
	for rows.Next() {
		var key model.AccountKey
		var account, minDate string
		if err := rows.Scan(&key.ClientName, &account, &minDate); err != nil {
			return nil, fmt.Errorf("failed to scan batch footprint: %w", err)
		}
		key.AccountType = model.AccountType(account)
		d, err := ParseTime(minDate)
		if err != nil {
			return nil, err
		}
		footprint[key] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch footprint: %w", err)
	}
	return footprint, nil
}

// OldestTradeDate returns the first trade date of an account.
// ok is false when the account has no rows.
func (r *TransactionRepository) OldestTradeDate(ctx context.Context, key model.AccountKey) (oldest time.Time, ok bool, err error) {
	var minDate sql.NullString
	err = r.getQuerier().QueryRowContext(ctx,
		`SELECT MIN(trade_date) FROM "transaction" WHERE client_name = ? AND account_type = ?`,
		key.ClientName, string(key.AccountType),
	).Scan(&minDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query oldest transaction: %w", err)
	}
	if !minDate.Valid {
		return time.Time{}, false, nil
	}
	oldest, err = ParseTime(minDate.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return oldest, true, nil
}

// Accounts lists every client/account pair present in the ledger.
func (r *TransactionRepository) Accounts(ctx context.Context) ([]model.AccountKey, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT DISTINCT client_name, account_type
		FROM "transaction"
		ORDER BY client_name, account_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var keys []model.AccountKey
	for rows.Next() {
		var key model.AccountKey
		var account string
		if err := rows.Scan(&key.ClientName, &account); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		key.AccountType = model.AccountType(account)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return keys, nil
}

// ListDividendsMissingTicker returns dividend rows whose ticker is null or blank.
func (r *TransactionRepository) ListDividendsMissingTicker(ctx context.Context) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction"
		WHERE type = ? AND (ticker IS NULL OR TRIM(ticker) = '')
		ORDER BY trade_date ASC, rowid ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, string(model.TypeDividend))
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends without ticker: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends without ticker: %w", err)
	}
	return transactions, nil
}

// SetTicker updates the ticker of a single row.
func (r *TransactionRepository) SetTicker(ctx context.Context, id, ticker string) error {
	result, err := r.getQuerier().ExecContext(ctx, `UPDATE "transaction" SET ticker = ? WHERE id = ?`, ticker, id)
	if err != nil {
		return fmt.Errorf("failed to update ticker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update ticker: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(rows rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var account, tradeDate, typ, createdAt string
	var settleDate, ticker, batchID sql.NullString

	err := rows.Scan(
		&t.ID,
		&t.ClientName,
		&t.ClientNumber,
		&account,
		&tradeDate,
		&settleDate,
		&t.Reference,
		&t.Description,
		&typ,
		&ticker,
		&t.UnitCost,
		&t.Quantity,
		&t.Value,
		&batchID,
		&createdAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.AccountType = model.AccountType(account)
	if t.Type, err = model.ParseTransactionType(typ); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	if t.TradeDate, err = ParseTime(tradeDate); err != nil {
		return model.Transaction{}, err
	}
	if t.SettleDate, err = parseNullDate(settleDate); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Transaction{}, err
	}
	if ticker.Valid {
		t.Ticker = &ticker.String
	}
	if batchID.Valid {
		t.ImportBatchID = &batchID.String
	}
	return t, nil
}
