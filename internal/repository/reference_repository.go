package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// ReferenceRepository provides access to the externally maintained ticker
// and price tables.
type ReferenceRepository struct {
	db *sql.DB
}

// NewReferenceRepository creates a new ReferenceRepository with the provided database connection.
func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListTickers returns every ticker reference entry.
func (r *ReferenceRepository) ListTickers(ctx context.Context) ([]model.TickerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker, match_text FROM ticker_reference ORDER BY ticker, match_text`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker_reference: %w", err)
	}
	defer rows.Close()

	entries := []model.TickerEntry{}
	for rows.Next() {
		var e model.TickerEntry
		if err := rows.Scan(&e.Ticker, &e.MatchText); err != nil {
			return nil, fmt.Errorf("failed to scan ticker_reference: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticker_reference: %w", err)
	}
	return entries, nil
}

// UpsertTicker adds a ticker reference entry if it is not already present.
func (r *ReferenceRepository) UpsertTicker(ctx context.Context, e model.TickerEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ticker_reference (ticker, match_text) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		e.Ticker, e.MatchText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticker_reference: %w", err)
	}
	return nil
}

// PricesAsOf returns, per ticker, the latest historical price dated on or
// before date. Tickers without such a price are absent from the result.
func (r *ReferenceRepository) PricesAsOf(ctx context.Context, tickers []string, date time.Time) (map[string]model.PricePoint, error) {
	prices := make(map[string]model.PricePoint, len(tickers))
	if len(tickers) == 0 {
		return prices, nil
	}

	query := `
		SELECT ticker, trade_date, price, currency
		FROM price_historical
		WHERE ticker IN (` + placeholders(len(tickers)) + `)
		AND trade_date <= ?
		ORDER BY ticker, trade_date DESC
	`
	args := make([]any, 0, len(tickers)+1)
	for _, t := range tickers {
		args = append(args, t)
	}
	args = append(args, formatDate(date))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_historical: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PricePoint
		var dateStr string
		if err := rows.Scan(&p.Ticker, &dateStr, &p.Price, &p.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan price_historical: %w", err)
		}
		if _, seen := prices[p.Ticker]; seen {
			continue
		}
		if p.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		prices[p.Ticker] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_historical: %w", err)
	}
	return prices, nil
}

// LatestPrices returns the current price per ticker from price_latest.
func (r *ReferenceRepository) LatestPrices(ctx context.Context, tickers []string) (map[string]model.PricePoint, error) {
	prices := make(map[string]model.PricePoint, len(tickers))
	if len(tickers) == 0 {
		return prices, nil
	}

	args := make([]any, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ticker, as_of, price, currency FROM price_latest WHERE ticker IN (`+placeholders(len(tickers))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_latest: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PricePoint
		var asOf string
		if err := rows.Scan(&p.Ticker, &asOf, &p.Price, &p.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan price_latest: %w", err)
		}
		if p.Date, err = ParseTime(asOf); err != nil {
			return nil, err
		}
		prices[p.Ticker] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_latest: %w", err)
	}
	return prices, nil
}

// UpsertHistoricalPrice stores or replaces the price of a ticker on a date.
func (r *ReferenceRepository) UpsertHistoricalPrice(ctx context.Context, p model.PricePoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_historical (ticker, trade_date, price, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET price = excluded.price, currency = excluded.currency
	`, p.Ticker, formatDate(p.Date), p.Price.String(), p.Currency)
	if err != nil {
		return fmt.Errorf("failed to upsert price_historical: %w", err)
	}
	return nil
}

// UpsertLatestPrice stores or replaces the current price of a ticker.
func (r *ReferenceRepository) UpsertLatestPrice(ctx context.Context, p model.PricePoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_latest (ticker, price, currency, as_of)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE SET price = excluded.price, currency = excluded.currency, as_of = excluded.as_of
	`, p.Ticker, p.Price.String(), p.Currency, formatDate(p.Date))
	if err != nil {
		return fmt.Errorf("failed to upsert price_latest: %w", err)
	}
	return nil
}
