package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

const (
	dateLayout   = "2006-01-02"
	baseCurrency = "GBP"
)

// ValuationService reconstructs account values for any date from the ledger
// and the price tables. It holds no mutable state besides the optional cache
// and is safe for concurrent use.
type ValuationService struct {
	transactionRepo *repository.TransactionRepository
	referenceRepo   *repository.ReferenceRepository
	cache           *ValuationCache
}

// NewValuationService creates a new ValuationService. cache may be nil.
func NewValuationService(
	transactionRepo *repository.TransactionRepository,
	referenceRepo *repository.ReferenceRepository,
	cache *ValuationCache,
) *ValuationService {
	return &ValuationService{
		transactionRepo: transactionRepo,
		referenceRepo:   referenceRepo,
		cache:           cache,
	}
}

// Valuation returns the value of an account at the end of date, served from
// the cache when possible.
func (s *ValuationService) Valuation(ctx context.Context, key model.AccountKey, date time.Time, mode CashMode) (*model.Valuation, error) {
	date = truncateDay(date)
	if v, ok := s.cache.get(key, date, mode); ok {
		return v, nil
	}
	v, err := s.Calculate(ctx, key, date, mode)
	if err != nil {
		return nil, err
	}
	s.cache.set(key, date, mode, v)
	return v, nil
}

// Calculate computes a valuation without consulting the cache.
//
// Net quantity per ticker is the sum of Buy quantities minus Sell quantities
// traded on or before date; closed and untickered positions are not priced.
// Each open position is priced at its most recent historical price on or
// before date, and positions without one contribute nothing. Holdings are
// grouped by the price currency and cash is folded into the GBP bucket.
// When nothing is held, untickered rows included, the valuation is entirely
// zero.
func (s *ValuationService) Calculate(ctx context.Context, key model.AccountKey, date time.Time, mode CashMode) (*model.Valuation, error) {
	date = truncateDay(date)
	transactions, err := s.transactionRepo.List(ctx, model.TransactionFilter{
		ClientName:  key.ClientName,
		AccountType: key.AccountType,
		To:          date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for %s: %w", key, err)
	}

	if !HoldsAnything(transactions) {
		return emptyValuation(key, date), nil
	}
	positions := NetPositions(transactions)

	prices, err := s.referenceRepo.PricesAsOf(ctx, sortedTickers(positions), date)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", key, err)
	}

	return buildValuation(key, date, positions, prices, CashBalance(transactions, mode)), nil
}

// CurrentValuation values the whole ledger of an account at the latest known prices.
func (s *ValuationService) CurrentValuation(ctx context.Context, key model.AccountKey) (*model.Valuation, error) {
	today := truncateDay(time.Now().UTC())
	transactions, err := s.transactionRepo.List(ctx, model.TransactionFilter{
		ClientName:  key.ClientName,
		AccountType: key.AccountType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for %s: %w", key, err)
	}

	if !HoldsAnything(transactions) {
		return emptyValuation(key, today), nil
	}
	positions := NetPositions(transactions)

	prices, err := s.referenceRepo.LatestPrices(ctx, sortedTickers(positions))
	if err != nil {
		return nil, fmt.Errorf("failed to load latest prices for %s: %w", key, err)
	}

	return buildValuation(key, today, positions, prices, CashBalance(transactions, CashStandard)), nil
}

// NetPositions sums Buy minus Sell quantity per ticker and keeps only
// positive holdings. Rows without a ticker or quantity are skipped.
func NetPositions(transactions []model.Transaction) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Ticker == nil || *t.Ticker == "" || !t.Quantity.Valid {
			continue
		}
		switch t.Type {
		case model.TypeBuy:
			net[*t.Ticker] = net[*t.Ticker].Add(t.Quantity.Decimal)
		case model.TypeSell:
			net[*t.Ticker] = net[*t.Ticker].Sub(t.Quantity.Decimal)
		}
	}
	for ticker, qty := range net {
		if !qty.IsPositive() {
			delete(net, ticker)
		}
	}
	return net
}

// HoldsAnything reports whether any Buy/Sell group has a positive net
// quantity. Rows without a ticker form a group of their own, so an account
// whose purchases were never resolved to a ticker still counts as invested.
func HoldsAnything(transactions []model.Transaction) bool {
	net := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if !t.Quantity.Valid {
			continue
		}
		ticker := ""
		if t.Ticker != nil {
			ticker = *t.Ticker
		}
		switch t.Type {
		case model.TypeBuy:
			net[ticker] = net[ticker].Add(t.Quantity.Decimal)
		case model.TypeSell:
			net[ticker] = net[ticker].Sub(t.Quantity.Decimal)
		}
	}
	for _, qty := range net {
		if qty.IsPositive() {
			return true
		}
	}
	return false
}

func buildValuation(
	key model.AccountKey,
	date time.Time,
	positions map[string]decimal.Decimal,
	prices map[string]model.PricePoint,
	cash decimal.Decimal,
) *model.Valuation {
	v := emptyValuation(key, date)
	v.Cash = cash

	for _, ticker := range sortedTickers(positions) {
		qty := positions[ticker]
		price, ok := prices[ticker]
		if !ok {
			v.Unpriced = append(v.Unpriced, ticker)
			continue
		}
		currency := price.Currency
		if currency == "" {
			currency = baseCurrency
		}
		value := qty.Mul(price.Price).Round(model.ValueScale)
		v.Positions = append(v.Positions, model.Position{
			Ticker:    ticker,
			Quantity:  qty,
			Price:     price.Price,
			PriceDate: price.Date.Format(dateLayout),
			Currency:  currency,
			Value:     value,
		})
		v.HoldingsByCurrency[currency] = v.HoldingsByCurrency[currency].Add(value)
	}

	v.HoldingsByCurrency[baseCurrency] = v.HoldingsByCurrency[baseCurrency].Add(cash)

	total := decimal.Zero
	for _, amount := range v.HoldingsByCurrency {
		total = total.Add(amount)
	}
	v.Total = total
	return v
}

func emptyValuation(key model.AccountKey, date time.Time) *model.Valuation {
	return &model.Valuation{
		ClientName:         key.ClientName,
		AccountType:        key.AccountType,
		Date:               date.Format(dateLayout),
		HoldingsByCurrency: map[string]decimal.Decimal{},
		Cash:               decimal.Zero,
		Total:              decimal.Zero,
		Positions:          []model.Position{},
	}
}

func sortedTickers(positions map[string]decimal.Decimal) []string {
	tickers := make([]string, 0, len(positions))
	for t := range positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
