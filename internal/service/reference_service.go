package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/classifier"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

// ReferenceService maintains tickers and prices, the reference data that
// classification and valuation read.
type ReferenceService struct {
	transactionRepo *repository.TransactionRepository
	referenceRepo   *repository.ReferenceRepository
	cache           *ValuationCache
}

// NewReferenceService creates a new ReferenceService. cache may be nil.
func NewReferenceService(
	transactionRepo *repository.TransactionRepository,
	referenceRepo *repository.ReferenceRepository,
	cache *ValuationCache,
) *ReferenceService {
	return &ReferenceService{
		transactionRepo: transactionRepo,
		referenceRepo:   referenceRepo,
		cache:           cache,
	}
}

// ListTickers returns every ticker reference entry.
func (s *ReferenceService) ListTickers(ctx context.Context) ([]model.TickerEntry, error) {
	return s.referenceRepo.ListTickers(ctx)
}

// AddTicker registers a security name prefix for a ticker.
func (s *ReferenceService) AddTicker(ctx context.Context, ticker, matchText string) error {
	ticker = strings.TrimSpace(ticker)
	matchText = strings.TrimSpace(matchText)
	if ticker == "" || matchText == "" {
		return apperrors.ErrInvalidTicker
	}
	return s.referenceRepo.UpsertTicker(ctx, model.TickerEntry{Ticker: ticker, MatchText: matchText})
}

// SetPrice records the closing price of a ticker on a date.
// An empty currency defaults to GBP.
func (s *ReferenceService) SetPrice(ctx context.Context, ticker string, date time.Time, price decimal.Decimal, currency string) error {
	p, err := newPricePoint(ticker, date, price, currency)
	if err != nil {
		return err
	}
	if err := s.referenceRepo.UpsertHistoricalPrice(ctx, p); err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}

// SetLatestPrice records the most recent known price of a ticker.
func (s *ReferenceService) SetLatestPrice(ctx context.Context, ticker string, asOf time.Time, price decimal.Decimal, currency string) error {
	p, err := newPricePoint(ticker, asOf, price, currency)
	if err != nil {
		return err
	}
	return s.referenceRepo.UpsertLatestPrice(ctx, p)
}

func newPricePoint(ticker string, date time.Time, price decimal.Decimal, currency string) (model.PricePoint, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return model.PricePoint{}, apperrors.ErrInvalidTicker
	}
	if price.IsNegative() {
		return model.PricePoint{}, fmt.Errorf("price for %s cannot be negative", ticker)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = baseCurrency
	}
	return model.PricePoint{Ticker: ticker, Date: truncateDay(date), Price: price, Currency: currency}, nil
}

// BackfillDividendTickers resolves tickers for dividend rows imported
// without one, using the same prefix rules as import. With apply false the
// matches are only previewed.
func (s *ReferenceService) BackfillDividendTickers(ctx context.Context, apply bool) (*model.DividendBackfillResult, error) {
	entries, err := s.referenceRepo.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker reference: %w", err)
	}
	index := classifier.NewTickerIndex(entries)

	dividends, err := s.transactionRepo.ListDividendsMissingTicker(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.DividendBackfillResult{
		Applied:    apply,
		Candidates: len(dividends),
		Resolved:   []model.DividendTickerFix{},
	}
	for _, d := range dividends {
		ticker := index.Resolve(d.Type, d.Description)
		if ticker == nil {
			result.Unresolved++
			continue
		}
		result.Resolved = append(result.Resolved, model.DividendTickerFix{
			TransactionID: d.ID,
			TradeDate:     d.TradeDate.Format(dateLayout),
			Description:   d.Description,
			Ticker:        *ticker,
		})
	}

	if !apply {
		return result, nil
	}
	for _, fix := range result.Resolved {
		if err := s.transactionRepo.SetTicker(ctx, fix.TransactionID, fix.Ticker); err != nil {
			return nil, err
		}
	}
	log := logger.FromContext(ctx)
	log.Info().
		Int("updated", len(result.Resolved)).
		Int("unresolved", result.Unresolved).
		Msg("dividend tickers backfilled")
	return result, nil
}
