package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

// Valuation sources reported by Performance.
const (
	SourceSnapshot   = "snapshot"
	SourceCalculated = "calculated"
)

// ReportService builds the read-only summaries shown on the dashboard.
// Reporting readers degrade to zero or empty results when the ledger
// cannot be read, logging the failure instead of returning it.
type ReportService struct {
	transactionRepo  *repository.TransactionRepository
	snapshotRepo     *repository.SnapshotRepository
	valuationService *ValuationService
}

// NewReportService creates a new ReportService.
func NewReportService(
	transactionRepo *repository.TransactionRepository,
	snapshotRepo *repository.SnapshotRepository,
	valuationService *ValuationService,
) *ReportService {
	return &ReportService{
		transactionRepo:  transactionRepo,
		snapshotRepo:     snapshotRepo,
		valuationService: valuationService,
	}
}

// CashBalances returns the current cash of every known client and account type.
// An account whose ledger cannot be read reports a zero balance.
func (s *ReportService) CashBalances(ctx context.Context) []model.CashBalance {
	log := logger.FromContext(ctx)

	balances := make([]model.CashBalance, 0, len(model.Clients)*len(model.AccountTypes))
	for _, client := range model.Clients {
		for _, account := range model.AccountTypes {
			balance := model.CashBalance{
				ClientName:  client,
				AccountType: account,
				Amount:      decimal.Zero,
				Currency:    baseCurrency,
			}
			transactions, err := s.transactionRepo.List(ctx, model.TransactionFilter{ClientName: client, AccountType: account})
			if err != nil {
				log.Error().Err(err).Str("client", client).Str("account", string(account)).Msg("failed to read ledger for cash balance")
			} else {
				balance.Amount = CashBalance(transactions, CashStandard)
			}
			balances = append(balances, balance)
		}
	}
	return balances
}

// DefaultTaxYearStart is the first tax year reported when none is requested.
const DefaultTaxYearStart = 2015

// TaxYearStart returns the first year of the UK tax year containing t.
// Tax years run from 6 April to 5 April.
func TaxYearStart(t time.Time) int {
	if t.Month() < time.April || (t.Month() == time.April && t.Day() < 6) {
		return t.Year() - 1
	}
	return t.Year()
}

// TaxYearBounds returns the first and last day of the tax year starting in year.
func TaxYearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.April, 6, 0, 0, 0, 0, time.UTC),
		time.Date(year+1, time.April, 5, 0, 0, 0, 0, time.UTC)
}

// TaxYearTotals sums fees, dividends, deposits and withdrawals across all
// accounts for every tax year from startYear up to the one containing now.
// Years without activity are present with zero totals. Fees and withdrawals
// are reported as positive amounts; dividends include loyalty payments.
func (s *ReportService) TaxYearTotals(ctx context.Context, startYear int, now time.Time) []model.TaxYearTotals {
	current := TaxYearStart(now)
	if startYear > current {
		return []model.TaxYearTotals{}
	}

	totals := make([]model.TaxYearTotals, 0, current-startYear+1)
	index := make(map[int]int, current-startYear+1)
	for y := startYear; y <= current; y++ {
		index[y] = len(totals)
		totals = append(totals, model.TaxYearTotals{
			TaxYearStart: y,
			Label:        fmt.Sprintf("%d/%02d", y, (y+1)%100),
			Fees:         decimal.Zero,
			Dividends:    decimal.Zero,
			Deposits:     decimal.Zero,
			Withdrawals:  decimal.Zero,
		})
	}

	from, _ := TaxYearBounds(startYear)
	_, to := TaxYearBounds(current)
	transactions, err := s.transactionRepo.List(ctx, model.TransactionFilter{
		From: from,
		To:   to,
		Types: []model.TransactionType{
			model.TypeFee,
			model.TypeDividend,
			model.TypeLoyaltyPayment,
			model.TypeDeposit,
			model.TypeWithdrawal,
		},
	})
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("failed to read ledger for tax year totals")
		return []model.TaxYearTotals{}
	}

	for _, t := range transactions {
		i, ok := index[TaxYearStart(t.TradeDate)]
		if !ok {
			continue
		}
		row := &totals[i]
		switch t.Type {
		case model.TypeFee:
			row.Fees = row.Fees.Add(t.Value.Abs())
		case model.TypeDividend, model.TypeLoyaltyPayment:
			row.Dividends = row.Dividends.Add(t.Value)
		case model.TypeDeposit:
			row.Deposits = row.Deposits.Add(t.Value)
		case model.TypeWithdrawal:
			row.Withdrawals = row.Withdrawals.Add(t.Value.Abs())
		}
	}
	return totals
}

// Performance compares the value of an account at the end of from and to.
// Deposits and withdrawals traded after from and on or before to are
// removed from the gain: gain = end - net flows - start.
//
// Each end of the range is read from the snapshot table when present and
// valued on demand otherwise.
func (s *ReportService) Performance(ctx context.Context, key model.AccountKey, from, to time.Time) (*model.PeriodPerformance, error) {
	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange, from.Format(dateLayout), to.Format(dateLayout))
	}

	start, startSource, err := s.valueWithFallback(ctx, key, from)
	if err != nil {
		return nil, err
	}
	end, endSource, err := s.valueWithFallback(ctx, key, to)
	if err != nil {
		return nil, err
	}

	netFlows := decimal.Zero
	if to.After(from) {
		flows, err := s.transactionRepo.List(ctx, model.TransactionFilter{
			ClientName:  key.ClientName,
			AccountType: key.AccountType,
			From:        from.AddDate(0, 0, 1),
			To:          to,
			Types:       []model.TransactionType{model.TypeDeposit, model.TypeWithdrawal},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load flows for %s: %w", key, err)
		}
		netFlows = CashBalance(flows, CashStandard)
	}

	return &model.PeriodPerformance{
		ClientName:  key.ClientName,
		AccountType: key.AccountType,
		From:        from.Format(dateLayout),
		To:          to.Format(dateLayout),
		StartValue:  start,
		EndValue:    end,
		NetFlows:    netFlows,
		Gain:        end.Sub(netFlows).Sub(start),
		StartSource: startSource,
		EndSource:   endSource,
	}, nil
}

func (s *ReportService) valueWithFallback(ctx context.Context, key model.AccountKey, date time.Time) (decimal.Decimal, string, error) {
	snap, err := s.snapshotRepo.Get(ctx, key, date)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("account", key.String()).Msg("snapshot lookup failed, valuing on demand")
	}
	if err == nil && snap != nil {
		return snap.Total, SourceSnapshot, nil
	}

	v, err := s.valuationService.Valuation(ctx, key, date, CashStandard)
	if err != nil {
		return decimal.Zero, "", err
	}
	return v.Total, SourceCalculated, nil
}
