package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

const (
	defaultBackfillConcurrency = 4
	backfillProgressEvery      = 30
)

// BackfillOptions bounds a snapshot backfill. Zero dates default to the
// oldest ledger row and yesterday respectively.
type BackfillOptions struct {
	From        time.Time
	To          time.Time
	Concurrency int
}

// SnapshotService maintains the account_value_snapshot table, a write-once
// cache of daily valuations used for charts and period reports.
type SnapshotService struct {
	transactionRepo  *repository.TransactionRepository
	snapshotRepo     *repository.SnapshotRepository
	valuationService *ValuationService
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(
	transactionRepo *repository.TransactionRepository,
	snapshotRepo *repository.SnapshotRepository,
	valuationService *ValuationService,
) *SnapshotService {
	return &SnapshotService{
		transactionRepo:  transactionRepo,
		snapshotRepo:     snapshotRepo,
		valuationService: valuationService,
	}
}

// Backfill writes missing daily snapshots for every account in the ledger.
//
// Dates are processed oldest first. For each date the accounts that have
// started trading and lack a snapshot are valued concurrently, then written
// one at a time. Existing snapshots are skipped, so an interrupted run
// resumes where it stopped. Cancellation is checked between dates.
//
// A failed valuation is logged and counted; it never aborts the run.
func (s *SnapshotService) Backfill(ctx context.Context, opts BackfillOptions) (*model.BackfillResult, error) {
	log := logger.FromContext(ctx)

	accounts, err := s.transactionRepo.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	to := opts.To
	if to.IsZero() {
		to = time.Now().UTC().AddDate(0, 0, -1)
	}
	to = truncateDay(to)

	starts := make(map[model.AccountKey]time.Time, len(accounts))
	from := truncateDay(opts.From)
	for _, key := range accounts {
		oldest, ok, err := s.transactionRepo.OldestTradeDate(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		starts[key] = oldest
		if opts.From.IsZero() && (from.IsZero() || oldest.Before(from)) {
			from = oldest
		}
	}

	result := &model.BackfillResult{From: from.Format(dateLayout), To: to.Format(dateLayout)}
	if len(starts) == 0 || from.IsZero() {
		return result, nil
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange, result.From, result.To)
	}

	existing := make(map[model.AccountKey]map[string]struct{}, len(starts))
	for key := range starts {
		dates, err := s.snapshotRepo.ExistingDates(ctx, key, from, to)
		if err != nil {
			return nil, err
		}
		existing[key] = dates
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBackfillConcurrency
	}

	log.Info().
		Str("from", result.From).
		Str("to", result.To).
		Int("accounts", len(starts)).
		Int("concurrency", concurrency).
		Msg("snapshot backfill started")

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		day := d.Format(dateLayout)

		var pending []model.AccountKey
		for _, key := range accounts {
			start, ok := starts[key]
			if !ok || d.Before(start) {
				continue
			}
			if _, done := existing[key][day]; done {
				result.Skipped++
				continue
			}
			pending = append(pending, key)
		}

		inserted, failed, err := s.snapshotDay(ctx, d, pending, concurrency)
		if err != nil {
			return result, err
		}
		result.Inserted += inserted
		result.Failed += failed
		result.Days++

		if result.Days%backfillProgressEvery == 0 {
			log.Info().
				Str("date", day).
				Int("days", result.Days).
				Int("inserted", result.Inserted).
				Msg("snapshot backfill progress")
		}
	}

	log.Info().
		Int("days", result.Days).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("snapshot backfill finished")

	return result, nil
}

// SnapshotDate writes snapshots for one date across every account that had
// started trading by then. It is the unit run by the nightly scheduler.
func (s *SnapshotService) SnapshotDate(ctx context.Context, date time.Time) (*model.BackfillResult, error) {
	date = truncateDay(date)
	return s.Backfill(ctx, BackfillOptions{From: date, To: date})
}

func (s *SnapshotService) snapshotDay(ctx context.Context, date time.Time, keys []model.AccountKey, concurrency int) (inserted, failed int, err error) {
	if len(keys) == 0 {
		return 0, 0, nil
	}
	log := logger.FromContext(ctx)

	valuations := make([]*model.Valuation, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, key := range keys {
		g.Go(func() error {
			v, err := s.valuationService.Calculate(gctx, key, date, CashStandard)
			if err != nil {
				log.Warn().Err(err).Str("account", key.String()).Str("date", date.Format(dateLayout)).Msg("snapshot valuation failed")
				return nil
			}
			valuations[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for _, v := range valuations {
		if v == nil {
			failed++
			continue
		}
		ok, err := s.snapshotRepo.Insert(ctx, snapshotFromValuation(v))
		if err != nil {
			return inserted, failed, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, failed, nil
}

// History returns one valuation per day in [from, to]. Stored snapshots are
// used when they cover the whole range; otherwise every day is valued on demand.
func (s *SnapshotService) History(ctx context.Context, key model.AccountKey, from, to time.Time) ([]model.AccountSnapshot, error) {
	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return nil, apperrors.ErrInvalidDateRange
	}

	var stored []model.AccountSnapshot
	err := s.snapshotRepo.Stream(ctx, key, from, to, func(snap model.AccountSnapshot) error {
		stored = append(stored, snap)
		return nil
	})
	days := int(to.Sub(from).Hours()/24) + 1
	if err == nil && len(stored) == days {
		return stored, nil
	}
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("account", key.String()).Msg("snapshot lookup failed, valuing on demand")
	}

	history := []model.AccountSnapshot{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.valuationService.Valuation(ctx, key, d, CashStandard)
		if err != nil {
			return nil, err
		}
		history = append(history, *snapshotFromValuation(v))
	}
	return history, nil
}

func snapshotFromValuation(v *model.Valuation) *model.AccountSnapshot {
	return &model.AccountSnapshot{
		ClientName:         v.ClientName,
		AccountType:        v.AccountType,
		Date:               v.Date,
		HoldingsByCurrency: v.HoldingsByCurrency,
		Cash:               v.Cash,
		Total:              v.Total,
	}
}
