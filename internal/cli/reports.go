package cli

import (
	"bytes"
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// accountFlags are shared by commands scoped to one account.
type accountFlags struct {
	client  string
	account string
}

func (a *accountFlags) set(f *flag.FlagSet) {
	f.StringVar(&a.client, "client", "", "Client display name (required)")
	f.StringVar(&a.account, "account", "", "Account type: SIPP, ISA or Fund & Share (required)")
}

func (a *accountFlags) key() (model.AccountKey, error) {
	fields := make(map[string]string)
	if a.client == "" {
		fields["client"] = "-client is required"
	}
	account, err := model.ParseAccountType(a.account)
	if err != nil {
		fields["account"] = err.Error()
	}
	if len(fields) > 0 {
		return model.AccountKey{}, &validation.Error{Fields: fields}
	}
	return model.AccountKey{ClientName: a.client, AccountType: account}, nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return validation.ParseDate(s)
}

// --- valuationCmd ---

type valuationCmd struct {
	app          *App
	accountFlags accountFlags
	date         string
	excludeFlows bool
}

func (*valuationCmd) Name() string     { return "valuation" }
func (*valuationCmd) Synopsis() string { return "value an account on a date" }
func (*valuationCmd) Usage() string {
	return `valuation -client <name> -account <type> [-date YYYY-MM-DD] [-exclude-flows]

  Values holdings at the last known price on or before the date and adds the
  replayed cash balance. Without -date the latest prices are used.
`
}

func (c *valuationCmd) SetFlags(f *flag.FlagSet) {
	c.accountFlags.set(f)
	f.StringVar(&c.date, "date", "", "Valuation date, defaults to latest prices")
	f.BoolVar(&c.excludeFlows, "exclude-flows", false, "Leave deposits and withdrawals out of cash")
}

func (c *valuationCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := c.accountFlags.key()
	if err != nil {
		return c.app.usage(err.Error())
	}
	date, err := optionalDate(c.date)
	if err != nil {
		return c.app.usage(err.Error())
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}
	ctx = c.app.Context(ctx)

	mode := service.CashStandard
	if c.excludeFlows {
		mode = service.CashExcludingFlows
	}

	var v *model.Valuation
	switch {
	case !date.IsZero():
		v, err = svcs.Valuation.Valuation(ctx, key, date, mode)
	case c.excludeFlows:
		v, err = svcs.Valuation.Valuation(ctx, key, time.Now(), mode)
	default:
		v, err = svcs.Valuation.CurrentValuation(ctx, key)
	}
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(v)
}

// --- backfillCmd ---

type backfillCmd struct {
	app         *App
	from        string
	to          string
	concurrency int
}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "fill missing daily account snapshots" }
func (*backfillCmd) Usage() string {
	return `backfill [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-concurrency N]

  Stores one valuation per account per day. Days already stored are skipped,
  so an interrupted run resumes. Defaults to the oldest trade through yesterday.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First date, defaults to the oldest trade")
	f.StringVar(&c.to, "to", "", "Last date, defaults to yesterday")
	f.IntVar(&c.concurrency, "concurrency", 0, "Accounts valued in parallel per day")
}

func (c *backfillCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := optionalDate(c.from)
	if err != nil {
		return c.app.usage(err.Error())
	}
	to, err := optionalDate(c.to)
	if err != nil {
		return c.app.usage(err.Error())
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	result, err := svcs.Snapshot.Backfill(c.app.Context(ctx), service.BackfillOptions{
		From:        from,
		To:          to,
		Concurrency: c.concurrency,
	})
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(result)
}

// --- exportCGTCmd ---

type exportCGTCmd struct {
	app          *App
	accountFlags accountFlags
	taxYear      string
	tsv          bool
	out          string
}

func (*exportCGTCmd) Name() string     { return "export-cgt" }
func (*exportCGTCmd) Synopsis() string { return "export trades for a capital gains calculator" }
func (*exportCGTCmd) Usage() string {
	return `export-cgt -client <name> -account <type> [-tax-year YYYY] [-tsv] [-out file]

  Writes buys and sells as B/S,Date,Company,Shares,Price,Charges,Tax.
  -tax-year 2024 restricts to 6 April 2024 through 5 April 2025.
`
}

func (c *exportCGTCmd) SetFlags(f *flag.FlagSet) {
	c.accountFlags.set(f)
	f.StringVar(&c.taxYear, "tax-year", "", "First year of the UK tax year to export")
	f.BoolVar(&c.tsv, "tsv", false, "Tab-separated output")
	f.StringVar(&c.out, "out", "", "Output file, defaults to stdout")
}

func (c *exportCGTCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := c.accountFlags.key()
	if err != nil {
		return c.app.usage(err.Error())
	}
	var taxYear *int
	if c.taxYear != "" {
		year, err := validation.ParseYear(c.taxYear)
		if err != nil {
			return c.app.usage(err.Error())
		}
		taxYear = &year
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	var buf bytes.Buffer
	if err := svcs.Export.CGT(c.app.Context(ctx), &buf, key, taxYear, c.tsv); err != nil {
		return c.app.fail(err)
	}

	if c.out == "" {
		if _, err := c.app.Out.Write(buf.Bytes()); err != nil {
			return c.app.fail(err)
		}
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, buf.Bytes(), 0o644); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
