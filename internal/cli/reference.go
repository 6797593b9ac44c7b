package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// --- tickerAddCmd ---

type tickerAddCmd struct {
	app    *App
	ticker string
	match  string
}

func (*tickerAddCmd) Name() string     { return "ticker-add" }
func (*tickerAddCmd) Synopsis() string { return "map a security description prefix to a ticker" }
func (*tickerAddCmd) Usage() string {
	return `ticker-add -ticker <ticker> -match <description prefix>

  Future imports resolve Buy, Sell and Dividend rows whose description starts
  with the match text to the ticker. The longest matching prefix wins.
`
}

func (c *tickerAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Ticker symbol (required)")
	f.StringVar(&c.match, "match", "", "Description prefix (required)")
}

func (c *tickerAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req := request.AddTickerRequest{Ticker: c.ticker, MatchText: c.match}
	if err := validation.ValidateAddTicker(req); err != nil {
		return c.app.usage(err.Error())
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}
	if err := svcs.Reference.AddTicker(c.app.Context(ctx), req.Ticker, req.MatchText); err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(req)
}

// --- priceSetCmd ---

type priceSetCmd struct {
	app *App
	req request.SetPriceRequest
}

func (*priceSetCmd) Name() string     { return "price-set" }
func (*priceSetCmd) Synopsis() string { return "record a closing price" }
func (*priceSetCmd) Usage() string {
	return `price-set -ticker <ticker> -date YYYY-MM-DD -price <amount> [-currency GBP] [-latest]
`
}

func (c *priceSetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Ticker, "ticker", "", "Ticker symbol (required)")
	f.StringVar(&c.req.Date, "date", "", "Price date (required)")
	f.StringVar(&c.req.Price, "price", "", "Closing price (required)")
	f.StringVar(&c.req.Currency, "currency", "", "Price currency, defaults to GBP")
	f.BoolVar(&c.req.Latest, "latest", false, "Also record as the latest quote")
}

func (c *priceSetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := validation.ValidateSetPrice(c.req); err != nil {
		return c.app.usage(err.Error())
	}
	date, _ := validation.ParseDate(c.req.Date)
	price := decimal.RequireFromString(strings.TrimSpace(c.req.Price))

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}
	ctx = c.app.Context(ctx)

	if err := svcs.Reference.SetPrice(ctx, c.req.Ticker, date, price, c.req.Currency); err != nil {
		return c.app.fail(err)
	}
	if c.req.Latest {
		if err := svcs.Reference.SetLatestPrice(ctx, c.req.Ticker, date, price, c.req.Currency); err != nil {
			return c.app.fail(err)
		}
	}
	return subcommands.ExitSuccess
}

// --- backfillDividendTickersCmd ---

type backfillDividendTickersCmd struct {
	app   *App
	apply bool
}

func (*backfillDividendTickersCmd) Name() string { return "backfill-dividend-tickers" }
func (*backfillDividendTickersCmd) Synopsis() string {
	return "resolve tickers on dividends imported without one"
}
func (*backfillDividendTickersCmd) Usage() string {
	return `backfill-dividend-tickers [-apply]

  Lists dividend rows whose ticker can now be resolved. Nothing is written
  unless -apply is given.
`
}

func (c *backfillDividendTickersCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.apply, "apply", false, "Write the resolved tickers")
}

func (c *backfillDividendTickersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	result, err := svcs.Reference.BackfillDividendTickers(c.app.Context(ctx), c.apply)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(result)
}
