// Package cli implements the ledgerctl subcommands.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/config"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/database"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
)

// App holds what every subcommand shares. Services are opened on first use
// so that -help works without a database.
type App struct {
	Out io.Writer
	Err io.Writer
	Log zerolog.Logger

	services *service.Services
	db       *sql.DB
}

// NewApp returns an App writing to stdout and stderr.
func NewApp(log zerolog.Logger) *App {
	return &App{Out: os.Stdout, Err: os.Stderr, Log: log}
}

// NewAppWithServices returns an App bound to an existing service graph.
func NewAppWithServices(svcs *service.Services, out io.Writer) *App {
	return &App{Out: out, Err: out, Log: logger.Nop(), services: svcs}
}

// Register adds every ledgerctl subcommand to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&importCmd{app: app}, "ledger")
	c.Register(&rollbackCmd{app: app}, "ledger")
	c.Register(&batchesCmd{app: app}, "ledger")

	c.Register(&valuationCmd{app: app}, "reports")
	c.Register(&backfillCmd{app: app}, "reports")
	c.Register(&exportCGTCmd{app: app}, "reports")

	c.Register(&tickerAddCmd{app: app}, "reference")
	c.Register(&priceSetCmd{app: app}, "reference")
	c.Register(&backfillDividendTickersCmd{app: app}, "reference")
}

// Services opens the configured database, applying pending migrations.
func (a *App) Services() (*service.Services, error) {
	if a.services != nil {
		return a.services, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	archive, err := service.NewArchive(cfg.Import.ArchiveKey)
	if err != nil {
		db.Close()
		return nil, err
	}

	a.db = db
	a.services = service.NewServices(db, archive, service.NewValuationCache(cfg.Cache.ValuationTTL))
	return a.services, nil
}

// Close releases the database opened by Services.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Context attaches the App logger so service logs reach stderr.
func (a *App) Context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, a.Log)
}

func (a *App) printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}

func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (a *App) usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, "Error:", msg)
	return subcommands.ExitUsageError
}
