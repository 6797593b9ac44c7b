package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// --- importCmd ---

type importCmd struct {
	app     *App
	account string
	file    string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a brokerage statement export" }
func (*importCmd) Usage() string {
	return `import -account <SIPP|ISA|Fund & Share> [-file <statement.csv>]

  Imports a transaction history export. Rows already in the ledger are
  reported as duplicates. Reads stdin when -file is omitted or "-".
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account type the statement belongs to (required)")
	f.StringVar(&c.file, "file", "-", "Statement file, - for stdin")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := model.ParseAccountType(c.account)
	if err != nil {
		return c.app.usage(err.Error())
	}

	text, err := readInput(c.file)
	if err != nil {
		return c.app.fail(err)
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	result, err := svcs.Import.Import(c.app.Context(ctx), text, account)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(result)
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read statement: %w", err)
	}
	return string(data), nil
}

// --- rollbackCmd ---

type rollbackCmd struct {
	app   *App
	batch string
}

func (*rollbackCmd) Name() string     { return "rollback" }
func (*rollbackCmd) Synopsis() string { return "remove every row inserted by an import batch" }
func (*rollbackCmd) Usage() string {
	return `rollback -batch <id>

  Deletes the rows of one import batch. Unknown or already rolled back
  batches delete nothing.
`
}

func (c *rollbackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.batch, "batch", "", "Import batch ID (required)")
}

func (c *rollbackCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := validation.ValidateUUID(c.batch); err != nil {
		return c.app.usage(err.Error())
	}

	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	result, err := svcs.Batch.Rollback(c.app.Context(ctx), c.batch)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(result)
}

// --- batchesCmd ---

type batchesCmd struct {
	app   *App
	limit int
}

func (*batchesCmd) Name() string     { return "batches" }
func (*batchesCmd) Synopsis() string { return "list recent import batches" }
func (*batchesCmd) Usage() string {
	return `batches [-limit N]
`
}

func (c *batchesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", service.DefaultBatchListLimit, "Number of batches to list")
}

func (c *batchesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svcs, err := c.app.Services()
	if err != nil {
		return c.app.fail(err)
	}

	batches, err := svcs.Batch.ListBatches(c.app.Context(ctx), c.limit)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(batches)
}
