package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

var cgtHeader = []string{"B/S", "Date", "Company", "Shares", "Price", "Charges", "Tax"}

var hundred = decimal.NewFromInt(100)

// ExportService writes ledger extracts for external tools.
type ExportService struct {
	transactionRepo *repository.TransactionRepository
}

// NewExportService creates a new ExportService.
func NewExportService(transactionRepo *repository.TransactionRepository) *ExportService {
	return &ExportService{transactionRepo: transactionRepo}
}

// CGT writes the Buy and Sell rows of an account in the layout accepted by
// capital gains calculators: B or S, DD/MM/YYYY, ticker, whole shares,
// unit price in pounds to 3 places, then zero charges and tax.
//
// Parameters:
//   - w: Destination of the export
//   - key: The account to export
//   - taxYear: First year of a UK tax year to restrict to, or nil for all time
//   - tsv: Tab-separated output instead of comma-separated
func (s *ExportService) CGT(ctx context.Context, w io.Writer, key model.AccountKey, taxYear *int, tsv bool) error {
	filter := model.TransactionFilter{
		ClientName:  key.ClientName,
		AccountType: key.AccountType,
		Types:       []model.TransactionType{model.TypeBuy, model.TypeSell},
	}
	if taxYear != nil {
		filter.From, filter.To = TaxYearBounds(*taxYear)
	}

	transactions, err := s.transactionRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load trades for %s: %w", key, err)
	}

	cw := csv.NewWriter(w)
	if tsv {
		cw.Comma = '\t'
	}
	if err := cw.Write(cgtHeader); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	for _, t := range transactions {
		if err := cw.Write(cgtRecord(t)); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func cgtRecord(t model.Transaction) []string {
	side := "B"
	if t.Type == model.TypeSell {
		side = "S"
	}
	company := ""
	if t.Ticker != nil {
		company = *t.Ticker
	}
	shares := decimal.Zero
	if t.Quantity.Valid {
		shares = t.Quantity.Decimal
	}
	price := decimal.Zero
	if t.UnitCost.Valid {
		price = t.UnitCost.Decimal.Div(hundred)
	}
	return []string{
		side,
		t.TradeDate.Format("02/01/2006"),
		company,
		shares.StringFixed(0),
		price.StringFixed(3),
		"0.0",
		"0.0",
	}
}
