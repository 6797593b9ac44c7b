package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// Column names as they appear, lowercased, in the transactions header.
const (
	ColTradeDate   = "trade date"
	ColSettleDate  = "settle date"
	ColReference   = "reference"
	ColDescription = "description"
	ColUnitCost    = "unit cost (p)"
	ColQuantity    = "quantity"
	ColValue       = "value (£)"
)

var requiredColumns = []string{
	ColTradeDate,
	ColSettleDate,
	ColReference,
	ColDescription,
	ColUnitCost,
	ColQuantity,
	ColValue,
}

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// Row is a normalised statement row. Line is the 1-based position among
// the non-blank rows below the header.
type Row struct {
	Line        int
	TradeDate   time.Time
	SettleDate  *time.Time
	Reference   string
	Description string
	UnitCost    decimal.NullDecimal
	Quantity    decimal.NullDecimal
	Value       decimal.Decimal
}

// Statement is a parsed export.
type Statement struct {
	Client  ClientInfo
	Rows    []Row
	Dropped []model.DroppedRow
}

// Parse reads a full statement export: preamble, header and data rows.
// A missing header or required column wraps apperrors.ErrStatementFormat;
// a preamble without client details wraps apperrors.ErrMissingClientInfo.
// Rows lacking a trade date, value or description are reported in Dropped.
func Parse(text string) (*Statement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyStatement
	}
	lines := lineBreak.Split(strings.TrimPrefix(text, "\ufeff"), -1)

	start := FindHeader(lines)
	if start < 0 {
		return nil, fmt.Errorf("%w: could not find the transactions header (Trade date / Value)", apperrors.ErrStatementFormat)
	}

	client, err := ScanPreamble(lines)
	if err != nil {
		return nil, err
	}

	rows, dropped, err := parseBlock(strings.Join(lines[start:], "\n"))
	if err != nil {
		return nil, err
	}

	return &Statement{Client: client, Rows: rows, Dropped: dropped}, nil
}

// FindHeader returns the index of the first line mentioning both "trade date"
// and "value", or -1.
func FindHeader(lines []string) int {
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "trade date") && strings.Contains(lower, "value") {
			return i
		}
	}
	return -1
}

func parseBlock(body string) ([]Row, []model.DroppedRow, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse header row: %w", apperrors.ErrStatementFormat, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("%w: missing required column: %s", apperrors.ErrStatementFormat, col)
		}
	}

	var rows []Row
	var dropped []model.DroppedRow
	line := 0

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line++
			dropped = append(dropped, model.DroppedRow{Line: line, Reason: "unreadable row: " + err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}
		line++

		field := func(col string) string {
			if i := idx[col]; i < len(record) {
				return record[i]
			}
			return ""
		}

		row, reason := normalise(line, field)
		if reason != "" {
			dropped = append(dropped, model.DroppedRow{Line: line, Reason: reason})
			continue
		}
		rows = append(rows, row)
	}

	return rows, dropped, nil
}

func normalise(line int, field func(string) string) (Row, string) {
	row := Row{
		Line:        line,
		Reference:   TitleCase(CleanText(field(ColReference))),
		Description: CleanText(field(ColDescription)),
		UnitCost:    ParseDecimal(field(ColUnitCost), UnitCostScale),
		Quantity:    ParseDecimal(field(ColQuantity), QuantityScale),
	}

	tradeDate, ok := ParseDate(field(ColTradeDate))
	if !ok {
		return Row{}, "missing or invalid trade date"
	}
	row.TradeDate = tradeDate

	if settle, ok := ParseDate(field(ColSettleDate)); ok {
		row.SettleDate = &settle
	}

	value := ParseDecimal(field(ColValue), ValueScale)
	if !value.Valid {
		return Row{}, "missing or invalid value"
	}
	row.Value = value.Decimal

	if row.Description == "" {
		return Row{}, "missing description"
	}
	return row, ""
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
