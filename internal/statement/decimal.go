package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// Scales at which statement amounts are parsed.
const (
	QuantityScale = model.QuantityScale
	UnitCostScale = model.UnitCostScale
	ValueScale    = model.ValueScale
)

var (
	currencyNoise  = strings.NewReplacer("£", "", ",", "", " ", "")
	decimalResidue = regexp.MustCompile(`[^\-.\d]`)
)

// ParseDecimal parses a statement amount such as "£1,234.50" and rounds it
// half away from zero to scale places. Blank, "N/A", "-" and "." yield an
// invalid NullDecimal, as does anything that still fails to parse once
// currency symbols and separators are removed.
func ParseDecimal(s string, scale int32) decimal.NullDecimal {
	s = strings.Trim(s, "\" \t\r\n")
	if s == "" || strings.EqualFold(s, "n/a") {
		return decimal.NullDecimal{}
	}
	s = currencyNoise.Replace(s)
	s = decimalResidue.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(scale))
}
