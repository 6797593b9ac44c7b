// Package classifier assigns canonical transaction types to statement rows
// and resolves the security ticker a row refers to.
package classifier

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// Classify applies the reference and description rules in priority order;
// the first matching rule wins and unmatched rows are deposits.
//
// A negative plain "Transfer" reference is a withdrawal. References are
// compared upper-cased, so the rule holds whatever casing the statement used.
func Classify(reference, description string, value decimal.Decimal) model.TransactionType {
	ref := strings.ToUpper(strings.TrimSpace(reference))
	desc := strings.TrimSpace(description)

	switch {
	case strings.HasPrefix(ref, "B"):
		return model.TypeBuy
	case strings.HasPrefix(ref, "S"):
		return model.TypeSell
	case ref == "INTEREST":
		return model.TypeInterest
	case ref == "MANAGE FEE":
		return model.TypeFee
	case desc == "Transfer from Income Account":
		return model.TypeTransferFromIncomeAccount
	case desc == "Transfer to Capital Account":
		return model.TypeTransferToCapitalAccount
	case ref == "OVR CR", ref == "UTG CR":
		return model.TypeDividend
	case ref == "LOYALTYU":
		return model.TypeLoyaltyPayment
	case ref == "TRANSFER" && value.IsNegative():
		return model.TypeWithdrawal
	}
	return model.TypeDeposit
}
