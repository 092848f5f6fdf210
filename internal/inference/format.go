package inference

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatPrice renders v as US dollars with thousands grouping and two
// decimals, e.g. "$31,234.50".
func FormatPrice(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("$%v", number.Decimal(cents, number.Scale(2)))
}
