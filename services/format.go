package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown in place of a missing or non-numeric price.
const NotAvailable = "N/A"

// FormatAmount formats an amount with comma thousands separators and
// exactly two decimal places (e.g. 1,234.50).
func FormatAmount(amount decimal.Decimal) string {
	raw := amount.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	result := groupThousands(parts[0]) + "." + parts[1]

	// -0.004 rounds to 0.00 and must not keep its sign.
	if amount.IsNegative() && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma between every group of three digits,
// counting from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
