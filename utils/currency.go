package utils

import (
	"strconv"
	"strings"
)

// FormatSum formats whole so'm with space thousand separators.
// Example: 1234567 -> "1 234 567"
func FormatSum(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// FormatSumWithUnit -> "44 000 so'm"
func FormatSumWithUnit(amount int64) string {
	return FormatSum(amount) + " so'm"
}
