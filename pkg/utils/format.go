package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatUSD formats a dollar amount with thousands separators ($1,234,567.89).
func FormatUSD(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	intPart := int64(amount)
	frac := amount - float64(intPart)

	formatted := groupThousands(intPart) + strings.TrimPrefix(fmt.Sprintf("%.2f", frac), "0")
	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatUSDCompact formats a dollar amount in compact notation:
// 1927345 → "$1.93M", 2.9e12 → "$2.90T".
func FormatUSDCompact(amount float64) string {
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPercent formats a percentage value to two decimals with a sign for
// positive values ("+4.20%", "-1.33%").
func FormatPercent(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands renders n with comma separators every three digits.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
