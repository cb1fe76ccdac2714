package exporter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// formatMoney renders f with two decimal places, thousands separators and an
// optional currency symbol placed after the sign: -$1,234.50.
func formatMoney(f float64, currency string) string {
	fixed := decimal.NewFromFloat(f).Round(2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	if fixed == "0.00" {
		sign = ""
	}

	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + currency + groupThousands(intPart) + "." + frac
}

// formatCount renders a count with thousands separators.
func formatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// printable drops control characters so cell and company text stays on one
// line. Tabs and line breaks become spaces.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsPrint(r) || r == ' ':
			return r
		default:
			return -1
		}
	}, s)
}
