package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultCurrencySymbol prefixes every monetary value on the dashboard.
const DefaultCurrencySymbol = "₹"

// FormatCurrency renders an amount with thousands grouping and two decimals,
// e.g. ₹12,345.67.
func FormatCurrency(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return symbol + "0.00"
	}
	digits := strconv.FormatFloat(math.Abs(amount), 'f', 2, 64)
	whole, fraction := digits[:len(digits)-3], digits[len(digits)-3:]

	sign := ""
	if amount < 0 && digits != "0.00" {
		sign = "-"
	}
	return sign + symbol + groupThousands(whole) + fraction
}

// FormatCount renders an integer with thousands grouping.
func FormatCount(n int) string {
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
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatNumber renders a float without trailing zeros (45, 27.3).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Capitalize upper-cases the first letter and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Initials returns the first two letters of a username in upper case.
func Initials(username string) string {
	runes := []rune(username)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders a backend timestamp for history cards. Unparseable
// values are shown as they came.
func FormatTimestamp(raw string) string {
	if raw == "" {
		return "Unknown time"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006 at 15:04:05")
		}
	}
	return raw
}
