package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Prices are stored as integer cents so totals never accumulate floating
// point drift. Formatting to the display string happens only at the edge.

// ParsePrice parses a decimal price string into cents. Both "42.50" and
// "42,50" are accepted (admin forms arrive with either separator).
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid price %q: more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if units < 0 || strings.HasPrefix(whole, "-") {
		return 0, fmt.Errorf("invalid price %q: must not be negative", s)
	}

	return units*100 + cents, nil
}

// FormatPrice renders cents as a two-decimal string with a comma separator,
// e.g. 1250 -> "12,50". This matches the locale the storefront displays in.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}
