package normalize

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseInteger parses a CSV integer cell, ignoring surrounding whitespace and quotes
func ParseInteger(value string) *int {
	v := strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDecimal parses a CSV decimal cell. Quotes and percent signs are stripped and the
// number is kept on its original scale, so "15.3%" and "15.3" are the same value.
func ParseDecimal(value string) *decimal.Decimal {
	v := strings.TrimSpace(value)
	v = strings.ReplaceAll(v, `"`, "")
	v = strings.ReplaceAll(v, "%", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return parseDecimalText(v)
}

// ParseAPIDecimal parses rate strings from the stats API such as ".312" or "3.45".
// Placeholders like "-.--" and "*.**" yield nil.
func ParseAPIDecimal(value string) *decimal.Decimal {
	v := strings.TrimSpace(value)
	switch v {
	case "", "-.--", "*.**", ".---", "-":
		return nil
	}
	return parseDecimalText(v)
}

func parseDecimalText(v string) *decimal.Decimal {
	switch {
	case strings.HasPrefix(v, "."):
		v = "0" + v
	case strings.HasPrefix(v, "-."):
		v = "-0" + v[1:]
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}
