package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// NullInt32 converts an optional API integer
func NullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

// NullString treats the empty string as absent
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullDecimal converts an optional decimal
func NullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// IntOrZero reads a nullable count, treating null as zero
func IntOrZero(v sql.NullInt32) int {
	if !v.Valid {
		return 0
	}
	return int(v.Int32)
}
