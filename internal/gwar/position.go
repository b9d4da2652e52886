package gwar

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Position is a canonical fielding position abbreviation
type Position string

const (
	Catcher          Position = "C"
	FirstBase        Position = "1B"
	SecondBase       Position = "2B"
	Shortstop        Position = "SS"
	ThirdBase        Position = "3B"
	LeftField        Position = "LF"
	CenterField      Position = "CF"
	RightField       Position = "RF"
	DesignatedHitter Position = "DH"
)

// Positions lists every canonical position
var Positions = []Position{
	Catcher, FirstBase, SecondBase, Shortstop, ThirdBase,
	LeftField, CenterField, RightField, DesignatedHitter,
}

// NormalizePosition maps textual position variants to a canonical abbreviation.
// Generic outfielders count as CF and generic infielders as SS. Unknown values are returned upper-cased.
func NormalizePosition(position string) Position {
	upper := strings.ToUpper(strings.TrimSpace(position))
	switch upper {
	case "CATCHER", "C":
		return Catcher
	case "FIRST BASEMAN", "FIRST BASE", "1B":
		return FirstBase
	case "SECOND BASEMAN", "SECOND BASE", "2B":
		return SecondBase
	case "SHORTSTOP", "SS":
		return Shortstop
	case "THIRD BASEMAN", "THIRD BASE", "3B":
		return ThirdBase
	case "LEFT FIELDER", "LEFT FIELD", "LF":
		return LeftField
	case "CENTER FIELDER", "CENTER FIELD", "CF":
		return CenterField
	case "RIGHT FIELDER", "RIGHT FIELD", "RF":
		return RightField
	case "DESIGNATED HITTER", "DH":
		return DesignatedHitter
	case "OUTFIELDER", "OF":
		return CenterField
	case "INFIELDER", "IF":
		return Shortstop
	}
	return Position(upper)
}

// positionalAdjustment returns runs per 162 games for a canonical position
func positionalAdjustment(p Position) (decimal.Decimal, bool) {
	var runs string
	switch p {
	case Catcher:
		runs = "12.5"
	case Shortstop:
		runs = "7.5"
	case SecondBase:
		runs = "3.0"
	case CenterField, ThirdBase:
		runs = "2.5"
	case LeftField, RightField:
		runs = "-7.5"
	case FirstBase:
		runs = "-12.5"
	case DesignatedHitter:
		runs = "-17.5"
	default:
		return decimal.Zero, false
	}
	return decimal.RequireFromString(runs), true
}
