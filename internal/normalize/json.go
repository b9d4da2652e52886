package normalize

import (
	"fmt"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// FirstStat walks stats[].splits[].stat and returns the first non-empty stat object
func FirstStat(payload []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, false
	}

	var found gjson.Result
	gjson.GetBytes(payload, "stats").ForEach(func(_, group gjson.Result) bool {
		group.Get("splits").ForEach(func(_, split gjson.Result) bool {
			stat := split.Get("stat")
			if stat.IsObject() && len(stat.Map()) > 0 {
				found = stat
				return false
			}
			return true
		})
		return !found.Exists()
	})
	return found, found.Exists()
}

// Sabermetrics are the advanced values taken from a sabermetrics stat payload
type Sabermetrics struct {
	War     *decimal.Decimal
	Woba    *decimal.Decimal
	WrcPlus *decimal.Decimal
	Fip     *decimal.Decimal
	Xfip    *decimal.Decimal
}

// IsEmpty reports whether no value was present
func (s Sabermetrics) IsEmpty() bool {
	return s.War == nil && s.Woba == nil && s.WrcPlus == nil && s.Fip == nil && s.Xfip == nil
}

// ParseSabermetrics extracts advanced values from the first non-empty split. Missing nesting yields nil.
func ParseSabermetrics(payload []byte) *Sabermetrics {
	stat, ok := FirstStat(payload)
	if !ok {
		return nil
	}
	return &Sabermetrics{
		War:     DecimalField(stat.Get("war")),
		Woba:    DecimalField(stat.Get("woba")),
		WrcPlus: DecimalField(stat.Get("wRcPlus")),
		Fip:     DecimalField(stat.Get("fip")),
		Xfip:    DecimalField(stat.Get("xfip")),
	}
}

// DecimalField reads a JSON number or numeric string without going through float64
func DecimalField(r gjson.Result) *decimal.Decimal {
	switch r.Type {
	case gjson.Number:
		return parseDecimalText(r.Raw)
	case gjson.String:
		return ParseAPIDecimal(r.Str)
	}
	return nil
}

// IntField reads an optional JSON integer, accepting numeric strings
func IntField(r gjson.Result) *int {
	switch r.Type {
	case gjson.Number:
		v := int(r.Int())
		return &v
	case gjson.String:
		v, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return nil
		}
		return &v
	}
	return nil
}

// SplitRecord finds wins and losses for a split type ("home", "away", ...) inside a decoded
// standings records object
func SplitRecord(records any, splitType string) (wins, losses *int, err error) {
	if records == nil {
		return nil, nil, nil
	}
	expr := fmt.Sprintf("splitRecords[?type=='%s'] | [0]", splitType)
	found, err := jmespath.Search(expr, records)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search split records: %w", err)
	}
	rec, ok := found.(map[string]any)
	if !ok {
		return nil, nil, nil
	}
	return numberAt(rec, "wins"), numberAt(rec, "losses"), nil
}

func numberAt(m map[string]any, key string) *int {
	switch v := m[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	}
	return nil
}
