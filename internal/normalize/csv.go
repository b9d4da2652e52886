package normalize

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// table is a parsed leaderboard with a case-insensitive header index
type table struct {
	feed    string
	columns map[string]int
	reader  *csv.Reader
}

func newTable(feed, text string) (*table, bool) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		log.Warn().Str("feed", feed).Msg("Empty leaderboard payload")
		return nil, false
	}

	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		log.Warn().Err(err).Str("feed", feed).Msg("Failed to read leaderboard header")
		return nil, false
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, `"`, "")))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	return &table{feed: feed, columns: columns, reader: r}, true
}

// column returns the index of the first alias present in the header, or -1
func (t *table) column(aliases ...string) int {
	for _, a := range aliases {
		if idx, ok := t.columns[strings.ToLower(a)]; ok {
			return idx
		}
	}
	return -1
}

// rows calls fn for every data row. Unreadable rows are skipped.
func (t *table) rows(fn func(values []string)) {
	line := 1
	for {
		values, err := t.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Trace().Err(err).Str("feed", t.feed).Int("line", line).Msg("Skipping malformed row")
			continue
		}
		fn(values)
	}
}

func cell(values []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(values) {
		return "", false
	}
	return values[idx], true
}
