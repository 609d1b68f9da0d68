package importer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// mapColumns builds a case-insensitive header name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name; empty when the column is absent or
// the record is short.
func getCol(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// trimQuotes removes surrounding double quotes from a CSV field.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// parseYearMonth parses a reference date written as YYYYMM or YYYY-MM.
func parseYearMonth(s string) (int, error) {
	s = strings.ReplaceAll(trimQuotes(s), "-", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Errorf("importer: bad reference date %q", s)
	}
	if month := v % 100; v < 190001 || v > 999912 || month < 1 || month > 12 {
		return 0, eris.Errorf("importer: bad reference date %q", s)
	}
	return v, nil
}

func parseIntField(s string) (int, error) {
	v, err := strconv.Atoi(trimQuotes(s))
	if err != nil {
		return 0, eris.Errorf("importer: bad integer %q", s)
	}
	return v, nil
}

func parseInt64Field(s string) (int64, error) {
	v, err := strconv.ParseInt(trimQuotes(s), 10, 64)
	if err != nil {
		return 0, eris.Errorf("importer: bad integer %q", s)
	}
	return v, nil
}

// parseDecimal parses a monetary value. BACEN exports use the Brazilian
// convention (dots group thousands, a comma marks the decimals); values
// without a comma are read as plain floats.
func parseDecimal(s string) (float64, error) {
	s = trimQuotes(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("importer: bad decimal %q", s)
	}
	return v, nil
}

// extraColumnsJSON collects every non-structural, non-empty column of a
// record into a JSON object keyed by lowercased header name.
func extraColumnsJSON(record []string, cols map[string]int, structural map[string]bool) (string, error) {
	extra := make(map[string]string)
	for name, idx := range cols {
		if structural[name] || idx >= len(record) {
			continue
		}
		if v := trimQuotes(record[idx]); v != "" {
			extra[name] = v
		}
	}
	out, err := json.Marshal(extra)
	if err != nil {
		return "", eris.Wrap(err, "importer: encode atributos")
	}
	return string(out), nil
}

// resolveEncoding maps an encoding name ("latin1", "iso-8859-1", ...) to
// a decoder. Empty means the input is already UTF-8.
func resolveEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: unsupported encoding %q", name)
	}
	return enc, nil
}
