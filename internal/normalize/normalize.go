// Package normalize canonicalizes entity names and tax identifiers so the
// resolver and the reference-data indexes agree on a single matching form.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	nonDigitRe   = regexp.MustCompile(`\D`)

	// accentFold decomposes characters and strips combining marks so that
	// "Itaú" and "ITAU" normalize to the same form.
	accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Name standardizes an entity name for matching by:
//  1. Trimming whitespace
//  2. Stripping diacritics (São -> SAO)
//  3. Converting to uppercase
//  4. Collapsing runs of whitespace into single spaces
func Name(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(accentFold, name); err == nil {
		name = folded
	}

	name = strings.ToUpper(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")

	return name
}

// CNPJ extracts the 8-digit CNPJ root from a tax identifier. It accepts bare
// roots ("60701190"), full 14-digit numbers ("60701190000104") and punctuated
// filings ("60.701.190/0001-04"). The second return is false when the input
// does not carry a CNPJ-shaped digit count, which signals the caller to treat
// it as an entity name instead.
func CNPJ(s string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(s, "")
	switch len(digits) {
	case 8:
		return digits, true
	case 14:
		return digits[:8], true
	}
	return "", false
}

// Identifier renders a raw lookup value as a string. Numeric values are
// zero-padded to eight digits because CNPJ roots lose their leading zeros
// when columns are stored as numbers.
func Identifier(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case int:
		return fmt.Sprintf("%08d", x)
	case int32:
		return fmt.Sprintf("%08d", x)
	case int64:
		return fmt.Sprintf("%08d", x)
	case float64:
		return fmt.Sprintf("%08.0f", x)
	case float32:
		return fmt.Sprintf("%08.0f", x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fmt.Sprintf("%08d", n)
		}
		return strings.TrimSpace(x.String())
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Key derives the cache key for a raw identifier: the rendered identifier,
// trimmed and upper-cased. Distinct spellings of the same entity are distinct
// keys; each resolves independently and lands in its own cache entry.
func Key(v any) string {
	return strings.ToUpper(strings.TrimSpace(Identifier(v)))
}
