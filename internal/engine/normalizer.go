// Package engine implements the transaction categorization and alerting
// engine: merchant normalization, rule-based classification, recurring
// charge detection and budget/anomaly alert recomputation.
package engine

import (
	"strings"
	"unicode"
)

// noiseTokens are payment-rail acronyms stripped from raw merchant
// strings as whole words, case-insensitively.
var noiseTokens = map[string]struct{}{
	"pos":  {},
	"atm":  {},
	"ach":  {},
	"neft": {},
	"imps": {},
	"rtgs": {},
	"upi":  {},
	"txn":  {},
	"ref":  {},
}

// alias pairs a lowercase prefix with a canonical display name. The list
// is ordered; the first matching prefix wins.
type alias struct {
	prefix    string
	canonical string
}

// aliases intentionally maps every "uber"-prefixed merchant, including
// "uber eats", to the ride-hailing brand. Known product ambiguity; do
// not split without product guidance.
var aliases = []alias{
	{"uber", "Uber"},
	{"lyft", "Lyft"},
	{"amzn", "Amazon"},
	{"amazon", "Amazon"},
	{"walmart", "Walmart"},
	{"wal mart", "Walmart"},
	{"starbucks", "Starbucks"},
	{"mcdonald", "McDonald's"},
	{"doordash", "DoorDash"},
	{"netflix", "Netflix"},
	{"spotify", "Spotify"},
	{"cvs", "CVS"},
	{"walgreens", "Walgreens"},
}

// NormalizeMerchant reduces a raw merchant string to its canonical
// display form: pictographs removed, punctuation flattened, payment-rail
// noise tokens dropped, known aliases resolved, the rest title-cased.
// An input that cleans down to nothing yields ""; downstream treats that
// as an unknown merchant, not an error.
func NormalizeMerchant(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case isPictographic(r):
			// dropped entirely
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, noisy := noiseTokens[strings.ToLower(w)]; noisy {
			continue
		}
		kept = append(kept, w)
	}
	cleaned := strings.Join(kept, " ")
	if cleaned == "" {
		return ""
	}

	lower := strings.ToLower(cleaned)
	for _, a := range aliases {
		if strings.HasPrefix(lower, a.prefix) {
			return a.canonical
		}
	}

	for i, w := range kept {
		kept[i] = titleWord(w)
	}
	return strings.Join(kept, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// isPictographic reports whether r is an emoji or similar symbol. The
// ranges cover the common emoji blocks plus variation selectors and the
// zero-width joiner used in emoji sequences.
func isPictographic(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0xFE0F || r == 0x200D:
		return true
	case unicode.Is(unicode.So, r):
		return true
	}
	return false
}
