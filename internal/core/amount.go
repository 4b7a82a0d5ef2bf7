// Package core provides the Atlas Ledger domain types and the coercion
// helpers shared by the import path and the query surface.
//
// This file contains best-effort numeric coercion for upload rows. Input
// validation proper belongs to the request-handling layer; the engine only
// strips common currency noise before parsing and reports failure through
// the ok return, never through an error.
package core

import (
	"math"
	"strconv"
	"strings"
)

// currencyNoise lists characters stripped before numeric parsing:
// currency symbols, thousand separators and stray whitespace.
const currencyNoise = "$€£₹, \t"

// ParseAmount coerces a raw amount string to a signed float64.
//
// Examples:
//
//	ParseAmount("-5")        -> -5, true
//	ParseAmount("$1,234.50") -> 1234.50, true
//	ParseAmount("₹42.50")    -> 42.50, true
//	ParseAmount("n/a")       -> 0, false
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(currencyNoise, r) {
			continue
		}
		b.WriteRune(r)
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// Round2 rounds to two decimal places, half away from zero. Confidence
// scores and monetary aggregates are stored at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
