package engine

import (
	"sort"
	"strings"

	"atlasledger/internal/core"

	"github.com/agnivade/levenshtein"
)

// maxSimilarMerchants caps the suggestion list.
const maxSimilarMerchants = 3

// SimilarMerchants suggests up to three of the user's other merchants
// whose names are close to the given one, by normalized Levenshtein
// distance. Names further than 40% of the longer length apart are not
// considered similar.
func SimilarMerchants(u *core.User, merchant string) []string {
	target := strings.ToUpper(strings.TrimSpace(merchant))
	if target == "" {
		return nil
	}

	type candidate struct {
		name string
		dist int
	}
	seen := map[string]struct{}{}
	var candidates []candidate
	for _, tx := range u.Transactions {
		name := strings.TrimSpace(tx.Merchant)
		upper := strings.ToUpper(name)
		if name == "" || upper == target {
			continue
		}
		if _, dup := seen[upper]; dup {
			continue
		}
		seen[upper] = struct{}{}

		dist := levenshtein.ComputeDistance(target, upper)
		maxlen := len(target)
		if len(upper) > maxlen {
			maxlen = len(upper)
		}
		if float64(dist)/float64(maxlen) >= 0.4 {
			continue
		}
		candidates = append(candidates, candidate{name: name, dist: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > maxSimilarMerchants {
		candidates = candidates[:maxSimilarMerchants]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
