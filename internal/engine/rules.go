package engine

import (
	"regexp"
	"strings"

	"atlasledger/internal/core"
)

const (
	// CategoryUncategorized is the terminal fallback category.
	CategoryUncategorized = "Uncategorized"
	// CategorySubscriptions is assigned when only the recurrence
	// heuristic matches.
	CategorySubscriptions = "Bills & Subscriptions"
)

// ruleKind tags a classification rule variant. Precedence is fixed by
// position in the rule list, never by kind.
type ruleKind int

const (
	ruleOverride ruleKind = iota
	ruleDictionary
	ruleRegex
	ruleRecurrence
	ruleFallback
)

// rule is one tagged variant in the ordered rule list. Exactly one of
// the payload fields is populated depending on kind.
type rule struct {
	kind       ruleKind
	keywords   []string
	pattern    *regexp.Regexp
	category   string
	confidence float64
}

// Classification is the result of one rule dispatch.
type Classification struct {
	Category   string
	Confidence float64
}

// Classifier assigns categories by evaluating an ordered rule list:
// user override, dictionary keywords, regex over merchant+description,
// recurrence fallback, raw-category fallback. First match wins.
type Classifier struct {
	rules    []rule
	detector RecurrenceDetector
}

// NewClassifier builds the default rule table wired to the given
// recurrence detector.
func NewClassifier(detector RecurrenceDetector) *Classifier {
	rules := []rule{{kind: ruleOverride, confidence: 1.0}}
	for _, d := range dictionaryRules {
		rules = append(rules, rule{kind: ruleDictionary, keywords: d.keywords, category: d.category, confidence: 0.9})
	}
	for _, rx := range regexRules {
		rules = append(rules, rule{kind: ruleRegex, pattern: rx.pattern, category: rx.category, confidence: 0.7})
	}
	rules = append(rules,
		rule{kind: ruleRecurrence, category: CategorySubscriptions, confidence: 0.6},
		rule{kind: ruleFallback, confidence: 0.2},
	)
	return &Classifier{rules: rules, detector: detector}
}

// dictionaryRules pair keyword sets with categories, in priority order.
// Keywords are matched as substrings of the lowercase merchant name.
var dictionaryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"uber", "lyft", "taxi", "metro", "transit", "parking", "fuel", "gas station", "shell", "chevron"}, "Transportation"},
	{[]string{"doordash", "grubhub", "instacart", "restaurant", "cafe", "coffee", "starbucks", "mcdonald", "pizza", "burger", "dining"}, "Food & Dining"},
	{[]string{"grocery", "groceries", "market", "supermarket", "kroger", "safeway", "whole foods", "trader joe"}, "Groceries"},
	{[]string{"amazon", "walmart", "target", "costco", "ebay", "store", "retail"}, "Shopping"},
	{[]string{"netflix", "spotify", "hulu", "disney", "cinema", "theater", "steam", "playstation", "xbox"}, "Entertainment"},
	{[]string{"verizon", "comcast", "t mobile", "att", "internet", "mobile", "broadband", "electricity", "water bill", "utility"}, "Bills & Utilities"},
	{[]string{"pharmacy", "cvs", "walgreens", "hospital", "clinic", "dental", "medical"}, "Healthcare"},
	{[]string{"airline", "flight", "hotel", "airbnb", "hertz", "avis"}, "Travel"},
}

// regexRules are matched case-insensitively against "merchant description".
var regexRules = []struct {
	pattern  *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\b(rent|maintenance)\b`), "Rent & Housing"},
	{regexp.MustCompile(`(?i)\b(fee|fees|charge|charges)\b`), "Fees & Charges"},
	{regexp.MustCompile(`(?i)\b(loan|emi)\b`), "Loan & EMI"},
	{regexp.MustCompile(`(?i)\binterest\b`), "Interest"},
}

// Classify runs the rule dispatch for one transaction. It is a pure
// function of the user's override table, the rule list and (through the
// recurrence detector) the sibling transactions of the same account.
func (c *Classifier) Classify(u *core.User, tx *core.Transaction) Classification {
	merchantLower := strings.ToLower(tx.Merchant)
	haystack := strings.TrimSpace(tx.Merchant + " " + tx.Description)

	for _, r := range c.rules {
		switch r.kind {
		case ruleOverride:
			if cat, ok := u.Override(merchantLower); ok {
				return Classification{Category: cat, Confidence: r.confidence}
			}
		case ruleDictionary:
			for _, kw := range r.keywords {
				if strings.Contains(merchantLower, kw) {
					return Classification{Category: r.category, Confidence: r.confidence}
				}
			}
		case ruleRegex:
			if r.pattern.MatchString(haystack) {
				return Classification{Category: r.category, Confidence: r.confidence}
			}
		case ruleRecurrence:
			if c.detector != nil && c.detector.IsLikelyRecurring(u, tx) {
				return Classification{Category: r.category, Confidence: r.confidence}
			}
		case ruleFallback:
			if tx.RawCategory != "" {
				return Classification{Category: tx.RawCategory, Confidence: r.confidence}
			}
			return Classification{Category: CategoryUncategorized, Confidence: r.confidence}
		}
	}
	// The fallback rule always matches; this is unreachable.
	return Classification{Category: CategoryUncategorized, Confidence: 0.2}
}

// Apply classifies tx and writes the result back, preserving category
// provenance: RawCategory is captured from the pre-classification value
// the first time only, so repeated rebuilds never replace it with an
// AI-assigned category. Reports whether the category changed.
func (c *Classifier) Apply(u *core.User, tx *core.Transaction) bool {
	if tx.RawCategory == "" {
		tx.RawCategory = tx.Category
	}
	res := c.Classify(u, tx)
	changed := tx.Category != res.Category
	tx.AICategory = res.Category
	tx.AIConfidence = core.Round2(res.Confidence)
	tx.Category = res.Category
	return changed
}
