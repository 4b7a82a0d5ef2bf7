package engine

import (
	"testing"

	"atlasledger/internal/core"
)

// stubDetector forces the recurrence rule on or off.
type stubDetector struct {
	recurring bool
}

func (d *stubDetector) IsLikelyRecurring(u *core.User, tx *core.Transaction) bool {
	return d.recurring
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name           string
		overrides      map[string]string
		recurring      bool
		merchant       string
		description    string
		rawCategory    string
		wantCategory   string
		wantConfidence float64
	}{
		{
			name:           "override beats dictionary",
			overrides:      map[string]string{"uber": "Commute"},
			merchant:       "Uber",
			wantCategory:   "Commute",
			wantConfidence: 1.0,
		},
		{
			name:           "dictionary keyword",
			merchant:       "Uber",
			wantCategory:   "Transportation",
			wantConfidence: 0.9,
		},
		{
			name:           "dictionary beats regex",
			merchant:       "Starbucks",
			description:    "service fee",
			wantCategory:   "Food & Dining",
			wantConfidence: 0.9,
		},
		{
			name:           "regex on description",
			merchant:       "City Apartments",
			description:    "monthly rent payment",
			wantCategory:   "Rent & Housing",
			wantConfidence: 0.7,
		},
		{
			name:           "regex on merchant",
			merchant:       "Overdraft Fee",
			wantCategory:   "Fees & Charges",
			wantConfidence: 0.7,
		},
		{
			name:           "regex whole word only",
			merchant:       "Parenting Monthly", // "rent" inside a word must not match
			wantCategory:   CategoryUncategorized,
			wantConfidence: 0.2,
		},
		{
			name:           "recurrence when nothing else matches",
			recurring:      true,
			merchant:       "Acme Gym",
			wantCategory:   CategorySubscriptions,
			wantConfidence: 0.6,
		},
		{
			name:           "regex beats recurrence",
			recurring:      true,
			merchant:       "Auto Loan Services",
			wantCategory:   "Loan & EMI",
			wantConfidence: 0.7,
		},
		{
			name:           "raw category fallback",
			merchant:       "Zeta Consulting",
			rawCategory:    "Professional Services",
			wantCategory:   "Professional Services",
			wantConfidence: 0.2,
		},
		{
			name:           "uncategorized fallback",
			merchant:       "Zeta Consulting",
			wantCategory:   CategoryUncategorized,
			wantConfidence: 0.2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier(&stubDetector{recurring: tc.recurring})
			u := &core.User{Overrides: tc.overrides}
			tx := &core.Transaction{
				Merchant:    tc.merchant,
				Description: tc.description,
				RawCategory: tc.rawCategory,
			}
			got := c.Classify(u, tx)
			if got.Category != tc.wantCategory {
				t.Fatalf("category = %q, want %q", got.Category, tc.wantCategory)
			}
			if got.Confidence != tc.wantConfidence {
				t.Fatalf("confidence = %v, want %v", got.Confidence, tc.wantConfidence)
			}
		})
	}
}

func TestApplyPreservesRawCategory(t *testing.T) {
	c := NewClassifier(&stubDetector{})
	u := &core.User{}
	tx := &core.Transaction{
		Merchant: "Zeta Consulting",
		Category: "Bank Feed Category",
	}

	// The fallback keeps the bank-feed category, so no change is reported
	// even on the first pass.
	if c.Apply(u, tx) {
		t.Fatal("apply should not report a change when the category is kept")
	}
	if tx.RawCategory != "Bank Feed Category" {
		t.Fatalf("RawCategory = %q, want pre-classification value", tx.RawCategory)
	}
	if tx.Category != "Bank Feed Category" || tx.AICategory != "Bank Feed Category" {
		t.Fatalf("fallback should keep raw category, got %q / %q", tx.Category, tx.AICategory)
	}
	if tx.AIConfidence != 0.2 {
		t.Fatalf("AIConfidence = %v, want 0.2", tx.AIConfidence)
	}

	// A second pass must be a no-op: same category, raw value untouched.
	if c.Apply(u, tx) {
		t.Fatal("second apply should not report a change")
	}
	if tx.RawCategory != "Bank Feed Category" {
		t.Fatalf("RawCategory overwritten on rebuild: %q", tx.RawCategory)
	}
}

func TestApplyMirrorsCategoryToAICategory(t *testing.T) {
	c := NewClassifier(&stubDetector{})
	u := &core.User{}
	tx := &core.Transaction{Merchant: "Netflix"}

	if !c.Apply(u, tx) {
		t.Fatal("expected a category change")
	}
	if tx.Category != tx.AICategory {
		t.Fatalf("Category %q != AICategory %q", tx.Category, tx.AICategory)
	}
	if tx.Category != "Entertainment" {
		t.Fatalf("Category = %q, want Entertainment", tx.Category)
	}
}
