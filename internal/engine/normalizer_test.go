package engine

import "testing"

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"uber trip", "UBER *TRIP HELP.UBER.COM", "Uber"},
		{"uber eats maps to uber", "UBER EATS PENDING", "Uber"},
		{"lyft ride", "LYFT *RIDE THU 9PM", "Lyft"},
		{"amazon marketplace", "AMZN Mktp US", "Amazon"},
		{"walmart spaced", "WAL MART #2341", "Walmart"},
		{"mcdonalds apostrophe", "MCDONALD'S #4521", "McDonald's"},
		{"netflix domain", "NETFLIX.COM", "Netflix"},
		{"cvs pharmacy", "CVS/PHARMACY #0912", "CVS"},
		{"noise tokens dropped", "POS STARBUCKS STORE 221", "Starbucks"},
		{"atm withdrawal keeps payload", "ATM WITHDRAWAL REF 8810", "Withdrawal 8810"},
		{"upi rail stripped", "UPI TXN GREEN GROCER", "Green Grocer"},
		{"emoji removed", "🍕 PIZZA PALACE", "Pizza Palace"},
		{"unknown title cased", "corner bakery downtown", "Corner Bakery Downtown"},
		{"empty", "", ""},
		{"noise only", "POS ATM REF", ""},
		{"punctuation only", "***", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMerchant(tc.raw); got != tc.want {
				t.Fatalf("NormalizeMerchant(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeMerchantStable(t *testing.T) {
	once := NormalizeMerchant("UBER *TRIP HELP.UBER.COM")
	twice := NormalizeMerchant(once)
	if once != twice {
		t.Fatalf("normalization not stable: %q -> %q", once, twice)
	}
}
