package store

import (
	"atlasledger/internal/core"

	"github.com/google/uuid"
)

// Template is a declarative seed dataset. Instantiate stamps fresh
// identifiers on every entity, so no two users ever share ids and no
// serialization round-trip is involved in cloning.
type Template struct {
	Accounts     []AccountTemplate
	Transactions []TransactionTemplate
}

type AccountTemplate struct {
	Name     string
	Mask     string
	Type     string
	Subtype  string
	Currency string
	Balance  float64
}

// TransactionTemplate describes one seed transaction. Account indexes
// into Template.Accounts; DaysAgo anchors the posted date relative to
// instantiation time. Merchant is the raw form; normalization and
// classification run after instantiation.
type TransactionTemplate struct {
	Account     int
	DaysAgo     int
	Amount      float64
	Merchant    string
	Category    string
	Recurring   bool
	Description string
}

// Instantiate builds a fresh aggregate for one user. Transactions come
// out newest-first, matching the prepend ordering of imports.
func (t *Template) Instantiate(key, email string, newID func() string) *core.User {
	if newID == nil {
		newID = uuid.NewString
	}
	u := &core.User{
		ID:         newID(),
		Key:        key,
		Email:      email,
		Overrides:  make(map[string]string),
		AnomalyIDs: make(map[string]struct{}),
	}

	accountIDs := make([]string, len(t.Accounts))
	for i, a := range t.Accounts {
		id := newID()
		accountIDs[i] = id
		u.Accounts = append(u.Accounts, core.Account{
			ID:       id,
			Name:     a.Name,
			Mask:     a.Mask,
			Type:     a.Type,
			Subtype:  a.Subtype,
			Currency: a.Currency,
			Balance:  a.Balance,
		})
	}

	today := core.Today()
	for _, tt := range t.Transactions {
		u.Transactions = append(u.Transactions, &core.Transaction{
			ID:          newID(),
			AccountID:   accountIDs[tt.Account],
			Date:        today.AddDays(-tt.DaysAgo),
			Amount:      tt.Amount,
			Merchant:    tt.Merchant,
			Category:    tt.Category,
			Recurring:   tt.Recurring,
			Description: tt.Description,
		})
	}
	return u
}

// DemoTemplate is the canonical demo dataset every new registration is
// instantiated from: a checking account and a credit card, two months of
// activity with a few monthly-cadence charges.
func DemoTemplate() *Template {
	return &Template{
		Accounts: []AccountTemplate{
			{Name: "Everyday Checking", Mask: "4821", Type: "depository", Subtype: "checking", Currency: "USD", Balance: 5231.84},
			{Name: "Travel Rewards Card", Mask: "0930", Type: "credit", Subtype: "credit card", Currency: "USD", Balance: -742.19},
		},
		Transactions: []TransactionTemplate{
			{Account: 0, DaysAgo: 1, Amount: -6.40, Merchant: "STARBUCKS #1234", Category: "Food & Dining"},
			{Account: 0, DaysAgo: 2, Amount: -84.12, Merchant: "WHOLE FOODS MKT 10235", Category: "Groceries"},
			{Account: 1, DaysAgo: 3, Amount: -23.80, Merchant: "UBER *TRIP 93D2", Category: "Transportation"},
			{Account: 1, DaysAgo: 4, Amount: -54.30, Merchant: "AMZN Mktp US*2K1", Category: "Shopping"},
			{Account: 0, DaysAgo: 5, Amount: -15.99, Merchant: "NETFLIX.COM", Category: "Entertainment", Recurring: true},
			{Account: 0, DaysAgo: 6, Amount: -1500.00, Merchant: "POS RENT PAYMENT", Category: "Rent & Housing", Description: "monthly rent"},
			{Account: 0, DaysAgo: 8, Amount: 4200.00, Merchant: "ACME PAYROLL", Category: "Income", Description: "salary"},
			{Account: 0, DaysAgo: 10, Amount: -9.99, Merchant: "Spotify USA", Category: "Entertainment", Recurring: true},
			{Account: 1, DaysAgo: 12, Amount: -41.75, Merchant: "SHELL OIL 57442", Category: "Transportation"},
			{Account: 0, DaysAgo: 14, Amount: -120.43, Merchant: "CITY ELECTRIC UTILITY", Category: "Bills & Utilities"},
			{Account: 1, DaysAgo: 16, Amount: -23.15, Merchant: "CVS/PHARMACY #8123", Category: "Healthcare"},
			{Account: 1, DaysAgo: 19, Amount: -18.62, Merchant: "DOORDASH*TACO SPOT", Category: "Food & Dining"},
			{Account: 0, DaysAgo: 24, Amount: -35.00, Merchant: "ATM WITHDRAWAL REF 8810", Category: ""},
			{Account: 0, DaysAgo: 31, Amount: -76.98, Merchant: "WHOLE FOODS MKT 10235", Category: "Groceries"},
			{Account: 1, DaysAgo: 33, Amount: -19.40, Merchant: "UBER *TRIP A7F1", Category: "Transportation"},
			{Account: 0, DaysAgo: 35, Amount: -15.99, Merchant: "NETFLIX.COM", Category: "Entertainment", Recurring: true},
			{Account: 0, DaysAgo: 36, Amount: -1500.00, Merchant: "POS RENT PAYMENT", Category: "Rent & Housing", Description: "monthly rent"},
			{Account: 0, DaysAgo: 38, Amount: 4200.00, Merchant: "ACME PAYROLL", Category: "Income", Description: "salary"},
			{Account: 0, DaysAgo: 40, Amount: -9.99, Merchant: "Spotify USA", Category: "Entertainment", Recurring: true},
			{Account: 0, DaysAgo: 44, Amount: -118.27, Merchant: "CITY ELECTRIC UTILITY", Category: "Bills & Utilities"},
			{Account: 1, DaysAgo: 47, Amount: -62.09, Merchant: "AMZN Mktp US*9QX", Category: "Shopping"},
			{Account: 0, DaysAgo: 52, Amount: -7.10, Merchant: "STARBUCKS #1234", Category: "Food & Dining"},
			{Account: 0, DaysAgo: 65, Amount: -15.99, Merchant: "NETFLIX.COM", Category: "Entertainment", Recurring: true},
		},
	}
}
