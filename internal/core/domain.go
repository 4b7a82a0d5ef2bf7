package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AlertOverspend AlertKind = "overspend"
	AlertAnomaly   AlertKind = "anomaly"
)

type (
	AlertKind string

	Date struct {
		time.Time
	}

	// Account is a bank account owned by exactly one user. Accounts are
	// immutable once created; balances are not reconciled by this engine.
	Account struct {
		ID       string
		Name     string
		Mask     string
		Type     string
		Subtype  string
		Currency string
		Balance  float64
	}

	// Transaction is one posted bank transaction. Amount is signed:
	// negative for debits (spend), positive for credits (income).
	// Category always mirrors AICategory after classification runs.
	// RawCategory keeps the value the transaction carried before the
	// first classification and is never overwritten afterwards.
	Transaction struct {
		ID           string
		AccountID    string
		Date         Date
		Amount       float64
		Merchant     string
		Category     string
		RawCategory  string
		AICategory   string
		AIConfidence float64
		Recurring    bool
		Description  string
	}

	// BudgetRule caps monthly spend for one category. Category matching
	// is case-insensitive; one rule per category per user.
	BudgetRule struct {
		ID           string
		Category     string
		MonthlyLimit float64
	}

	Alert struct {
		ID      string
		Kind    AlertKind
		Message string
		FiredAt time.Time
		Read    bool
	}

	// User is the per-user aggregate the store owns. Transactions are
	// kept newest-first (imports prepend). Overrides maps lowercase
	// merchant names to a forced category. AnomalyIDs is rebuilt on
	// every alert recomputation.
	User struct {
		ID           string
		Key          string
		Email        string
		Accounts     []Account
		Transactions []*Transaction
		Alerts       []Alert
		Budgets      []BudgetRule
		Overrides    map[string]string
		AnomalyIDs   map[string]struct{}
	}

	// ImportRow is one already-shaped upload row. All fields are raw
	// strings; the store performs best-effort coercion. Amount wins over
	// Debit/Credit when present; Debit is negated, Credit kept positive.
	ImportRow struct {
		AccountID   string
		Date        string
		Posted      string
		Merchant    string
		Description string
		Amount      string
		Debit       string
		Credit      string
		Category    string
	}

	Forecast struct {
		Next30DaySpend float64
		Confidence     float64
		Methodology    string
	}
)

var ErrUserNotFound = errors.New("user not found")

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date at UTC midnight.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// dateLayouts are tried in order when coercing upload rows. Unparseable
// dates are a data-quality condition, never an error.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// ParseDate coerces a raw date string. ok is false when no layout
// matches; callers treat such transactions as undated.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return Date{}, false
}

// DaysBetween returns the absolute whole-day difference between two dates.
func DaysBetween(a, b Date) int {
	d := a.Sub(b.Time) / (24 * time.Hour)
	if d < 0 {
		d = -d
	}
	return int(d)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	t := d.AddDate(0, 0, n)
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// InRange reports whether d falls inside [from, to] inclusive. Zero
// bounds are open on that side; a zero d is never in range.
func (d Date) InRange(from, to Date) bool {
	if d.IsZero() {
		return false
	}
	if !from.IsZero() && d.Time.Before(from.Time) {
		return false
	}
	if !to.IsZero() && d.Time.After(to.Time) {
		return false
	}
	return true
}

// FirstAccountID returns the id of the user's first account, or "" when
// the user has none. Upload rows without an explicit account land here.
func (u *User) FirstAccountID() string {
	if len(u.Accounts) == 0 {
		return ""
	}
	return u.Accounts[0].ID
}

// Override returns the forced category for a lowercase merchant name.
func (u *User) Override(merchantLower string) (string, bool) {
	if u.Overrides == nil {
		return "", false
	}
	cat, ok := u.Overrides[merchantLower]
	return cat, ok
}
