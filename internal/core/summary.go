package core

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Period selects the summary window length: 7 days for week, 30 for month.
type Period string

// Days returns the window length in days, defaulting to a month.
func (p Period) Days() int {
	if p == PeriodWeek {
		return 7
	}
	return 30
}

// Valid reports whether p is a known period name.
func (p Period) Valid() bool {
	return p == PeriodWeek || p == PeriodMonth
}

// CategorySpend is debit spend aggregated under one category name.
type CategorySpend struct {
	Name  string
	Spend float64
}

// SpendSummary is a compact spend overview for an inclusive date window.
// Only debit transactions contribute to the totals.
type SpendSummary struct {
	TotalSpend float64
	Start      Date
	End        Date
	ByCategory []CategorySpend
}
