package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"atlasledger/internal/core"

	"github.com/google/uuid"
)

// anomalyZThreshold is the z-score above which a group's latest debit
// counts as a spending anomaly.
const anomalyZThreshold = 3.0

// minAnomalyGroupSize is the smallest (merchant, category) debit group
// worth analyzing statistically.
const minAnomalyGroupSize = 5

// Recomputer regenerates a user's alert list and anomaly-transaction
// index from the full transaction and budget set. Every pass discards
// the previous alerts entirely; nothing is merged or deduplicated
// against history.
type Recomputer struct {
	Now   func() time.Time
	NewID func() string
}

// NewRecomputer returns a recomputer with wall-clock time and uuid ids.
func NewRecomputer() *Recomputer {
	return &Recomputer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Recompute replaces u.Alerts and u.AnomalyIDs: budget overspend alerts
// first, in budget-rule order, then anomaly alerts in group-encounter
// order. Alerts are born unread; this engine has no read-state path.
func (r *Recomputer) Recompute(u *core.User) {
	alerts := r.budgetAlerts(u)
	anomalyAlerts, anomalyIDs := r.anomalyAlerts(u)
	alerts = append(alerts, anomalyAlerts...)

	u.Alerts = alerts
	u.AnomalyIDs = anomalyIDs
}

func (r *Recomputer) budgetAlerts(u *core.User) []core.Alert {
	alerts := []core.Alert{}
	for _, rule := range u.Budgets {
		if rule.MonthlyLimit <= 0 {
			continue
		}
		var spend float64
		for _, tx := range u.Transactions {
			if tx.Amount >= 0 {
				continue
			}
			if strings.EqualFold(tx.Category, rule.Category) {
				spend += math.Abs(tx.Amount)
			}
		}
		if spend <= rule.MonthlyLimit {
			continue
		}
		pct := int(math.Round((spend - rule.MonthlyLimit) / rule.MonthlyLimit * 100))
		alerts = append(alerts, core.Alert{
			ID:   r.NewID(),
			Kind: core.AlertOverspend,
			Message: fmt.Sprintf("You have spent %.2f on %s, %d%% over your %.2f monthly budget",
				spend, rule.Category, pct, rule.MonthlyLimit),
			FiredAt: r.Now(),
		})
	}
	return alerts
}

// anomalyGroup collects the debit transactions of one (merchant,
// category) pair in the order they appear in the user's transaction
// list. Since imports prepend, the first element is the most recent.
type anomalyGroup struct {
	merchant string
	category string
	txs      []*core.Transaction
}

func (r *Recomputer) anomalyAlerts(u *core.User) ([]core.Alert, map[string]struct{}) {
	index := map[string]int{}
	groups := []*anomalyGroup{}
	for _, tx := range u.Transactions {
		if tx.Amount >= 0 {
			continue
		}
		key := strings.ToLower(tx.Merchant) + "\x00" + strings.ToLower(tx.Category)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &anomalyGroup{merchant: tx.Merchant, category: tx.Category})
		}
		groups[i].txs = append(groups[i].txs, tx)
	}

	alerts := []core.Alert{}
	ids := map[string]struct{}{}
	for _, g := range groups {
		if len(g.txs) < minAnomalyGroupSize {
			continue
		}
		mean, stddev := amountStats(g.txs)
		if stddev <= 0 {
			continue
		}
		latest := math.Abs(g.txs[0].Amount)
		if (latest-mean)/stddev <= anomalyZThreshold {
			continue
		}
		alerts = append(alerts, core.Alert{
			ID:   r.NewID(),
			Kind: core.AlertAnomaly,
			Message: fmt.Sprintf("Unusual spend of %.2f at %s (%s): typical is %.2f",
				latest, g.merchant, g.category, mean),
			FiredAt: r.Now(),
		})
		ids[g.txs[0].ID] = struct{}{}
	}
	return alerts, ids
}

// amountStats returns the mean and population standard deviation of the
// absolute amounts.
func amountStats(txs []*core.Transaction) (mean, stddev float64) {
	n := float64(len(txs))
	for _, tx := range txs {
		mean += math.Abs(tx.Amount)
	}
	mean /= n

	var variance float64
	for _, tx := range txs {
		d := math.Abs(tx.Amount) - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}
