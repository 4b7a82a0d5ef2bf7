// Package store owns the per-user in-memory aggregates and orchestrates
// normalization, classification and alert recomputation on every
// mutation. State lives for the process lifetime; a restart clears it.
package store

import (
	"context"
	"math"
	"strings"
	"sync"

	"atlasledger/internal/cache"
	"atlasledger/internal/core"
	"atlasledger/internal/engine"
	"atlasledger/internal/log"

	"github.com/google/uuid"
)

// AlertPublisher forwards alert recomputation results to the event bus.
// A nil publisher disables forwarding; publish failures are logged and
// never fail the mutation.
type AlertPublisher interface {
	PublishAlertsRecomputed(ctx context.Context, userKey string, alerts []core.Alert) error
}

// Store is the process-wide keyed user store. Each user aggregate is an
// independent unit of mutation: all access goes through the store lock,
// so one aggregate's transaction list is never shared across concurrent
// writers.
type Store struct {
	mu    sync.RWMutex
	users map[string]*core.User

	// versions bumps on every mutation per user; summary cache keys
	// embed it so stale entries simply stop being addressed.
	versions map[string]uint64

	classifier *engine.Classifier
	recomputer *engine.Recomputer
	template   *Template

	summaries *cache.LRUCache[core.SpendSummary]
	publisher AlertPublisher
	logger    *log.Logger
	newID     func() string
}

// Options configures optional store collaborators.
type Options struct {
	Publisher    AlertPublisher
	SummaryCache *cache.LRUCache[core.SpendSummary]
	Logger       *log.Logger
}

// New creates a store around the default engine components and the demo
// seed template.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentStore)
	}
	return &Store{
		users:      make(map[string]*core.User),
		versions:   make(map[string]uint64),
		classifier: engine.NewClassifier(engine.NewWindowDetector()),
		recomputer: engine.NewRecomputer(),
		template:   DemoTemplate(),
		summaries:  opts.SummaryCache,
		publisher:  opts.Publisher,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// RegisterOrFetch returns the aggregate for the given identity key,
// instantiating it from the seed template on first sight. Idempotent.
func (s *Store) RegisterOrFetch(ctx context.Context, key, email string) *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[key]; ok {
		return copyUser(u)
	}

	u := s.template.Instantiate(key, email, s.newID)
	for _, tx := range u.Transactions {
		tx.Merchant = normalizedOrUnknown(tx.Merchant)
		s.classifier.Apply(u, tx)
	}
	s.recomputer.Recompute(u)
	s.users[key] = u
	s.versions[key]++

	s.logger.InfoContext(ctx, "User registered from seed template",
		log.FieldUserKey, key,
		log.FieldRowCount, len(u.Transactions),
		log.FieldAlertCount, len(u.Alerts),
		log.FieldOperation, log.OpRegister)
	s.publish(ctx, key, u.Alerts)
	return copyUser(u)
}

// ImportRows coerces and appends already-shaped upload rows, classifying
// each new transaction individually and recomputing alerts exactly once
// afterwards. Calling it for an unresolved user is a caller bug, so the
// user-not-found case fails loudly.
func (s *Store) ImportRows(ctx context.Context, key string, rows []core.ImportRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[key]
	if !ok {
		return 0, core.ErrUserNotFound
	}

	imported := 0
	for _, row := range rows {
		tx := s.rowToTransaction(u, row)
		u.Transactions = append([]*core.Transaction{tx}, u.Transactions...)
		s.classifier.Apply(u, tx)
		imported++
	}
	s.recomputer.Recompute(u)
	s.versions[key]++

	s.logger.InfoContext(ctx, "Rows imported",
		log.FieldUserKey, key,
		log.FieldRowCount, imported,
		log.FieldAlertCount, len(u.Alerts),
		log.FieldOperation, log.OpImport)
	s.publish(ctx, key, u.Alerts)
	return imported, nil
}

// rowToTransaction applies the row derivation rules: explicit account or
// the user's first; merchant from the merchant field, the description,
// or "Unknown"; amount from the amount field, else debit (negated) or
// credit, else zero; date from the date field, the posted fallback, or
// today. An explicit category survives as provenance.
func (s *Store) rowToTransaction(u *core.User, row core.ImportRow) *core.Transaction {
	accountID := strings.TrimSpace(row.AccountID)
	if accountID == "" {
		accountID = u.FirstAccountID()
	}

	merchant := strings.TrimSpace(row.Merchant)
	if merchant == "" {
		merchant = strings.TrimSpace(row.Description)
	}
	if merchant == "" {
		merchant = "Unknown"
	}

	var amount float64
	if v, ok := core.ParseAmount(row.Amount); ok {
		amount = v
	} else if v, ok := core.ParseAmount(row.Debit); ok {
		amount = -math.Abs(v)
	} else if v, ok := core.ParseAmount(row.Credit); ok {
		amount = math.Abs(v)
	}

	date, ok := core.ParseDate(row.Date)
	if !ok {
		if date, ok = core.ParseDate(row.Posted); !ok {
			date = core.Today()
		}
	}

	return &core.Transaction{
		ID:          s.newID(),
		AccountID:   accountID,
		Date:        date,
		Amount:      amount,
		Merchant:    normalizedOrUnknown(merchant),
		Category:    strings.TrimSpace(row.Category),
		Description: strings.TrimSpace(row.Description),
	}
}

// RebuildCategories reclassifies every transaction and recomputes alerts
// once. Returns how many categories actually changed; rebuilding an
// unknown user is a no-op.
func (s *Store) RebuildCategories(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[key]
	if !ok {
		return 0, nil
	}

	updated := 0
	for _, tx := range u.Transactions {
		if s.classifier.Apply(u, tx) {
			updated++
		}
	}
	s.recomputer.Recompute(u)
	s.versions[key]++

	s.logger.InfoContext(ctx, "Categories rebuilt",
		log.FieldUserKey, key,
		log.FieldUpdated, updated,
		log.FieldAlertCount, len(u.Alerts),
		log.FieldOperation, log.OpRebuild)
	s.publish(ctx, key, u.Alerts)
	return updated, nil
}

// UpsertBudget replaces the limit of the case-insensitively matching
// rule or appends a new one, then recomputes alerts.
func (s *Store) UpsertBudget(ctx context.Context, key, category string, monthlyLimit float64) (core.BudgetRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[key]
	if !ok {
		return core.BudgetRule{}, core.ErrUserNotFound
	}

	var rule core.BudgetRule
	found := false
	for i := range u.Budgets {
		if strings.EqualFold(u.Budgets[i].Category, category) {
			u.Budgets[i].MonthlyLimit = monthlyLimit
			rule = u.Budgets[i]
			found = true
			break
		}
	}
	if !found {
		rule = core.BudgetRule{ID: s.newID(), Category: category, MonthlyLimit: monthlyLimit}
		u.Budgets = append(u.Budgets, rule)
	}
	s.recomputer.Recompute(u)
	s.versions[key]++

	s.logger.InfoContext(ctx, "Budget upserted",
		log.FieldUserKey, key,
		log.FieldCategory, category,
		log.FieldBudgetLimit, monthlyLimit,
		log.FieldOperation, log.OpUpsert)
	s.publish(ctx, key, u.Alerts)
	return rule, nil
}

// SetOverride forces a category for a merchant name. The override is
// consulted by the rule engine at the highest precedence; callers
// typically follow up with RebuildCategories.
func (s *Store) SetOverride(ctx context.Context, key, merchant, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[key]
	if !ok {
		return core.ErrUserNotFound
	}
	if u.Overrides == nil {
		u.Overrides = make(map[string]string)
	}
	u.Overrides[strings.ToLower(strings.TrimSpace(merchant))] = category
	s.versions[key]++

	s.logger.InfoContext(ctx, "Merchant override set",
		log.FieldUserKey, key,
		log.FieldMerchant, merchant,
		log.FieldCategory, category,
		log.FieldOperation, log.OpUpsert)
	return nil
}

func (s *Store) publish(ctx context.Context, key string, alerts []core.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlertsRecomputed(ctx, key, alerts); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish alert event",
			log.FieldUserKey, key,
			log.FieldError, err,
			log.FieldOperation, log.OpPublish)
	}
}

func normalizedOrUnknown(raw string) string {
	if n := engine.NormalizeMerchant(raw); n != "" {
		return n
	}
	return "Unknown"
}

func copyUser(u *core.User) *core.User {
	cp := *u
	cp.Accounts = append([]core.Account(nil), u.Accounts...)
	cp.Alerts = append([]core.Alert(nil), u.Alerts...)
	cp.Budgets = append([]core.BudgetRule(nil), u.Budgets...)
	cp.Transactions = make([]*core.Transaction, len(u.Transactions))
	for i, tx := range u.Transactions {
		t := *tx
		cp.Transactions[i] = &t
	}
	cp.Overrides = make(map[string]string, len(u.Overrides))
	for k, v := range u.Overrides {
		cp.Overrides[k] = v
	}
	cp.AnomalyIDs = make(map[string]struct{}, len(u.AnomalyIDs))
	for id := range u.AnomalyIDs {
		cp.AnomalyIDs[id] = struct{}{}
	}
	return &cp
}
