package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"atlasledger/internal/core"
	"atlasledger/internal/store"
)

const maxImportBodyBytes = 4 << 20

type transactionPayload struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"account_id"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Merchant     string  `json:"merchant"`
	Category     string  `json:"category"`
	RawCategory  string  `json:"raw_category,omitempty"`
	AICategory   string  `json:"ai_category"`
	AIConfidence float64 `json:"ai_confidence"`
	Recurring    bool    `json:"recurring"`
	Description  string  `json:"description,omitempty"`
}

func toTransactionPayload(tx core.Transaction) transactionPayload {
	return transactionPayload{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		Date:         tx.Date.Format("2006-01-02"),
		Amount:       tx.Amount,
		Merchant:     tx.Merchant,
		Category:     tx.Category,
		RawCategory:  tx.RawCategory,
		AICategory:   tx.AICategory,
		AIConfidence: tx.AIConfidence,
		Recurring:    tx.Recurring,
		Description:  tx.Description,
	}
}

type accountPayload struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Mask    string  `json:"mask"`
	Type    string  `json:"type"`
	Subtype string  `json:"subtype"`
	Balance float64 `json:"balance"`
}

// handleRegister provisions the demo dataset for a new key, or returns
// the existing user unchanged. Safe to retry.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	user := s.ledger.RegisterOrFetch(r.Context(), key, sanitizeInput(req.Email))

	accounts := make([]accountPayload, 0, len(user.Accounts))
	for _, a := range user.Accounts {
		accounts = append(accounts, accountPayload{
			ID:      a.ID,
			Name:    a.Name,
			Mask:    a.Mask,
			Type:    a.Type,
			Subtype: a.Subtype,
			Balance: a.Balance,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":                user.ID,
		"email":             user.Email,
		"accounts":          accounts,
		"transaction_count": len(user.Transactions),
		"alert_count":       len(user.Alerts),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	filter := store.TransactionFilter{
		Category: sanitizeInput(r.URL.Query().Get("category")),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		d, ok := core.ParseDate(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, ok := core.ParseDate(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		filter.To = d
	}

	txs := s.ledger.ListTransactions(key, filter)
	payload := make([]transactionPayload, 0, len(txs))
	for _, tx := range txs {
		payload = append(payload, toTransactionPayload(tx))
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": payload})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	var req struct {
		Rows []struct {
			AccountID   string `json:"account_id"`
			Date        string `json:"date"`
			Posted      string `json:"posted"`
			Merchant    string `json:"merchant"`
			Description string `json:"description"`
			Amount      string `json:"amount"`
			Debit       string `json:"debit"`
			Credit      string `json:"credit"`
			Category    string `json:"category"`
		} `json:"rows"`
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rows := make([]core.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, core.ImportRow{
			AccountID:   sanitizeInput(row.AccountID),
			Date:        sanitizeInput(row.Date),
			Posted:      sanitizeInput(row.Posted),
			Merchant:    sanitizeInput(row.Merchant),
			Description: sanitizeInput(row.Description),
			Amount:      sanitizeInput(row.Amount),
			Debit:       sanitizeInput(row.Debit),
			Credit:      sanitizeInput(row.Credit),
			Category:    sanitizeInput(row.Category),
		})
	}

	imported, err := s.ledger.ImportRows(r.Context(), key, rows)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "Import failed", "error", err, "row_count", len(rows))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	updated, err := s.ledger.RebuildCategories(r.Context(), key)
	if err != nil {
		slog.ErrorContext(r.Context(), "Rebuild failed", "error", err)
		writeError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleSimilarMerchants(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	merchant := sanitizeInput(r.URL.Query().Get("merchant"))
	if merchant == "" {
		writeError(w, http.StatusBadRequest, "missing merchant parameter")
		return
	}

	matches := s.ledger.SimilarMerchants(key, merchant)
	if matches == nil {
		matches = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"merchants": matches})
}
