package http

import (
	"net/http"
	"time"

	"carteira/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.toInput(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionView(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	f, err := filterFromQuery(owner, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.ledger.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionViews(txs))
}

func filterFromQuery(ownerID string, r *http.Request) (core.TransactionFilter, error) {
	q := r.URL.Query()
	f := core.TransactionFilter{
		OwnerID:       ownerID,
		WalletID:      q.Get("wallet_id"),
		Status:        core.TransactionStatus(q.Get("status")),
		RecurringOnly: q.Get("recurring") == "true",
		RecurrenceOf:  q.Get("recurrence_of"),
		SortDesc:      q.Get("sort") == "desc",
	}
	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, core.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
		}
		f.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, core.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
		}
		f.To = d
	}
	for _, t := range q["type"] {
		f.Types = append(f.Types, core.TransactionType(t))
	}
	return f, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	tx, err := s.ledger.GetByID(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req transactionPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Update(r.Context(), owner, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSettleTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	tx, err := s.ledger.Settle(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(tx))
}

func (s *Server) handleRunRecurrences(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	count, err := s.scheduler.MaterializeDue(r.Context(), owner, core.DateOf(time.Now().UTC()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"generated": count})
}

func (s *Server) handleVerifyConsistency(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	mismatches, err := s.ledger.VerifyConsistency(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	type mismatchView struct {
		WalletID string `json:"wallet_id"`
		Stored   int64  `json:"stored_cents"`
		Computed int64  `json:"computed_cents"`
	}
	views := make([]mismatchView, 0, len(mismatches))
	for _, m := range mismatches {
		views = append(views, mismatchView{
			WalletID: m.WalletID,
			Stored:   m.Stored.Cents,
			Computed: m.Computed.Cents,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consistent": len(views) == 0,
		"mismatches": views,
	})
}
