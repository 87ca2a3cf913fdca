package http

import (
	"net/http"
	"time"

	"carteira/internal/analytics"
	"carteira/internal/core"
)

// refDate resolves the optional ref query parameter, defaulting to today.
// Analytics are pure over the transaction history, so the reference date
// fully determines the result.
func refDate(r *http.Request) (core.Date, error) {
	if v := r.URL.Query().Get("ref"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.ValidationError{Field: "ref", Reason: "must be YYYY-MM-DD"}
		}
		return d, nil
	}
	return core.DateOf(time.Now().UTC()), nil
}

func (s *Server) loadHistory(w http.ResponseWriter, r *http.Request) (string, core.Date, []core.Transaction, bool) {
	owner, ok := ownerID(w, r)
	if !ok {
		return "", core.Date{}, nil, false
	}
	ref, err := refDate(r)
	if err != nil {
		writeError(w, r, err)
		return "", core.Date{}, nil, false
	}
	txs, err := s.ledger.List(r.Context(), core.TransactionFilter{OwnerID: owner})
	if err != nil {
		writeError(w, r, err)
		return "", core.Date{}, nil, false
	}
	return owner, ref, txs, true
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	_, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.CashFlow(txs, ref))
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	_, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.TopExpenses(txs, ref, s.policy.TopExpensesLimit))
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	_, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Anomalies(txs, ref, s.policy))
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	owner, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	wallets, err := s.wallets.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.HealthScore(wallets, txs, ref, s.policy))
}

type projectionResponse struct {
	analytics.ProjectionResult
	Goals []analytics.GoalOutlook `json:"goals,omitempty"`
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	owner, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	projection := analytics.Projection(txs, ref, s.policy.ProjectionWindow)
	goals, err := s.catalog.ListGoals(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{
		ProjectionResult: projection,
		Goals:            analytics.GoalOutlooks(goals, projection.ProjectedBalance),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	owner, ref, txs, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	wallets, err := s.wallets.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Report(wallets, txs, ref, s.policy))
}
