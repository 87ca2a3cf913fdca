package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"carteira/internal/analytics"
	"carteira/internal/services"
)

// Server is the JSON API over the ledger, scheduler, importer, and the
// analytics functions.
type Server struct {
	http.Server

	ledger    *services.Ledger
	wallets   *services.Wallets
	catalog   *services.Catalog
	scheduler *services.Scheduler
	importer  *services.Importer
	policy    analytics.Policy
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger, wallets *services.Wallets, catalog *services.Catalog, scheduler *services.Scheduler, importer *services.Importer, policy analytics.Policy) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger:    ledger,
		wallets:   wallets,
		catalog:   catalog,
		scheduler: scheduler,
		importer:  importer,
		policy:    policy,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.withRequestLog(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.withRequestLog(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.withRequestLog(s.handleGetTransaction))
	mux.HandleFunc("PATCH /transactions/{id}", s.withRequestLog(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withRequestLog(s.handleDeleteTransaction))
	mux.HandleFunc("POST /transactions/{id}/settle", s.withRequestLog(s.handleSettleTransaction))

	mux.HandleFunc("POST /wallets", s.withRequestLog(s.handleCreateWallet))
	mux.HandleFunc("GET /wallets", s.withRequestLog(s.handleListWallets))
	mux.HandleFunc("GET /wallets/{id}", s.withRequestLog(s.handleGetWallet))
	mux.HandleFunc("PATCH /wallets/{id}", s.withRequestLog(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /wallets/{id}", s.withRequestLog(s.handleDeleteWallet))
	mux.HandleFunc("GET /wallets/{id}/yield", s.withRequestLog(s.handleWalletYield))

	mux.HandleFunc("POST /categories", s.withRequestLog(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.withRequestLog(s.handleListCategories))
	mux.HandleFunc("DELETE /categories/{id}", s.withRequestLog(s.handleDeleteCategory))

	mux.HandleFunc("POST /goals", s.withRequestLog(s.handleCreateGoal))
	mux.HandleFunc("GET /goals", s.withRequestLog(s.handleListGoals))
	mux.HandleFunc("PUT /goals/{id}", s.withRequestLog(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withRequestLog(s.handleDeleteGoal))

	mux.HandleFunc("POST /recurrences/run", s.withRequestLog(s.handleRunRecurrences))
	mux.HandleFunc("POST /imports", s.withRequestLog(s.handleImport))
	mux.HandleFunc("POST /consistency/verify", s.withRequestLog(s.handleVerifyConsistency))

	mux.HandleFunc("GET /analytics/cashflow", s.withRequestLog(s.handleCashFlow))
	mux.HandleFunc("GET /analytics/top-expenses", s.withRequestLog(s.handleTopExpenses))
	mux.HandleFunc("GET /analytics/anomalies", s.withRequestLog(s.handleAnomalies))
	mux.HandleFunc("GET /analytics/health", s.withRequestLog(s.handleHealthScore))
	mux.HandleFunc("GET /analytics/projection", s.withRequestLog(s.handleProjection))
	mux.HandleFunc("GET /analytics/report", s.withRequestLog(s.handleReport))

	return s
}

// withRequestLog tags each request with an id and logs start and
// completion with the resulting status.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		ctx := r.Context()
		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
