package http

import (
	"net/http"

	"carteira/internal/core"
)

type importRequest struct {
	Format            string `json:"format"`
	Content           string `json:"content"`
	WalletID          string `json:"wallet_id"`
	DefaultCategoryID string `json:"default_category_id"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, r, core.ValidationError{Field: "content", Reason: "cannot be empty"})
		return
	}
	candidates, err := s.importer.Parse(req.Format, []byte(req.Content))
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.importer.ReconcileAndImport(r.Context(), owner, candidates, req.WalletID, req.DefaultCategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
