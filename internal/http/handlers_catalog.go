package http

import (
	"net/http"

	"carteira/internal/core"
	"carteira/internal/services"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := s.catalog.CreateCategory(r.Context(), services.CategoryInput{
		OwnerID: owner,
		Name:    req.Name,
		Flow:    core.TransactionType(req.Flow),
		Color:   req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryView(cat))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	cats, err := s.catalog.ListCategories(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, toCategoryView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteCategory(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := services.GoalInput{
		OwnerID: owner,
		Name:    req.Name,
		Target:  core.Money{Cents: req.Target},
		Current: core.Money{Cents: req.Current},
	}
	if req.Deadline != "" {
		d, err := core.ParseDate(req.Deadline)
		if err != nil {
			writeError(w, r, core.ValidationError{Field: "deadline", Reason: "must be YYYY-MM-DD"})
			return
		}
		in.Deadline = d
	}
	goal, err := s.catalog.CreateGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalView(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	goals, err := s.catalog.ListGoals(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal := core.Goal{
		ID:      r.PathValue("id"),
		OwnerID: owner,
		Name:    req.Name,
		Target:  core.Money{Cents: req.Target},
		Current: core.Money{Cents: req.Current},
	}
	if req.Deadline != "" {
		d, err := core.ParseDate(req.Deadline)
		if err != nil {
			writeError(w, r, core.ValidationError{Field: "deadline", Reason: "must be YYYY-MM-DD"})
			return
		}
		goal.Deadline = d
	}
	updated, err := s.catalog.UpdateGoal(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteGoal(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
