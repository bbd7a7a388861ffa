package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gamerlog/domain"
	"gamerlog/errs"
)

// registerDashboardRoutes is a helper for registering the dashboard route.
func (s *Server) registerDashboardRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard/stats", s.requireAuth(s.handleDashboardStats)).Methods("GET")
}

// handleDashboardStats handles the route "GET /dashboard/stats".
// Every number in the response is aggregated from the store at request time.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ds.Stats(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Success bool                   `json:"success"`
		Data    *domain.DashboardStats `json:"data"`
	}{
		Success: true,
		Data:    stats,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}
