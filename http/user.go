package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gamerlog/auth"
	"gamerlog/errs"
)

// registerUserRoutes is a helper for registering all profile routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/profile", s.requireAuth(s.handleGetProfile)).Methods("GET")
	r.HandleFunc("/profile", s.requireAuth(s.handleUpdateProfile)).Methods("PUT")
}

// handleGetProfile handles the route "GET /profile".
// It returns the authenticated user's own profile, fetched fresh so a stale
// token payload never shadows a profile update.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	authed := auth.GetUser(r.Context())
	user, err := s.us.ByID(r.Context(), authed.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(user); err != nil {
		errs.LogError(r, err)
	}
}

// handleUpdateProfile handles the route "PUT /profile".
// It applies the submitted fields to the authenticated user's own record.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd struct {
		Name       *string `json:"name"`
		Phone      *string `json:"phone"`
		Category   *string `json:"category"`
		ProfilePic *string `json:"profilePic"`
		Password   *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid update data."))
		return
	}

	authed := auth.GetUser(r.Context())
	user, err := s.us.ByID(r.Context(), authed.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.Category != nil {
		user.Category = *upd.Category
	}
	if upd.ProfilePic != nil {
		user.ProfilePic = *upd.ProfilePic
	}
	if upd.Password != nil {
		user.Password = *upd.Password
	}

	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(user); err != nil {
		errs.LogError(r, err)
	}
}
