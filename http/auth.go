package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gamerlog/auth"
	"gamerlog/domain"
	"gamerlog/errs"
)

// registerAuthRoutes is a helper for registering all routes of the auth
// system: registration, login and the password-reset flow.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/forgot-password", s.handleForgotPassword).Methods("POST")
	r.HandleFunc("/verify-otp", s.handleVerifyOTP).Methods("POST")
	r.HandleFunc("/reset-password", s.handleResetPassword).Methods("POST")
}

// handleRegister handles the route "POST /register".
// It creates a new user account from the submitted profile data.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	user.ID = 0

	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"}); err != nil {
		errs.LogError(r, err)
	}
}

// handleLogin handles the route "POST /login".
// It verifies the credentials and returns a signed identity token together
// with the user's profile.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user, err := s.us.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := auth.MakeToken(user.ID, s.jwtSecret)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}{
		Token: token,
		User:  user,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleForgotPassword handles the route "POST /forgot-password".
// It issues a reset code for the account and mails it out.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	code, err := s.us.IssueResetCode(r.Context(), body.Email)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.mailer.SendResetCode(body.Email, code); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Reset code sent to your email"}); err != nil {
		errs.LogError(r, err)
	}
}

// handleVerifyOTP handles the route "POST /verify-otp".
// It checks a submitted reset code without consuming it, so the client can
// gate the new-password form.
func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	if err := s.us.VerifyResetCode(r.Context(), body.Email, body.OTP); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Code verified"}); err != nil {
		errs.LogError(r, err)
	}
}

// handleResetPassword handles the route "POST /reset-password".
// It trades a valid reset code for a new password.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	if err := s.us.ResetPassword(r.Context(), body.Email, body.OTP, body.NewPassword); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Password reset successful"}); err != nil {
		errs.LogError(r, err)
	}
}
