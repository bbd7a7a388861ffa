package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gamerlog/auth"
	"gamerlog/domain"
	"gamerlog/errs"
)

// registerMessageRoutes is a helper for registering all messaging routes.
func (s *Server) registerMessageRoutes(r *mux.Router) {
	// Everyone the caller can message, annotated with unread counts.
	r.HandleFunc("/users", s.requireAuth(s.handleGetCounterparts)).Methods("GET")

	// Total unread across all senders. Registered before the
	// conversation route so "unread" is never taken for a user id.
	r.HandleFunc("/messages/unread", s.requireAuth(s.handleGetTotalUnread)).Methods("GET")

	// A single conversation. Fetching it marks the incoming side read.
	r.HandleFunc("/messages/{targetUserId:[0-9]+}", s.requireAuth(s.handleGetConversation)).Methods("GET")

	// Send a message.
	r.HandleFunc("/messages", s.requireAuth(s.handleSendMessage)).Methods("POST")

	// Purge a conversation, both directions at once.
	r.HandleFunc("/messages/{targetUserId:[0-9]+}", s.requireAuth(s.handlePurgeConversation)).Methods("DELETE")
}

// handleGetCounterparts handles the route "GET /users".
// It returns every other user together with the number of unread messages
// they have sent to the caller.
func (s *Server) handleGetCounterparts(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	counterparts, err := s.ms.Counterparts(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(counterparts); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetTotalUnread handles the route "GET /messages/unread".
func (s *Server) handleGetTotalUnread(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	total, err := s.ms.TotalUnread(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]int{"totalUnread": total}); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetConversation handles the route "GET /messages/{targetUserId}".
// It returns the full history with the target user, oldest first, and marks
// every unread message from them as read.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseID(r, "targetUserId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	msgs, err := s.ms.Conversation(r.Context(), user.ID, targetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	if err := json.NewEncoder(w).Encode(msgs); err != nil {
		errs.LogError(r, err)
	}
}

// handleSendMessage handles the route "POST /messages".
// It stores a new unread message from the caller to the submitted receiver.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	msg.ID = 0
	msg.SenderID = auth.GetUser(r.Context()).ID

	if err := s.ms.Send(r.Context(), &msg); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&msg); err != nil {
		errs.LogError(r, err)
	}
}

// handlePurgeConversation handles the route "DELETE /messages/{targetUserId}".
// It removes the whole conversation with the target user, in both directions.
func (s *Server) handlePurgeConversation(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseID(r, "targetUserId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	if err := s.ms.Purge(r.Context(), user.ID, targetID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Chat deleted successfully"}); err != nil {
		errs.LogError(r, err)
	}
}
