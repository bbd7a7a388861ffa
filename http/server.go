package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"gamerlog/auth"
	"gamerlog/crud"
	"gamerlog/domain"
	"gamerlog/errs"
)

// ResetCodeMailer delivers password-reset codes to users.
type ResetCodeMailer interface {
	SendResetCode(to, code string) error
}

// Server provides the http functionality of the app: routing, request
// handling, and middleware. It authenticates the caller from the bearer token
// before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	us     domain.UserService
	bs     domain.BlogService
	ls     domain.LikeService
	ms     domain.MessageService
	ds     domain.DashboardService
	mailer ResetCodeMailer

	jwtSecret    string
	maxBodyBytes int64
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, mailer ResetCodeMailer, jwtSecret string, maxBodyBytes int64) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		us:           services.User,
		bs:           services.Blog,
		ls:           services.Like,
		ms:           services.Message,
		ds:           services.Dashboard,
		mailer:       mailer,
		jwtSecret:    jwtSecret,
		maxBodyBytes: maxBodyBytes,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the app.
	s.registerUserRoutes(s.router)
	s.registerBlogRoutes(s.router)
	s.registerMessageRoutes(s.router)
	s.registerDashboardRoutes(s.router)

	// A tiny health route so deploy targets can probe the api.
	s.router.HandleFunc("/", s.handleHealth).Methods("GET")

	// Set up middleware that needs to run on every request.
	s.router.Use(s.limitBody, setContentTypeJSON, s.authUser)
	return s
}

// Router exposes the underlying handler, mainly so tests can drive the server
// through httptest without opening a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleHealth handles the route "GET /".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"message": "API is running..."})
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The limitBody middleware caps inbound request bodies. The deploy target
// rejects large payloads anyway, capping here keeps oversized uploads from
// ever reaching a handler.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// The authUser middleware identifies the caller from the Authorization header
// and puts the matching user into the request context. Requests without a
// usable token pass through anonymously, requireAuth sorts them out later.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), s.jwtSecret)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth wraps a handler and rejects requests that carry no
// authenticated identity.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Missing or invalid Authorization header"))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Printf("listening on :%d", port)
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}
