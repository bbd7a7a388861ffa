package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gamerlog/auth"
	"gamerlog/domain"
	"gamerlog/errs"
)

// registerBlogRoutes is a helper for registering all Blog routes, including
// the endorsement toggle.
func (s *Server) registerBlogRoutes(r *mux.Router) {
	// Reading posts is open to everyone.
	r.HandleFunc("/blogs", s.handleGetBlogs).Methods("GET")
	r.HandleFunc("/blog/{id:[0-9]+}", s.handleGetBlog).Methods("GET")

	// Writing requires an authenticated identity. Update and delete are
	// additionally restricted to the author.
	r.HandleFunc("/blog", s.requireAuth(s.handleCreateBlog)).Methods("POST")
	r.HandleFunc("/blog/{id:[0-9]+}", s.requireAuth(s.handleUpdateBlog)).Methods("PUT")
	r.HandleFunc("/blog/{id:[0-9]+}", s.requireAuth(s.handleDeleteBlog)).Methods("DELETE")

	// Toggle the caller's endorsement of a post. Any authenticated user
	// may like any post, their own included.
	r.HandleFunc("/blog/{id:[0-9]+}/like", s.requireAuth(s.handleToggleLike)).Methods("POST")
}

// handleGetBlogs handles the route "GET /blogs".
// It returns all blogs, newest first.
func (s *Server) handleGetBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.bs.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(blogs); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetBlog handles the route "GET /blog/{id}".
func (s *Server) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	blog, err := s.bs.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(blog); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateBlog handles the route "POST /blog".
// It creates a new post owned by the authenticated user.
func (s *Server) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	var blog domain.Blog
	if err := json.NewDecoder(r.Body).Decode(&blog); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	blog.ID = 0
	blog.AuthorID = auth.GetUser(r.Context()).ID

	if err := s.bs.Create(r.Context(), &blog); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	response := struct {
		Message string       `json:"message"`
		Blog    *domain.Blog `json:"blog"`
	}{
		Message: "SYSTEM: LOG TRANSMISSION SUCCESSFUL.",
		Blog:    &blog,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleUpdateBlog handles the route "PUT /blog/{id}".
// Only the author may update a post, and only the provided fields change.
// The author reference itself is immutable.
func (s *Server) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	var upd struct {
		Title        *string  `json:"title"`
		Description  *string  `json:"description"`
		GameImage    *string  `json:"gameImage"`
		GameCategory *string  `json:"gameCategory"`
		GameLink     *string  `json:"gameLink"`
		Rating       *float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid update data."))
		return
	}

	blog, err := s.bs.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if blog.AuthorID != auth.GetUser(r.Context()).ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EFORBIDDEN, "UNAUTHORIZED: ACCESS DENIED TO ENCRYPTED LOG."))
		return
	}

	if upd.Title != nil {
		blog.Title = *upd.Title
	}
	if upd.Description != nil {
		blog.Description = *upd.Description
	}
	if upd.GameImage != nil {
		blog.GameImage = *upd.GameImage
	}
	if upd.GameCategory != nil {
		blog.GameCategory = *upd.GameCategory
	}
	if upd.GameLink != nil {
		blog.GameLink = *upd.GameLink
	}
	if upd.Rating != nil {
		blog.Rating = *upd.Rating
	}

	if err := s.bs.Update(r.Context(), blog); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Message string       `json:"message"`
		Blog    *domain.Blog `json:"blog"`
	}{
		Message: "SYSTEM: LOG UPDATED SUCCESSFULLY.",
		Blog:    blog,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteBlog handles the route "DELETE /blog/{id}".
// Only the author may delete a post.
func (s *Server) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	blog, err := s.bs.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if blog.AuthorID != auth.GetUser(r.Context()).ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EFORBIDDEN, "UNAUTHORIZED: CANNOT DELETE FOREIGN ARCHIVE."))
		return
	}

	if err := s.bs.Delete(r.Context(), blog); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"message": "SYSTEM: LOG REMOVED FROM DATABASE."}); err != nil {
		errs.LogError(r, err)
	}
}

// handleToggleLike handles the route "POST /blog/{id}/like".
// The same call likes and unlikes: it flips the caller's endorsement of the
// post and reports the new like count.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	status, err := s.ls.Toggle(r.Context(), id, auth.GetUser(r.Context()).ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	message := "SYSTEM: ENDORSEMENT WITHDRAWN."
	if status.IsLiked {
		message = "SYSTEM: ENDORSEMENT RECORDED."
	}
	response := struct {
		Message string `json:"message"`
		Likes   int    `json:"likes"`
		IsLiked bool   `json:"isLiked"`
	}{
		Message: message,
		Likes:   status.Likes,
		IsLiked: status.IsLiked,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// parseID is a helper for reading a numeric path variable.
func parseID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "Invalid Id format.")
	}
	return id, nil
}
