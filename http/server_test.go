package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamerlog/crud"
	"gamerlog/domain"
)

// fakeMailer captures reset codes instead of talking to an SMTP relay.
type fakeMailer struct {
	to   string
	code string
}

func (f *fakeMailer) SendResetCode(to, code string) error {
	f.to = to
	f.code = code
	return nil
}

// newTestServer wires a full server against a throwaway sqlite database.
func newTestServer(t *testing.T) (*Server, *fakeMailer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Blog{},
		&domain.Like{},
		&domain.Message{},
	))

	services, err := crud.NewServices(
		db,
		crud.WithUser("test-pepper"),
		crud.WithBlog(),
		crud.WithLike(),
		crud.WithMessage(),
		crud.WithDashboard(),
	)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	return NewServer(services, mailer, "test-jwt-secret", 1<<20), mailer
}

// do fires a json request at the server and returns the recorder.
func do(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorder body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerAndLogin creates an account and returns its token and user payload.
func registerAndLogin(t *testing.T, s *Server, name string) (string, domain.User) {
	t.Helper()
	w := do(t, s, "POST", "/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"phone":    "555-" + name,
		"category": "RPG",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, s, "POST", "/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newTestServer(t)
	registerAndLogin(t, s, "alice")

	w := do(t, s, "POST", "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestRequireAuth(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, "GET", "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, "GET", "/messages/unread", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLikeToggleEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	token, _ := registerAndLogin(t, s, "alice")

	w := do(t, s, "POST", "/blog", token, map[string]interface{}{
		"title":        "Boss guide",
		"description":  "How to beat the final boss.",
		"gameImage":    "boss.png",
		"gameCategory": "Action",
		"rating":       4.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Blog domain.Blog `json:"blog"`
	}
	decode(t, w, &created)

	var toggle struct {
		Likes   int    `json:"likes"`
		IsLiked bool   `json:"isLiked"`
		Message string `json:"message"`
	}

	w = do(t, s, "POST", "/blog/1/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &toggle)
	assert.True(t, toggle.IsLiked)
	assert.Equal(t, 1, toggle.Likes)

	// The same call flips the state back.
	w = do(t, s, "POST", "/blog/1/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &toggle)
	assert.False(t, toggle.IsLiked)
	assert.Equal(t, 0, toggle.Likes)

	// Unknown blog is a 404.
	w = do(t, s, "POST", "/blog/999/like", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlogOwnership(t *testing.T) {
	s, _ := newTestServer(t)
	authorToken, _ := registerAndLogin(t, s, "author")
	strangerToken, _ := registerAndLogin(t, s, "stranger")

	w := do(t, s, "POST", "/blog", authorToken, map[string]interface{}{
		"title":        "Mine",
		"description":  "My post.",
		"gameImage":    "img.png",
		"gameCategory": "RPG",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, "PUT", "/blog/1", strangerToken, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, s, "DELETE", "/blog/1", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, s, "PUT", "/blog/1", authorToken, map[string]string{"title": "Still mine"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, "DELETE", "/blog/1", authorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMessagingEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	aliceToken, alice := registerAndLogin(t, s, "alice")
	bobToken, bob := registerAndLogin(t, s, "bob")

	// Alice writes to bob.
	w := do(t, s, "POST", "/messages", aliceToken, map[string]interface{}{
		"receiverId": bob.ID,
		"content":    "hello",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sent domain.Message
	decode(t, w, &sent)
	assert.Equal(t, alice.ID, sent.SenderID)
	assert.False(t, sent.IsRead)

	// Bob sees one unread, attributed to alice in the counterpart list.
	w = do(t, s, "GET", "/messages/unread", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unread struct {
		TotalUnread int `json:"totalUnread"`
	}
	decode(t, w, &unread)
	assert.Equal(t, 1, unread.TotalUnread)

	w = do(t, s, "GET", "/users", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counterparts []domain.Counterpart
	decode(t, w, &counterparts)
	require.Len(t, counterparts, 1)
	assert.Equal(t, alice.ID, counterparts[0].ID)
	assert.Equal(t, 1, counterparts[0].UnreadCount)

	// Opening the conversation clears the unread count.
	w = do(t, s, "GET", "/messages/"+itoa(alice.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []domain.Message
	decode(t, w, &msgs)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsRead)

	w = do(t, s, "GET", "/messages/unread", bobToken, nil)
	decode(t, w, &unread)
	assert.Equal(t, 0, unread.TotalUnread)

	// Empty content is rejected.
	w = do(t, s, "POST", "/messages", aliceToken, map[string]interface{}{
		"receiverId": bob.ID,
		"content":    "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Purge removes the conversation for both sides.
	w = do(t, s, "DELETE", "/messages/"+itoa(bob.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, "GET", "/messages/"+itoa(alice.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &msgs)
	assert.Empty(t, msgs)
}

func TestPasswordResetEndpoints(t *testing.T) {
	s, mailer := newTestServer(t)
	registerAndLogin(t, s, "alice")

	w := do(t, s, "POST", "/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "alice@example.com", mailer.to)
	require.Len(t, mailer.code, 6)

	w = do(t, s, "POST", "/verify-otp", "", map[string]string{
		"email": "alice@example.com",
		"otp":   mailer.code,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, "POST", "/reset-password", "", map[string]string{
		"email":       "alice@example.com",
		"otp":         mailer.code,
		"newPassword": "brand-new-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, "POST", "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	token, _ := registerAndLogin(t, s, "alice")

	w := do(t, s, "POST", "/blog", token, map[string]interface{}{
		"title":        "Boss guide",
		"description":  "How to beat the final boss.",
		"gameImage":    "boss.png",
		"gameCategory": "Action",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, "GET", "/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                  `json:"success"`
		Data    domain.DashboardStats `json:"data"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.EqualValues(t, 1, resp.Data.Summary.TotalUsers)
	assert.EqualValues(t, 1, resp.Data.Summary.TotalBlogs)
	require.Len(t, resp.Data.BlogsByCategory, 1)
	assert.Equal(t, "Action", resp.Data.BlogsByCategory[0].Name)
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t)
	s.maxBodyBytes = 64

	big := make([]byte, 1024)
	for i := range big {
		big[i] = 'a'
	}
	w := do(t, s, "POST", "/register", "", map[string]string{"name": string(big)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// itoa keeps the url building in the tests readable.
func itoa(n int) string {
	return strconv.Itoa(n)
}
