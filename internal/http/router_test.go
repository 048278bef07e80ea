package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/notes-api/internal/auth"
	"github.com/redmonkez12/notes-api/internal/config"
	"github.com/redmonkez12/notes-api/internal/logging"
	"github.com/redmonkez12/notes-api/internal/note"
	"github.com/redmonkez12/notes-api/internal/user"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}
	u := &user.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.users[u.ID] = u
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, userID uuid.UUID, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (s *fakeUserStore) RotateRefreshToken(_ context.Context, userID uuid.UUID, previous, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != previous {
		return user.ErrStaleRefreshToken
	}
	u.RefreshToken = &next
	return nil
}

type fakeNoteStore struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*note.Note
}

func (s *fakeNoteStore) ListByUser(_ context.Context, userID uuid.UUID) ([]note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]note.Note, 0)
	for _, n := range s.notes {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *fakeNoteStore) Create(_ context.Context, userID uuid.UUID, title string, content *string) (*note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := &note.Note{ID: uuid.New(), Title: title, Content: content, UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.notes[n.ID] = n
	clone := *n
	return &clone, nil
}

func (s *fakeNoteStore) GetForUser(_ context.Context, id, userID uuid.UUID) (*note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, note.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (s *fakeNoteStore) Update(_ context.Context, id, userID uuid.UUID, title string, content *string) (*note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, note.ErrNotFound
	}
	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now()
	clone := *n
	return &clone, nil
}

func (s *fakeNoteStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return note.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "0",
			Env:  "prod",
		},
	}

	logger := logging.NewLogger(true)
	service := auth.NewService(
		&fakeUserStore{users: make(map[uuid.UUID]*user.User)},
		auth.NewJWTService([]byte("router-test-secret")),
		logger,
		15*time.Minute,
		7*24*time.Hour,
	)

	return NewRouter(
		cfg,
		auth.NewHandler(service, false),
		auth.NewMiddleware(service, false),
		note.NewHandler(&fakeNoteStore{notes: make(map[uuid.UUID]*note.Note)}),
		logger,
	)
}

func do(router http.Handler, method, path, body string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.RefreshTokenCookieName {
			return c
		}
	}
	t.Fatal("refresh cookie not set")
	return nil
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_NotesRequireBearer(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not authenticated")
}

func TestRouter_FullSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register
	rec := do(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var session auth.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.AccessToken)
	cookie := refreshCookie(t, rec)

	bearer := func(token string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	}

	// Create a note with the access token
	rec = do(router, http.MethodPost, "/notes",
		`{"title":"Groceries","content":"milk"}`, bearer(session.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created note.NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Note)
	noteID := created.Note.ID.String()

	// Round-trip through list, get, update
	rec = do(router, http.MethodGet, "/notes", "", bearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var list note.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Notes, 1)

	rec = do(router, http.MethodPut, "/notes/"+noteID,
		`{"title":"Chores"}`, bearer(session.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	// The cookie resolves the current user
	rec = do(router, http.MethodGet, "/auth/me", "", func(r *http.Request) { r.AddCookie(cookie) })
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	// Refresh rotates the cookie and issues a working access token
	rec = do(router, http.MethodPost, "/auth/refresh", "", func(r *http.Request) { r.AddCookie(cookie) })
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed auth.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	newCookie := refreshCookie(t, rec)
	assert.NotEqual(t, cookie.Value, newCookie.Value)

	rec = do(router, http.MethodGet, "/notes/"+noteID, "", bearer(refreshed.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	// The superseded cookie is dead
	rec = do(router, http.MethodPost, "/auth/refresh", "", func(r *http.Request) { r.AddCookie(cookie) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout kills the current session
	rec = do(router, http.MethodPost, "/auth/logout", "", func(r *http.Request) { r.AddCookie(newCookie) })
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/auth/refresh", "", func(r *http.Request) { r.AddCookie(newCookie) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Delete still works: access tokens stay valid until they expire
	rec = do(router, http.MethodDelete, "/notes/"+noteID, "", bearer(session.AccessToken))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MeWithoutCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No refresh token provided")
}
