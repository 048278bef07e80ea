package note

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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/notes-api/internal/auth"
	"github.com/redmonkez12/notes-api/internal/httputil"
)

// memoryStore is an in-memory Store for tests. Creation timestamps advance
// by one second per note so ordering is deterministic.
type memoryStore struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*Note
	base  time.Time
	seq   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		notes: make(map[uuid.UUID]*Note),
		base:  time.Now(),
	}
}

func (s *memoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Note, 0)
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

func (s *memoryStore) Create(_ context.Context, userID uuid.UUID, title string, content *string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	now := s.base.Add(time.Duration(s.seq) * time.Second)
	n := &Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes[n.ID] = n

	clone := *n
	return &clone, nil
}

func (s *memoryStore) GetForUser(_ context.Context, id, userID uuid.UUID) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (s *memoryStore) Update(_ context.Context, id, userID uuid.UUID, title string, content *string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n.Title = title
	n.Content = content
	s.seq++
	n.UpdatedAt = s.base.Add(time.Duration(s.seq) * time.Second)

	clone := *n
	return &clone, nil
}

func (s *memoryStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// newNotesServer mounts the handler behind a middleware that injects the
// given identity, standing in for the bearer gate.
func newNotesServer(store Store, identity *auth.Identity) http.Handler {
	h := NewHandler(store)

	r := chi.NewRouter()
	if identity != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.ContextWithIdentity(req.Context(), identity)))
			})
		})
	}

	r.Get("/notes", h.List)
	r.Post("/notes", h.Create)
	r.Get("/notes/{id}", h.Get)
	r.Put("/notes/{id}", h.Update)
	r.Delete("/notes/{id}", h.Delete)

	return r
}

func testIdentity() *auth.Identity {
	return &auth.Identity{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		CreatedAt: time.Now(),
	}
}

func doJSON(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func createNote(t *testing.T, server http.Handler, title, content string) Note {
	t.Helper()

	body := `{"title":` + marshalString(t, title) + `,"content":` + marshalString(t, content) + `}`
	rec := doJSON(t, server, http.MethodPost, "/notes", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Note)
	return *resp.Note
}

func marshalString(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestHandler_Create(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	rec := doJSON(t, server, http.MethodPost, "/notes", `{"title":"  Groceries  ","content":"milk, eggs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Note created successfully", resp.Message)
	require.NotNil(t, resp.Note)
	assert.Equal(t, "Groceries", resp.Note.Title)
	require.NotNil(t, resp.Note.Content)
	assert.Equal(t, "milk, eggs", *resp.Note.Content)
	assert.NotEqual(t, uuid.Nil, resp.Note.ID)
}

func TestHandler_Create_EmptyContentBecomesNull(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	rec := doJSON(t, server, http.MethodPost, "/notes", `{"title":"Groceries","content":"   "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Note)
	assert.Nil(t, resp.Note.Content)
}

func TestHandler_Create_ValidationFailed(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	rec := doJSON(t, server, http.MethodPost, "/notes", `{"title":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, []string{"Title is required and must be a non-empty string"}, resp.Details)
}

func TestHandler_List_NewestFirst(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	first := createNote(t, server, "first", "a")
	second := createNote(t, server, "second", "b")
	third := createNote(t, server, "third", "c")

	rec := doJSON(t, server, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Notes retrieved successfully", resp.Message)
	require.Len(t, resp.Notes, 3)
	assert.Equal(t, third.ID, resp.Notes[0].ID)
	assert.Equal(t, second.ID, resp.Notes[1].ID)
	assert.Equal(t, first.ID, resp.Notes[2].ID)
}

func TestHandler_List_Empty(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	rec := doJSON(t, server, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Notes)
	assert.Empty(t, resp.Notes)
}

func TestHandler_OwnershipIsolation(t *testing.T) {
	store := newMemoryStore()
	aliceServer := newNotesServer(store, testIdentity())
	bobServer := newNotesServer(store, testIdentity())

	aliceNote := createNote(t, aliceServer, "alice's note", "secret")

	// Bob's listing never includes Alice's notes
	rec := doJSON(t, bobServer, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Empty(t, listResp.Notes)

	// Another user's note is indistinguishable from a missing one
	for _, tc := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPut, `{"title":"hijacked"}`},
		{http.MethodDelete, ""},
	} {
		rec := doJSON(t, bobServer, tc.method, "/notes/"+aliceNote.ID.String(), tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s", tc.method)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Note not found", resp.Error)
	}

	// Alice still sees her note untouched
	rec = doJSON(t, aliceServer, http.MethodGet, "/notes/"+aliceNote.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var getResp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getResp))
	assert.Equal(t, "alice's note", getResp.Note.Title)
}

func TestHandler_Get(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())
	created := createNote(t, server, "Groceries", "milk")

	rec := doJSON(t, server, http.MethodGet, "/notes/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Note retrieved successfully", resp.Message)
	assert.Equal(t, created.ID, resp.Note.ID)
}

func TestHandler_Get_NotFound(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())

	// Unknown and malformed IDs produce the same response
	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		rec := doJSON(t, server, http.MethodGet, "/notes/"+id, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %q", id)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Note not found", resp.Error)
	}
}

func TestHandler_Update(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())
	created := createNote(t, server, "Groceries", "milk")

	rec := doJSON(t, server, http.MethodPut, "/notes/"+created.ID.String(), `{"title":"  Chores  ","content":null}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Note updated successfully", resp.Message)
	assert.Equal(t, "Chores", resp.Note.Title)
	assert.Nil(t, resp.Note.Content)
	assert.True(t, resp.Note.UpdatedAt.After(created.UpdatedAt))
}

func TestHandler_Update_ValidationFailed(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())
	created := createNote(t, server, "Groceries", "milk")

	longContent := strings.Repeat("a", 10001)
	rec := doJSON(t, server, http.MethodPut, "/notes/"+created.ID.String(),
		`{"title":"ok","content":`+marshalString(t, longContent)+`}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, []string{"Content must be less than 10000 characters"}, resp.Details)
}

func TestHandler_Delete(t *testing.T) {
	server := newNotesServer(newMemoryStore(), testIdentity())
	created := createNote(t, server, "Groceries", "milk")

	rec := doJSON(t, server, http.MethodDelete, "/notes/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Note deleted successfully")

	// A second delete finds nothing
	rec = doJSON(t, server, http.MethodDelete, "/notes/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MissingIdentity(t *testing.T) {
	server := newNotesServer(newMemoryStore(), nil)

	rec := doJSON(t, server, http.MethodGet, "/notes", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User not authenticated", resp.Error)
}
