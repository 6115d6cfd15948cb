package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
)

const testSecret = "handler-test-secret"

// fakeUserStore is an in-memory user.Store with PostgreSQL-shaped errors, so the
// handlers' conflict and not-found detection works unchanged.
type fakeUserStore struct {
	mu    sync.Mutex
	users []user.User
}

func (s *fakeUserStore) Create(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.UserName == u.UserName {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_user_name_key"}
		}
	}
	s.users = append(s.users, u)
	return nil
}

func (s *fakeUserStore) ByUserName(_ context.Context, userName string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.UserName == userName {
			return existing, nil
		}
	}
	return user.User{}, pgx.ErrNoRows
}

func (s *fakeUserStore) List(_ context.Context) ([]user.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := make([]user.Summary, 0, len(s.users))
	for _, u := range s.users {
		summaries = append(summaries, user.Summary{ID: u.ID, UserName: u.UserName})
	}
	return summaries, nil
}

// fakeMessageStore is an in-memory message.Store.
type fakeMessageStore struct {
	mu      sync.Mutex
	records []message.Message
}

func (s *fakeMessageStore) Create(_ context.Context, m message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, m)
	return nil
}

func (s *fakeMessageStore) Conversation(_ context.Context, a, b string) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []message.Message
	for _, m := range s.records {
		sender := ""
		if m.Sender != nil {
			sender = *m.Sender
		}
		if (sender == a && m.Recipient == b) || (sender == b && m.Recipient == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeBlobStore discards nothing and keeps attachments in memory.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (s *fakeBlobStore) Write(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blobs == nil {
		s.blobs = make(map[string][]byte)
	}
	s.blobs[name] = data
	return "/uploads/" + name, nil
}

type testEnv struct {
	deps     *AppDeps
	router   http.Handler
	users    *fakeUserStore
	messages *fakeMessageStore
	blobs    *fakeBlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUserStore{}
	messages := &fakeMessageStore{}
	blobs := &fakeBlobStore{}

	hub := chat.NewHub()
	relay := chat.NewRelay(hub, messages, blobs)

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment:    "development",
			Port:           4000,
			AllowedOrigins: []string{},
			JWTSecret:      testSecret,
			StorageBackend: configs.StorageBackendLocal,
			UploadDir:      t.TempDir(),
		},
		Hub:      hub,
		Relay:    relay,
		Verifier: jwt.NewHMACVerifier(testSecret),
		Users:    users,
		Messages: messages,
	}

	return &testEnv{
		deps:     deps,
		router:   Router(deps),
		users:    users,
		messages: messages,
		blobs:    blobs,
	}
}

// apiResponse mirrors the standard response envelope.
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) postJSON(t *testing.T, path string, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	r.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w, decodeResponse(t, w)
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w, decodeResponse(t, w)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var res apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

// identityCookie returns the usertoken cookie set on the response, or nil.
func identityCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == jwt.CookieName {
			return c
		}
	}
	return nil
}

// mintCookie creates a valid identity cookie without going through registration.
func mintCookie(t *testing.T, userID, userName string) *http.Cookie {
	t.Helper()

	token, err := jwt.GenerateToken(userID, userName, testSecret, jwt.UserIdentityExpiration)
	require.NoError(t, err)
	return &http.Cookie{Name: jwt.CookieName, Value: token}
}
