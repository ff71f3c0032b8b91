package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/session"
)

type fakeBackend struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newFakeBackend(t *testing.T, handler http.HandlerFunc) (*fakeBackend, *backend.Client) {
	t.Helper()

	fb := &fakeBackend{}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(fb.server.Close)

	client, err := backend.New(fb.server.URL, "/api/v3", 5*time.Second)
	require.NoError(t, err)
	return fb, client
}

func testJar() *session.CookieJar {
	return session.NewCookieJar(session.CookiePolicy{
		AccessName:    "access_token",
		RefreshName:   "refresh_token",
		AccessMaxAge:  time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
		Secure:        true,
	})
}

func accessToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":     exp.Unix(),
		"user_id": 7,
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

// serve routes req through a chi router so URL params resolve, with the
// access token placed in the context the way the session middleware does.
func serve(pattern string, method string, h http.HandlerFunc, req *http.Request, token string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	if token != "" {
		req = req.WithContext(middleware.WithAccessToken(req.Context(), token))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func responseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func writeJSONReply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type memoryAuditStore struct {
	mu     sync.Mutex
	events []model.AuthEvent
}

func (s *memoryAuditStore) Insert(_ context.Context, event model.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memoryAuditStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *memoryAuditStore) snapshot() []model.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuthEvent(nil), s.events...)
}
