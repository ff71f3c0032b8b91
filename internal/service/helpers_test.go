package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"gtrac-gateway/internal/backend"
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

func accessToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":     exp.Unix(),
		"user_id": 7,
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}
