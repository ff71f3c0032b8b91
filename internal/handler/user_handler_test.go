package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtrac-gateway/internal/service"
	"gtrac-gateway/internal/usercache"
)

func TestCurrentUserRefreshesCache(t *testing.T) {
	t.Parallel()

	fb, client := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/auth/me/", r.URL.Path)
		writeJSONReply(w, http.StatusOK, `{"email":"ada@example.com","first_name":"Ada","last_name":"L","is_staff":true,"is_superuser":false,"groups":[{"name":"lab"}]}`)
	})
	cache := usercache.NewMemory()
	h := NewUserHandler(service.NewUserService(client, cache, time.Minute))

	token := accessToken(t, time.Now().Add(time.Hour))
	for i := 0; i < 2; i++ {
		rec := serve("/api/dashboard/user", http.MethodGet, h.Current, httptest.NewRequest(http.MethodGet, "/api/dashboard/user", nil), token)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"email":"ada@example.com","firstName":"Ada","lastName":"L","isStaff":true,"isSuperuser":false,"groups":["lab"]}`, rec.Body.String())
	}

	// Every call goes to the backend; the cache only serves page rendering.
	assert.EqualValues(t, 2, fb.calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCurrentUserErrors(t *testing.T) {
	t.Parallel()

	_, client := newFakeBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSONReply(w, http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`)
	})
	h := NewUserHandler(service.NewUserService(client, nil, time.Minute))

	rec := serve("/api/dashboard/user", http.MethodGet, h.Current, httptest.NewRequest(http.MethodGet, "/api/dashboard/user", nil), "a1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Given token not valid for any token type"}`, rec.Body.String())

	rec = serve("/api/dashboard/user", http.MethodGet, h.Current, httptest.NewRequest(http.MethodGet, "/api/dashboard/user", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Unauthorized"}`, rec.Body.String())
}

func TestCurrentUserMissingEmailIsInternalError(t *testing.T) {
	t.Parallel()

	_, client := newFakeBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSONReply(w, http.StatusOK, `{"first_name":"Ada"}`)
	})
	h := NewUserHandler(service.NewUserService(client, nil, time.Minute))

	rec := serve("/api/dashboard/user", http.MethodGet, h.Current, httptest.NewRequest(http.MethodGet, "/api/dashboard/user", nil), "a1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
