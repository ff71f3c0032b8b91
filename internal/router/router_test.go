package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/config"
	"gtrac-gateway/internal/handler"
	"gtrac-gateway/internal/metrics"
	"gtrac-gateway/internal/service"
	"gtrac-gateway/internal/session"
)

type gateway struct {
	handler http.Handler
	calls   *atomic.Int32
	metrics *metrics.Metrics
}

func newGateway(t *testing.T, backendHandler http.HandlerFunc) *gateway {
	t.Helper()

	calls := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		backendHandler(w, r)
	}))
	t.Cleanup(upstream.Close)

	m := metrics.New()
	client, err := backend.New(upstream.URL, "/api/v3", 5*time.Second, backend.WithObserver(m))
	require.NoError(t, err)

	cfg := &config.Config{RateLimitRPM: 0, AuthRateLimitRPM: 100}
	jar := session.NewCookieJar(session.CookiePolicy{
		AccessName:    "access_token",
		RefreshName:   "refresh_token",
		AccessMaxAge:  time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
		Secure:        true,
	})

	users := service.NewUserService(client, nil, time.Minute)
	pages, err := handler.NewPageHandler(users, client)
	require.NoError(t, err)

	h := New(cfg, jar, Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(client), users, service.NewAuditService(nil, 0), jar),
		Proxy:  handler.NewProxyHandler(client),
		User:   handler.NewUserHandler(users),
		Export: handler.NewExportHandler(service.NewExportService(client, 100, 10)),
		Pages:  pages,
	}, m)

	return &gateway{handler: h, calls: calls, metrics: m}
}

func (g *gateway) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func liveToken(t *testing.T) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDashboardAPIWithoutCookie(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/dashboard/user", "/api/dashboard/samples", "/api/dashboard/boxes/1", "/api/dashboard/samples/export"} {
		rec := g.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Unauthorized"}`, rec.Body.String(), path)
	}

	assert.Zero(t, g.calls.Load())
}

func TestPagesRedirectWithoutSession(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/dashboard", "/samples", "/boxes/999"} {
		rec := g.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := g.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = g.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Zero(t, g.calls.Load())
}

func TestLoginThenBrowse(t *testing.T) {
	t.Parallel()

	token := liveToken(t)
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/auth/login/":
			_, _ = w.Write([]byte(`{"access":"` + token + `","refresh":"r1"}`))
		case "/api/v3/samples/":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"count":0,"next":null,"previous":null,"results":[]}`))
		case "/api/v3/boxes/999/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"user@example.com","password":"pw"}`))
	login := g.do(req)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 2)

	rec := g.do(httptest.NewRequest(http.MethodGet, "/api/dashboard/samples", nil), cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(httptest.NewRequest(http.MethodGet, "/boxes/999", nil), cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")

	rec = g.do(httptest.NewRequest(http.MethodGet, "/login", nil), cookies...)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = g.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0, c.Name)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {})

	rec := g.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = g.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gtrac_http_requests_total")
}

func TestUnknownAPIRoute(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/api/auth/whoami", "/api/unknown", "/api/v2/x", "/api"} {
		rec := g.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String(), path)
		assert.Empty(t, rec.Header().Get("Location"), path)
	}
}
