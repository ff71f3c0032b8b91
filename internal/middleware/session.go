package middleware

import (
	"context"
	"net/http"
	"time"

	"gtrac-gateway/internal/session"
)

type contextKey string

const accessTokenContextKey contextKey = "access_token"

const LoginPath = "/login"

// RequireAccessToken guards API routes: a missing access cookie is answered
// with 401 before any backend call. Expiry is left to the backend.
func RequireAccessToken(jar *session.CookieJar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := jar.AccessToken(r)
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccessToken(r.Context(), token)))
		})
	}
}

// SessionGate guards server-rendered pages. The decision is made on every
// request from the cookie alone; absent, expired and undecodable tokens all
// redirect to the login page.
func SessionGate(jar *session.CookieJar, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := jar.AccessToken(r)
			if !ok || session.Expired(token, now()) {
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccessToken(r.Context(), token)))
		})
	}
}

// RedirectAuthenticated sends visitors with a live session away from the
// login page.
func RedirectAuthenticated(jar *session.CookieJar, target string, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := jar.AccessToken(r); ok && !session.Expired(token, now()) {
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenContextKey, token)
}

func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey).(string)
	return token, ok && token != ""
}
