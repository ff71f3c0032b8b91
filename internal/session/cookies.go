package session

import (
	"net/http"
	"strings"
	"time"

	"gtrac-gateway/internal/model"
)

// CookiePolicy describes how the token pair is written to the browser.
type CookiePolicy struct {
	AccessName    string
	RefreshName   string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Domain        string
	Path          string
	Secure        bool
	SameSite      http.SameSite
}

// CookieJar reads and writes the two session cookies. It holds no tokens.
type CookieJar struct {
	policy CookiePolicy
}

func NewCookieJar(policy CookiePolicy) *CookieJar {
	if policy.Path == "" {
		policy.Path = "/"
	}
	if policy.SameSite == 0 {
		policy.SameSite = http.SameSiteLaxMode
	}
	return &CookieJar{policy: policy}
}

func (j *CookieJar) Policy() CookiePolicy {
	return j.policy
}

func (j *CookieJar) AccessToken(r *http.Request) (string, bool) {
	return j.read(r, j.policy.AccessName)
}

func (j *CookieJar) RefreshToken(r *http.Request) (string, bool) {
	return j.read(r, j.policy.RefreshName)
}

// SetPair overwrites both cookies. Login and refresh share this policy.
func (j *CookieJar) SetPair(w http.ResponseWriter, pair model.TokenPair) {
	j.write(w, j.policy.AccessName, pair.Access, j.policy.AccessMaxAge)
	j.write(w, j.policy.RefreshName, pair.Refresh, j.policy.RefreshMaxAge)
}

// Clear expires both cookies whatever their current state.
func (j *CookieJar) Clear(w http.ResponseWriter) {
	j.expire(w, j.policy.AccessName)
	j.expire(w, j.policy.RefreshName)
}

func (j *CookieJar) read(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

func (j *CookieJar) write(w http.ResponseWriter, name string, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.policy.Path,
		Domain:   j.policy.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   j.policy.Secure,
		SameSite: j.policy.SameSite,
	})
}

func (j *CookieJar) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     j.policy.Path,
		Domain:   j.policy.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.policy.Secure,
		SameSite: j.policy.SameSite,
	})
}
