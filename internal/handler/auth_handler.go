package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/service"
	"gtrac-gateway/internal/session"
	"gtrac-gateway/pkg/apierror"
)

const maxAuthBodyBytes = 64 << 10

type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
	audit *service.AuditService
	jar   *session.CookieJar
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, audit *service.AuditService, jar *session.CookieJar) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, audit: audit, jar: jar}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeAuthError(w, err, "")
		return
	}

	if !payload.Complete() {
		writeAuthError(w, apierror.BadRequest("Email and password are required."), "")
		return
	}

	pair, err := h.auth.Login(r.Context(), payload.Email, payload.Password)

	event := authEvent(r, model.AuthActionLogin, statusOf(err), pair.Access)
	event.Email = strings.TrimSpace(payload.Email)
	h.audit.Record(r.Context(), event)

	if err != nil {
		writeAuthError(w, err, "Login failed.")
		return
	}

	h.jar.SetPair(w, pair)
	writeAuthSuccess(w)
}

// Refresh rotates the cookie pair. A backend rejection is terminal and is
// relayed without clearing the cookies.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.jar.RefreshToken(r)
	if !ok {
		h.audit.Record(r.Context(), authEvent(r, model.AuthActionRefresh, http.StatusUnauthorized, ""))
		writeAuthError(w, apierror.Unauthorized("Refresh token missing."), "")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), refreshToken)
	h.audit.Record(r.Context(), authEvent(r, model.AuthActionRefresh, statusOf(err), refreshToken))
	if err != nil {
		if errors.Is(err, model.ErrMissingRefreshToken) {
			err = apierror.Unauthorized("Refresh token missing.")
		}
		writeAuthError(w, err, "Token refresh failed.")
		return
	}

	if previous, ok := h.jar.AccessToken(r); ok {
		h.users.Invalidate(r.Context(), previous)
	}

	h.jar.SetPair(w, pair)
	writeAuthSuccess(w)
}

// Logout always succeeds; there is no backend call to revoke tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken, _ := h.jar.AccessToken(r)
	h.users.Invalidate(r.Context(), accessToken)
	h.audit.Record(r.Context(), authEvent(r, model.AuthActionLogout, http.StatusOK, accessToken))

	h.jar.Clear(w)
	writeAuthSuccess(w)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ForgotPasswordRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeAuthError(w, err, "")
		return
	}

	if strings.TrimSpace(payload.Email) == "" {
		writeAuthError(w, apierror.BadRequest("Email is required."), "")
		return
	}

	err := h.auth.ForgotPassword(r.Context(), payload.Email)

	event := authEvent(r, model.AuthActionForgotPassword, statusOf(err), "")
	event.Email = strings.TrimSpace(payload.Email)
	h.audit.Record(r.Context(), event)

	if err != nil {
		writeAuthError(w, err, "Password reset request failed.")
		return
	}

	writeAuthSuccess(w)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ResetPasswordRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeAuthError(w, err, "")
		return
	}

	payload.Normalize()
	if !payload.Complete() {
		writeAuthError(w, apierror.BadRequest("Uid, token and password are required."), "")
		return
	}

	err := h.auth.ResetPassword(r.Context(), payload)
	h.audit.Record(r.Context(), authEvent(r, model.AuthActionResetPassword, statusOf(err), ""))
	if err != nil {
		writeAuthError(w, err, "Password reset failed.")
		return
	}

	writeAuthSuccess(w)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)).Decode(out); err != nil {
		return apierror.BadRequest("Invalid request body.")
	}
	return nil
}
