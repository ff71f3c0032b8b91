package handler

import (
	"net/http"

	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Current always asks the backend and rewrites the cached entry.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.AccessTokenFromContext(r.Context())
	if !ok {
		writeDetailError(w, model.ErrMissingAccessToken)
		return
	}

	user, err := h.users.RefreshUser(r.Context(), token)
	if err != nil {
		writeDetailError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
