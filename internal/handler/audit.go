package handler

import (
	"errors"
	"net/http"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/session"
	"gtrac-gateway/pkg/apierror"
)

func authEvent(r *http.Request, action model.AuthAction, status int, token string) model.AuthEvent {
	outcome := model.AuthOutcomeSuccess
	if status >= http.StatusBadRequest {
		outcome = model.AuthOutcomeFailure
	}

	return model.AuthEvent{
		Action:           action,
		Outcome:          outcome,
		TokenFingerprint: session.Fingerprint(token),
		ClientIP:         middleware.ClientIP(r),
		HTTPStatus:       status,
	}
}

// statusOf reports the status a handler error is rendered with.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	if respErr, ok := backend.AsResponseError(err); ok {
		return respErr.StatusCode
	}
	return http.StatusInternalServerError
}
