package model

import "time"

type AuthAction string

const (
	AuthActionLogin          AuthAction = "login"
	AuthActionRefresh        AuthAction = "refresh"
	AuthActionLogout         AuthAction = "logout"
	AuthActionForgotPassword AuthAction = "forgot_password"
	AuthActionResetPassword  AuthAction = "reset_password"
)

const (
	AuthOutcomeSuccess = "success"
	AuthOutcomeFailure = "failure"
)

// AuthEvent is one row of the authentication audit trail. Tokens are only
// ever stored as fingerprints.
type AuthEvent struct {
	ID               string     `json:"id"`
	Action           AuthAction `json:"action"`
	Outcome          string     `json:"outcome"`
	Email            string     `json:"email,omitempty"`
	TokenFingerprint string     `json:"token_fingerprint,omitempty"`
	ClientIP         string     `json:"client_ip,omitempty"`
	HTTPStatus       int        `json:"http_status"`
	OccurredAt       time.Time  `json:"occurred_at"`
}
