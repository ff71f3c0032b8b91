package model

import "errors"

var (
	// Session errors
	ErrMissingAccessToken  = errors.New("access token missing")
	ErrMissingRefreshToken = errors.New("refresh token missing")
	ErrMalformedToken      = errors.New("malformed token")

	// Backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrContractViolation  = errors.New("backend response violates contract")

	// Export errors
	ErrExportNotSupported = errors.New("export not supported for resource")

	// Cache errors
	ErrCacheUnavailable = errors.New("user cache unavailable")
)
