package service

import (
	"context"
	"fmt"
	"strings"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/model"
)

// AuthService exchanges credentials and refresh tokens with the backend.
// It performs exactly one backend call per operation and never retries.
type AuthService struct {
	backend *backend.Client
}

func NewAuthService(client *backend.Client) *AuthService {
	return &AuthService{backend: client}
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	var pair model.TokenPair
	err := s.backend.PostJSON(ctx, backend.LoginPath, "", model.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	}, &pair)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := pair.Validate(); err != nil {
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	return pair, nil
}

// Refresh rotates the pair. The backend must return a new refresh token as
// well; reusing the old one is treated as contract drift.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.TokenPair{}, model.ErrMissingRefreshToken
	}

	var pair model.TokenPair
	err := s.backend.PostJSON(ctx, backend.RefreshPath, "", model.RefreshRequest{Refresh: refreshToken}, &pair)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := pair.Validate(); err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	return pair, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.backend.PostJSON(ctx, backend.ForgotPasswordPath, "", model.ForgotPasswordRequest{
		Email: strings.TrimSpace(email),
	}, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	return s.backend.PostJSON(ctx, backend.ResetPasswordPath, "", req, nil)
}
