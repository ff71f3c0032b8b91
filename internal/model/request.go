package model

import "strings"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Complete() bool {
	return strings.TrimSpace(r.Email) != "" && r.Password != ""
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password,omitempty"`
}

// Normalize folds the new_password alias into Password.
func (r *ResetPasswordRequest) Normalize() {
	if r.Password == "" {
		r.Password = r.NewPassword
	}
	r.NewPassword = ""
	r.UID = strings.TrimSpace(r.UID)
	r.Token = strings.TrimSpace(r.Token)
}

func (r ResetPasswordRequest) Complete() bool {
	return r.UID != "" && r.Token != "" && r.Password != ""
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}
