package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TokenPair is the access/refresh pair issued by the backend. It only ever
// lives in cookies; the gateway keeps no server-side copy.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Validate rejects pairs the backend should never send.
func (p TokenPair) Validate() error {
	if strings.TrimSpace(p.Access) == "" {
		return fmt.Errorf("%w: access token missing from payload", ErrContractViolation)
	}
	if strings.TrimSpace(p.Refresh) == "" {
		return fmt.Errorf("%w: refresh token missing from payload", ErrContractViolation)
	}
	return nil
}

// DashboardUser is the display-only view of the signed-in user. It is never
// consulted for authorization.
type DashboardUser struct {
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	IsStaff     bool     `json:"isStaff"`
	IsSuperuser bool     `json:"isSuperuser"`
	Groups      []string `json:"groups"`
}

func (u DashboardUser) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// BackendUser is the current-user payload as the backend serializes it.
type BackendUser struct {
	Email       *string           `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	IsStaff     bool              `json:"is_staff"`
	IsSuperuser bool              `json:"is_superuser"`
	Groups      []json.RawMessage `json:"groups"`
}

// ToDashboardUser validates the payload and converts it. Groups may arrive
// either as plain names or as objects carrying a "name" field.
func (b BackendUser) ToDashboardUser() (DashboardUser, error) {
	if b.Email == nil || strings.TrimSpace(*b.Email) == "" {
		return DashboardUser{}, fmt.Errorf("%w: user email missing", ErrContractViolation)
	}

	groups := make([]string, 0, len(b.Groups))
	for _, raw := range b.Groups {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			groups = append(groups, name)
			continue
		}

		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &named); err != nil || named.Name == "" {
			return DashboardUser{}, fmt.Errorf("%w: unrecognised group entry %s", ErrContractViolation, string(raw))
		}
		groups = append(groups, named.Name)
	}

	return DashboardUser{
		Email:       strings.TrimSpace(*b.Email),
		FirstName:   b.FirstName,
		LastName:    b.LastName,
		IsStaff:     b.IsStaff,
		IsSuperuser: b.IsSuperuser,
		Groups:      groups,
	}, nil
}
