package models

import (
	"time"

	"github.com/bamboofin/bamboo_portal/internal/permission"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// SessionKind separates administrator and customer sessions.
type SessionKind string

const (
	SessionAdmin    SessionKind = "admin"
	SessionCustomer SessionKind = "customer"
)

// Session is the portal side of a backend login. Token is the Bamboo API
// bearer token and never leaves the portal.
type Session struct {
	ID          string            `json:"id"`
	Kind        SessionKind       `json:"kind"`
	Token       string            `json:"token"`
	Role        string            `json:"role,omitempty"`
	Permissions permission.Set    `json:"permissions,omitempty"`
	Admin       *bamboo.AdminUser `json:"admin,omitempty"`
	Customer    *bamboo.User      `json:"customer,omitempty"`
	WorkspaceID string            `json:"workspaceId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// UserID returns the backend id of the session owner.
func (s *Session) UserID() string {
	switch {
	case s.Admin != nil:
		return s.Admin.ID
	case s.Customer != nil:
		return s.Customer.ID
	}
	return ""
}

// Active reports whether the owner account is active.
func (s *Session) Active() bool {
	switch {
	case s.Admin != nil:
		return s.Admin.IsActive
	case s.Customer != nil:
		return s.Customer.IsActive
	}
	return false
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
