package models

import (
	"time"

	"github.com/google/uuid"
)

// BackendAPIKey is a project-scoped SDK key. Only the bcrypt hash and the
// public prefix are stored; the full key is shown once at creation.
type BackendAPIKey struct {
	ID         uuid.UUID  `json:"id"`
	Prefix     string     `json:"prefix"`
	HashedKey  string     `json:"-"`
	ProjectID  uuid.UUID  `json:"project_id"`
	Name       *string    `json:"name,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Usable reports whether the key's lifecycle state still allows
// verification at the given instant. A key whose expires_at equals now is
// already expired.
func (k *BackendAPIKey) Usable(now time.Time) bool {
	if !k.Active || k.RevokedAt != nil {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(now) {
		return false
	}
	return true
}
