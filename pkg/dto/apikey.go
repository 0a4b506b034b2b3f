package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/models"
)

type CreateAPIKeyRequest struct {
	Name      *string    `json:"name,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type RevokeAPIKeyRequest struct {
	KeyID uuid.UUID `json:"key_id"`
}

// APIKeyCreatedResponse carries the full key exactly once, at creation.
type APIKeyCreatedResponse struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt string    `json:"created_at"`
	ExpiresAt *string   `json:"expires_at,omitempty"`
}

type APIKeyResponse struct {
	ID         uuid.UUID `json:"id"`
	Prefix     string    `json:"prefix"`
	Name       *string   `json:"name,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  string    `json:"created_at"`
	LastUsedAt *string   `json:"last_used_at,omitempty"`
	ExpiresAt  *string   `json:"expires_at,omitempty"`
}

func NewAPIKeyResponse(k *models.BackendAPIKey) APIKeyResponse {
	resp := APIKeyResponse{
		ID:        k.ID,
		Prefix:    k.Prefix,
		Name:      k.Name,
		Active:    k.Active,
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
	}
	if k.LastUsedAt != nil {
		formatted := k.LastUsedAt.Format(time.RFC3339)
		resp.LastUsedAt = &formatted
	}
	if k.ExpiresAt != nil {
		formatted := k.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &formatted
	}
	return resp
}
