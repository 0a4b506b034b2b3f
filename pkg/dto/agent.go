package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/models"
)

type CreateAgentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
}

type AgentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Provider    string    `json:"provider"`
	ProjectID   uuid.UUID `json:"project_id"`
	CreatedAt   string    `json:"created_at"`
}

func NewAgentResponse(a *models.Agent) AgentResponse {
	return AgentResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Provider:    a.Provider,
		ProjectID:   a.ProjectID,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

type CreateAgentKeyRequest struct {
	AgentID   uuid.UUID  `json:"agent_id"`
	Name      *string    `json:"name,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type AgentKeyCreatedResponse struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	AgentID   uuid.UUID `json:"agent_id"`
	CreatedAt string    `json:"created_at"`
	ExpiresAt *string   `json:"expires_at,omitempty"`
}

type CreateAgentSessionRequest struct {
	Meta json.RawMessage `json:"Meta"`
}

type AgentSessionCreatedResponse struct {
	HeaderValue string `json:"Header_value"`
	JWTToken    string `json:"jwt_token"`
}

type AgentSessionResponse struct {
	ID         uuid.UUID       `json:"id"`
	AgentID    uuid.UUID       `json:"agent_id"`
	AgentKeyID *uuid.UUID      `json:"agent_key_id,omitempty"`
	Meta       json.RawMessage `json:"meta"`
	CreatedAt  string          `json:"created_at"`
}

func NewAgentSessionResponse(s *models.AgentSession) AgentSessionResponse {
	return AgentSessionResponse{
		ID:         s.ID,
		AgentID:    s.AgentID,
		AgentKeyID: s.AgentKeyID,
		Meta:       s.Meta,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}
