package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/models"
)

// Service interfaces consumed by the handlers. Kept narrow so handler tests
// can substitute testify mocks.

type UserServiceInterface interface {
	Create(ctx context.Context, firstName, middleName, lastName, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, middleName, lastName string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error
}

type ProjectServiceInterface interface {
	Create(ctx context.Context, name, description string, createdBy uuid.UUID) (*models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
}

type APIKeyServiceInterface interface {
	Create(ctx context.Context, projectID uuid.UUID, name *string, expiresAt *time.Time) (*models.BackendAPIKey, string, error)
	List(ctx context.Context, projectID uuid.UUID) ([]models.BackendAPIKey, error)
	Revoke(ctx context.Context, keyID, projectID uuid.UUID) error
}

type AgentServiceInterface interface {
	Create(ctx context.Context, name, description, provider string, projectID, createdBy uuid.UUID) (*models.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Agent, error)
	CreateKey(ctx context.Context, agentID uuid.UUID, name *string, expiresAt *time.Time) (*models.AgentKey, string, error)
	CreateSession(ctx context.Context, agentID uuid.UUID, agentKeyID *uuid.UUID, meta json.RawMessage) (*models.AgentSession, error)
	ListSessions(ctx context.Context, projectID uuid.UUID) ([]models.AgentSession, error)
}

type EventServiceInterface interface {
	Capture(ctx context.Context, event *models.BackendEvent) (*models.BackendEvent, error)
}
