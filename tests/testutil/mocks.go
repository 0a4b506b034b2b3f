package testutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, firstName, middleName, lastName, email, password string) (*models.User, error) {
	args := m.Called(ctx, firstName, middleName, lastName, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, middleName, lastName string) (*models.User, error) {
	args := m.Called(ctx, id, firstName, middleName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, name, description string, createdBy uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, name, description, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetMapping(ctx context.Context, userID, projectID uuid.UUID) (*models.UserProjectMapping, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProjectMapping), args.Error(1)
}

func (m *MockProjectService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Project), args.Error(1)
}

// MockAPIKeyService mocks the APIKeyService
type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Create(ctx context.Context, projectID uuid.UUID, name *string, expiresAt *time.Time) (*models.BackendAPIKey, string, error) {
	args := m.Called(ctx, projectID, name, expiresAt)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.BackendAPIKey), args.String(1), args.Error(2)
}

func (m *MockAPIKeyService) VerifyKey(ctx context.Context, fullKey string) (*models.Project, error) {
	args := m.Called(ctx, fullKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockAPIKeyService) List(ctx context.Context, projectID uuid.UUID) ([]models.BackendAPIKey, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.BackendAPIKey), args.Error(1)
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, keyID, projectID uuid.UUID) error {
	args := m.Called(ctx, keyID, projectID)
	return args.Error(0)
}

// MockAgentService mocks the AgentService
type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) Create(ctx context.Context, name, description, provider string, projectID, createdBy uuid.UUID) (*models.Agent, error) {
	args := m.Called(ctx, name, description, provider, projectID, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Agent, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Agent), args.Error(1)
}

func (m *MockAgentService) CreateKey(ctx context.Context, agentID uuid.UUID, name *string, expiresAt *time.Time) (*models.AgentKey, string, error) {
	args := m.Called(ctx, agentID, name, expiresAt)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.AgentKey), args.String(1), args.Error(2)
}

func (m *MockAgentService) VerifyKey(ctx context.Context, fullKey string) (*models.Agent, *models.AgentKey, error) {
	args := m.Called(ctx, fullKey)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Agent), args.Get(1).(*models.AgentKey), args.Error(2)
}

func (m *MockAgentService) CreateSession(ctx context.Context, agentID uuid.UUID, agentKeyID *uuid.UUID, meta json.RawMessage) (*models.AgentSession, error) {
	args := m.Called(ctx, agentID, agentKeyID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentSession), args.Error(1)
}

func (m *MockAgentService) ListSessions(ctx context.Context, projectID uuid.UUID) ([]models.AgentSession, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.AgentSession), args.Error(1)
}

// MockEventService mocks the EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) Capture(ctx context.Context, event *models.BackendEvent) (*models.BackendEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackendEvent), args.Error(1)
}
