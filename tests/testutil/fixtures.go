package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// DefaultPassword is the plain-text password every fixture user gets.
const DefaultPassword = "test-password-123"

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		FirstName: fmt.Sprintf("User%d", f.counter),
		LastName:  "Test",
		Email:     fmt.Sprintf("user%d@example.com", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	// Min cost keeps fixture creation fast; verification behavior is the same.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (first_name, middle_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, first_name, middle_name, last_name, email, password_hash, created_at, updated_at
	`, user.FirstName, user.MiddleName, user.LastName, user.Email, string(hash)).Scan(
		&user.ID, &user.FirstName, &user.MiddleName, &user.LastName,
		&user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's first and last name
func WithName(first, last string) UserOption {
	return func(u *models.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// CreateProject creates a test project with the creator mapped as Admin
func (f *Fixtures) CreateProject(t *testing.T, creator *models.User, opts ...ProjectOption) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		Name:      fmt.Sprintf("Test Project %d", f.counter),
		CreatedBy: creator.ID,
	}

	for _, opt := range opts {
		opt(project)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO project (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_by, is_active, created_at, updated_at
	`, project.Name, project.Description, project.CreatedBy).Scan(
		&project.ID, &project.Name, &project.Description, &project.CreatedBy,
		&project.IsActive, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_project_mapping (user_id, project_id, privilege)
		VALUES ($1, $2, $3)
	`, creator.ID, project.ID, models.PrivilegeAdmin)
	if err != nil {
		t.Fatalf("failed to add creator as admin: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return project
}

// ProjectOption configures a test project
type ProjectOption func(*models.Project)

// WithProjectName sets the project's name
func WithProjectName(name string) ProjectOption {
	return func(p *models.Project) {
		p.Name = name
	}
}

// AddMember maps a user onto a project with Member privilege
func (f *Fixtures) AddMember(t *testing.T, project *models.Project, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO user_project_mapping (user_id, project_id, privilege)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, user.ID, project.ID, models.PrivilegeMember)
	if err != nil {
		t.Fatalf("failed to add project member: %v", err)
	}
}

// CreateSDKKey mints and persists an SDK key for a project, returning the
// stored row and the full plain key
func (f *Fixtures) CreateSDKKey(t *testing.T, project *models.Project) (*models.BackendAPIKey, string) {
	t.Helper()

	fullKey, prefix, err := services.GenerateKey(services.NamespaceSDK)
	if err != nil {
		t.Fatalf("failed to generate sdk key: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash sdk key: %v", err)
	}

	ctx := context.Background()
	var key models.BackendAPIKey
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO backend_api_keys (prefix, hashed_key, project_id)
		VALUES ($1, $2, $3)
		RETURNING id, prefix, hashed_key, project_id, name, active, created_at, last_used_at, revoked_at, expires_at
	`, prefix, string(hash), project.ID).Scan(
		&key.ID, &key.Prefix, &key.HashedKey, &key.ProjectID, &key.Name,
		&key.Active, &key.CreatedAt, &key.LastUsedAt, &key.RevokedAt, &key.ExpiresAt,
	)
	if err != nil {
		t.Fatalf("failed to create sdk key: %v", err)
	}

	return &key, fullKey
}

// CreateAgent creates a test agent in a project
func (f *Fixtures) CreateAgent(t *testing.T, project *models.Project, creator *models.User) *models.Agent {
	t.Helper()
	f.counter++

	agent := &models.Agent{
		Name:      fmt.Sprintf("test-agent-%d", f.counter),
		Provider:  "openai",
		ProjectID: project.ID,
		CreatedBy: creator.ID,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO agent (name, description, provider, project_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, provider, project_id, created_by, is_active, created_at, updated_at
	`, agent.Name, agent.Description, agent.Provider, agent.ProjectID, agent.CreatedBy).Scan(
		&agent.ID, &agent.Name, &agent.Description, &agent.Provider,
		&agent.ProjectID, &agent.CreatedBy, &agent.IsActive, &agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	return agent
}

// CreateAgentKey mints and persists an active agent key, returning the stored
// row and the full plain key
func (f *Fixtures) CreateAgentKey(t *testing.T, agent *models.Agent) (*models.AgentKey, string) {
	t.Helper()

	fullKey, prefix, err := services.GenerateKey(services.NamespaceAgent)
	if err != nil {
		t.Fatalf("failed to generate agent key: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash agent key: %v", err)
	}

	ctx := context.Background()
	var key models.AgentKey
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO agent_key (prefix, hashed_key, agent_id)
		VALUES ($1, $2, $3)
		RETURNING id, prefix, hashed_key, agent_id, name, active, created_at, last_used_at, revoked_at, expires_at
	`, prefix, string(hash), agent.ID).Scan(
		&key.ID, &key.Prefix, &key.HashedKey, &key.AgentID, &key.Name,
		&key.Active, &key.CreatedAt, &key.LastUsedAt, &key.RevokedAt, &key.ExpiresAt,
	)
	if err != nil {
		t.Fatalf("failed to create agent key: %v", err)
	}

	return &key, fullKey
}

// CreateAgentSession records a session for an agent
func (f *Fixtures) CreateAgentSession(t *testing.T, agent *models.Agent, key *models.AgentKey) *models.AgentSession {
	t.Helper()

	var keyID *uuid.UUID
	if key != nil {
		keyID = &key.ID
	}

	ctx := context.Background()
	var session models.AgentSession
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO agent_session (agent_id, agent_key_id, meta)
		VALUES ($1, $2, $3)
		RETURNING id, agent_id, agent_key_id, meta, created_at
	`, agent.ID, keyID, json.RawMessage(`{}`)).Scan(
		&session.ID, &session.AgentID, &session.AgentKeyID, &session.Meta, &session.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create agent session: %v", err)
	}

	return &session
}
