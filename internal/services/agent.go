package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
)

var ErrAgentNotFound = errors.New("agent not found")

type AgentService struct {
	db *database.DB
}

func NewAgentService(db *database.DB) *AgentService {
	return &AgentService{db: db}
}

const agentColumns = `id, name, description, provider, project_id, created_by, is_active, created_at, updated_at`

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var a models.Agent
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Provider, &a.ProjectID, &a.CreatedBy, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AgentService) Create(ctx context.Context, name, description, provider string, projectID, createdBy uuid.UUID) (*models.Agent, error) {
	agent, err := scanAgent(s.db.Pool.QueryRow(ctx, `
		INSERT INTO agent (name, description, provider, project_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+agentColumns,
		name, description, provider, projectID, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return agent, nil
}

func (s *AgentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, err := scanAgent(s.db.Pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM agent WHERE id = $1 AND is_active = TRUE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Agent, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+agentColumns+` FROM agent
		WHERE project_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Provider, &a.ProjectID, &a.CreatedBy, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

const agentKeyColumns = `id, prefix, hashed_key, agent_id, name, active, created_at, last_used_at, revoked_at, expires_at`

// CreateKey mints a new key for the agent. Unlike project SDK keys, an agent
// holds at most one active key: all previously active keys are revoked and
// the new one inserted inside a single transaction, so a failure part-way
// never leaves the agent with two active keys or none.
func (s *AgentService) CreateKey(ctx context.Context, agentID uuid.UUID, name *string, expiresAt *time.Time) (*models.AgentKey, string, error) {
	fullKey, prefix, err := GenerateKey(NamespaceAgent)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}

	hash, err := HashSecret(fullKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE agent_key
		SET active = FALSE, revoked_at = NOW()
		WHERE agent_id = $1 AND active = TRUE
	`, agentID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to revoke previous keys: %w", err)
	}

	var key models.AgentKey
	err = tx.QueryRow(ctx, `
		INSERT INTO agent_key (prefix, hashed_key, agent_id, name, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+agentKeyColumns,
		prefix, hash, agentID, name, expiresAt).Scan(
		&key.ID, &key.Prefix, &key.HashedKey, &key.AgentID, &key.Name,
		&key.Active, &key.CreatedAt, &key.LastUsedAt, &key.RevokedAt, &key.ExpiresAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create agent key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &key, fullKey, nil
}

// VerifyKey resolves a full agent key to its agent and key row, using the
// same prefix-candidate strategy as SDK keys.
func (s *AgentService) VerifyKey(ctx context.Context, fullKey string) (*models.Agent, *models.AgentKey, error) {
	prefix, err := ParseKey(fullKey, NamespaceAgent)
	if err != nil {
		return nil, nil, ErrInvalidKey
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+agentKeyColumns+`
		FROM agent_key
		WHERE prefix = $1 AND active = TRUE
	`, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up key by prefix: %w", err)
	}
	defer rows.Close()

	var candidates []models.AgentKey
	for rows.Next() {
		var k models.AgentKey
		if err := rows.Scan(
			&k.ID, &k.Prefix, &k.HashedKey, &k.AgentID, &k.Name,
			&k.Active, &k.CreatedAt, &k.LastUsedAt, &k.RevokedAt, &k.ExpiresAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan key: %w", err)
		}
		candidates = append(candidates, k)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	for i := range candidates {
		k := &candidates[i]
		if !k.Usable(now) {
			continue
		}
		if VerifySecret(fullKey, k.HashedKey) {
			agent, err := s.GetByID(ctx, k.AgentID)
			if err != nil {
				if errors.Is(err, ErrAgentNotFound) {
					return nil, nil, ErrInvalidKey
				}
				return nil, nil, err
			}
			return agent, k, nil
		}
	}

	return nil, nil, ErrInvalidKey
}

// CreateSession records an authenticated interaction window for the agent.
func (s *AgentService) CreateSession(ctx context.Context, agentID uuid.UUID, agentKeyID *uuid.UUID, meta json.RawMessage) (*models.AgentSession, error) {
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}

	var session models.AgentSession
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO agent_session (agent_id, agent_key_id, meta)
		VALUES ($1, $2, $3)
		RETURNING id, agent_id, agent_key_id, meta, created_at
	`, agentID, agentKeyID, meta).Scan(
		&session.ID, &session.AgentID, &session.AgentKeyID, &session.Meta, &session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent session: %w", err)
	}
	return &session, nil
}

func (s *AgentService) ListSessions(ctx context.Context, projectID uuid.UUID) ([]models.AgentSession, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT s.id, s.agent_id, s.agent_key_id, s.meta, s.created_at
		FROM agent_session s
		JOIN agent a ON a.id = s.agent_id
		WHERE a.project_id = $1
		ORDER BY s.created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.AgentSession
	for rows.Next() {
		var sess models.AgentSession
		if err := rows.Scan(&sess.ID, &sess.AgentID, &sess.AgentKeyID, &sess.Meta, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
