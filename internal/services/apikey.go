package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
)

var (
	ErrInvalidKey     = errors.New("invalid or expired key")
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// APIKeyService manages project-scoped backend SDK keys. A project may hold
// any number of concurrently active keys.
type APIKeyService struct {
	db *database.DB
}

func NewAPIKeyService(db *database.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

const apiKeyColumns = `id, prefix, hashed_key, project_id, name, active, created_at, last_used_at, revoked_at, expires_at`

// Create mints a new SDK key for the project. The returned plain key is the
// only time the secret is visible; just the hash and prefix persist.
func (s *APIKeyService) Create(ctx context.Context, projectID uuid.UUID, name *string, expiresAt *time.Time) (*models.BackendAPIKey, string, error) {
	fullKey, prefix, err := GenerateKey(NamespaceSDK)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}

	hash, err := HashSecret(fullKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key: %w", err)
	}

	var key models.BackendAPIKey
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO backend_api_keys (prefix, hashed_key, project_id, name, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+apiKeyColumns,
		prefix, hash, projectID, name, expiresAt).Scan(
		&key.ID, &key.Prefix, &key.HashedKey, &key.ProjectID, &key.Name,
		&key.Active, &key.CreatedAt, &key.LastUsedAt, &key.RevokedAt, &key.ExpiresAt,
	)
	if err != nil {
		return nil, "", err
	}

	return &key, fullKey, nil
}

// VerifyKey resolves a full SDK key to its project. The prefix narrows the
// candidate set to active rows; each candidate is verified in order until one
// matches. Malformed keys, unknown prefixes, exhausted candidates, and
// revoked/expired rows all come back as the same ErrInvalidKey.
func (s *APIKeyService) VerifyKey(ctx context.Context, fullKey string) (*models.Project, error) {
	prefix, err := ParseKey(fullKey, NamespaceSDK)
	if err != nil {
		return nil, ErrInvalidKey
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM backend_api_keys
		WHERE prefix = $1 AND active = TRUE
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up key by prefix: %w", err)
	}
	defer rows.Close()

	var candidates []models.BackendAPIKey
	for rows.Next() {
		var k models.BackendAPIKey
		if err := rows.Scan(
			&k.ID, &k.Prefix, &k.HashedKey, &k.ProjectID, &k.Name,
			&k.Active, &k.CreatedAt, &k.LastUsedAt, &k.RevokedAt, &k.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		candidates = append(candidates, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range candidates {
		k := &candidates[i]
		if !k.Usable(now) {
			continue
		}
		if VerifySecret(fullKey, k.HashedKey) {
			var p models.Project
			err := s.db.Pool.QueryRow(ctx, `
				SELECT `+projectColumns+` FROM project WHERE id = $1 AND is_active = TRUE
			`, k.ProjectID).Scan(
				&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			)
			if err != nil {
				// An inactive or deleted project invalidates the key; anything
				// else is a store failure and must surface as one.
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, ErrInvalidKey
				}
				return nil, fmt.Errorf("failed to load key project: %w", err)
			}
			return &p, nil
		}
	}

	return nil, ErrInvalidKey
}

func (s *APIKeyService) List(ctx context.Context, projectID uuid.UUID) ([]models.BackendAPIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM backend_api_keys
		WHERE project_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.BackendAPIKey
	for rows.Next() {
		var k models.BackendAPIKey
		if err := rows.Scan(
			&k.ID, &k.Prefix, &k.HashedKey, &k.ProjectID, &k.Name,
			&k.Active, &k.CreatedAt, &k.LastUsedAt, &k.RevokedAt, &k.ExpiresAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke deactivates a key. Revoking an already-revoked key is a no-op.
func (s *APIKeyService) Revoke(ctx context.Context, keyID, projectID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE backend_api_keys
		SET active = FALSE, revoked_at = NOW()
		WHERE id = $1 AND project_id = $2 AND revoked_at IS NULL
	`, keyID, projectID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		// Distinguish "never existed" from "already revoked": the latter is
		// idempotent success.
		var exists bool
		if err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM backend_api_keys WHERE id = $1 AND project_id = $2)
		`, keyID, projectID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrAPIKeyNotFound
		}
	}
	return nil
}
