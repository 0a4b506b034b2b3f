package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrMappingNotFound = errors.New("user project mapping not found")
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

const projectColumns = `id, name, description, created_by, is_active, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the project and the creator's Admin mapping in one
// transaction, so a project can never exist without at least one Admin.
func (s *ProjectService) Create(ctx context.Context, name, description string, createdBy uuid.UUID) (*models.Project, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	project, err := scanProject(tx.QueryRow(ctx, `
		INSERT INTO project (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING `+projectColumns,
		name, description, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_project_mapping (user_id, project_id, privilege)
		VALUES ($1, $2, $3)
	`, createdBy, project.ID, models.PrivilegeAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin mapping: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := scanProject(s.db.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM project WHERE id = $1 AND is_active = TRUE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// GetMapping returns the active mapping for (user, project).
func (s *ProjectService) GetMapping(ctx context.Context, userID, projectID uuid.UUID) (*models.UserProjectMapping, error) {
	var m models.UserProjectMapping
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, project_id, privilege, is_active, created_at, updated_at
		FROM user_project_mapping
		WHERE user_id = $1 AND project_id = $2 AND is_active = TRUE
	`, userID, projectID).Scan(
		&m.ID, &m.UserID, &m.ProjectID, &m.Privilege, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByUser returns the active projects the user has an active mapping to.
func (s *ProjectService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.created_by, p.is_active, p.created_at, p.updated_at
		FROM project p
		JOIN user_project_mapping m ON m.project_id = p.id
		WHERE m.user_id = $1 AND m.is_active = TRUE AND p.is_active = TRUE
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
