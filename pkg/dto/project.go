package dto

import (
	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/models"
)

type CreateProjectRequest struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func NewProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}
