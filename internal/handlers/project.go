package handlers

import (
	"net/http"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

type ProjectHandler struct {
	projectService ProjectServiceInterface
}

func NewProjectHandler(projectService ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create handles POST /api/project/v1/create. The creator becomes the
// project's first Admin in the same transaction.
func (h *ProjectHandler) Create(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("project_creation_failed"))
		return
	}

	name := strings.TrimSpace(req.ProjectName)
	if name == "" || len(name) > 255 || len(req.ProjectDescription) > 300 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("project_creation_failed"))
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), name, req.ProjectDescription, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("project create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("project_creation_failed"))
		return
	}

	_ = c.JSON(http.StatusCreated, dto.OK("project_created", map[string]any{
		"project": dto.NewProjectResponse(project),
	}))
}

// List handles GET /api/project/v1/list.
func (h *ProjectHandler) List(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}

	projects, err := h.projectService.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("project list failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("project_list_failed"))
		return
	}

	response := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, dto.NewProjectResponse(&projects[i]))
	}

	_ = c.JSON(http.StatusOK, dto.OK("projects_fetched", map[string]any{
		"projects": response,
	}))
}
