package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

type AgentHandler struct {
	agentService AgentServiceInterface
	jwtService   *services.JWTService
}

func NewAgentHandler(agentService AgentServiceInterface, jwtService *services.JWTService) *AgentHandler {
	return &AgentHandler{agentService: agentService, jwtService: jwtService}
}

// Create handles POST /api/agent/v1/create.
func (h *AgentHandler) Create(c *drift.Context) {
	project := middleware.GetProject(c)
	user := middleware.GetUser(c)
	if project == nil || user == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	var req dto.CreateAgentRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("missing_fields: name"))
		return
	}

	agent, err := h.agentService.Create(c.Request.Context(),
		strings.TrimSpace(req.Name), req.Description, req.Provider, project.ID, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("agent create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_creation_failed"))
		return
	}

	_ = c.JSON(http.StatusCreated, dto.OK("agent_created", map[string]any{
		"agent": dto.NewAgentResponse(agent),
	}))
}

// List handles GET /api/agent/v1/list.
func (h *AgentHandler) List(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	agents, err := h.agentService.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		log.Error().Err(err).Msg("agent list failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_list_failed"))
		return
	}

	response := make([]dto.AgentResponse, 0, len(agents))
	for i := range agents {
		response = append(response, dto.NewAgentResponse(&agents[i]))
	}

	_ = c.JSON(http.StatusOK, dto.OK("agents_fetched", map[string]any{
		"agents": response,
	}))
}

// CreateKey handles POST /api/agent/v1/key/create. The new key replaces any
// previously active key for the agent.
func (h *AgentHandler) CreateKey(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	var req dto.CreateAgentKeyRequest
	if err := c.BindJSON(&req); err != nil || req.AgentID == uuid.Nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	// The agent must belong to the authenticated project.
	agent, err := h.agentService.GetByID(c.Request.Context(), req.AgentID)
	if err != nil || agent.ProjectID != project.ID {
		_ = c.JSON(http.StatusNotFound, dto.Fail("agent_not_found"))
		return
	}

	key, plainKey, err := h.agentService.CreateKey(c.Request.Context(), agent.ID, req.Name, req.ExpiresAt)
	if err != nil {
		log.Error().Err(err).Msg("agent key create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_key_creation_failed"))
		return
	}

	response := dto.AgentKeyCreatedResponse{
		ID:        key.ID,
		Key:       plainKey,
		Prefix:    key.Prefix,
		AgentID:   key.AgentID,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}
	if key.ExpiresAt != nil {
		formatted := key.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &formatted
	}

	_ = c.JSON(http.StatusCreated, dto.OK("agent_key_created", response))
}

// CreateSession handles POST /api/agent/v1/session/create. The caller
// authenticated with an agent key; the response carries a 30-day session
// token and the header it must be sent in.
func (h *AgentHandler) CreateSession(c *drift.Context) {
	agent := middleware.GetAgent(c)
	agentKey := middleware.GetAgentKey(c)
	if agent == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidAgentKey))
		return
	}

	var req dto.CreateAgentSessionRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	var keyID *uuid.UUID
	if agentKey != nil {
		keyID = &agentKey.ID
	}

	session, err := h.agentService.CreateSession(c.Request.Context(), agent.ID, keyID, req.Meta)
	if err != nil {
		log.Error().Err(err).Msg("agent session create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_session_creation_failed"))
		return
	}

	token, err := h.jwtService.GenerateAgentSessionToken(session.ID, agent.ID)
	if err != nil {
		log.Error().Err(err).Msg("agent session token issue failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_session_creation_failed"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("agent_session_created", dto.AgentSessionCreatedResponse{
		HeaderValue: middleware.HeaderAgentSessionToken,
		JWTToken:    token,
	}))
}

// VerifyAuth handles GET /api/agent/v1/auth/verify, echoing the agent
// resolved by AgentKeyAuth.
func (h *AgentHandler) VerifyAuth(c *drift.Context) {
	agent := middleware.GetAgent(c)
	if agent == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidAgentKey))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("agent_key_valid", map[string]any{
		"agent": dto.NewAgentResponse(agent),
	}))
}

// ListSessions handles GET /api/agent/v1/sessions/list.
func (h *AgentHandler) ListSessions(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	sessions, err := h.agentService.ListSessions(c.Request.Context(), project.ID)
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.Fail("agent_not_found"))
			return
		}
		log.Error().Err(err).Msg("agent session list failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("agent_session_list_failed"))
		return
	}

	response := make([]dto.AgentSessionResponse, 0, len(sessions))
	for i := range sessions {
		response = append(response, dto.NewAgentSessionResponse(&sessions[i]))
	}

	_ = c.JSON(http.StatusOK, dto.OK("agent_sessions_fetched", map[string]any{
		"sessions": response,
	}))
}
