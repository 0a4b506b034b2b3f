package handlers

import (
	"net/http"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Capture handles POST /api/events/v1/capture. The route runs behind both
// SDKKeyAuth and AgentSessionAuth, so the project and session identity have
// already been resolved.
func (h *EventHandler) Capture(c *drift.Context) {
	project := middleware.GetProject(c)
	claims := middleware.GetAgentSessionClaims(c)
	if project == nil || claims == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidSessionToken))
		return
	}

	var req dto.CaptureEventRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("missing_required_fields"))
		return
	}

	agentID := claims.AgentID.String()
	sessionID := claims.AgentSessionID.String()

	event := &models.BackendEvent{
		ProjectID:      project.ID.String(),
		AgentID:        &agentID,
		AgentSessionID: &sessionID,

		Path:       *req.Path,
		Method:     *req.Method,
		StatusCode: *req.StatusCode,
		LatencyMS:  *req.LatencyMS,

		RequestHeaders:  req.RequestHeaders,
		RequestBody:     req.RequestBody,
		QueryParams:     req.QueryParams,
		PostData:        req.PostData,
		ResponseHeaders: req.ResponseHeaders,
		ResponseBody:    req.ResponseBody,

		RequestContentType:  req.RequestContentType,
		ResponseContentType: req.ResponseContentType,

		CustomProperties: req.CustomProperties,
		Error:            req.Error,
		Metadata:         req.Metadata,
	}
	if req.RequestSizeBytes != nil {
		event.RequestSizeBytes = *req.RequestSizeBytes
	}
	if req.ResponseSizeBytes != nil {
		event.ResponseSizeBytes = *req.ResponseSizeBytes
	}

	captured, err := h.eventService.Capture(c.Request.Context(), event)
	if err != nil {
		log.Error().Err(err).Msg("event capture failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("event_capture_failed"))
		return
	}

	_ = c.JSON(http.StatusCreated, dto.OK("event_captured", dto.EventCapturedResponse{
		EventID: captured.EventID,
	}))
}
