package services

import (
	"context"
	"fmt"

	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
)

// EventService appends captured request/response events. Rows are never
// updated or deleted.
type EventService struct {
	db *database.DB
}

func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Capture(ctx context.Context, event *models.BackendEvent) (*models.BackendEvent, error) {
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO backend_event (
			project_id, agent_id, agent_session_id,
			path, method, status_code, latency_ms,
			request_size_bytes, response_size_bytes,
			request_headers, request_body, query_params, post_data,
			response_headers, response_body,
			request_content_type, response_content_type,
			custom_properties, error, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING event_id, event_time, created_at
	`,
		event.ProjectID, event.AgentID, event.AgentSessionID,
		event.Path, event.Method, event.StatusCode, event.LatencyMS,
		event.RequestSizeBytes, event.ResponseSizeBytes,
		event.RequestHeaders, event.RequestBody, event.QueryParams, event.PostData,
		event.ResponseHeaders, event.ResponseBody,
		event.RequestContentType, event.ResponseContentType,
		event.CustomProperties, event.Error, event.Metadata,
	).Scan(&event.EventID, &event.EventTime, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to capture event: %w", err)
	}
	return event, nil
}
