package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BackendEvent is one captured request/response record. Rows are append-only.
type BackendEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	EventTime      time.Time `json:"event_time"`
	ProjectID      string    `json:"project_id"`
	AgentID        *string   `json:"agent_id,omitempty"`
	AgentSessionID *string   `json:"agent_session_id,omitempty"`

	Path       string  `json:"path"`
	Method     string  `json:"method"`
	StatusCode int     `json:"status_code"`
	LatencyMS  float64 `json:"latency_ms"`

	RequestSizeBytes  int `json:"request_size_bytes"`
	ResponseSizeBytes int `json:"response_size_bytes"`

	RequestHeaders  *string `json:"request_headers,omitempty"`
	RequestBody     *string `json:"request_body,omitempty"`
	QueryParams     *string `json:"query_params,omitempty"`
	PostData        *string `json:"post_data,omitempty"`
	ResponseHeaders *string `json:"response_headers,omitempty"`
	ResponseBody    *string `json:"response_body,omitempty"`

	RequestContentType  *string `json:"request_content_type,omitempty"`
	ResponseContentType *string `json:"response_content_type,omitempty"`

	CustomProperties json.RawMessage `json:"custom_properties,omitempty"`
	Error            *string         `json:"error,omitempty"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
