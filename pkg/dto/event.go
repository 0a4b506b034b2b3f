package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CaptureEventRequest struct {
	Path       *string  `json:"path"`
	Method     *string  `json:"method"`
	StatusCode *int     `json:"status_code"`
	LatencyMS  *float64 `json:"latency_ms"`

	RequestSizeBytes  *int `json:"request_size_bytes,omitempty"`
	ResponseSizeBytes *int `json:"response_size_bytes,omitempty"`

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
}

// MissingFields lists the required fields absent from the request.
func (r *CaptureEventRequest) MissingFields() []string {
	var missing []string
	if r.Path == nil {
		missing = append(missing, "path")
	}
	if r.Method == nil {
		missing = append(missing, "method")
	}
	if r.StatusCode == nil {
		missing = append(missing, "status_code")
	}
	if r.LatencyMS == nil {
		missing = append(missing, "latency_ms")
	}
	return missing
}

type EventCapturedResponse struct {
	EventID uuid.UUID `json:"event_id"`
}
