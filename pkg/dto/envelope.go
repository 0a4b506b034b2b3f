package dto

// Envelope is the response shape for every endpoint:
// {"status": 1|0, "status_description": "<code>", "response": <payload|null>}.
// The status_description codes are part of the wire contract.
type Envelope struct {
	Status            int    `json:"status"`
	StatusDescription string `json:"status_description"`
	Response          any    `json:"response"`
}

func OK(description string, response any) Envelope {
	return Envelope{Status: 1, StatusDescription: description, Response: response}
}

func Fail(description string) Envelope {
	return Envelope{Status: 0, StatusDescription: description, Response: nil}
}

// Failure codes shared by the authenticators.
const (
	CodeMissingToken             = "missing_token"
	CodeInvalidToken             = "invalid_token"
	CodeMissingHeaders           = "missing_headers"
	CodeMappingInvalid           = "user_project_mapping_invalid"
	CodeMissingSDKKey            = "missing_sdk_key"
	CodeInvalidSDKKey            = "invalid_sdk_key"
	CodeMissingAgentKey          = "missing_agent_key"
	CodeInvalidAgentKey          = "invalid_or_expired_agent_key"
	CodeMissingAgentSessionToken = "missing_agent_session_token"
	CodeInvalidSessionToken      = "invalid_or_expired_token"
	CodeForbidden                = "forbidden"
	CodeInternalError            = "internal_error"
)
