package models

import "fmt"

type ResponseType string

const (
	Generating ResponseType = "GENERATING"
	Done       ResponseType = "DONE"
	Error      ResponseType = "ERROR"
)

type ErrorCode string

const (
	ErrCodeUnknown      ErrorCode = "UNKNOWN_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeAPIKeyNotSet ErrorCode = "API_KEY_NOT_SET"
)

type ResponseError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// ConversationResponse is one event of a completion. A request produces
// zero or more Generating responses followed by exactly one Done or Error.
type ConversationResponse struct {
	Type  ResponseType   `json:"message_type"`
	Text  string         `json:"message_text,omitempty"`
	Error *ResponseError `json:"error,omitempty"`
}

func GeneratingResponse(text string) ConversationResponse {
	return ConversationResponse{Type: Generating, Text: text}
}

func DoneResponse(text string) ConversationResponse {
	return ConversationResponse{Type: Done, Text: text}
}

func ErrorResponse(code ErrorCode, msg string) ConversationResponse {
	return ConversationResponse{Type: Error, Error: &ResponseError{Code: code, Message: msg}}
}

// IsTerminal reports if no further responses follow this one.
func (r ConversationResponse) IsTerminal() bool {
	return r.Type == Done || r.Type == Error
}

// Callback receives responses keyed by request id.
type Callback func(requestID string, resp ConversationResponse)
