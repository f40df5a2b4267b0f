package handler

import "time"

// Error codes carried in X-Error-Code and the envelope.
const (
	CodeOK        = "OK"
	CodeNotReady  = "RK-SYS-5030"
	CodeForbidden = "RK-ADMIN-4031"
	CodeInternal  = "RK-SYS-5000"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      CodeOK,
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// StatusResponse is the body of GET /admin/v1/status.
type StatusResponse struct {
	Version          string     `json:"version"`
	Commit           string     `json:"commit"`
	GoVersion        string     `json:"go_version"`
	UptimeSeconds    int64      `json:"uptime_seconds"`
	ConnectedClients int        `json:"connected_clients"`
	Keys             int        `json:"keys"`
	KeysByType       KeysByType `json:"keys_by_type"`
}

// KeysByType breaks the key count down by value type.
type KeysByType struct {
	Strings int `json:"string"`
	Hashes  int `json:"hash"`
	Sets    int `json:"set"`
}
