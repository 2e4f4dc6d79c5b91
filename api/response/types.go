/*
Package response renders API results.

Every body carries the request id. Internal failures are logged with their
origin stack and rendered as "internal server error".

	success: { success: true, data: {...}, message: "...", code: 200, request_id: "..." }
	failure: { success: false, error: "ERROR_CODE", message: "...", details: {...}, code: 4xx/5xx, request_id: "..." }
*/
package response

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type Response struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}
