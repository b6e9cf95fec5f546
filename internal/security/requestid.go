package security

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id used to correlate log lines with a request
const RequestIDHeader = "X-Request-Id"

// RequestID returns the caller's request id when it is a valid UUID, or a new one
func RequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.New().String()
}
