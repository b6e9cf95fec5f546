package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrRateLimited         = "Request was throttled"
	ErrInternalServerError = "Internal server error"
)
