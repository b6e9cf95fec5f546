package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/models"
	"flashstudy/internal/security"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error  bool   `json:"error"`
	Detail string `json:"detail"`
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRating), errors.Is(err, models.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrMissingToken), errors.Is(err, security.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrCardNotFound), errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// detailFor returns the message shown to the client. Unexpected errors are
// not echoed back.
func detailFor(status int, err error) string {
	switch {
	case status == http.StatusInternalServerError:
		return ErrInternalServerError
	case errors.Is(err, models.ErrConflict):
		return models.ErrConflict.Error()
	case errors.Is(err, security.ErrInvalidToken):
		return security.ErrInvalidToken.Error()
	}
	return err.Error()
}

func respondWithError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	}
	respondWithStatus(w, status, detailFor(status, err))
}

func respondWithStatus(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Error: true, Detail: detail})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
