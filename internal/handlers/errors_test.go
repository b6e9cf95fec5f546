package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/models"
	"flashstudy/internal/security"
)

func TestRespondWithErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.ErrInvalidRating, http.StatusBadRequest},
		{fmt.Errorf("%w: limit", models.ErrInvalidParameter), http.StatusBadRequest},
		{security.ErrMissingToken, http.StatusUnauthorized},
		{fmt.Errorf("%w: expired", security.ErrInvalidToken), http.StatusUnauthorized},
		{models.ErrCardNotFound, http.StatusNotFound},
		{models.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: busy", models.ErrConflict), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithError(recorder, log, tt.err)

			if recorder.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, recorder.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if !body.Error || body.Detail == "" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestRespondWithErrorHidesInternalDetail(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	recorder := httptest.NewRecorder()
	respondWithError(recorder, log, errors.New("boom"))

	if strings.Contains(recorder.Body.String(), "boom") {
		t.Fatalf("internal error leaked to client: %q", recorder.Body.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected log to include error, got %q", buf.String())
	}
}
