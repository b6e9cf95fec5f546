package handlers

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the study routes, health check, CORS and request logging
func NewRouter(study *StudyHandler, mw *Middleware, allowedOrigins []string, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Reads
	mux.HandleFunc("GET /api/study/due_cards/{$}", mw.RequireAuth(study.DueCards))
	mux.HandleFunc("GET /api/study/all_cards/{$}", mw.RequireAuth(study.AllCards))
	mux.HandleFunc("GET /api/study/matching_cards/{$}", mw.RequireAuth(study.MatchingCards))
	mux.HandleFunc("GET /api/study/test_cards/{$}", mw.RequireAuth(study.TestCards))
	mux.HandleFunc("GET /api/study/schedule/{$}", mw.RequireAuth(study.Schedule))
	mux.HandleFunc("GET /api/study/reminders/{$}", mw.RequireAuth(study.GetReminders))
	mux.HandleFunc("GET /api/study/profile/{$}", mw.RequireAuth(study.Profile))
	mux.HandleFunc("GET /api/study/cards/{id}/reviews/{$}", mw.RequireAuth(study.ReviewHistory))

	// Writes
	mux.HandleFunc("POST /api/study/start_session/{$}", mw.RequireAuth(mw.RateLimit(study.StartSession)))
	mux.HandleFunc("POST /api/study/submit_review/{$}", mw.RequireAuth(mw.RateLimit(study.SubmitReview)))
	mux.HandleFunc("POST /api/study/end_session/{$}", mw.RequireAuth(mw.RateLimit(study.EndSession)))
	mux.HandleFunc("PUT /api/study/reminders/{$}", mw.RequireAuth(mw.RateLimit(study.UpdateReminders)))

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})
	return Logging(log, c.Handler(mux))
}
