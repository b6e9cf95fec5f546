package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user_id"
	requestContextKey ContextKey = "request"
)

// requestInfo is shared between the logging and auth middleware so the
// access log can report who made the request
type requestInfo struct {
	id     string
	userID int64
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenVerifier
	limiter *security.RateLimiter
	log     logrus.FieldLogger
}

// NewMiddleware creates a new middleware instance. A nil limiter disables rate limiting.
func NewMiddleware(tokens *security.TokenVerifier, limiter *security.RateLimiter, log logrus.FieldLogger) *Middleware {
	return &Middleware{tokens: tokens, limiter: limiter, log: log}
}

// RequireAuth rejects requests without a valid bearer access token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.tokens.Verify(bearerToken(r))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			respondWithError(w, m.log, err)
			return
		}

		if info, ok := r.Context().Value(requestContextKey).(*requestInfo); ok {
			info.userID = userID
		}
		ctx := context.WithValue(r.Context(), UserContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit throttles writes per authenticated user, falling back to the client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	if m.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + security.GetClientIP(r)
		if userID := GetUserIDFromContext(r.Context()); userID != 0 {
			key = "user:" + strconv.FormatInt(userID, 10)
		}
		if !m.limiter.Allow(key) {
			w.Header().Set("Retry-After", "60")
			respondWithStatus(w, http.StatusTooManyRequests, ErrRateLimited)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status, duration and request id
func Logging(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{id: security.RequestID(r)}
		w.Header().Set(security.RequestIDHeader, info.id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestContextKey, info)
		next.ServeHTTP(rec, r.WithContext(ctx))

		entry := log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  info.id,
		})
		if info.userID != 0 {
			entry = entry.WithField("user_id", info.userID)
		}
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("Request completed")
		} else {
			entry.Info("Request completed")
		}
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserIDFromContext retrieves the authenticated user id from the request context
func GetUserIDFromContext(ctx context.Context) int64 {
	userID, _ := ctx.Value(UserContextKey).(int64)
	return userID
}
