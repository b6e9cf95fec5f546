package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/notify"
	"flashstudy/internal/repository"
	"flashstudy/internal/security"
	"flashstudy/internal/service"
	"flashstudy/internal/srs"
)

const testSecret = "test-secret"

type testServer struct {
	handler http.Handler
	db      *database.DB
	tokens  *security.TokenVerifier
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(t *testing.T, limiter *security.RateLimiter) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	log := quietLogger()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background(), log); err != nil {
		t.Fatal(err)
	}

	study := service.NewStudyService(db, srs.NewScheduler(srs.Config{}), time.UTC, log)
	reminders := service.NewReminderService(db, notify.NopSender{}, "http://localhost:5173", log)
	tokens := security.NewTokenVerifier(testSecret, "")
	mw := NewMiddleware(tokens, limiter, log)
	h := NewStudyHandler(study, reminders, "https://cdn.example.com/media/", log)

	return &testServer{
		handler: NewRouter(h, mw, []string{"http://localhost:5173"}, log),
		db:      db,
		tokens:  tokens,
	}
}

func (s *testServer) do(t *testing.T, userID int64, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := s.tokens.Issue(userID, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedDeck(t *testing.T, userID int64) *models.Deck {
	t.Helper()
	deck := &models.Deck{UserID: userID, Name: "Deck", CreatedAt: time.Now().UTC()}
	if err := repository.NewDeckRepository(s.db).Create(context.Background(), deck); err != nil {
		t.Fatal(err)
	}
	return deck
}

func (s *testServer) seedCard(t *testing.T, deckID int64, front, back string, nextReview *time.Time) *models.Card {
	t.Helper()
	card := &models.Card{
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Tags:       models.TagList{"x"},
		EaseFactor: 2.5,
		CreatedAt:  time.Now().UTC(),
	}
	if nextReview != nil {
		reviewed := nextReview.Add(-24 * time.Hour)
		card.NextReview = nextReview
		card.LastReviewedAt = &reviewed
		card.Repetitions = 1
		card.IntervalDays = 1
	}
	if err := repository.NewCardRepository(s.db).Create(context.Background(), card); err != nil {
		t.Fatal(err)
	}
	return card
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func startSession(t *testing.T, s *testServer, userID, deckID int64, mode string) int64 {
	t.Helper()
	rec := s.do(t, userID, "POST", "/api/study/start_session/", map[string]interface{}{"deck_id": deckID, "mode": mode})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start_session status %d: %s", rec.Code, rec.Body.String())
	}
	var resp startSessionResponse
	decodeBody(t, rec, &resp)
	return resp.SessionID
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, 0, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(security.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestStudyRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, 0, "GET", "/api/study/due_cards/?deck_id=1&limit=5", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body errorResponse
	decodeBody(t, rec, &body)
	if !body.Error {
		t.Error("expected error flag")
	}

	req := httptest.NewRequest("GET", "/api/study/due_cards/?deck_id=1&limit=5", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestDueCardsSelection(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)

	past := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	future := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	for i := 0; i < 3; i++ {
		s.seedCard(t, deck.ID, "due", "back", &past)
	}
	for i := 0; i < 10; i++ {
		s.seedCard(t, deck.ID, "later", "back", &future)
	}

	rec := s.do(t, 1, "GET", "/api/study/due_cards/?deck_id="+itoa(deck.ID)+"&limit=20", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp cardListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 3 || len(resp.Cards) != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}

	// other users see nothing
	rec = s.do(t, 2, "GET", "/api/study/due_cards/?deck_id="+itoa(deck.ID)+"&limit=20", nil)
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("foreign deck count = %d, want 0", resp.Count)
	}
}

func TestCardListsEchoReverse(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	past := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	s.seedCard(t, deck.ID, "uno", "one", &past)

	tests := []struct {
		target string
		want   bool
	}{
		{"/api/study/due_cards/?deck_id=" + itoa(deck.ID) + "&limit=5&reverse=true", true},
		{"/api/study/due_cards/?deck_id=" + itoa(deck.ID) + "&limit=5", false},
		{"/api/study/all_cards/?deck_id=" + itoa(deck.ID) + "&limit=5&reverse=1", true},
		{"/api/study/all_cards/?deck_id=" + itoa(deck.ID) + "&limit=5&reverse=false", false},
	}
	for _, tt := range tests {
		rec := s.do(t, 1, "GET", tt.target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", tt.target, rec.Code, rec.Body.String())
		}
		var resp map[string]interface{}
		decodeBody(t, rec, &resp)
		if got, ok := resp["reverse"].(bool); !ok || got != tt.want {
			t.Errorf("%s: reverse = %v, want %v", tt.target, resp["reverse"], tt.want)
		}
		if resp["count"] != float64(1) {
			t.Errorf("%s: count = %v, want 1", tt.target, resp["count"])
		}
	}

	rec := s.do(t, 1, "GET", "/api/study/due_cards/?deck_id="+itoa(deck.ID)+"&limit=5&reverse=maybe", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad reverse status = %d, want 400", rec.Code)
	}
}

func TestDueCardsParameterErrors(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{
		"/api/study/due_cards/?limit=5",
		"/api/study/due_cards/?deck_id=abc&limit=5",
		"/api/study/due_cards/?deck_id=1",
		"/api/study/due_cards/?deck_id=1&limit=0",
		"/api/study/all_cards/?deck_id=1&limit=5&kind=weird",
		"/api/study/matching_cards/?deck_id=1&limit=5&reverse=maybe",
		"/api/study/schedule/?days=0x",
	} {
		rec := s.do(t, 1, "GET", target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestAllCardsPracticeMode(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	card := s.seedCard(t, deck.ID, "hola", "hello", nil)
	card.ImagePath = "cards/hola.png"
	if _, err := s.db.ExecContext(context.Background(), "UPDATE cards SET image_path = ? WHERE id = ?", card.ImagePath, card.ID); err != nil {
		t.Fatal(err)
	}

	rec := s.do(t, 1, "GET", "/api/study/all_cards/?deck_id="+itoa(deck.ID)+"&limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count int                      `json:"count"`
		Mode  string                   `json:"mode"`
		Cards []map[string]interface{} `json:"cards"`
	}
	decodeBody(t, rec, &resp)
	if resp.Mode != "practice" || resp.Count != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if got := resp.Cards[0]["image_url"]; got != "https://cdn.example.com/media/cards/hola.png" {
		t.Errorf("image_url = %v", got)
	}
	if _, leaked := resp.Cards[0]["version"]; leaked {
		t.Error("version must not be serialized")
	}
}

func TestSubmitReviewFlow(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	card := s.seedCard(t, deck.ID, "uno", "one", nil)
	sessionID := startSession(t, s, 1, deck.ID, "")

	rec := s.do(t, 1, "POST", "/api/study/submit_review/", map[string]interface{}{
		"card_id": card.ID, "session_id": sessionID, "rating": 3, "time_taken": 4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp submitReviewResponse
	decodeBody(t, rec, &resp)
	if resp.Repetitions != 1 || resp.IntervalDays != 3 || resp.EaseFactor != 2.5 {
		t.Errorf("schedule = %+v", resp)
	}
	if resp.PointsEarned != 3 || resp.CurrentStreak != 1 {
		t.Errorf("points/streak = %d/%d", resp.PointsEarned, resp.CurrentStreak)
	}
	if resp.NextReview == nil || resp.Card.LastReviewedAt == nil || !resp.NextReview.After(*resp.Card.LastReviewedAt) {
		t.Errorf("next_review must follow last_reviewed_at: %+v", resp)
	}
}

func TestProfileAndReviewHistory(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	card := s.seedCard(t, deck.ID, "uno", "one", nil)

	rec := s.do(t, 1, "GET", "/api/study/profile/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status %d: %s", rec.Code, rec.Body.String())
	}
	var profile models.Profile
	decodeBody(t, rec, &profile)
	if profile.UserID != 1 || profile.TotalPoints != 0 || profile.LastStudyDate != nil {
		t.Errorf("fresh profile = %+v", profile)
	}

	historyURL := "/api/study/cards/" + itoa(card.ID) + "/reviews/"
	rec = s.do(t, 1, "GET", historyURL, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"reviews":[]`) {
		t.Fatalf("empty history = %d %s", rec.Code, rec.Body.String())
	}

	sessionID := startSession(t, s, 1, deck.ID, "learning")
	for _, rating := range []int{4, 2} {
		rec = s.do(t, 1, "POST", "/api/study/submit_review/", map[string]interface{}{
			"card_id": card.ID, "session_id": sessionID, "rating": rating,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("submit status %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec = s.do(t, 1, "GET", "/api/study/profile/", nil)
	decodeBody(t, rec, &profile)
	if profile.TotalCardsStudied != 2 || profile.TotalPoints != 6 || profile.CurrentStreak != 1 {
		t.Errorf("profile after reviews = %+v", profile)
	}

	rec = s.do(t, 1, "GET", historyURL, nil)
	var history reviewListResponse
	decodeBody(t, rec, &history)
	if history.Count != 2 || len(history.Reviews) != 2 {
		t.Fatalf("history = %+v", history)
	}
	for _, r := range history.Reviews {
		if r.CardID != card.ID || r.SessionID != sessionID {
			t.Errorf("review = %+v", r)
		}
	}

	tests := []struct {
		name   string
		userID int64
		target string
		status int
	}{
		{"someone else's card", 2, historyURL, http.StatusNotFound},
		{"unknown card", 1, "/api/study/cards/9999/reviews/", http.StatusNotFound},
		{"bad card id", 1, "/api/study/cards/abc/reviews/", http.StatusBadRequest},
		{"no token", 0, "/api/study/profile/", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.userID, "GET", tt.target, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestSubmitReviewErrors(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	card := s.seedCard(t, deck.ID, "uno", "one", nil)
	sessionID := startSession(t, s, 1, deck.ID, "learning")

	tests := []struct {
		name   string
		userID int64
		body   map[string]interface{}
		status int
	}{
		{"rating too high", 1, map[string]interface{}{"card_id": card.ID, "session_id": sessionID, "rating": 7}, http.StatusBadRequest},
		{"rating missing", 1, map[string]interface{}{"card_id": card.ID, "session_id": sessionID}, http.StatusBadRequest},
		{"bad rating wins over missing card", 1, map[string]interface{}{"rating": 0}, http.StatusBadRequest},
		{"missing card id", 1, map[string]interface{}{"session_id": sessionID, "rating": 3}, http.StatusBadRequest},
		{"unknown card", 1, map[string]interface{}{"card_id": 9999, "session_id": sessionID, "rating": 3}, http.StatusNotFound},
		{"unknown session", 1, map[string]interface{}{"card_id": card.ID, "session_id": 9999, "rating": 3}, http.StatusNotFound},
		{"someone else's card", 2, map[string]interface{}{"card_id": card.ID, "session_id": sessionID, "rating": 3}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.userID, "POST", "/api/study/submit_review/", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	// none of the failures touched the card
	got, err := repository.NewCardRepository(s.db).GetForUser(context.Background(), 1, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Repetitions != 0 || got.NextReview != nil || got.Version != 0 {
		t.Errorf("card changed after rejected reviews: %+v", got)
	}
}

func TestSubmitReviewMalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)
	token, _ := s.tokens.Issue(1, time.Hour)
	req := httptest.NewRequest("POST", "/api/study/submit_review/", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStartSessionValidation(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)

	for name, body := range map[string]map[string]interface{}{
		"no deck":      {"mode": "learning"},
		"bad mode":     {"deck_id": deck.ID, "mode": "cram"},
		"foreign deck": {"deck_id": deck.ID + 100},
	} {
		rec := s.do(t, 1, "POST", "/api/study/start_session/", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}

	rec := s.do(t, 1, "POST", "/api/study/start_session/", map[string]interface{}{"deck_id": deck.ID, "mode": "test", "reverse": true})
	var resp startSessionResponse
	decodeBody(t, rec, &resp)
	if resp.Mode != models.ModeTest || !resp.Reverse || resp.SessionID == 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestEndSessionIsIdempotent(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	sessionID := startSession(t, s, 1, deck.ID, "")

	for i := 0; i < 2; i++ {
		rec := s.do(t, 1, "POST", "/api/study/end_session/", map[string]interface{}{"session_id": sessionID})
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "{}" {
			t.Fatalf("end_session #%d = %d %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := s.do(t, 1, "POST", "/api/study/end_session/", map[string]interface{}{"session_id": 424242})
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown session status = %d, want 200", rec.Code)
	}
}

func TestQuizRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	s.seedCard(t, deck.ID, "perro", "dog", nil)
	s.seedCard(t, deck.ID, "gato", "cat", nil)
	s.seedCard(t, deck.ID, "pez", "fish", nil)

	rec := s.do(t, 1, "GET", "/api/study/matching_cards/?deck_id="+itoa(deck.ID)+"&limit=10&reverse=true", nil)
	var matching struct {
		Cards []matchingCard `json:"cards"`
	}
	decodeBody(t, rec, &matching)
	if len(matching.Cards) != 3 {
		t.Fatalf("matching cards = %d", len(matching.Cards))
	}
	for _, c := range matching.Cards {
		if c.Question == "perro" || c.Answer == "dog" {
			t.Errorf("reverse not applied: %+v", c)
		}
	}

	rec = s.do(t, 1, "GET", "/api/study/test_cards/?deck_id="+itoa(deck.ID)+"&limit=10", nil)
	var test struct {
		Cards []testCard `json:"cards"`
	}
	decodeBody(t, rec, &test)
	if len(test.Cards) != 3 {
		t.Fatalf("test cards = %d", len(test.Cards))
	}
	for _, q := range test.Cards {
		if len(q.Options) != 3 {
			t.Errorf("options = %v", q.Options)
		}
	}
}

func TestScheduleRoute(t *testing.T) {
	s := newTestServer(t, nil)
	deck := s.seedDeck(t, 1)
	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	s.seedCard(t, deck.ID, "a", "b", &tomorrow)

	rec := s.do(t, 1, "GET", "/api/study/schedule/?days=14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp scheduleResponse
	decodeBody(t, rec, &resp)
	if len(resp.Schedule) != 14 {
		t.Fatalf("days = %d, want 14", len(resp.Schedule))
	}
	if resp.Stats.Total != 1 || resp.Stats.Week != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}

	rec = s.do(t, 1, "GET", "/api/study/schedule/?year=2024&month=2", nil)
	decodeBody(t, rec, &resp)
	if len(resp.Schedule) != 29 {
		t.Errorf("february 2024 has %d days, want 29", len(resp.Schedule))
	}

	rec = s.do(t, 1, "GET", "/api/study/schedule/?days=400", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("days=400 status = %d, want 400", rec.Code)
	}
}

func TestReminderRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, 1, "GET", "/api/study/reminders/", nil)
	var got reminderResponse
	decodeBody(t, rec, &got)
	if got.Enabled {
		t.Fatalf("default subscription should be disabled: %+v", got)
	}

	rec = s.do(t, 1, "PUT", "/api/study/reminders/", map[string]interface{}{"email": "not-an-email", "hour_utc": 8, "enabled": true})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d", rec.Code)
	}
	rec = s.do(t, 1, "PUT", "/api/study/reminders/", map[string]interface{}{"email": "me@example.com", "hour_utc": 24, "enabled": true})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid hour status = %d", rec.Code)
	}

	rec = s.do(t, 1, "PUT", "/api/study/reminders/", map[string]interface{}{"email": "me@example.com", "hour_utc": 8, "enabled": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &got)
	if got.Email != "me@example.com" || got.HourUTC != 8 || !got.Enabled {
		t.Errorf("subscription = %+v", got)
	}
}

func TestWritesAreRateLimited(t *testing.T) {
	limiter := security.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	s := newTestServer(t, limiter)
	deck := s.seedDeck(t, 1)

	for i := 0; i < 2; i++ {
		startSession(t, s, 1, deck.ID, "")
	}
	rec := s.do(t, 1, "POST", "/api/study/start_session/", map[string]interface{}{"deck_id": deck.ID})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// reads are not limited
	rec = s.do(t, 1, "GET", "/api/study/due_cards/?deck_id="+itoa(deck.ID)+"&limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	// browsers send the requested headers lowercased and sorted
	tests := []struct {
		name    string
		headers string
	}{
		{"auth and content type", "authorization,content-type"},
		{"no extra headers", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("OPTIONS", "/api/study/submit_review/", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", "POST")
			if tt.headers != "" {
				req.Header.Set("Access-Control-Request-Headers", tt.headers)
			}
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d, want 204", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
				t.Errorf("allow origin = %q", got)
			}
		})
	}

	// unknown origins get no CORS headers
	req := httptest.NewRequest("OPTIONS", "/api/study/submit_review/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow origin for unknown origin = %q", got)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
