package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"flashstudy/internal/models"
	"flashstudy/internal/service"
	"flashstudy/internal/srs"
)

const maxBodyBytes = 1 << 20

type startSessionRequest struct {
	DeckID  int64  `json:"deck_id" validate:"required,gt=0"`
	Mode    string `json:"mode" validate:"omitempty,oneof=learning practice test"`
	Reverse bool   `json:"reverse"`
}

type submitReviewRequest struct {
	CardID    int64 `json:"card_id" validate:"required,gt=0"`
	SessionID int64 `json:"session_id" validate:"required,gt=0"`
	Rating    int   `json:"rating"`
	TimeTaken int   `json:"time_taken" validate:"gte=0"`
}

type endSessionRequest struct {
	SessionID int64 `json:"session_id" validate:"required,gt=0"`
}

type reminderRequest struct {
	Email   string `json:"email" validate:"required,email,max=254"`
	HourUTC int    `json:"hour_utc" validate:"min=0,max=23"`
	Enabled bool   `json:"enabled"`
}

// StudyHandler serves the study endpoints
type StudyHandler struct {
	study        *service.StudyService
	reminders    *service.ReminderService
	validate     *validator.Validate
	mediaBaseURL string
	log          logrus.FieldLogger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(study *service.StudyService, reminders *service.ReminderService, mediaBaseURL string, log logrus.FieldLogger) *StudyHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &StudyHandler{
		study:        study,
		reminders:    reminders,
		validate:     v,
		mediaBaseURL: mediaBaseURL,
		log:          log,
	}
}

// StartSession handles POST /api/study/start_session/
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := h.decode(w, r, &req); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	session, err := h.study.StartSession(r.Context(), GetUserIDFromContext(r.Context()), req.DeckID, req.Mode, req.Reverse)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: session.ID,
		Mode:      session.Mode,
		Reverse:   session.Reverse,
	})
}

// DueCards handles GET /api/study/due_cards/
func (h *StudyHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	deckID, limit, err := deckAndLimit(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	reverse, err := boolParam(r, "reverse")
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	cards, err := h.study.SelectCards(r.Context(), GetUserIDFromContext(r.Context()), deckID, service.KindDue, limit)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	resp := h.toCardList(cards)
	resp.Reverse = reverse
	respondJSON(w, http.StatusOK, resp)
}

// AllCards handles GET /api/study/all_cards/. Cards come back shuffled for practice.
func (h *StudyHandler) AllCards(w http.ResponseWriter, r *http.Request) {
	deckID, limit, err := deckAndLimit(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	kind := service.KindAll
	switch k := r.URL.Query().Get("kind"); k {
	case "", string(service.KindAll):
	case string(service.KindNew):
		kind = service.KindNew
	default:
		respondWithError(w, h.log, fmt.Errorf("%w: kind must be new or all", models.ErrInvalidParameter))
		return
	}
	reverse, err := boolParam(r, "reverse")
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	cards, err := h.study.SelectCards(r.Context(), GetUserIDFromContext(r.Context()), deckID, kind, limit)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	resp := h.toCardList(lo.Shuffle(cards))
	resp.Mode = string(models.ModePractice)
	resp.Reverse = reverse
	respondJSON(w, http.StatusOK, resp)
}

// MatchingCards handles GET /api/study/matching_cards/
func (h *StudyHandler) MatchingCards(w http.ResponseWriter, r *http.Request) {
	deckID, limit, err := deckAndLimit(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	reverse, err := boolParam(r, "reverse")
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	pairs, err := h.study.MatchingCards(r.Context(), GetUserIDFromContext(r.Context()), deckID, limit, reverse)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cards": toMatchingCards(pairs)})
}

// TestCards handles GET /api/study/test_cards/
func (h *StudyHandler) TestCards(w http.ResponseWriter, r *http.Request) {
	deckID, limit, err := deckAndLimit(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	reverse, err := boolParam(r, "reverse")
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	questions, err := h.study.TestCards(r.Context(), GetUserIDFromContext(r.Context()), deckID, limit, reverse)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cards": h.toTestCards(questions)})
}

// SubmitReview handles POST /api/study/submit_review/
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, err)
		return
	}
	// the rating is checked before anything else so a bad rating is always a rating error
	if !srs.Rating(req.Rating).IsValid() {
		respondWithError(w, h.log, models.ErrInvalidRating)
		return
	}
	if err := h.check(req); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	result, err := h.study.SubmitReview(r.Context(), service.ReviewInput{
		UserID:           GetUserIDFromContext(r.Context()),
		CardID:           req.CardID,
		SessionID:        req.SessionID,
		Rating:           req.Rating,
		TimeTakenSeconds: req.TimeTaken,
	})
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, submitReviewResponse{
		Card:          h.toCardPayload(result.Card),
		Repetitions:   result.Card.Repetitions,
		IntervalDays:  result.Card.IntervalDays,
		EaseFactor:    result.Card.EaseFactor,
		NextReview:    result.Card.NextReview,
		PointsEarned:  result.PointsEarned,
		CurrentStreak: result.CurrentStreak,
	})
}

// EndSession handles POST /api/study/end_session/. Unknown sessions are ignored.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := h.decode(w, r, &req); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	_, err := h.study.EndSession(r.Context(), GetUserIDFromContext(r.Context()), req.SessionID)
	if err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

// Schedule handles GET /api/study/schedule/
func (h *StudyHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var q service.ScheduleQuery
	var err error
	if q.Year, err = intParam(r, "year"); err != nil {
		respondWithError(w, h.log, err)
		return
	}
	if q.Month, err = intParam(r, "month"); err != nil {
		respondWithError(w, h.log, err)
		return
	}
	if q.Days, err = intParam(r, "days"); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	result, err := h.study.Schedule(r.Context(), GetUserIDFromContext(r.Context()), q)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, scheduleResponse{Schedule: result.Days, Stats: result.Stats})
}

// GetReminders handles GET /api/study/reminders/
func (h *StudyHandler) GetReminders(w http.ResponseWriter, r *http.Request) {
	sub, err := h.reminders.Get(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toReminderResponse(sub))
}

// UpdateReminders handles PUT /api/study/reminders/
func (h *StudyHandler) UpdateReminders(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := h.decode(w, r, &req); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	sub, err := h.reminders.Update(r.Context(), GetUserIDFromContext(r.Context()), req.Email, req.HourUTC, req.Enabled)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toReminderResponse(sub))
}

// Profile handles GET /api/study/profile/
func (h *StudyHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.study.Profile(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// ReviewHistory handles GET /api/study/cards/{id}/reviews/
func (h *StudyHandler) ReviewHistory(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || cardID <= 0 {
		respondWithError(w, h.log, fmt.Errorf("%w: card id must be a positive integer", models.ErrInvalidParameter))
		return
	}

	reviews, err := h.study.ReviewHistory(r.Context(), GetUserIDFromContext(r.Context()), cardID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, reviewListResponse{Count: len(reviews), Reviews: reviews})
}

// decode reads a JSON body and validates it
func (h *StudyHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return h.check(dst)
}

func (h *StudyHandler) check(v interface{}) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		})
		return fmt.Errorf("%w: %s", models.ErrInvalidParameter, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidParameter, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidParameter, ErrInvalidJSON)
	}
	return nil
}

// deckAndLimit reads the deck_id and limit query parameters, both required
func deckAndLimit(r *http.Request) (int64, int, error) {
	q := r.URL.Query()
	deckID, err := strconv.ParseInt(q.Get("deck_id"), 10, 64)
	if err != nil || deckID <= 0 {
		return 0, 0, fmt.Errorf("%w: deck_id must be a positive integer", models.ErrInvalidParameter)
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		return 0, 0, fmt.Errorf("%w: limit must be a positive integer", models.ErrInvalidParameter)
	}
	return deckID, limit, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", models.ErrInvalidParameter, name)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", models.ErrInvalidParameter, name)
	}
	return b, nil
}
