package handlers

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"flashstudy/internal/models"
	"flashstudy/internal/service"
)

// cardPayload is a card as the front end sees it
type cardPayload struct {
	models.Card
	ImageURL string `json:"image_url,omitempty"`
}

type cardListResponse struct {
	Count   int           `json:"count"`
	Cards   []cardPayload `json:"cards"`
	Mode    string        `json:"mode,omitempty"`
	Reverse bool          `json:"reverse"`
}

type reviewListResponse struct {
	Count   int             `json:"count"`
	Reviews []models.Review `json:"reviews"`
}

type startSessionResponse struct {
	SessionID int64              `json:"session_id"`
	Mode      models.SessionMode `json:"mode"`
	Reverse   bool               `json:"reverse"`
}

type submitReviewResponse struct {
	Card          cardPayload `json:"card"`
	Repetitions   int         `json:"repetitions"`
	IntervalDays  int         `json:"interval_days"`
	EaseFactor    float64     `json:"ease_factor"`
	NextReview    *time.Time  `json:"next_review"`
	PointsEarned  int         `json:"points_earned"`
	CurrentStreak int         `json:"current_streak"`
}

type matchingCard struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type testCard struct {
	ID            int64    `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	ImageURL      string   `json:"image_url,omitempty"`
}

type scheduleResponse struct {
	Schedule []models.ScheduleDay `json:"schedule"`
	Stats    models.ScheduleStats `json:"stats"`
}

type reminderResponse struct {
	Email      string  `json:"email,omitempty"`
	HourUTC    int     `json:"hour_utc"`
	Enabled    bool    `json:"enabled"`
	LastSentOn *string `json:"last_sent_on,omitempty"`
}

// mediaURL joins a stored image path onto the media base URL
func mediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (h *StudyHandler) toCardPayload(c models.Card) cardPayload {
	return cardPayload{Card: c, ImageURL: mediaURL(h.mediaBaseURL, c.ImagePath)}
}

func (h *StudyHandler) toCardList(cards []models.Card) cardListResponse {
	return cardListResponse{
		Count: len(cards),
		Cards: lo.Map(cards, func(c models.Card, _ int) cardPayload { return h.toCardPayload(c) }),
	}
}

func toMatchingCards(pairs []service.MatchingPair) []matchingCard {
	return lo.Map(pairs, func(p service.MatchingPair, _ int) matchingCard {
		return matchingCard{ID: p.Card.ID, Question: p.Question, Answer: p.Answer}
	})
}

func (h *StudyHandler) toTestCards(questions []service.TestQuestion) []testCard {
	return lo.Map(questions, func(q service.TestQuestion, _ int) testCard {
		return testCard{
			ID:            q.Card.ID,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			ImageURL:      mediaURL(h.mediaBaseURL, q.Card.ImagePath),
		}
	})
}

func toReminderResponse(sub *models.ReminderSubscription) reminderResponse {
	if sub == nil {
		return reminderResponse{Enabled: false}
	}
	return reminderResponse{
		Email:      sub.Email,
		HourUTC:    sub.HourUTC,
		Enabled:    sub.Enabled,
		LastSentOn: sub.LastSentOn,
	}
}
