package models

import "time"

// SessionMode controls how a study session is counted
type SessionMode string

const (
	ModeLearning SessionMode = "learning"
	ModePractice SessionMode = "practice"
	ModeTest     SessionMode = "test"
)

// ParseSessionMode converts a client supplied mode, defaulting to learning
func ParseSessionMode(s string) (SessionMode, bool) {
	switch SessionMode(s) {
	case "":
		return ModeLearning, true
	case ModeLearning, ModePractice, ModeTest:
		return SessionMode(s), true
	default:
		return "", false
	}
}

// CountsTowardsProgress reports whether reviews in this mode earn points and streaks
func (m SessionMode) CountsTowardsProgress() bool {
	return m != ModePractice
}

// StudySession groups reviews for statistics. It never gates which cards may be reviewed.
type StudySession struct {
	ID           int64       `db:"id" json:"id"`
	UserID       int64       `db:"user_id" json:"user_id"`
	DeckID       int64       `db:"deck_id" json:"deck_id"`
	Mode         SessionMode `db:"mode" json:"mode"`
	Reverse      bool        `db:"is_reversed" json:"reverse"`
	StartedAt    time.Time   `db:"started_at" json:"started_at"`
	EndedAt      *time.Time  `db:"ended_at" json:"ended_at"`
	CardsStudied int         `db:"cards_studied" json:"cards_studied"`
	CardsCorrect int         `db:"cards_correct" json:"cards_correct"`
	PointsEarned int         `db:"points_earned" json:"points_earned"`
}

// IsActive reports whether the session has not been ended
func (s *StudySession) IsActive() bool {
	return s.EndedAt == nil
}

// Review is an immutable record of one rating submission
type Review struct {
	ID               int64     `db:"id" json:"id"`
	CardID           int64     `db:"card_id" json:"card_id"`
	SessionID        int64     `db:"session_id" json:"session_id"`
	Rating           int       `db:"rating" json:"rating"`
	TimeTakenSeconds int       `db:"time_taken_seconds" json:"time_taken_seconds"`
	ReviewedAt       time.Time `db:"reviewed_at" json:"reviewed_at"`
	EaseFactorBefore float64   `db:"ease_factor_before" json:"ease_factor_before"`
	IntervalBefore   int       `db:"interval_before" json:"interval_before"`
	RepetitionsAfter int       `db:"repetitions_after" json:"repetitions_after"`
	IntervalAfter    int       `db:"interval_after" json:"interval_after"`
	EaseFactorAfter  float64   `db:"ease_factor_after" json:"ease_factor_after"`
	NextReview       time.Time `db:"next_review" json:"next_review"`
}
