package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Card represents a flashcard together with its scheduling state
type Card struct {
	ID             int64      `db:"id" json:"id"`
	DeckID         int64      `db:"deck_id" json:"deck_id"`
	Front          string     `db:"front" json:"front"`
	Back           string     `db:"back" json:"back"`
	Tags           TagList    `db:"tags" json:"tags"`
	ImagePath      string     `db:"image_path" json:"-"`
	IsSuspended    bool       `db:"is_suspended" json:"is_suspended"`
	Repetitions    int        `db:"repetitions" json:"repetitions"`
	IntervalDays   int        `db:"interval_days" json:"interval_days"`
	EaseFactor     float64    `db:"ease_factor" json:"ease_factor"`
	NextReview     *time.Time `db:"next_review" json:"next_review"`
	LastReviewedAt *time.Time `db:"last_reviewed_at" json:"last_reviewed_at"`
	Version        int64      `db:"version" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// IsNew reports whether the card has never been successfully reviewed
func (c *Card) IsNew() bool {
	return c.Repetitions == 0
}

// IsDue reports whether the card's next review has passed
func (c *Card) IsDue(now time.Time) bool {
	return c.NextReview != nil && !c.NextReview.After(now)
}

// SchedulingState extracts the fields the scheduler is allowed to change
func (c *Card) SchedulingState() SchedulingState {
	return SchedulingState{
		Repetitions:    c.Repetitions,
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EaseFactor,
		NextReview:     c.NextReview,
		LastReviewedAt: c.LastReviewedAt,
	}
}

// ApplySchedulingState copies scheduling fields onto the card, leaving content untouched
func (c *Card) ApplySchedulingState(s SchedulingState) {
	c.Repetitions = s.Repetitions
	c.IntervalDays = s.IntervalDays
	c.EaseFactor = s.EaseFactor
	c.NextReview = s.NextReview
	c.LastReviewedAt = s.LastReviewedAt
}

// SchedulingState is the part of a card owned by the scheduler
type SchedulingState struct {
	Repetitions    int
	IntervalDays   int
	EaseFactor     float64
	NextReview     *time.Time
	LastReviewedAt *time.Time
}

// TagList is stored as a comma separated column
type TagList []string

// ParseTagList splits a comma separated tag string, dropping blanks
func ParseTagList(s string) TagList {
	tags := TagList{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// String joins the tags back into their column form
func (t TagList) String() string {
	return strings.Join(t, ",")
}

// Scan implements sql.Scanner
func (t *TagList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TagList{}
	case string:
		*t = ParseTagList(v)
	case []byte:
		*t = ParseTagList(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TagList", src)
	}
	return nil
}

// Value implements driver.Valuer
func (t TagList) Value() (driver.Value, error) {
	return t.String(), nil
}
