package models

import "time"

// ReminderSubscription holds a user's due-card email preference
type ReminderSubscription struct {
	UserID     int64     `db:"user_id" json:"user_id"`
	Email      string    `db:"email" json:"email"`
	HourUTC    int       `db:"hour_utc" json:"hour_utc"`
	Enabled    bool      `db:"enabled" json:"enabled"`
	LastSentOn *string   `db:"last_sent_on" json:"last_sent_on"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DueForSend reports whether a reminder should go out at the given instant
func (r *ReminderSubscription) DueForSend(now time.Time) bool {
	if !r.Enabled || now.UTC().Hour() != r.HourUTC {
		return false
	}
	today := now.UTC().Format(DateLayout)
	return r.LastSentOn == nil || *r.LastSentOn != today
}
