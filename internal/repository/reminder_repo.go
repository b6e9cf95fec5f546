package repository

import (
	"context"
	"database/sql"
	"errors"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
)

const reminderColumns = `user_id, email, hour_utc, enabled, last_sent_on, updated_at`

// ReminderRepository stores due-card email subscriptions
type ReminderRepository struct {
	db database.DBTX
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db database.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Get returns the user's subscription, or nil if there is none
func (r *ReminderRepository) Get(ctx context.Context, userID int64) (*models.ReminderSubscription, error) {
	sub := &models.ReminderSubscription{}
	err := r.db.GetContext(ctx, sub,
		"SELECT "+reminderColumns+" FROM reminder_subscriptions WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Upsert creates or replaces the user's subscription preferences
func (r *ReminderRepository) Upsert(ctx context.Context, sub *models.ReminderSubscription) error {
	query := `
		UPDATE reminder_subscriptions
		SET email = ?, hour_utc = ?, enabled = ?, updated_at = ?
		WHERE user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, sub.Email, sub.HourUTC, sub.Enabled, sub.UpdatedAt, sub.UserID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.Insert(ctx, sub)
}

// Insert writes a new subscription row
func (r *ReminderRepository) Insert(ctx context.Context, sub *models.ReminderSubscription) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reminder_subscriptions ("+reminderColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		sub.UserID, sub.Email, sub.HourUTC, sub.Enabled, sub.LastSentOn, sub.UpdatedAt)
	return err
}

// ListEnabledForHour returns enabled subscriptions scheduled for the given UTC hour
func (r *ReminderRepository) ListEnabledForHour(ctx context.Context, hour int) ([]models.ReminderSubscription, error) {
	subs := []models.ReminderSubscription{}
	err := r.db.SelectContext(ctx, &subs,
		"SELECT "+reminderColumns+" FROM reminder_subscriptions WHERE enabled = ? AND hour_utc = ? ORDER BY user_id",
		true, hour)
	return subs, err
}

// MarkSent records the day a reminder went out so it is not repeated
func (r *ReminderRepository) MarkSent(ctx context.Context, userID int64, day string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE reminder_subscriptions SET last_sent_on = ? WHERE user_id = ?", day, userID)
	return err
}

// ListAll returns every subscription in the store
func (r *ReminderRepository) ListAll(ctx context.Context) ([]models.ReminderSubscription, error) {
	subs := []models.ReminderSubscription{}
	err := r.db.SelectContext(ctx, &subs, "SELECT "+reminderColumns+" FROM reminder_subscriptions ORDER BY user_id")
	return subs, err
}
