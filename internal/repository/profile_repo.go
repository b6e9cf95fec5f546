package repository

import (
	"context"
	"database/sql"
	"errors"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
)

const profileColumns = `user_id, total_cards_studied, total_points, current_streak,
	longest_streak, last_study_date`

// ProfileRepository stores per-user progress counters
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ProfileRepository) WithTx(tx database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// Get returns the user's profile, or a zero profile if none is stored yet
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.GetContext(ctx, p, "SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetForUpdate is Get with the profile row locked until the transaction ends,
// so concurrent submissions by the same user apply one after another
func (r *ProfileRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{}
	query := "SELECT " + profileColumns + " FROM profiles WHERE user_id = ?" + r.db.GetDialect().RowLockSuffix()
	err := r.db.GetContext(ctx, p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddStudy stores one study event. The counters are incremented in SQL and
// the streak fields are copied from p, which must already have the event
// applied and must have been read with GetForUpdate in the same transaction.
// A missing row is inserted from p.
func (r *ProfileRepository) AddStudy(ctx context.Context, p *models.Profile, points int) error {
	query := `
		UPDATE profiles
		SET total_cards_studied = total_cards_studied + 1,
		    total_points = total_points + ?,
		    current_streak = ?, longest_streak = ?, last_study_date = ?
		WHERE user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		points, p.CurrentStreak, p.LongestStreak, p.LastStudyDate, p.UserID)
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
	return r.Insert(ctx, p)
}

// Insert writes a new profile row
func (r *ProfileRepository) Insert(ctx context.Context, p *models.Profile) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		p.UserID, p.TotalCardsStudied, p.TotalPoints, p.CurrentStreak, p.LongestStreak, p.LastStudyDate)
	return err
}

// ListAll returns every profile in the store
func (r *ProfileRepository) ListAll(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := r.db.SelectContext(ctx, &profiles, "SELECT "+profileColumns+" FROM profiles ORDER BY user_id")
	return profiles, err
}
