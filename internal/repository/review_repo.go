package repository

import (
	"context"
	"fmt"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
)

const reviewColumns = `id, card_id, session_id, rating, time_taken_seconds, reviewed_at,
	ease_factor_before, interval_before, repetitions_after, interval_after,
	ease_factor_after, next_review`

// ReviewRepository appends to the review log. Reviews are never updated.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ReviewRepository) WithTx(tx database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

// Append inserts a review and sets its ID
func (r *ReviewRepository) Append(ctx context.Context, rv *models.Review) error {
	query := `
		INSERT INTO reviews (card_id, session_id, rating, time_taken_seconds, reviewed_at,
		                     ease_factor_before, interval_before, repetitions_after,
		                     interval_after, ease_factor_after, next_review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		rv.CardID, rv.SessionID, rv.Rating, rv.TimeTakenSeconds, rv.ReviewedAt,
		rv.EaseFactorBefore, rv.IntervalBefore, rv.RepetitionsAfter,
		rv.IntervalAfter, rv.EaseFactorAfter, rv.NextReview)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	rv.ID = id
	return nil
}

// Insert writes a review with an explicit ID, used when restoring backups
func (r *ReviewRepository) Insert(ctx context.Context, rv *models.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.CardID, rv.SessionID, rv.Rating, rv.TimeTakenSeconds, rv.ReviewedAt,
		rv.EaseFactorBefore, rv.IntervalBefore, rv.RepetitionsAfter,
		rv.IntervalAfter, rv.EaseFactorAfter, rv.NextReview)
	return err
}

// ListByCard returns a card's review history, oldest first
func (r *ReviewRepository) ListByCard(ctx context.Context, cardID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.SelectContext(ctx, &reviews,
		"SELECT "+reviewColumns+" FROM reviews WHERE card_id = ? ORDER BY reviewed_at ASC, id ASC", cardID)
	return reviews, err
}

// ListAll returns every review in the store
func (r *ReviewRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.SelectContext(ctx, &reviews, "SELECT "+reviewColumns+" FROM reviews ORDER BY id")
	return reviews, err
}
