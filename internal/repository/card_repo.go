package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
)

const cardColumns = `
	c.id, c.deck_id, c.front, c.back, c.tags, c.image_path, c.is_suspended,
	c.repetitions, c.interval_days, c.ease_factor, c.next_review,
	c.last_reviewed_at, c.version, c.created_at`

// CardRepository handles card database operations
type CardRepository struct {
	db database.DBTX
}

// NewCardRepository creates a new card repository
func NewCardRepository(db database.DBTX) *CardRepository {
	return &CardRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *CardRepository) WithTx(tx database.DBTX) *CardRepository {
	return &CardRepository{db: tx}
}

// Create inserts a new card and sets its ID
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (deck_id, front, back, tags, image_path, is_suspended,
		                   repetitions, interval_days, ease_factor, next_review,
		                   last_reviewed_at, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		card.DeckID, card.Front, card.Back, card.Tags, card.ImagePath, card.IsSuspended,
		card.Repetitions, card.IntervalDays, card.EaseFactor, card.NextReview,
		card.LastReviewedAt, card.Version, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	card.ID = id
	return nil
}

// Insert writes a card with an explicit ID, used when restoring backups
func (r *CardRepository) Insert(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, deck_id, front, back, tags, image_path, is_suspended,
		                   repetitions, interval_days, ease_factor, next_review,
		                   last_reviewed_at, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		card.ID, card.DeckID, card.Front, card.Back, card.Tags, card.ImagePath, card.IsSuspended,
		card.Repetitions, card.IntervalDays, card.EaseFactor, card.NextReview,
		card.LastReviewedAt, card.Version, card.CreatedAt)
	return err
}

// GetForUser loads a card if it belongs to a deck owned by userID
func (r *CardRepository) GetForUser(ctx context.Context, userID, cardID int64) (*models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.id = ? AND d.user_id = ?`

	card := &models.Card{}
	if err := r.db.GetContext(ctx, card, query, cardID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// SelectDue returns unsuspended cards whose next review is at or before now,
// earliest first
func (r *CardRepository) SelectDue(ctx context.Context, userID, deckID int64, now time.Time, limit int) ([]models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.deck_id = ? AND d.user_id = ? AND c.is_suspended = ?
		  AND c.next_review IS NOT NULL AND c.next_review <= ?
		ORDER BY c.next_review ASC, c.id ASC
		LIMIT ?`
	return r.selectCards(ctx, query, deckID, userID, false, now, limit)
}

// SelectNew returns unsuspended cards that have never been reviewed successfully
func (r *CardRepository) SelectNew(ctx context.Context, userID, deckID int64, limit int) ([]models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.deck_id = ? AND d.user_id = ? AND c.is_suspended = ? AND c.repetitions = 0
		ORDER BY c.id ASC
		LIMIT ?`
	return r.selectCards(ctx, query, deckID, userID, false, limit)
}

// SelectAll returns every card in the deck regardless of schedule
func (r *CardRepository) SelectAll(ctx context.Context, userID, deckID int64, limit int) ([]models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.deck_id = ? AND d.user_id = ?
		ORDER BY c.id ASC
		LIMIT ?`
	return r.selectCards(ctx, query, deckID, userID, limit)
}

// ListByDeck returns every card of a deck, used for backups and distractors
func (r *CardRepository) ListByDeck(ctx context.Context, deckID int64) ([]models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		WHERE c.deck_id = ?
		ORDER BY c.id ASC`
	return r.selectCards(ctx, query, deckID)
}

// ListAll returns every card in the store
func (r *CardRepository) ListAll(ctx context.Context) ([]models.Card, error) {
	query := `SELECT` + cardColumns + `
		FROM cards c
		ORDER BY c.id ASC`
	return r.selectCards(ctx, query)
}

func (r *CardRepository) selectCards(ctx context.Context, query string, args ...interface{}) ([]models.Card, error) {
	cards := []models.Card{}
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateSchedule writes the scheduling fields if the card's version is
// unchanged since it was read. On success the card's version is bumped.
func (r *CardRepository) UpdateSchedule(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE cards
		SET repetitions = ?, interval_days = ?, ease_factor = ?, next_review = ?,
		    last_reviewed_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		card.Repetitions, card.IntervalDays, card.EaseFactor, card.NextReview,
		card.LastReviewedAt, card.ID, card.Version)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleWrite
	}
	card.Version++
	return nil
}

// ListScheduled returns unsuspended cards of a user due within [from, to)
func (r *CardRepository) ListScheduled(ctx context.Context, userID int64, from, to time.Time) ([]models.ScheduledCard, error) {
	query := `
		SELECT c.id AS card_id, d.id AS deck_id, d.name AS deck_name,
		       d.color AS deck_color, c.next_review
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = ? AND c.is_suspended = ?
		  AND c.next_review IS NOT NULL AND c.next_review >= ? AND c.next_review < ?
		ORDER BY c.next_review ASC, d.id ASC
	`
	cards := []models.ScheduledCard{}
	if err := r.db.SelectContext(ctx, &cards, query, userID, false, from, to); err != nil {
		return nil, err
	}
	return cards, nil
}

// CountForUser counts a user's cards with at least minRepetitions repetitions
func (r *CardRepository) CountForUser(ctx context.Context, userID int64, minRepetitions int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = ? AND c.repetitions >= ?
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID, minRepetitions)
	return count, err
}

// CountDue counts a user's unsuspended cards due at or before now
func (r *CardRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = ? AND c.is_suspended = ?
		  AND c.next_review IS NOT NULL AND c.next_review <= ?
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID, false, now)
	return count, err
}
