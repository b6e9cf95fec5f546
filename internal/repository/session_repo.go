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

const sessionColumns = `id, user_id, deck_id, mode, is_reversed, started_at, ended_at,
	cards_studied, cards_correct, points_earned`

// SessionRepository handles study session database operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *SessionRepository) WithTx(tx database.DBTX) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Create inserts a new study session and sets its ID
func (r *SessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (user_id, deck_id, mode, is_reversed, started_at,
		                            cards_studied, cards_correct, points_earned)
		VALUES (?, ?, ?, ?, ?, 0, 0, 0)
	`
	id, err := r.db.ExecReturningID(ctx, query, s.UserID, s.DeckID, s.Mode, s.Reverse, s.StartedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	s.ID = id
	return nil
}

// Insert writes a session with an explicit ID, used when restoring backups
func (r *SessionRepository) Insert(ctx context.Context, s *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (id, user_id, deck_id, mode, is_reversed, started_at, ended_at,
		                            cards_studied, cards_correct, points_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.DeckID, s.Mode, s.Reverse,
		s.StartedAt, s.EndedAt, s.CardsStudied, s.CardsCorrect, s.PointsEarned)
	return err
}

// GetForUser retrieves a session owned by userID
func (r *SessionRepository) GetForUser(ctx context.Context, userID, sessionID int64) (*models.StudySession, error) {
	s := &models.StudySession{}
	err := r.db.GetContext(ctx, s,
		"SELECT "+sessionColumns+" FROM study_sessions WHERE id = ? AND user_id = ?",
		sessionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RecordReview bumps the session counters for one submitted rating
func (r *SessionRepository) RecordReview(ctx context.Context, sessionID int64, correct bool, points int) error {
	correctInc := 0
	if correct {
		correctInc = 1
	}
	query := `
		UPDATE study_sessions
		SET cards_studied = cards_studied + 1,
		    cards_correct = cards_correct + ?,
		    points_earned = points_earned + ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, correctInc, points, sessionID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

// End sets ended_at unless the session has already been ended.
// It reports whether this call ended the session.
func (r *SessionRepository) End(ctx context.Context, userID, sessionID int64, at time.Time) (bool, error) {
	query := `
		UPDATE study_sessions
		SET ended_at = ?
		WHERE id = ? AND user_id = ? AND ended_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, sessionID, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EndStale closes sessions started before cutoff that were never ended
func (r *SessionRepository) EndStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	query := `
		UPDATE study_sessions
		SET ended_at = ?
		WHERE ended_at IS NULL AND started_at < ?
	`
	result, err := r.db.ExecContext(ctx, query, at, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListAll returns every session in the store
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.StudySession, error) {
	sessions := []models.StudySession{}
	err := r.db.SelectContext(ctx, &sessions, "SELECT "+sessionColumns+" FROM study_sessions ORDER BY id")
	return sessions, err
}
