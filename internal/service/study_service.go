package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/repository"
	"flashstudy/internal/srs"
)

// MaxSelectionLimit caps how many cards one selection call may return
const MaxSelectionLimit = 1000

// SelectionKind names a card selection strategy
type SelectionKind string

const (
	KindDue SelectionKind = "due"
	KindNew SelectionKind = "new"
	KindAll SelectionKind = "all"
)

// ReviewInput is one rating submission
type ReviewInput struct {
	UserID           int64
	CardID           int64
	SessionID        int64
	Rating           int
	TimeTakenSeconds int
}

// ReviewResult is the outcome of a successful submission
type ReviewResult struct {
	Card          models.Card
	Review        models.Review
	PointsEarned  int
	CurrentStreak int
}

// StudyService selects cards and applies ratings to them
type StudyService struct {
	db        *database.DB
	cards     *repository.CardRepository
	decks     *repository.DeckRepository
	sessions  *repository.SessionRepository
	reviews   *repository.ReviewRepository
	profiles  *repository.ProfileRepository
	scheduler *srs.Scheduler
	location  *time.Location
	log       logrus.FieldLogger
	clock     func() time.Time

	// beforeCardWrite runs inside the submit transaction right before the
	// card update. Tests use it to simulate a concurrent writer.
	beforeCardWrite func(ctx context.Context, tx database.DBTX, card *models.Card) error
}

// NewStudyService creates a new study service
func NewStudyService(db *database.DB, scheduler *srs.Scheduler, loc *time.Location, log logrus.FieldLogger) *StudyService {
	if loc == nil {
		loc = time.UTC
	}
	return &StudyService{
		db:        db,
		cards:     repository.NewCardRepository(db),
		decks:     repository.NewDeckRepository(db),
		sessions:  repository.NewSessionRepository(db),
		reviews:   repository.NewReviewRepository(db),
		profiles:  repository.NewProfileRepository(db),
		scheduler: scheduler,
		location:  loc,
		log:       log,
		clock:     time.Now,
	}
}

// now returns the current instant in UTC at whole-second precision, the
// form every timestamp is stored in
func (s *StudyService) now() time.Time {
	return s.clock().UTC().Truncate(time.Second)
}

// SelectCards returns cards of a deck according to kind. A deck the user
// does not own yields an empty list.
func (s *StudyService) SelectCards(ctx context.Context, userID, deckID int64, kind SelectionKind, limit int) ([]models.Card, error) {
	if deckID <= 0 {
		return nil, fmt.Errorf("%w: deck_id is required", models.ErrInvalidParameter)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", models.ErrInvalidParameter)
	}
	limit = min(limit, MaxSelectionLimit)

	switch kind {
	case KindDue:
		return s.cards.SelectDue(ctx, userID, deckID, s.now(), limit)
	case KindNew:
		return s.cards.SelectNew(ctx, userID, deckID, limit)
	case KindAll:
		return s.cards.SelectAll(ctx, userID, deckID, limit)
	default:
		return nil, fmt.Errorf("%w: unknown selection %q", models.ErrInvalidParameter, kind)
	}
}

// StartSession opens a study session on a deck the user owns
func (s *StudyService) StartSession(ctx context.Context, userID, deckID int64, mode string, reverse bool) (*models.StudySession, error) {
	sessionMode, ok := models.ParseSessionMode(mode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown mode %q", models.ErrInvalidParameter, mode)
	}
	if deckID <= 0 {
		return nil, fmt.Errorf("%w: deck_id is required", models.ErrInvalidParameter)
	}

	deck, err := s.decks.GetForUser(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: deck %d not found", models.ErrInvalidParameter, deckID)
	}

	session := &models.StudySession{
		UserID:    userID,
		DeckID:    deckID,
		Mode:      sessionMode,
		Reverse:   reverse,
		StartedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"deck_id":    deckID,
		"session_id": session.ID,
		"mode":       sessionMode,
	}).Debug("Study session started")
	return session, nil
}

// SubmitReview applies a rating to a card. The review row, the card's new
// schedule, the session counters and the profile are committed together.
// A failed attempt is retried once against freshly read state.
func (s *StudyService) SubmitReview(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	rating := srs.Rating(in.Rating)
	if !rating.IsValid() {
		return nil, models.ErrInvalidRating
	}
	if in.TimeTakenSeconds < 0 {
		in.TimeTakenSeconds = 0
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		result, err := s.submitOnce(ctx, in, rating)
		if err == nil {
			return result, nil
		}
		if isFinal(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		s.log.WithError(err).WithFields(logrus.Fields{
			"card_id": in.CardID,
			"attempt": attempt,
		}).Warn("Review submission failed")
	}
	return nil, fmt.Errorf("%w: %v", models.ErrConflict, lastErr)
}

func isFinal(err error) bool {
	return errors.Is(err, models.ErrCardNotFound) ||
		errors.Is(err, models.ErrSessionNotFound) ||
		errors.Is(err, models.ErrInvalidRating)
}

func (s *StudyService) submitOnce(ctx context.Context, in ReviewInput, rating srs.Rating) (*ReviewResult, error) {
	var result *ReviewResult

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := s.sessions.WithTx(tx)
		cards := s.cards.WithTx(tx)

		session, err := sessions.GetForUser(ctx, in.UserID, in.SessionID)
		if err != nil {
			return err
		}
		card, err := cards.GetForUser(ctx, in.UserID, in.CardID)
		if err != nil {
			return err
		}

		now := s.now()
		before := card.SchedulingState()
		after, err := s.scheduler.Review(before, rating, now)
		if err != nil {
			return err
		}

		review := &models.Review{
			CardID:           card.ID,
			SessionID:        session.ID,
			Rating:           int(rating),
			TimeTakenSeconds: in.TimeTakenSeconds,
			ReviewedAt:       now,
			EaseFactorBefore: before.EaseFactor,
			IntervalBefore:   before.IntervalDays,
			RepetitionsAfter: after.Repetitions,
			IntervalAfter:    after.IntervalDays,
			EaseFactorAfter:  after.EaseFactor,
			NextReview:       *after.NextReview,
		}
		if err := s.reviews.WithTx(tx).Append(ctx, review); err != nil {
			return err
		}

		card.ApplySchedulingState(after)
		if s.beforeCardWrite != nil {
			if err := s.beforeCardWrite(ctx, tx, card); err != nil {
				return err
			}
		}
		if err := cards.UpdateSchedule(ctx, card); err != nil {
			return fmt.Errorf("update card %d: %w", card.ID, err)
		}

		points := srs.Points(rating)
		if err := sessions.RecordReview(ctx, session.ID, rating.IsCorrect(), points); err != nil {
			return err
		}

		// practice reviews still count in the session but earn nothing
		result = &ReviewResult{Card: *card, Review: *review}
		if !session.Mode.CountsTowardsProgress() {
			return nil
		}
		result.PointsEarned = points

		profiles := s.profiles.WithTx(tx)
		profile, err := profiles.GetForUpdate(ctx, in.UserID)
		if err != nil {
			return err
		}
		profile.RecordStudy(points, now.In(s.location))
		if err := profiles.AddStudy(ctx, profile, points); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		result.CurrentStreak = profile.CurrentStreak
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     in.UserID,
		"card_id":     in.CardID,
		"session_id":  in.SessionID,
		"rating":      rating.String(),
		"next_review": result.Card.NextReview,
	}).Debug("Review recorded")
	return result, nil
}

// EndSession closes a session. Ending an already ended session is a no-op.
func (s *StudyService) EndSession(ctx context.Context, userID, sessionID int64) (*models.StudySession, error) {
	if _, err := s.sessions.GetForUser(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if _, err := s.sessions.End(ctx, userID, sessionID, s.now()); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return s.sessions.GetForUser(ctx, userID, sessionID)
}

// EndStaleSessions closes sessions that have been open longer than maxAge.
// It only touches ended_at.
func (s *StudyService) EndStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := s.now()
	return s.sessions.EndStale(ctx, now.Add(-maxAge), now)
}

// Profile returns the user's progress counters
func (s *StudyService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// ReviewHistory returns the review log of a card the user owns
func (s *StudyService) ReviewHistory(ctx context.Context, userID, cardID int64) ([]models.Review, error) {
	if _, err := s.cards.GetForUser(ctx, userID, cardID); err != nil {
		return nil, err
	}
	return s.reviews.ListByCard(ctx, cardID)
}
