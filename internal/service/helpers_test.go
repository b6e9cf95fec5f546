package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/repository"
	"flashstudy/internal/srs"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background(), quietLogger()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*StudyService, *database.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewStudyService(db, srs.NewScheduler(srs.Config{}), time.UTC, quietLogger())
	svc.clock = func() time.Time { return fixedNow }
	return svc, db
}

func seedDeck(t *testing.T, db *database.DB, userID int64, name string) *models.Deck {
	t.Helper()
	deck := &models.Deck{UserID: userID, Name: name, CreatedAt: fixedNow}
	if err := repository.NewDeckRepository(db).Create(context.Background(), deck); err != nil {
		t.Fatalf("seed deck: %v", err)
	}
	return deck
}

type cardOpt func(*models.Card)

func dueAt(at time.Time) cardOpt {
	return func(c *models.Card) {
		c.NextReview = &at
		reviewed := at.AddDate(0, 0, -1)
		if reviewed.After(fixedNow) {
			reviewed = fixedNow
		}
		c.LastReviewedAt = &reviewed
		c.Repetitions = 1
		c.IntervalDays = 1
	}
}

func withState(reps, interval int, ease float64) cardOpt {
	return func(c *models.Card) {
		c.Repetitions = reps
		c.IntervalDays = interval
		c.EaseFactor = ease
	}
}

func suspended() cardOpt {
	return func(c *models.Card) { c.IsSuspended = true }
}

func seedCard(t *testing.T, db *database.DB, deckID int64, front, back string, opts ...cardOpt) *models.Card {
	t.Helper()
	card := &models.Card{
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Tags:       models.TagList{},
		EaseFactor: 2.5,
		CreatedAt:  fixedNow,
	}
	for _, opt := range opts {
		opt(card)
	}
	if err := repository.NewCardRepository(db).Create(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func countReviews(t *testing.T, db *database.DB, cardID int64) int {
	t.Helper()
	var n int
	if err := db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM reviews WHERE card_id = ?", cardID); err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	return n
}
