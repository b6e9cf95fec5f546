package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                        `json:"version"`
	ExportedAt   time.Time                     `json:"exported_at"`
	DatabaseType string                        `json:"database_type"`
	Decks        []models.Deck                 `json:"decks"`
	Cards        []CardBackup                  `json:"cards"`
	Sessions     []models.StudySession         `json:"sessions"`
	Reviews      []models.Review               `json:"reviews"`
	Profiles     []models.Profile              `json:"profiles"`
	Reminders    []models.ReminderSubscription `json:"reminders"`
}

// CardBackup carries the card fields the public API hides
type CardBackup struct {
	models.Card
	ImagePath string `json:"image_path"`
	Version   int64  `json:"version"`
}

func (c CardBackup) toCard() models.Card {
	card := c.Card
	card.ImagePath = c.ImagePath
	card.Version = c.Version
	return card
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db  *database.DB
	log logrus.FieldLogger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log logrus.FieldLogger) *BackupService {
	return &BackupService{db: db, log: log}
}

// restoreOrder lists tables parents first; Clear walks it in reverse
var restoreOrder = []string{
	"decks",
	"cards",
	"study_sessions",
	"reviews",
	"profiles",
	"reminder_subscriptions",
}

// Export writes every study table to w as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	var err error
	if backup.Decks, err = repository.NewDeckRepository(s.db).ListAll(ctx); err != nil {
		return fmt.Errorf("failed to export decks: %w", err)
	}
	cards, err := repository.NewCardRepository(s.db).ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to export cards: %w", err)
	}
	backup.Cards = make([]CardBackup, 0, len(cards))
	for _, c := range cards {
		backup.Cards = append(backup.Cards, CardBackup{Card: c, ImagePath: c.ImagePath, Version: c.Version})
	}
	if backup.Sessions, err = repository.NewSessionRepository(s.db).ListAll(ctx); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	if backup.Reviews, err = repository.NewReviewRepository(s.db).ListAll(ctx); err != nil {
		return fmt.Errorf("failed to export reviews: %w", err)
	}
	if backup.Profiles, err = repository.NewProfileRepository(s.db).ListAll(ctx); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if backup.Reminders, err = repository.NewReminderRepository(s.db).ListAll(ctx); err != nil {
		return fmt.Errorf("failed to export reminders: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"decks":   len(backup.Decks),
		"cards":   len(backup.Cards),
		"reviews": len(backup.Reviews),
	}).Info("Database export completed")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup inside one transaction, keeping the original IDs
func (s *BackupService) Import(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.log.WithFields(logrus.Fields{
		"version":     backup.Version,
		"exported_at": backup.ExportedAt,
		"source":      backup.DatabaseType,
	}).Info("Starting database import")

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		decks := repository.NewDeckRepository(tx)
		for i := range backup.Decks {
			if err := decks.Insert(ctx, &backup.Decks[i]); err != nil {
				return fmt.Errorf("failed to import deck %d: %w", backup.Decks[i].ID, err)
			}
		}
		cards := repository.NewCardRepository(tx)
		for _, c := range backup.Cards {
			card := c.toCard()
			if err := cards.Insert(ctx, &card); err != nil {
				return fmt.Errorf("failed to import card %d: %w", card.ID, err)
			}
		}
		sessions := repository.NewSessionRepository(tx)
		for i := range backup.Sessions {
			if err := sessions.Insert(ctx, &backup.Sessions[i]); err != nil {
				return fmt.Errorf("failed to import session %d: %w", backup.Sessions[i].ID, err)
			}
		}
		reviews := repository.NewReviewRepository(tx)
		for i := range backup.Reviews {
			if err := reviews.Insert(ctx, &backup.Reviews[i]); err != nil {
				return fmt.Errorf("failed to import review %d: %w", backup.Reviews[i].ID, err)
			}
		}
		profiles := repository.NewProfileRepository(tx)
		for i := range backup.Profiles {
			if err := profiles.Insert(ctx, &backup.Profiles[i]); err != nil {
				return fmt.Errorf("failed to import profile %d: %w", backup.Profiles[i].UserID, err)
			}
		}
		reminders := repository.NewReminderRepository(tx)
		for i := range backup.Reminders {
			if err := reminders.Insert(ctx, &backup.Reminders[i]); err != nil {
				return fmt.Errorf("failed to import reminder %d: %w", backup.Reminders[i].UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.resetSequences(ctx); err != nil {
		return err
	}
	s.log.Info("Database import completed")
	return nil
}

// Clear deletes every study row, children first
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for i := len(restoreOrder) - 1; i >= 0; i-- {
			table := restoreOrder[i]
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			s.log.WithField("table", table).Info("Cleared table")
		}
		return nil
	})
}

// resetSequences moves serial counters past the imported IDs where the
// backend does not do it on its own
func (s *BackupService) resetSequences(ctx context.Context) error {
	for _, table := range []string{"decks", "cards", "study_sessions", "reviews"} {
		query := s.db.Dialect.ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
