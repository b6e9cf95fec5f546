package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
)

// DeckRepository reads and writes decks. The study flow only reads them.
type DeckRepository struct {
	db database.DBTX
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db database.DBTX) *DeckRepository {
	return &DeckRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DeckRepository) WithTx(tx database.DBTX) *DeckRepository {
	return &DeckRepository{db: tx}
}

// Create inserts a deck and sets its ID
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if deck.Color == "" {
		deck.Color = models.DefaultDeckColor
	}
	id, err := r.db.ExecReturningID(ctx,
		"INSERT INTO decks (user_id, name, color, created_at) VALUES (?, ?, ?, ?)",
		deck.UserID, deck.Name, deck.Color, deck.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}
	deck.ID = id
	return nil
}

// Insert writes a deck with an explicit ID, used when restoring backups
func (r *DeckRepository) Insert(ctx context.Context, deck *models.Deck) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO decks (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)",
		deck.ID, deck.UserID, deck.Name, deck.Color, deck.CreatedAt)
	return err
}

// GetForUser returns the deck if userID owns it, or nil when it does not exist
// or belongs to someone else
func (r *DeckRepository) GetForUser(ctx context.Context, userID, deckID int64) (*models.Deck, error) {
	deck := &models.Deck{}
	err := r.db.GetContext(ctx, deck,
		"SELECT id, user_id, name, color, created_at FROM decks WHERE id = ? AND user_id = ?",
		deckID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// FindByName returns a user's deck with the given name, or nil
func (r *DeckRepository) FindByName(ctx context.Context, userID int64, name string) (*models.Deck, error) {
	deck := &models.Deck{}
	err := r.db.GetContext(ctx, deck,
		"SELECT id, user_id, name, color, created_at FROM decks WHERE user_id = ? AND name = ? ORDER BY id LIMIT 1",
		userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// ListAll returns every deck in the store
func (r *DeckRepository) ListAll(ctx context.Context) ([]models.Deck, error) {
	decks := []models.Deck{}
	err := r.db.SelectContext(ctx, &decks,
		"SELECT id, user_id, name, color, created_at FROM decks ORDER BY id")
	return decks, err
}
