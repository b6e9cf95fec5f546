package models

import "time"

// DefaultDeckColor is used when a deck is created without a color
const DefaultDeckColor = "#3b82f6"

// Deck represents a user's collection of cards
type Deck struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
