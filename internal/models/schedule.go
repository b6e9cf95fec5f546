package models

import "time"

// ScheduleDay is the number of reviews falling on one calendar day
type ScheduleDay struct {
	Date   string           `json:"date"`
	Count  int              `json:"count"`
	ByDeck []ScheduleByDeck `json:"by_deck"`
}

// ScheduleByDeck breaks a day's count down per deck
type ScheduleByDeck struct {
	DeckID   int64  `json:"deck_id"`
	DeckName string `json:"deck_name"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// ScheduleStats summarises the upcoming workload
type ScheduleStats struct {
	Today     int `json:"today"`
	Week      int `json:"week"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ScheduledCard is a card's due date joined with its deck labels
type ScheduledCard struct {
	CardID     int64     `db:"card_id"`
	DeckID     int64     `db:"deck_id"`
	DeckName   string    `db:"deck_name"`
	DeckColor  string    `db:"deck_color"`
	NextReview time.Time `db:"next_review"`
}
