package models

import "errors"

// Domain errors surfaced by the study service.
var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 4")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrCardNotFound     = errors.New("card not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrConflict         = errors.New("could not save review, please retry")
)
