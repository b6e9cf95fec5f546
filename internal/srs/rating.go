package srs

import (
	"encoding/json"
	"fmt"

	"flashstudy/internal/models"
)

// Rating is the learner's self-assessment of a recall attempt.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// IsValid reports whether r is one of the four known ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// IsCorrect reports whether the rating counts as a correct answer.
func (r Rating) IsCorrect() bool {
	return r >= Good
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// MarshalJSON encodes the rating as its integer value.
func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

// UnmarshalJSON accepts only the integers 1 through 4.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRating, err)
	}
	if !Rating(v).IsValid() {
		return models.ErrInvalidRating
	}
	*r = Rating(v)
	return nil
}
