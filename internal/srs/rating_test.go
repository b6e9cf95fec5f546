package srs

import (
	"encoding/json"
	"errors"
	"testing"

	"flashstudy/internal/models"
)

func TestRatingUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Rating
		wantErr bool
	}{
		{input: "1", want: Again},
		{input: "4", want: Easy},
		{input: "0", wantErr: true},
		{input: "7", wantErr: true},
		{input: `"good"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Rating
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidRating) {
					t.Fatalf("Unmarshal(%s) error = %v, want ErrInvalidRating", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if r != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, r, tt.want)
			}
		})
	}
}

func TestRatingString(t *testing.T) {
	if Hard.String() != "hard" {
		t.Errorf("Hard.String() = %q", Hard.String())
	}
	if Rating(9).String() != "Rating(9)" {
		t.Errorf("Rating(9).String() = %q", Rating(9).String())
	}
	if !Good.IsCorrect() || Hard.IsCorrect() {
		t.Error("IsCorrect boundary should be Good")
	}
}
