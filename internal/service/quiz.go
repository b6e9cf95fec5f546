package service

import (
	"context"

	"github.com/samber/lo"

	"flashstudy/internal/models"
)

// maxDistractors is how many wrong answers a test question offers
const maxDistractors = 3

// MatchingPair is one question/answer pair of a matching exercise
type MatchingPair struct {
	Card     models.Card
	Question string
	Answer   string
}

// TestQuestion is a multiple choice question built from a card
type TestQuestion struct {
	Card          models.Card
	Question      string
	Options       []string
	CorrectAnswer string
}

// MatchingCards returns shuffled question/answer pairs from a deck
func (s *StudyService) MatchingCards(ctx context.Context, userID, deckID int64, limit int, reverse bool) ([]MatchingPair, error) {
	cards, err := s.SelectCards(ctx, userID, deckID, KindAll, limit)
	if err != nil {
		return nil, err
	}
	pairs := lo.Map(lo.Shuffle(cards), func(c models.Card, _ int) MatchingPair {
		q, a := questionAnswer(c, reverse)
		return MatchingPair{Card: c, Question: q, Answer: a}
	})
	return pairs, nil
}

// TestCards returns shuffled multiple choice questions from a deck. Wrong
// options are drawn from the answers of other cards in the same deck.
func (s *StudyService) TestCards(ctx context.Context, userID, deckID int64, limit int, reverse bool) ([]TestQuestion, error) {
	cards, err := s.SelectCards(ctx, userID, deckID, KindAll, limit)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return []TestQuestion{}, nil
	}

	deckCards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	pool := lo.Uniq(lo.Map(deckCards, func(c models.Card, _ int) string {
		_, a := questionAnswer(c, reverse)
		return a
	}))

	questions := lo.Map(lo.Shuffle(cards), func(c models.Card, _ int) TestQuestion {
		q, a := questionAnswer(c, reverse)
		return TestQuestion{
			Card:          c,
			Question:      q,
			Options:       buildOptions(a, pool),
			CorrectAnswer: a,
		}
	})
	return questions, nil
}

func questionAnswer(c models.Card, reverse bool) (string, string) {
	if reverse {
		return c.Back, c.Front
	}
	return c.Front, c.Back
}

// buildOptions returns the correct answer plus up to maxDistractors distinct
// wrong answers in random order
func buildOptions(correct string, pool []string) []string {
	candidates := lo.Shuffle(lo.Without(pool, correct))
	if len(candidates) > maxDistractors {
		candidates = candidates[:maxDistractors]
	}
	return lo.Shuffle(append(candidates, correct))
}
