package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"flashstudy/internal/models"
)

// MaxScheduleDays bounds the rolling schedule window
const MaxScheduleDays = 366

// ScheduleQuery selects either a calendar month or a rolling window of days
// starting today. Year and Month take precedence when both are set.
type ScheduleQuery struct {
	Year  int
	Month int
	Days  int
}

// ScheduleResult is the review calendar plus workload stats
type ScheduleResult struct {
	Days  []models.ScheduleDay
	Stats models.ScheduleStats
}

// Schedule counts upcoming reviews per day and deck. Days are calendar days
// in the configured time zone and suspended cards are left out.
func (s *StudyService) Schedule(ctx context.Context, userID int64, q ScheduleQuery) (*ScheduleResult, error) {
	today := startOfDay(s.now(), s.location)

	var start time.Time
	var days int
	switch {
	case q.Year != 0 || q.Month != 0:
		if q.Year < 1 || q.Year > 9999 || q.Month < 1 || q.Month > 12 {
			return nil, fmt.Errorf("%w: invalid year or month", models.ErrInvalidParameter)
		}
		start = time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, s.location)
		days = start.AddDate(0, 1, -1).Day()
	default:
		days = q.Days
		if days == 0 {
			days = 7
		}
		if days < 1 || days > MaxScheduleDays {
			return nil, fmt.Errorf("%w: days must be between 1 and %d", models.ErrInvalidParameter, MaxScheduleDays)
		}
		start = today
	}
	end := start.AddDate(0, 0, days)

	scheduled, err := s.cards.ListScheduled(ctx, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list scheduled cards: %w", err)
	}
	byDate := lo.GroupBy(scheduled, func(c models.ScheduledCard) string {
		return c.NextReview.In(s.location).Format(models.DateLayout)
	})

	result := &ScheduleResult{Days: make([]models.ScheduleDay, 0, days)}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(models.DateLayout)
		cards := byDate[date]
		result.Days = append(result.Days, models.ScheduleDay{
			Date:   date,
			Count:  len(cards),
			ByDeck: groupByDeck(cards),
		})
	}

	stats, err := s.scheduleStats(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	result.Stats = *stats
	return result, nil
}

func (s *StudyService) scheduleStats(ctx context.Context, userID int64, today time.Time) (*models.ScheduleStats, error) {
	tomorrow := today.AddDate(0, 0, 1)
	// the week window includes both today and the same weekday next week
	weekEnd := today.AddDate(0, 0, 8)

	upcoming, err := s.cards.ListScheduled(ctx, userID, today.UTC(), weekEnd.UTC())
	if err != nil {
		return nil, fmt.Errorf("list upcoming cards: %w", err)
	}
	completed, err := s.cards.CountForUser(ctx, userID, 3)
	if err != nil {
		return nil, err
	}
	total, err := s.cards.CountForUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	return &models.ScheduleStats{
		Today: lo.CountBy(upcoming, func(c models.ScheduledCard) bool {
			return c.NextReview.Before(tomorrow)
		}),
		Week:      len(upcoming),
		Completed: completed,
		Total:     total,
	}, nil
}

func groupByDeck(cards []models.ScheduledCard) []models.ScheduleByDeck {
	grouped := lo.GroupBy(cards, func(c models.ScheduledCard) int64 { return c.DeckID })
	out := make([]models.ScheduleByDeck, 0, len(grouped))
	for deckID, deckCards := range grouped {
		out = append(out, models.ScheduleByDeck{
			DeckID:   deckID,
			DeckName: deckCards[0].DeckName,
			Color:    deckCards[0].DeckColor,
			Count:    len(deckCards),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeckID < out[j].DeckID })
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
