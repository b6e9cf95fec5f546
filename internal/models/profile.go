package models

import "time"

// Profile tracks a user's cumulative study progress
type Profile struct {
	UserID            int64   `db:"user_id" json:"user_id"`
	TotalCardsStudied int     `db:"total_cards_studied" json:"total_cards_studied"`
	TotalPoints       int     `db:"total_points" json:"total_points"`
	CurrentStreak     int     `db:"current_streak" json:"current_streak"`
	LongestStreak     int     `db:"longest_streak" json:"longest_streak"`
	LastStudyDate     *string `db:"last_study_date" json:"last_study_date"`
}

// DateLayout is the storage format for calendar dates
const DateLayout = "2006-01-02"

// RecordStudy adds points and advances the daily streak for the given day
func (p *Profile) RecordStudy(points int, day time.Time) {
	p.TotalCardsStudied++
	p.TotalPoints += points

	today := day.Format(DateLayout)
	if p.LastStudyDate != nil && *p.LastStudyDate == today {
		return
	}
	yesterday := day.AddDate(0, 0, -1).Format(DateLayout)
	if p.LastStudyDate != nil && *p.LastStudyDate == yesterday {
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 1
	}
	p.LastStudyDate = &today
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
}
