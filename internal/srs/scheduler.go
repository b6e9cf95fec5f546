// Package srs computes the next review date of a card from a 1-4 rating.
// The algorithm is a variant of SM-2 with a four button scale.
package srs

import (
	"math"
	"time"

	"flashstudy/internal/models"
)

// Config holds the algorithm constants. Zero values mean the defaults.
type Config struct {
	InitialEase       float64
	MinimumEase       float64
	LapsePenalty      float64
	HardPenalty       float64
	EasyBonus         float64
	HardMultiplier    float64
	EasyMultiplier    float64
	FirstGoodInterval int
	LapseDelay        time.Duration
	MaximumInterval   int
}

// DefaultConfig returns the standard constants.
func DefaultConfig() Config {
	return Config{
		InitialEase:       2.5,
		MinimumEase:       1.3,
		LapsePenalty:      0.20,
		HardPenalty:       0.15,
		EasyBonus:         0.15,
		HardMultiplier:    1.2,
		EasyMultiplier:    1.3,
		FirstGoodInterval: 3,
		LapseDelay:        10 * time.Minute,
		MaximumInterval:   36500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialEase == 0 {
		c.InitialEase = d.InitialEase
	}
	if c.MinimumEase == 0 {
		c.MinimumEase = d.MinimumEase
	}
	if c.LapsePenalty == 0 {
		c.LapsePenalty = d.LapsePenalty
	}
	if c.HardPenalty == 0 {
		c.HardPenalty = d.HardPenalty
	}
	if c.EasyBonus == 0 {
		c.EasyBonus = d.EasyBonus
	}
	if c.HardMultiplier == 0 {
		c.HardMultiplier = d.HardMultiplier
	}
	if c.EasyMultiplier == 0 {
		c.EasyMultiplier = d.EasyMultiplier
	}
	if c.FirstGoodInterval == 0 {
		c.FirstGoodInterval = d.FirstGoodInterval
	}
	if c.LapseDelay == 0 {
		c.LapseDelay = d.LapseDelay
	}
	if c.MaximumInterval == 0 {
		c.MaximumInterval = d.MaximumInterval
	}
	return c
}

// Scheduler applies ratings to scheduling state. It is safe for concurrent use.
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a scheduler, filling unset constants with defaults.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg.withDefaults()}
}

// Config returns the effective constants.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// InitialEase is the ease factor given to newly created cards.
func (s *Scheduler) InitialEase() float64 {
	return s.cfg.InitialEase
}

// Review returns the state that follows prev after a rating at now.
// prev is not modified.
func (s *Scheduler) Review(prev models.SchedulingState, rating Rating, now time.Time) (models.SchedulingState, error) {
	if !rating.IsValid() {
		return prev, models.ErrInvalidRating
	}

	ease := prev.EaseFactor
	if ease == 0 {
		ease = s.cfg.InitialEase
	}
	isNew := prev.Repetitions == 0

	next := models.SchedulingState{
		Repetitions: prev.Repetitions + 1,
		EaseFactor:  ease,
	}

	switch rating {
	case Again:
		next.Repetitions = 0
		next.IntervalDays = 0
		next.EaseFactor = s.clampEase(ease - s.cfg.LapsePenalty)
		due := now.Add(s.cfg.LapseDelay)
		next.NextReview = &due
		next.LastReviewedAt = timePtr(now)
		return next, nil
	case Hard:
		next.IntervalDays = atLeastOne(round(float64(prev.IntervalDays) * s.cfg.HardMultiplier))
		next.EaseFactor = s.clampEase(ease - s.cfg.HardPenalty)
	case Good:
		if isNew {
			next.IntervalDays = s.cfg.FirstGoodInterval
		} else {
			next.IntervalDays = atLeastOne(round(float64(prev.IntervalDays) * ease))
		}
	case Easy:
		if isNew {
			next.IntervalDays = round(float64(s.cfg.FirstGoodInterval) * s.cfg.EasyMultiplier)
		} else {
			next.IntervalDays = atLeastOne(round(float64(prev.IntervalDays) * ease * s.cfg.EasyMultiplier))
		}
		next.EaseFactor = roundEase(ease + s.cfg.EasyBonus)
	}

	if next.IntervalDays > s.cfg.MaximumInterval {
		next.IntervalDays = s.cfg.MaximumInterval
	}
	due := now.AddDate(0, 0, next.IntervalDays)
	next.NextReview = &due
	next.LastReviewedAt = timePtr(now)
	return next, nil
}

// Points is the score a single rating earns.
func Points(r Rating) int {
	return int(r)
}

func (s *Scheduler) clampEase(e float64) float64 {
	e = roundEase(e)
	if e < s.cfg.MinimumEase {
		return s.cfg.MinimumEase
	}
	return e
}

func roundEase(e float64) float64 {
	return math.Round(e*100) / 100
}

func round(f float64) int {
	return int(math.Round(f))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func timePtr(t time.Time) *time.Time {
	return &t
}
