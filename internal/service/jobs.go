package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single run of a background job
const jobTimeout = 2 * time.Minute

// Jobs runs the periodic maintenance tasks
type Jobs struct {
	scheduler     *gocron.Scheduler
	study         *StudyService
	reminders     *ReminderService
	sweepInterval time.Duration
	sessionMaxAge time.Duration
	log           logrus.FieldLogger
}

// NewJobs creates the background scheduler. reminders may be nil.
func NewJobs(study *StudyService, reminders *ReminderService, sweepInterval, sessionMaxAge time.Duration, log logrus.FieldLogger) *Jobs {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Jobs{
		scheduler:     s,
		study:         study,
		reminders:     reminders,
		sweepInterval: sweepInterval,
		sessionMaxAge: sessionMaxAge,
		log:           log,
	}
}

// Start registers the jobs and runs them in the background
func (j *Jobs) Start() error {
	if j.sweepInterval > 0 && j.sessionMaxAge > 0 {
		if _, err := j.scheduler.Every(j.sweepInterval).Do(j.sweepSessions); err != nil {
			return fmt.Errorf("schedule session sweeper: %w", err)
		}
	}
	if j.reminders != nil && j.reminders.sender.Enabled() {
		// top of every hour, matching the hour_utc granularity of subscriptions
		if _, err := j.scheduler.Cron("0 * * * *").Do(j.sendReminders); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}
	j.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (j *Jobs) Stop() {
	j.scheduler.Stop()
}

func (j *Jobs) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log := j.log.WithField("job", "session_sweeper")
	closed, err := j.study.EndStaleSessions(ctx, j.sessionMaxAge)
	if err != nil {
		log.WithError(err).Error("Failed to close abandoned sessions")
		return
	}
	if closed > 0 {
		log.WithField("closed", closed).Info("Closed abandoned sessions")
	}
}

func (j *Jobs) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log := j.log.WithField("job", "reminders")
	sent, err := j.reminders.SendDueDigests(ctx)
	if err != nil {
		log.WithError(err).Error("Reminder run failed")
	}
	log.WithField("sent", sent).Info("Reminder run finished")
}
