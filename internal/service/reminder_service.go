package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sirupsen/logrus"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/notify"
	"flashstudy/internal/repository"
)

// ReminderService manages due-card email subscriptions and sends the digest
type ReminderService struct {
	reminders  *repository.ReminderRepository
	cards      *repository.CardRepository
	sender     notify.Sender
	appBaseURL string
	log        logrus.FieldLogger
	clock      func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(db *database.DB, sender notify.Sender, appBaseURL string, log logrus.FieldLogger) *ReminderService {
	return &ReminderService{
		reminders:  repository.NewReminderRepository(db),
		cards:      repository.NewCardRepository(db),
		sender:     sender,
		appBaseURL: appBaseURL,
		log:        log,
		clock:      time.Now,
	}
}

func (s *ReminderService) now() time.Time {
	return s.clock().UTC().Truncate(time.Second)
}

// Get returns the user's subscription, or nil if the user never subscribed
func (s *ReminderService) Get(ctx context.Context, userID int64) (*models.ReminderSubscription, error) {
	return s.reminders.Get(ctx, userID)
}

// Update stores the user's reminder preferences
func (s *ReminderService) Update(ctx context.Context, userID int64, email string, hourUTC int, enabled bool) (*models.ReminderSubscription, error) {
	if hourUTC < 0 || hourUTC > 23 {
		return nil, fmt.Errorf("%w: hour_utc must be between 0 and 23", models.ErrInvalidParameter)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidParameter)
	}

	sub := &models.ReminderSubscription{
		UserID:    userID,
		Email:     email,
		HourUTC:   hourUTC,
		Enabled:   enabled,
		UpdatedAt: s.now(),
	}
	if err := s.reminders.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("save reminder subscription: %w", err)
	}
	return s.reminders.Get(ctx, userID)
}

// SendDueDigests emails every subscriber whose hour has come and who has
// cards due, at most once per day. It returns how many emails went out.
func (s *ReminderService) SendDueDigests(ctx context.Context) (int, error) {
	if !s.sender.Enabled() {
		return 0, nil
	}

	now := s.now()
	subs, err := s.reminders.ListEnabledForHour(ctx, now.Hour())
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		if !sub.DueForSend(now) {
			continue
		}
		due, err := s.cards.CountDue(ctx, sub.UserID, now)
		if err != nil {
			return sent, fmt.Errorf("count due cards for user %d: %w", sub.UserID, err)
		}
		if due == 0 {
			continue
		}

		if err := s.sender.Send(ctx, s.digestMessage(sub.Email, due)); err != nil {
			// one bad address should not stop the rest of the batch
			s.log.WithError(err).WithField("user_id", sub.UserID).Warn("Reminder email failed")
			continue
		}
		if err := s.reminders.MarkSent(ctx, sub.UserID, now.Format(models.DateLayout)); err != nil {
			return sent, fmt.Errorf("mark reminder sent: %w", err)
		}
		sent++
	}
	return sent, nil
}

func (s *ReminderService) digestMessage(to string, due int) notify.Message {
	subject := fmt.Sprintf("You have %d card%s to review", due, plural(due))
	link := s.appBaseURL + "/study"

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #3b82f6; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<p><strong>%d</strong> card%s are waiting for review today.</p>
		<p style="text-align: center;">
			<a href="%s" class="button">Start studying</a>
		</p>
		<div class="footer">
			<p>You can turn these reminders off in your study settings.</p>
		</div>
	</div>
</body>
</html>
`, due, plural(due), html.EscapeString(link))

	textBody := fmt.Sprintf(`%d card%s are waiting for review today.

Start studying: %s

---
You can turn these reminders off in your study settings.
`, due, plural(due), link)

	return notify.Message{To: to, Subject: subject, HTML: htmlBody, Text: textBody}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
