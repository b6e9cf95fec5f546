// Package notify delivers reminder emails.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a single outgoing email with HTML and plain text bodies
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// NopSender drops every message. It is used when reminders are disabled.
type NopSender struct {
	Log logrus.FieldLogger
}

func (n NopSender) Send(ctx context.Context, msg Message) error {
	if n.Log != nil {
		n.Log.WithField("to", msg.To).Debug("Skipping email send (reminders disabled)")
	}
	return nil
}

func (n NopSender) Enabled() bool { return false }
