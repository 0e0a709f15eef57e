// Package notify delivers user-facing notifications about submissions and resolutions.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	EventSubmitted = "submitted"
	EventApproved  = "approved"
	EventRejected  = "rejected"
)

type Notification struct {
	Kind        string    `json:"kind"`
	EntityID    int64     `json:"entityId"`
	RecipientID string    `json:"recipientId"`
	Event       string    `json:"event"`
	Text        string    `json:"text"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Notifier is the collaborator that shows the toast/email/etc. Delivery is best effort:
// callers log failures and never roll back state because of them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Log writes notifications to the service log.
type Log struct {
	L *zap.SugaredLogger
}

func (l Log) Notify(_ context.Context, n Notification) error {
	l.L.Infow("notification",
		"kind", n.Kind,
		"entity_id", n.EntityID,
		"recipient_id", n.RecipientID,
		"event", n.Event,
		"text", n.Text,
	)
	return nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, x := range m {
		if x == nil {
			continue
		}
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) error { return nil }
