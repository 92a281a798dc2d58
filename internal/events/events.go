// Package events publishes domain events (listing and transaction changes) to a message broker.
package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

const (
	TypeUserRegistered  = "user.registered"
	TypePropertyCreated = "property.created"
	TypePropertyDeleted = "property.deleted"
	TypeRentalCreated   = "rental.created"
	TypePurchaseCreated = "purchase.created"
	TypeRentalDue       = "rental.due"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// LogPublisher stands in for the broker when none is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (LogPublisher) Publish(ctx context.Context, evt Event) error {
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"event_type": evt.Type,
		"event_id":   evt.ID,
	}).Debug("event published (no broker)")
	return nil
}

func (LogPublisher) Close() error { return nil }

// PublishBestEffort publishes and only logs failures. Callers use it after the
// state change has already been committed.
func PublishBestEffort(ctx context.Context, p Publisher, evtType string, payload any) {
	if p == nil {
		return
	}
	evt := Event{Type: evtType, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := p.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("event_type", evtType).Warn("failed to publish event")
	}
}
