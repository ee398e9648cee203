package intimate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType names a transition of an intimate request.
type EventType string

const (
	EventRequested EventType = "intimate.requested"
	EventApproved  EventType = "intimate.approved"
	EventRejected  EventType = "intimate.rejected"
	EventCancelled EventType = "intimate.cancelled"
)

// Event is emitted after a transition has been stored.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	At         time.Time `json:"at"`
}

// NewEvent builds an event with a fresh ID.
func NewEvent(t EventType, sender, receiver uint, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		SenderID:   sender,
		ReceiverID: receiver,
		At:         at,
	}
}

// Publisher delivers events somewhere outside the manager.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Publishers fans an event out to every publisher in the list.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
