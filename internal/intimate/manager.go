// Package intimate manages "intimate friend" requests between two users:
// sending, approving, rejecting and cancelling them, and the lists a
// profile page shows.
package intimate

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialnet/backend/internal/models"
)

// Partner is one entry of a user's intimate friend list.
type Partner struct {
	UserID uint      `json:"user_id"`
	Name   string    `json:"name"`
	Since  time.Time `json:"since"`
}

// Manager owns the request lifecycle. The acting users are always passed in
// explicitly.
type Manager struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher sets where transition events are sent.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithClock overrides time.Now, used for approval dates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(repo Repository, opts ...Option) *Manager {
	m := &Manager{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendRequest creates a pending request from sender to receiver.
//
// If the pair already has a record, in either direction and whatever its
// state, nothing is written and ErrAlreadyRequested is returned.
func (m *Manager) SendRequest(ctx context.Context, sender, receiver uint) (err error) {
	defer func() { observe("request", err) }()

	if sender == receiver {
		return ErrSelfRequest
	}
	for _, id := range []uint{sender, receiver} {
		ok, err := m.repo.UserExists(ctx, id)
		if err != nil {
			return fmt.Errorf("look up user %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
	}

	rec := &models.Intimate{
		SenderID:   sender,
		ReceiverID: receiver,
		PairKey:    models.PairKey(sender, receiver),
		Request:    true,
	}
	created, err := m.repo.Insert(ctx, rec)
	if err != nil {
		return fmt.Errorf("insert request %d->%d: %w", sender, receiver, err)
	}
	if !created {
		return ErrAlreadyRequested
	}

	m.publish(ctx, EventRequested, sender, receiver)
	return nil
}

// Approve accepts the request sender sent to receiver.
func (m *Manager) Approve(ctx context.Context, sender, receiver uint) (err error) {
	defer func() { observe("approve", err) }()

	return m.transition(ctx, EventApproved, sender, receiver, map[string]any{
		"approval": true,
		"reject":   false,
		"date":     m.now(),
	})
}

// Reject marks the request as declined by receiver. The request and
// approval flags are left as they are.
func (m *Manager) Reject(ctx context.Context, sender, receiver uint) (err error) {
	defer func() { observe("reject", err) }()

	return m.transition(ctx, EventRejected, sender, receiver, map[string]any{
		"reject": true,
	})
}

// Cancel withdraws the request sender sent to receiver. The record is kept
// and its approval flag is not touched, but an approved pair stops being
// listed by ListIntimates.
func (m *Manager) Cancel(ctx context.Context, sender, receiver uint) (err error) {
	defer func() { observe("cancel", err) }()

	return m.transition(ctx, EventCancelled, sender, receiver, map[string]any{
		"request": false,
	})
}

func (m *Manager) transition(ctx context.Context, ev EventType, sender, receiver uint, fields map[string]any) error {
	recs, err := m.repo.FindDirected(ctx, sender, receiver)
	if err != nil {
		return fmt.Errorf("find request %d->%d: %w", sender, receiver, err)
	}
	switch len(recs) {
	case 0:
		return fmt.Errorf("request %d->%d: %w", sender, receiver, ErrNotFound)
	case 1:
	default:
		return fmt.Errorf("request %d->%d: %w", sender, receiver, ErrAmbiguousState)
	}

	if err := m.repo.Update(ctx, recs[0].ID, fields); err != nil {
		return fmt.Errorf("update request %d->%d: %w", sender, receiver, err)
	}

	m.publish(ctx, ev, sender, receiver)
	return nil
}

func (m *Manager) publish(ctx context.Context, t EventType, sender, receiver uint) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, NewEvent(t, sender, receiver, m.now())); err != nil {
		log.Printf("intimate: publish %s %d->%d: %v", t, sender, receiver, err)
	}
}

// ListPendingForMe returns requests addressed to receiver that are waiting
// for a decision. Rejected requests are left out.
func (m *Manager) ListPendingForMe(ctx context.Context, receiver uint) ([]models.Intimate, error) {
	return m.repo.PendingFor(ctx, receiver)
}

// ListPendingFromMe returns requests sender made that have not been
// approved, whether or not they were rejected.
func (m *Manager) ListPendingFromMe(ctx context.Context, sender uint) ([]models.Intimate, error) {
	return m.repo.PendingFrom(ctx, sender)
}

// ListIntimates returns the accepted partners of user, earliest connection
// first.
func (m *Manager) ListIntimates(ctx context.Context, user uint) ([]Partner, error) {
	recs, err := m.repo.Accepted(ctx, user)
	if err != nil {
		return nil, err
	}

	partners := make([]Partner, 0, len(recs))
	for _, r := range recs {
		other := r.Receiver
		if r.ReceiverID == user {
			other = r.Sender
		}
		p := Partner{UserID: r.Partner(user), Name: other.DisplayName()}
		if r.Date != nil {
			p.Since = *r.Date
		}
		partners = append(partners, p)
	}
	return partners, nil
}

// ListRejectedByMe returns requests user has declined.
func (m *Manager) ListRejectedByMe(ctx context.Context, user uint) ([]models.Intimate, error) {
	return m.repo.RejectedBy(ctx, user)
}

// Between returns the record linking a and b in either direction, or
// ErrNotFound.
func (m *Manager) Between(ctx context.Context, a, b uint) (*models.Intimate, error) {
	return m.repo.FindBetween(ctx, a, b)
}
