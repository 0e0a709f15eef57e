// Package workflow is the Pending → Approved | Rejected state machine shared by lab and room
// reservations, purchase orders and certification requests.
//
// The engine is entity-agnostic. Each kind plugs in its store, its notification texts and an
// optional side effect that runs after a resolution commits.
package workflow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/events"
	"campusreserve/internal/notify"
)

// Kind names an approvable entity type; it also keys the timeline and audit tables.
type Kind string

const (
	KindReservation   Kind = "reservation"
	KindPurchaseOrder Kind = "purchase_order"
	KindCertification Kind = "certification"
)

// Approvable is implemented by every entity the engine can resolve.
type Approvable interface {
	ApprovalID() int64
	ApprovalStatus() Status
	// ApprovalOwner is the requester that gets notified.
	ApprovalOwner() string
}

// Decision is what a reviewer asked for. Message is nil when an approval carries no note.
type Decision struct {
	Event      Event
	To         Status
	Message    *string
	ReviewerID string
	At         time.Time
}

// Store persists decisions for one entity kind.
//
// Resolve must be atomic with respect to the entity's status: lock or compare-and-set,
// fail with ErrNotFound for unknown ids and ErrInvalidTransition when the entity is no
// longer Pending, then persist d and its timeline entry together.
type Store[T Approvable] interface {
	Resolve(ctx context.Context, id int64, d Decision) (T, error)
	Timeline(ctx context.Context, id int64) ([]events.Event, error)
}

// RejectionReason is a non-empty rejection message. The zero value is rejected by the engine.
type RejectionReason struct {
	text string
}

// NewRejectionReason trims text and fails with ErrMissingRejectionMessage when nothing is left.
func NewRejectionReason(text string) (RejectionReason, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return RejectionReason{}, ErrMissingRejectionMessage
	}
	return RejectionReason{text: text}, nil
}

func (r RejectionReason) String() string { return r.text }

// Messages renders per-kind notification texts. Nil funcs fall back to a generic sentence.
type Messages[T Approvable] struct {
	Submitted func(T) string
	Approved  func(T) string
	Rejected  func(T) string
}

type Options[T Approvable] struct {
	Kind     Kind
	Store    Store[T]
	Notifier notify.Notifier
	Messages Messages[T]
	// OnResolved runs after a decision commits, e.g. to release held capacity.
	// Its error is logged; the decision stands.
	OnResolved func(ctx context.Context, entity T, d Decision) error
	Log        *zap.SugaredLogger
	Timeout    time.Duration
	Clock      func() time.Time
}

type Engine[T Approvable] struct {
	kind       Kind
	store      Store[T]
	notifier   notify.Notifier
	messages   Messages[T]
	onResolved func(ctx context.Context, entity T, d Decision) error
	log        *zap.SugaredLogger
	timeout    time.Duration
	now        func() time.Time
}

func NewEngine[T Approvable](opts Options[T]) *Engine[T] {
	e := &Engine[T]{
		kind:       opts.Kind,
		store:      opts.Store,
		notifier:   opts.Notifier,
		messages:   opts.Messages,
		onResolved: opts.OnResolved,
		log:        opts.Log,
		timeout:    opts.Timeout,
		now:        opts.Clock,
	}
	if e.notifier == nil {
		e.notifier = notify.Discard{}
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	e.log = e.log.Named("workflow." + string(opts.Kind))
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func (e *Engine[T]) Kind() Kind { return e.kind }

// Approve resolves a Pending entity as Approved. message is optional; blank means none.
func (e *Engine[T]) Approve(ctx context.Context, id int64, reviewerID, message string) (T, error) {
	var msg *string
	if m := strings.TrimSpace(message); m != "" {
		msg = &m
	}
	return e.resolve(ctx, id, EventApprove, reviewerID, msg)
}

// Reject resolves a Pending entity as Rejected with a mandatory reason.
func (e *Engine[T]) Reject(ctx context.Context, id int64, reviewerID string, reason RejectionReason) (T, error) {
	if reason.text == "" {
		var zero T
		return zero, ErrMissingRejectionMessage
	}
	msg := reason.text
	return e.resolve(ctx, id, EventReject, reviewerID, &msg)
}

// RejectText validates text before it reaches the store.
func (e *Engine[T]) RejectText(ctx context.Context, id int64, reviewerID, text string) (T, error) {
	reason, err := NewRejectionReason(text)
	if err != nil {
		var zero T
		return zero, err
	}
	return e.Reject(ctx, id, reviewerID, reason)
}

// Timeline lists the entity's events in order.
func (e *Engine[T]) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.store.Timeline(ctx, id)
}

// Submitted sends the "request received" notification for a freshly created entity.
func (e *Engine[T]) Submitted(ctx context.Context, entity T) {
	text := "Your request was submitted and is pending review."
	if e.messages.Submitted != nil {
		text = e.messages.Submitted(entity)
	}
	e.send(ctx, entity, notify.EventSubmitted, text)
}

func (e *Engine[T]) resolve(ctx context.Context, id int64, ev Event, reviewerID string, msg *string) (T, error) {
	var zero T

	to, err := Next(StatusPending, ev)
	if err != nil {
		return zero, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	d := Decision{Event: ev, To: to, Message: msg, ReviewerID: reviewerID, At: e.now()}
	out, err := e.store.Resolve(ctx, id, d)
	if err != nil {
		e.log.Infow("resolve refused", "id", id, "event", ev, "reviewer_id", reviewerID, "error", err)
		return zero, err
	}
	e.log.Infow("resolved", "id", id, "status", out.ApprovalStatus().String(), "reviewer_id", reviewerID)

	if e.onResolved != nil {
		if err := e.onResolved(ctx, out, d); err != nil {
			e.log.Warnw("post-resolution hook failed", "id", id, "error", err)
		}
	}

	switch to {
	case StatusApproved:
		text := "Your request was approved."
		if e.messages.Approved != nil {
			text = e.messages.Approved(out)
		}
		e.send(ctx, out, notify.EventApproved, text)
	case StatusRejected:
		text := "Your request was rejected."
		if e.messages.Rejected != nil {
			text = e.messages.Rejected(out)
		}
		e.send(ctx, out, notify.EventRejected, text)
	}
	return out, nil
}

func (e *Engine[T]) send(ctx context.Context, entity T, event, text string) {
	n := notify.Notification{
		Kind:        string(e.kind),
		EntityID:    entity.ApprovalID(),
		RecipientID: entity.ApprovalOwner(),
		Event:       event,
		Text:        text,
		OccurredAt:  e.now(),
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		e.log.Warnw("notification failed", "id", n.EntityID, "event", event, "error", err)
	}
}

func (e *Engine[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}
