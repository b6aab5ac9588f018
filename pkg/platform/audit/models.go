// Package audit captures who did what to which generator. Domain services
// emit events through an Emitter, a background worker persists them and
// optionally publishes them to Kafka for downstream consumers.
package audit

import (
	"context"
	"time"

	id "rngenius/pkg/domain"
	"rngenius/pkg/requestcontext"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ActorID   id.UserID
	Action    string
	// Subject identifies what was acted on, e.g. "generator:42" or
	// "option:7".
	Subject   string
	Detail    string
	RequestID string
	IP        string
	UserAgent string
}

const (
	EventUserRegistered       = "user_registered"
	EventLoginFailed          = "login_failed"
	EventAuthLockoutTriggered = "auth_lockout_triggered"
	EventGeneratorCreated     = "generator_created"
	EventGeneratorUpdated     = "generator_updated"
	EventGeneratorDeleted     = "generator_deleted"
	EventOptionAdded          = "option_added"
	EventOptionRemoved        = "option_removed"
	EventParticipantAdded     = "participant_added"
	EventParticipantRemoved   = "participant_removed"
	EventParticipantLeft      = "participant_left"
	EventDrawCompleted        = "draw_completed"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter hands events to the background worker without blocking domain
// code. When the buffer is full the event is dropped, a lost audit line
// must never fail a user request.
type Emitter struct {
	events chan Event
}

func NewEmitter(buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{events: make(chan Event, buffer)}
}

// Emit enriches the event with request metadata from ctx and queues it.
// Safe to call on a nil Emitter.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	select {
	case e.events <- event:
	default:
	}
}

// Events exposes the queue for the worker to drain.
func (e *Emitter) Events() <-chan Event {
	return e.events
}
