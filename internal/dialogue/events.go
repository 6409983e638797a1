package dialogue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// EventType names something that happened in a dialogue session.
type EventType string

const (
	EventSessionStarted EventType = "session.started"
	EventLineShown      EventType = "line.shown"
	EventSessionEnded   EventType = "session.ended"
	EventDiagnostic     EventType = "diagnostic"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is published to the Observer as a session progresses.
type Event struct {
	Type      EventType `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	Script    string    `json:"script,omitempty"`
	Speaker   string    `json:"speaker,omitempty"`
	Text      string    `json:"text,omitempty"`
	Line      int       `json:"line,omitempty"`
	Directive string    `json:"directive,omitempty"`
	Severity  Severity  `json:"severity,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Observer receives session events.
type Observer interface {
	Publish(ctx context.Context, e Event) error
}

// Observers fans an event out to each observer in turn. Every observer sees
// the event even when an earlier one fails.
type Observers []Observer

func (o Observers) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, obs := range o {
		if obs == nil {
			continue
		}
		if err := obs.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
