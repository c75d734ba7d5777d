package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn      EventType = "turn"
	EventFlowEnd   EventType = "flow_end"
	EventOperation EventType = "operation"
)

// FlowOutcome describes how a flow left the state.
type FlowOutcome string

const (
	OutcomeCompleted       FlowOutcome = "completed"
	OutcomeCancelled       FlowOutcome = "cancelled"
	OutcomeFailed          FlowOutcome = "failed"
	OutcomeUnauthenticated FlowOutcome = "unauthenticated"
	OutcomeSuperseded      FlowOutcome = "superseded"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TurnEvent is emitted once per processed message.
type TurnEvent struct {
	EventBase
	Intent         Intent        `json:"intent"`
	Confidence     float64       `json:"confidence"`
	ActionRequired bool          `json:"action_required"`
	Duration       time.Duration `json:"duration"`
}

// FlowEvent is emitted when a flow ends.
type FlowEvent struct {
	EventBase
	Intent  Intent      `json:"intent"`
	Outcome FlowOutcome `json:"outcome"`
}

// OperationEvent is emitted after every call to the banking collaborator.
type OperationEvent struct {
	EventBase
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurn      func(context.Context, *TurnEvent)
	OnFlowEnd   func(context.Context, *FlowEvent)
	OnOperation func(context.Context, *OperationEvent)
}

// Merge returns hooks calling h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:      chain(h.OnTurn, other.OnTurn),
		OnFlowEnd:   chain(h.OnFlowEnd, other.OnFlowEnd),
		OnOperation: chain(h.OnOperation, other.OnOperation),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
