package domain

import "time"

// State is the per-session dialogue record.
//
// Entities are only meaningful while CurrentIntent is set: every transition back
// to IntentNone goes through Reset, which clears them.
type State struct {
	SessionID string `json:"session_id"`

	// UserID is the identity the session was last used with (0 = anonymous).
	UserID int64 `json:"user_id,omitempty"`

	// CurrentIntent is the flow in progress, IntentNone when idle.
	CurrentIntent Intent `json:"current_intent,omitempty"`

	// Entities holds the slots accumulated for the current flow.
	Entities Entities `json:"entities"`

	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates an idle state for a session.
func NewState(sessionID string) *State {
	now := time.Now()
	return &State{
		SessionID: sessionID,
		Entities:  Entities{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active reports whether a flow is in progress.
func (s *State) Active() bool {
	return s.CurrentIntent != IntentNone
}

// Begin starts a new flow, discarding whatever the previous one collected.
func (s *State) Begin(intent Intent) {
	s.CurrentIntent = intent
	s.Entities = Entities{}
}

// Reset ends the current flow.
func (s *State) Reset() {
	s.CurrentIntent = IntentNone
	s.Entities = Entities{}
}

// Touch records a processed turn.
func (s *State) Touch(now time.Time) {
	s.Turns++
	s.UpdatedAt = now
}

// IdleFor returns how long the session has been inactive.
func (s *State) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}

// Snapshot returns a copy that shares no mutable data with s.
func (s *State) Snapshot() *State {
	out := *s
	if s.Entities != nil {
		out.Entities = s.Entities.Clone()
	} else {
		out.Entities = Entities{}
	}
	return &out
}
