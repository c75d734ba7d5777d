package domain

// Message is one inbound chat message.
type Message struct {
	// SessionID identifies the conversation. Empty lets the host decide.
	SessionID string `json:"session_id,omitempty"`

	// UserID is the authenticated customer, 0 when anonymous.
	UserID int64 `json:"user_id,omitempty"`

	Text string `json:"message"`
}

// Authenticated reports whether the message carries a customer identity.
func (m Message) Authenticated() bool {
	return m.UserID > 0
}

// TurnResult is the engine's answer to one message.
type TurnResult struct {
	Response       string   `json:"response"`
	Intent         Intent   `json:"intent"`
	Entities       Entities `json:"entities"`
	ActionRequired bool     `json:"action_required"`
	Confidence     float64  `json:"confidence"`
}
