package domain

import "strings"

// Message is one named response emitted during a turn. The name doubles as a
// checkpoint for scenario assertions: intent responses are tagged
// "<Intent>:<variant>", slot prompts "<Intent>:<slot>", confirmations
// "<Intent>:<slot>:confirm", and common messages use their config key.
type Message struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// EscalationAxis identifies which attempt limit raised an escalation.
type EscalationAxis string

const (
	EscalationSlot        EscalationAxis = "slot"
	EscalationInteraction EscalationAxis = "interaction"
	EscalationRepeat      EscalationAxis = "repeat"
)

// Reply is the engine's output for one turn.
type Reply struct {
	SessionID string    `json:"session_id"`
	TurnID    string    `json:"turn_id"`
	Messages  []Message `json:"messages"`

	// RecognizedIntent is the top-ranked intent that passed the filter
	// threshold this turn, if any.
	RecognizedIntent string `json:"recognized_intent,omitempty"`

	// CompletedIntent names an intent completed during this turn.
	CompletedIntent string `json:"completed_intent,omitempty"`

	// Escalation is set when an attempt limit was exceeded this turn.
	Escalation EscalationAxis `json:"escalation,omitempty"`

	// Ended reports that the session reached its terminal state.
	Ended bool `json:"ended"`
}

// Text joins all message texts with a space, mirroring how a single-channel
// transport would render the turn.
func (r *Reply) Text() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Text != "" {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Has reports whether a message matching the checkpoint was emitted. A
// checkpoint matches on the full message name or on any colon-separated
// prefix, so "IntentXYZ" matches "IntentXYZ:active" and "IntentXYZ:zipcode".
func (r *Reply) Has(checkpoint string) bool {
	for _, m := range r.Messages {
		if m.Name == checkpoint || strings.HasPrefix(m.Name, checkpoint+":") {
			return true
		}
	}
	return false
}
