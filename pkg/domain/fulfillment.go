package domain

// FulfillmentRequest carries a completed intent's slot map to the configured
// endpoint.
type FulfillmentRequest struct {
	SessionID string            `json:"session_id"`
	TurnID    string            `json:"turn_id"`
	Intent    string            `json:"intent"`
	Slots     map[string]string `json:"slots"`
}

// FulfillmentResult classifies the endpoint's response. A transport timeout
// is reported as a failed result with a reason, never as an unresolved state.
type FulfillmentResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`

	// Message is an optional user-facing message supplied by the endpoint,
	// emitted after the intent's completion flow.
	Message string `json:"message,omitempty"`

	// Action is an optional follow-up action (e.g. end_conversation).
	Action Action `json:"action,omitempty"`
}
