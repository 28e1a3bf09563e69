package domain

// Phase is the orchestrator's per-session turn state.
type Phase string

const (
	PhaseIdle        Phase = "idle"        // no active intent
	PhaseResolving   Phase = "resolving"   // NLU called, awaiting stack decision
	PhaseFilling     Phase = "filling"     // slot filler active
	PhaseConfirming  Phase = "confirming"  // a slot awaits confirmation
	PhaseDispatching Phase = "dispatching" // fulfillment in flight
	PhaseCompleting  Phase = "completing"  // post-intent branch (e.g. "anything else?")
	PhaseEnded       Phase = "ended"       // terminal
)

// Counters tracks the session-level attempt axes. Slot re-ask counts live on
// the intent instance so they survive deferral.
type Counters struct {
	// Interaction counts consecutive turns where neither an intent nor a
	// slot entity was resolved.
	Interaction int `json:"interaction"`

	// Repeat counts consecutive explicit repeat requests.
	Repeat int `json:"repeat"`
}

// Session is the full conversation state for one session ID. It is owned
// exclusively by the orchestrator handling that session; turns within a
// session are strictly sequential.
type Session struct {
	ID    string `json:"id"`
	Phase Phase  `json:"phase"`

	// Stack holds the intent instances; the last element is the active one,
	// everything below is deferred.
	Stack []*IntentInstance `json:"stack"`

	// Completed maps intent names to their completed instances.
	Completed map[string]*IntentInstance `json:"completed,omitempty"`

	Counters Counters `json:"counters"`

	// PendingQuestion names a common message group awaiting a Yes/No style
	// answer (e.g. "intents_complete"). Slot confirmations are not recorded
	// here; they are derived from slot state so they survive deferral.
	PendingQuestion string `json:"pending_question,omitempty"`

	// LastPrompt is the last message emitted, replayed verbatim on an
	// explicit repeat request.
	LastPrompt *Message `json:"last_prompt,omitempty"`

	// EmitCounts tracks per-tag emissions for deterministic response
	// variant rotation.
	EmitCounts map[string]int `json:"emit_counts,omitempty"`

	// Turns is the number of turns processed so far.
	Turns int `json:"turns"`
}

// NewSession creates a fresh session in the idle phase.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		Phase:      PhaseIdle,
		Completed:  make(map[string]*IntentInstance),
		EmitCounts: make(map[string]int),
	}
}

// Active returns the top-of-stack intent, or nil when the stack is empty.
func (s *Session) Active() *IntentInstance {
	if len(s.Stack) == 0 {
		return nil
	}
	return s.Stack[len(s.Stack)-1]
}

// DeferredCount returns the number of intents below the active one.
func (s *Session) DeferredCount() int {
	if len(s.Stack) == 0 {
		return 0
	}
	return len(s.Stack) - 1
}

// Push places an intent on top of the stack.
func (s *Session) Push(in *IntentInstance) {
	s.Stack = append(s.Stack, in)
}

// Pop removes and returns the top-of-stack intent.
func (s *Session) Pop() *IntentInstance {
	if len(s.Stack) == 0 {
		return nil
	}
	top := s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]
	return top
}

// Ended reports whether the session reached its terminal phase.
func (s *Session) Ended() bool {
	return s.Phase == PhaseEnded
}

// Clone returns a deep copy. Stores copy on save and load so callers can
// never mutate persisted state through a shared pointer.
func (s *Session) Clone() *Session {
	out := *s
	out.Stack = make([]*IntentInstance, len(s.Stack))
	for i, in := range s.Stack {
		out.Stack[i] = in.Clone()
	}
	out.Completed = make(map[string]*IntentInstance, len(s.Completed))
	for name, in := range s.Completed {
		out.Completed[name] = in.Clone()
	}
	out.EmitCounts = make(map[string]int, len(s.EmitCounts))
	for k, v := range s.EmitCounts {
		out.EmitCounts[k] = v
	}
	if s.LastPrompt != nil {
		lp := *s.LastPrompt
		out.LastPrompt = &lp
	}
	return &out
}
