package domain

// IntentState is the lifecycle state of an intent instance on the stack.
type IntentState string

const (
	IntentActive    IntentState = "active"
	IntentDeferred  IntentState = "deferred"
	IntentResumed   IntentState = "resumed"
	IntentCompleted IntentState = "completed"
)

// SlotState is the fill state of a single slot instance.
type SlotState string

const (
	SlotUnfilled             SlotState = "unfilled"
	SlotAwaitingConfirmation SlotState = "awaiting_confirmation"
	SlotFilled               SlotState = "filled"
)

// SlotValue carries both the raw recognized value and the handler-normalized
// value. Once the owning slot is Filled the value is treated as immutable;
// a rejected confirmation discards it entirely.
type SlotValue struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// SlotInstance is the per-session fill state of one declared slot.
// Declaration-order metadata (prompts, handler bindings, follow-ups) lives in
// the bot configuration; only mutable state lives here.
type SlotInstance struct {
	Name  string     `json:"name"`
	State SlotState  `json:"state"`
	Value *SlotValue `json:"value,omitempty"`
}

// IntentInstance is one occurrence of an intent on a session's stack.
type IntentInstance struct {
	Name  string          `json:"name"`
	State IntentState     `json:"state"`
	Slots []*SlotInstance `json:"slots"`

	// Attempts counts consecutive re-asks per question name. It survives
	// deferral and is cleared when the intent is completed or aborted.
	Attempts map[string]int `json:"attempts,omitempty"`
}

// NewIntentInstance creates an Active instance with unfilled slots in
// declaration order.
func NewIntentInstance(name string, slotNames []string) *IntentInstance {
	in := &IntentInstance{
		Name:     name,
		State:    IntentActive,
		Attempts: make(map[string]int),
	}
	for _, sn := range slotNames {
		in.Slots = append(in.Slots, &SlotInstance{Name: sn, State: SlotUnfilled})
	}
	return in
}

// Clone returns a deep copy of the instance.
func (in *IntentInstance) Clone() *IntentInstance {
	out := *in
	out.Slots = make([]*SlotInstance, len(in.Slots))
	for i, s := range in.Slots {
		sc := *s
		if s.Value != nil {
			v := *s.Value
			sc.Value = &v
		}
		out.Slots[i] = &sc
	}
	out.Attempts = make(map[string]int, len(in.Attempts))
	for k, v := range in.Attempts {
		out.Attempts[k] = v
	}
	return &out
}

// Slot returns the instance for the named slot, or nil.
func (in *IntentInstance) Slot(name string) *SlotInstance {
	for _, s := range in.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// NextPending returns the first slot in declaration order that is not yet
// Filled, or nil when every slot is filled.
func (in *IntentInstance) NextPending() *SlotInstance {
	for _, s := range in.Slots {
		if s.State != SlotFilled {
			return s
		}
	}
	return nil
}

// AwaitingConfirmation returns the slot currently awaiting confirmation,
// or nil.
func (in *IntentInstance) AwaitingConfirmation() *SlotInstance {
	for _, s := range in.Slots {
		if s.State == SlotAwaitingConfirmation {
			return s
		}
	}
	return nil
}

// FilledValues returns a map of slot name to normalized value for every slot
// that holds a value, including slots still awaiting confirmation.
func (in *IntentInstance) FilledValues() map[string]string {
	out := make(map[string]string, len(in.Slots))
	for _, s := range in.Slots {
		if s.Value != nil {
			out[s.Name] = s.Value.Normalized
		}
	}
	return out
}

// Complete reports whether every slot is Filled.
func (in *IntentInstance) Complete() bool {
	for _, s := range in.Slots {
		if s.State != SlotFilled {
			return false
		}
	}
	return true
}
