package domain

import "fmt"

// Action is a closed set of follow-up behaviors that answer tables map
// recognized intents (or replacement entities) onto. Configuration resolves
// action names at load time; the engine dispatches on the variant, never on
// free-form strings.
type Action string

const (
	// ActionNone accepts the answer and continues normally.
	ActionNone Action = "none"
	// ActionRepeatSlot discards the pending slot value and re-prompts.
	ActionRepeatSlot Action = "repeat_slot"
	// ActionReplaceSlot swaps in a newly recognized value and re-confirms.
	ActionReplaceSlot Action = "replace_slot"
	// ActionAbortIntent abandons the active intent.
	ActionAbortIntent Action = "abort_intent"
	// ActionEndConversation terminates the session.
	ActionEndConversation Action = "end_conversation"
)

// ParseAction validates a configured action name.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionNone, ActionRepeatSlot, ActionReplaceSlot, ActionAbortIntent, ActionEndConversation:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Built-in intent names the engine gives special treatment. Applications may
// override their recognition patterns but not their semantics.
const (
	IntentConfirmYes = "ConfirmYes"
	IntentConfirmNo  = "ConfirmNo"
	IntentRepeat     = "Repeat"
	IntentHelp       = "Help"
	IntentWhy        = "Why"
	IntentCancel     = "Cancel"
	IntentWelcome    = "Welcome"
	IntentNone       = "None"
)

// BuiltinIntent reports whether the name is one of the engine's built-in
// conversational intents (answers and meta requests, never stack candidates).
func BuiltinIntent(name string) bool {
	switch name {
	case IntentConfirmYes, IntentConfirmNo, IntentRepeat, IntentHelp, IntentWhy, IntentCancel, IntentNone:
		return true
	}
	return false
}
