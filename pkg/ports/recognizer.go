package ports

import (
	"context"

	"github.com/parleybot/parley/pkg/domain"
)

// SessionContext carries the recognizer-relevant slice of conversation state.
// Providers may use it to bias recognition toward the answer currently being
// awaited (e.g. apply the bound entity handler's extraction).
type SessionContext struct {
	// AwaitingSlot is the slot name currently being prompted for, if any.
	AwaitingSlot string

	// AwaitingEntity is the entity type bound to that slot.
	AwaitingEntity string
}

// Recognizer converts a raw utterance into ranked intents and entities.
// Implementations must be idempotent per call and side-effect free from the
// engine's perspective. The engine bounds every call with a timeout; a
// timeout or error is treated as a no-match, never left unresolved.
type Recognizer interface {
	Recognize(ctx context.Context, utterance string, sctx SessionContext) (*domain.NLUResult, error)
}
