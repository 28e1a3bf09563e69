package domain

import "context"

// LifecycleHooks defines optional callbacks for engine observability.
// Nil hooks are skipped. Hooks run synchronously within the turn and must
// not mutate the session.
type LifecycleHooks struct {
	OnTurnStart      func(ctx context.Context, sessionID string, input Input)
	OnIntentStart    func(ctx context.Context, sessionID, intent string)
	OnIntentDefer    func(ctx context.Context, sessionID, intent string)
	OnIntentResume   func(ctx context.Context, sessionID, intent string)
	OnIntentComplete func(ctx context.Context, sessionID, intent string)
	OnEscalation     func(ctx context.Context, sessionID string, axis EscalationAxis)
	OnFulfillment    func(ctx context.Context, sessionID, intent string, result FulfillmentResult)
}
