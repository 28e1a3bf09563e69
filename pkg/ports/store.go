package ports

import (
	"context"

	"github.com/parleybot/parley/pkg/domain"
)

// SessionStore defines the key-value interface for persisting conversation
// sessions. This keeps storage pluggable: in-memory for tests and embedding,
// Redis for multi-instance deployments.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, sessionID string, sess *domain.Session) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of known sessions.
	List(ctx context.Context) ([]string, error)
}
