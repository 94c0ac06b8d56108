package ports

import (
	"context"

	"github.com/aretw0/scenery/pkg/domain"
)

// StateStore defines the interface for persisting session state.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// GraphStore persists compiled graphs under a name (usually the project name).
// Implementations must preserve reference identity between posts.
type GraphStore interface {
	Save(ctx context.Context, name string, graph *domain.Graph) error

	// Load returns domain.ErrGraphNotFound if nothing is stored under name.
	Load(ctx context.Context, name string) (*domain.Graph, error)
}
