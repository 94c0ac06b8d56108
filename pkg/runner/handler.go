package runner

import (
	"context"

	"github.com/aretw0/scenery/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents delivered posts. state is the session after delivery,
	// used to show only the buttons still pressable.
	Output(ctx context.Context, posts []*domain.Post, state *domain.State) error

	// Input reads the next user event. It returns io.EOF when the input ends.
	Input(ctx context.Context) (domain.Input, error)

	// SystemOutput presents a meta-message to the user, distinct from posts.
	SystemOutput(ctx context.Context, msg string) error
}
