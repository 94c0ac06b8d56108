package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/domain"
)

// DefaultSessionID is used when no session id is configured.
const DefaultSessionID = "local"

// Bot is the conversation surface the runner drives.
type Bot interface {
	Start(ctx context.Context, sessionID string) ([]*domain.Post, error)
	Resume(ctx context.Context, sessionID string) ([]*domain.Post, error)
	Handle(ctx context.Context, sessionID string, in domain.Input) ([]*domain.Post, error)
	Current(ctx context.Context, sessionID string) (*domain.Post, *domain.State, error)
}

// Runner handles the conversation loop of one session using an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// SessionID identifies the conversation in the bot's state store.
	SessionID string

	// Resume continues a stored session instead of restarting it.
	Resume bool

	bot Bot
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) { r.Handler = handler }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.Logger = logger }
}

// WithSessionID sets the session to run.
func WithSessionID(id string) Option {
	return func(r *Runner) { r.SessionID = id }
}

// WithResume continues an existing session when one is stored.
func WithResume(resume bool) Option {
	return func(r *Runner) { r.Resume = resume }
}

// NewRunner creates a Runner for bot.
func NewRunner(bot Bot, opts ...Option) *Runner {
	r := &Runner{
		bot:       bot,
		SessionID: DefaultSessionID,
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run starts (or resumes) the session and loops until a terminal post is
// reached, the input ends or ctx is canceled. End of input is not an error.
func (r *Runner) Run(ctx context.Context) error {
	posts, err := r.begin(ctx)
	if err != nil {
		return err
	}

	for {
		_, state, err := r.bot.Current(ctx, r.SessionID)
		if err != nil {
			return err
		}
		if len(posts) > 0 {
			if err := r.Handler.Output(ctx, posts, state); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
		if state.Terminated {
			r.Logger.Debug("session terminated", "session_id", r.SessionID, "post", state.CurrentPostID)
			return nil
		}

		in, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		posts, err = r.bot.Handle(ctx, r.SessionID, in)
		if err != nil {
			return fmt.Errorf("navigation error: %w", err)
		}
		if len(posts) == 0 {
			if err := r.Handler.SystemOutput(ctx, "No matching answer, try again."); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) begin(ctx context.Context) ([]*domain.Post, error) {
	if r.Resume {
		return r.bot.Resume(ctx, r.SessionID)
	}
	return r.bot.Start(ctx, r.SessionID)
}
