package scenery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/internal/runtime"
	"github.com/aretw0/scenery/pkg/adapters/memory"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/matcher"
	"github.com/aretw0/scenery/pkg/ports"
	"github.com/aretw0/scenery/pkg/session"
)

// Bot runs one dialogue graph for any number of sessions. Calls for the same
// session are serialized; different sessions proceed in parallel.
type Bot struct {
	Name string

	engine   *runtime.Engine
	sessions *session.Manager
	logger   *slog.Logger
}

type options struct {
	name        string
	store       ports.StateStore
	locker      ports.DistributedLocker
	matcher     domain.Matcher
	logger      *slog.Logger
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Bot.
type Option func(*options)

// WithName labels the bot in logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithStateStore sets where sessions are persisted (default: in memory).
func WithStateStore(store ports.StateStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(o *options) {
		o.locker = locker
	}
}

// WithMatcher replaces the default text matcher.
func WithMatcher(m domain.Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithButtonPolicy selects whether pressed buttons are consumed.
func WithButtonPolicy(p domain.ButtonPolicy) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithButtonPolicy(p))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithMaxHops bounds unconditional transition chains.
func WithMaxHops(n int) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithMaxHops(n))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a bot for graph.
func New(graph *domain.Graph, opts ...Option) *Bot {
	o := &options{
		store:   memory.NewStore(),
		matcher: matcher.New(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if o.name != "" {
		logger = logger.With("graph", o.name)
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if o.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(o.locker))
	}

	runtimeOpts := append([]runtime.Option{runtime.WithLogger(logger)}, o.runtimeOpts...)

	return &Bot{
		Name:     o.name,
		engine:   runtime.NewEngine(graph, o.matcher, runtimeOpts...),
		sessions: session.NewManager(o.store, sessionOpts...),
		logger:   logger,
	}
}

// Graph returns the graph the bot runs.
func (b *Bot) Graph() *domain.Graph { return b.engine.Graph() }

// Sessions returns the session manager.
func (b *Bot) Sessions() *session.Manager { return b.sessions }

// Turn is the outcome of one call: the posts to send and the session state
// they were produced from.
type Turn struct {
	Posts []*domain.Post
	State *domain.State
}

// Start begins (or restarts) a session at the root post and returns the
// posts to send.
func (b *Bot) Start(ctx context.Context, sessionID string) ([]*domain.Post, error) {
	turn, err := b.StartTurn(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return turn.Posts, nil
}

// StartTurn is Start that also returns the state saved under the session
// lock.
func (b *Bot) StartTurn(ctx context.Context, sessionID string) (*Turn, error) {
	var turn Turn
	err := b.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, out, err := b.engine.Start(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := b.sessions.Store().Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		turn = Turn{Posts: out, State: state}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("session started", "session_id", sessionID, "posts", len(turn.Posts))
	return &turn, nil
}

// Resume returns the post a stored session waits on, or starts the session
// when it does not exist yet.
func (b *Bot) Resume(ctx context.Context, sessionID string) ([]*domain.Post, error) {
	var started []*domain.Post
	state, err := b.sessions.LoadOrStart(ctx, sessionID, func() (*domain.State, error) {
		state, posts, err := b.engine.Start(ctx, sessionID)
		started = posts
		return state, err
	})
	if err != nil {
		return nil, err
	}
	if started != nil {
		return started, nil
	}

	p, err := b.engine.Current(state)
	if err != nil {
		return nil, err
	}
	b.logger.Info("session resumed", "session_id", sessionID, "post", p.ID)
	return []*domain.Post{p}, nil
}

// Handle feeds one input to a session and returns the posts to send. An
// empty result means the input did not match any rule and the session keeps
// waiting on the same post. Unknown sessions yield domain.ErrSessionNotFound.
func (b *Bot) Handle(ctx context.Context, sessionID string, in domain.Input) ([]*domain.Post, error) {
	turn, err := b.HandleTurn(ctx, sessionID, in)
	if err != nil {
		return nil, err
	}
	return turn.Posts, nil
}

// HandleTurn is Handle that also returns the session state as left by this
// input, read under the session lock. Later inputs do not show in it.
func (b *Bot) HandleTurn(ctx context.Context, sessionID string, in domain.Input) (*Turn, error) {
	var turn Turn
	err := b.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := b.sessions.Store()
		state, err := store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, out, err := b.engine.Navigate(ctx, state, in)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			turn.State = state
			return nil
		}
		if err := store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		turn = Turn{Posts: out, State: next}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			b.logger.Error("input failed", "session_id", sessionID, "err", err)
		}
		return nil, err
	}
	return &turn, nil
}

// State returns a snapshot of the session.
func (b *Bot) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return b.sessions.Load(ctx, sessionID)
}

// Current returns the post the session waits on together with its state,
// so callers can render the live buttons of a panel.
func (b *Bot) Current(ctx context.Context, sessionID string) (*domain.Post, *domain.State, error) {
	state, err := b.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	p, err := b.engine.Current(state)
	if err != nil {
		return nil, nil, err
	}
	return p, state, nil
}

// End deletes the session.
func (b *Bot) End(ctx context.Context, sessionID string) error {
	return b.sessions.Delete(ctx, sessionID)
}
