// Package runtime drives sessions through a dialogue graph.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/domain"
)

// DefaultMaxHops bounds the unconditional transitions followed after one input.
const DefaultMaxHops = 64

// Engine resolves transitions for sessions of a single graph. It holds no
// per-session data and is safe for concurrent use.
type Engine struct {
	graph   *domain.Graph
	matcher domain.Matcher
	policy  domain.ButtonPolicy
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	maxHops int
}

// Option configures the Engine.
type Option func(*Engine)

// WithButtonPolicy selects whether pressed buttons are consumed per session.
func WithButtonPolicy(p domain.ButtonPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithLifecycleHooks registers observers. Repeated calls add to the
// previously registered hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(h)
	}
}

// WithMaxHops changes the unconditional transition limit.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// NewEngine creates an engine for graph. matcher may be nil for graphs
// without exact or keyword rules.
func NewEngine(graph *domain.Graph, matcher domain.Matcher, opts ...Option) *Engine {
	e := &Engine{
		graph:   graph,
		matcher: matcher,
		logger:  logging.NewNop(),
		maxHops: DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine runs.
func (e *Engine) Graph() *domain.Graph { return e.graph }

// Policy returns the button policy in effect.
func (e *Engine) Policy() domain.ButtonPolicy { return e.policy }

// Current returns the post a session is waiting on.
func (e *Engine) Current(state *domain.State) (*domain.Post, error) {
	p, ok := e.graph.Post(state.CurrentPostID)
	if !ok {
		return nil, fmt.Errorf("session %s: %w: %s", state.SessionID, domain.ErrPostNotFound, state.CurrentPostID)
	}
	return p, nil
}

// Start positions a new session on the root post and follows its
// unconditional chain. The returned posts are the ones to send, in order.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, []*domain.Post, error) {
	root := e.graph.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("empty graph: %w: root", domain.ErrPostNotFound)
	}

	state := domain.NewState(sessionID, root.ID)
	state.Terminated = root.Terminal()
	e.emit(ctx, e.hooks.OnPostEnter, domain.EventPostEnter, state, root, domain.NoInput())

	posts, err := e.drain(ctx, state, root)
	if err != nil {
		return nil, nil, err
	}
	return state, append([]*domain.Post{root}, posts...), nil
}

// Navigate feeds one input to a session. When a rule resolves, the session
// moves to its target and then follows unconditional rules until a post
// waits for input. The input state is never modified; on no transition it
// is returned as is with no posts.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, in domain.Input) (*domain.State, []*domain.Post, error) {
	cur, err := e.Current(state)
	if err != nil {
		return nil, nil, err
	}

	next, err := cur.Next(ctx, e.matcher, in, state.ConsumedOn(cur.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("post %s: %w", cur.ID, err)
	}
	if next == nil {
		e.logger.Debug("no transition", "session_id", state.SessionID, "post", cur.ID, "input", in.Kind)
		e.emit(ctx, e.hooks.OnNoTransition, domain.EventNoTransition, state, cur, in)
		return state, nil, nil
	}

	ns := state.Clone()
	if in.Kind == domain.InputButton && e.policy == domain.ButtonsConsume {
		ns.Consume(cur.ID, in.Value)
	}
	e.move(ctx, ns, cur, next, in)

	posts, err := e.drain(ctx, ns, next)
	if err != nil {
		return nil, nil, err
	}
	return ns, append([]*domain.Post{next}, posts...), nil
}

// drain follows unconditional transitions from p, mutating state.
func (e *Engine) drain(ctx context.Context, state *domain.State, p *domain.Post) ([]*domain.Post, error) {
	var posts []*domain.Post
	for hops := 0; ; hops++ {
		next, err := p.Next(ctx, e.matcher, domain.NoInput(), state.ConsumedOn(p.ID))
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.ID, err)
		}
		if next == nil {
			return posts, nil
		}
		if hops >= e.maxHops {
			return nil, fmt.Errorf("post %s: %w (%d)", p.ID, domain.ErrHopLimit, e.maxHops)
		}
		e.move(ctx, state, p, next, domain.NoInput())
		posts = append(posts, next)
		p = next
	}
}

func (e *Engine) move(ctx context.Context, state *domain.State, from, to *domain.Post, in domain.Input) {
	e.emit(ctx, e.hooks.OnPostLeave, domain.EventPostLeave, state, from, in)

	state.CurrentPostID = to.ID
	state.History = append(state.History, to.ID)
	state.Terminated = to.Terminal()

	e.logger.Debug("transition", "session_id", state.SessionID, "from", from.ID, "to", to.ID)
	e.emit(ctx, e.hooks.OnPostEnter, domain.EventPostEnter, state, to, in)
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.PostEvent), typ domain.EventType, state *domain.State, p *domain.Post, in domain.Input) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.PostEvent{
		Timestamp: time.Now(),
		Type:      typ,
		SessionID: state.SessionID,
		PostID:    p.ID,
		Kind:      p.Kind(),
		Input:     in,
	})
}
