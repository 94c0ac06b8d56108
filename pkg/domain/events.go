package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPostEnter    EventType = "post_enter"
	EventPostLeave    EventType = "post_leave"
	EventNoTransition EventType = "no_transition"
)

// PostEvent reports movement through the graph.
type PostEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	PostID    string    `json:"post_id"`
	Kind      Kind      `json:"kind"`
	Input     Input     `json:"input"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnPostEnter    func(context.Context, *PostEvent)
	OnPostLeave    func(context.Context, *PostEvent)
	OnNoTransition func(context.Context, *PostEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	chain := func(a, b func(context.Context, *PostEvent)) func(context.Context, *PostEvent) {
		if a == nil {
			return b
		}
		if b == nil {
			return a
		}
		return func(ctx context.Context, e *PostEvent) {
			a(ctx, e)
			b(ctx, e)
		}
	}
	return LifecycleHooks{
		OnPostEnter:    chain(h.OnPostEnter, other.OnPostEnter),
		OnPostLeave:    chain(h.OnPostLeave, other.OnPostLeave),
		OnNoTransition: chain(h.OnNoTransition, other.OnNoTransition),
	}
}
