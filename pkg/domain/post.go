package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoMatcher is returned when a text rule is evaluated without a Matcher.
var ErrNoMatcher = errors.New("no text matcher configured")

// Post is one step of the conversation: content plus an ordered list of
// outgoing rules. Posts are created and owned by a Graph.
type Post struct {
	ID      string
	Content Content

	rules []Rule
	graph *Graph
}

// Kind is a shortcut for the content kind.
func (p *Post) Kind() Kind {
	if p.Content == nil {
		return ""
	}
	return p.Content.Kind()
}

// Rules returns a copy of the post's rules in evaluation order.
func (p *Post) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Terminal reports whether the post has no outgoing rules.
func (p *Post) Terminal() bool { return len(p.rules) == 0 }

// AddNext appends a rule leading to next. Rules are evaluated in the order
// they were added; an Immediate or Else rule makes every later rule
// unreachable and this is deliberately not prevented here.
func (p *Post) AddNext(next *Post, cond Condition) error {
	if next == nil {
		return fmt.Errorf("post %s: %w: nil target", p.ID, ErrPostNotFound)
	}
	if next.graph != p.graph {
		return fmt.Errorf("post %s -> %s: %w", p.ID, next.ID, ErrForeignPost)
	}

	if cond.Kind == CondButton {
		set, ok := p.Content.(ButtonSet)
		if !ok {
			return fmt.Errorf("post %s: %w", p.ID, ErrNotButtonPost)
		}
		if !set.Has(cond.Pattern) {
			return fmt.Errorf("post %s: %w: %s", p.ID, ErrUnknownButton, cond.Pattern)
		}
	}

	p.rules = append(p.rules, Rule{Condition: cond, Target: next})
	return nil
}

// AddButtonNext registers a transition to next taken when b is pressed.
func (p *Post) AddButtonNext(next *Post, b Button) error {
	return p.AddNext(next, Pressed(b.CallbackID))
}

// Next returns the target of the first rule that resolves for in, or nil
// when no rule does. consumed holds the callback ids this session already
// used on p; those buttons are treated as absent from the panel.
// The only error source is the matcher, whose error is returned unchanged.
func (p *Post) Next(ctx context.Context, m Matcher, in Input, consumed Consumed) (*Post, error) {
	for _, r := range p.rules {
		ok, err := p.resolves(ctx, m, r.Condition, in, consumed)
		if err != nil {
			return nil, err
		}
		if ok {
			return r.Target, nil
		}
	}
	return nil, nil
}

func (p *Post) resolves(ctx context.Context, m Matcher, cond Condition, in Input, consumed Consumed) (bool, error) {
	if cond.Kind == CondImmediate {
		return true, nil
	}
	if in.Kind == InputNone {
		return false, nil
	}

	switch cond.Kind {
	case CondExact, CondKeyword:
		if in.Kind != InputText {
			return false, nil
		}
		if m == nil {
			return false, ErrNoMatcher
		}
		return m.Match(ctx, in.Value, cond.Pattern, cond.Kind == CondKeyword)
	case CondElse:
		return in.Kind == InputText, nil
	case CondButton:
		if in.Kind != InputButton || in.Value != cond.Pattern || consumed.Has(in.Value) {
			return false, nil
		}
		set, ok := p.Content.(ButtonSet)
		return ok && set.Has(in.Value), nil
	default:
		return false, nil
	}
}
