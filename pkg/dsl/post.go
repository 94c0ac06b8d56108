package dsl

import (
	"fmt"

	"github.com/aretw0/scenery/pkg/domain"
)

// PostBuilder collects the rules of one post, in evaluation order.
type PostBuilder struct {
	id      string
	content domain.Content
	rules   []pendingRule
}

type pendingRule struct {
	cond   domain.Condition
	label  string // button label, resolved to a callback id at build time
	target string
}

// Go adds an unconditional transition taken as soon as the post is sent.
func (n *PostBuilder) Go(target string) *PostBuilder {
	return n.rule(domain.Immediate(), target)
}

// Exact adds a transition taken when the reply equals text.
func (n *PostBuilder) Exact(text, target string) *PostBuilder {
	return n.rule(domain.Exact(text), target)
}

// Keyword adds a transition taken when the reply contains text.
func (n *PostBuilder) Keyword(text, target string) *PostBuilder {
	return n.rule(domain.Keyword(text), target)
}

// Else adds a transition taken by any text reply.
func (n *PostBuilder) Else(target string) *PostBuilder {
	return n.rule(domain.Else(), target)
}

// Button adds a transition taken when the panel button with label is pressed.
func (n *PostBuilder) Button(label, target string) *PostBuilder {
	n.rules = append(n.rules, pendingRule{cond: domain.Condition{Kind: domain.CondButton}, label: label, target: target})
	return n
}

func (n *PostBuilder) rule(cond domain.Condition, target string) *PostBuilder {
	n.rules = append(n.rules, pendingRule{cond: cond, target: target})
	return n
}

func (r pendingRule) wire(g *domain.Graph, p *domain.Post) error {
	target, ok := g.Post(r.target)
	if !ok {
		return fmt.Errorf("post %s: %w: %s", p.ID, domain.ErrPostNotFound, r.target)
	}
	if r.cond.Kind != domain.CondButton {
		return p.AddNext(target, r.cond)
	}

	set, ok := p.Content.(domain.ButtonSet)
	if !ok {
		return fmt.Errorf("post %s: %w", p.ID, domain.ErrNotButtonPost)
	}
	btn, ok := set.Button(r.label)
	if !ok {
		return fmt.Errorf("post %s: %w: %q", p.ID, domain.ErrUnknownButton, r.label)
	}
	return p.AddButtonNext(target, btn)
}
