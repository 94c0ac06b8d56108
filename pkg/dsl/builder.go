package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/scenery/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	token string
	root  string
	posts []*PostBuilder
	ids   map[string]bool
	errs  []error
}

// New creates a new graph builder for a bot running with token.
func New(token string) *Builder {
	return &Builder{
		token: token,
		ids:   make(map[string]bool),
	}
}

// Add declares a post. Posts are created in declaration order and the first
// one is the root unless Root is called.
func (b *Builder) Add(id string, c domain.Content) *PostBuilder {
	pb := &PostBuilder{id: id, content: c}
	if b.ids[id] {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", domain.ErrDuplicatePost, id))
		return pb
	}
	b.ids[id] = true
	b.posts = append(b.posts, pb)
	return pb
}

// Root selects the entry post.
func (b *Builder) Root(id string) *Builder {
	b.root = id
	return b
}

// Build creates the graph and wires every rule.
func (b *Builder) Build() (*domain.Graph, error) {
	errs := append([]error(nil), b.errs...)
	g := domain.NewGraph(b.token)

	for _, pb := range b.posts {
		if _, err := g.NewPost(pb.id, pb.content); err != nil {
			errs = append(errs, err)
		}
	}

	for _, pb := range b.posts {
		p, ok := g.Post(pb.id)
		if !ok {
			continue
		}
		for _, r := range pb.rules {
			if err := r.wire(g, p); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if b.root != "" {
		p, ok := g.Post(b.root)
		if !ok {
			errs = append(errs, fmt.Errorf("root: %w: %s", domain.ErrPostNotFound, b.root))
		} else if err := g.SetRoot(p); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}
