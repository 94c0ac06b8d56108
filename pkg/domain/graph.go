package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Graph owns every post of a bot script. Posts reference each other by
// pointer and are never shared between graphs.
type Graph struct {
	// Token is the messaging platform credential the bot runs with.
	Token string

	root  *Post
	posts []*Post
	index map[string]*Post
}

// NewGraph creates an empty graph.
func NewGraph(token string) *Graph {
	return &Graph{
		Token: token,
		index: make(map[string]*Post),
	}
}

// NewPost creates a post owned by g. An empty id is replaced with a
// generated one. The first post created becomes the root unless SetRoot is
// called.
func (g *Graph) NewPost(id string, c Content) (*Post, error) {
	if c == nil {
		return nil, fmt.Errorf("post %q: missing content", id)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("post %q: %w", id, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := g.index[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePost, id)
	}

	p := &Post{ID: id, Content: c, graph: g}
	g.posts = append(g.posts, p)
	g.index[id] = p
	if g.root == nil {
		g.root = p
	}
	return p, nil
}

// Post looks a post up by id.
func (g *Graph) Post(id string) (*Post, bool) {
	p, ok := g.index[id]
	return p, ok
}

// Posts returns all posts in creation order.
func (g *Graph) Posts() []*Post {
	out := make([]*Post, len(g.posts))
	copy(out, g.posts)
	return out
}

// Len returns the number of posts.
func (g *Graph) Len() int { return len(g.posts) }

// Root returns the entry post, nil for an empty graph.
func (g *Graph) Root() *Post { return g.root }

// SetRoot changes the entry post.
func (g *Graph) SetRoot(p *Post) error {
	if p == nil || p.graph != g {
		return ErrForeignPost
	}
	g.root = p
	return nil
}
