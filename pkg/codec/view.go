package codec

import "github.com/aretw0/scenery/pkg/domain"

// ItemView is a group member tagged with its kind.
type ItemView struct {
	Kind   domain.Kind `json:"kind"`
	Source string      `json:"source"`
}

// GroupView is a group as delivered to clients.
type GroupView struct {
	Caption string     `json:"caption,omitempty"`
	Items   []ItemView `json:"items"`
}

// Items lists the members of g in order.
func Items(g domain.Group) []ItemView {
	out := make([]ItemView, 0, len(g.Items))
	for _, it := range g.Items {
		out = append(out, ItemView{Kind: it.Kind(), Source: it.Source()})
	}
	return out
}

// View returns c in the shape delivered to API clients. Group members
// carry their kind; other content is returned unchanged.
func View(c domain.Content) any {
	if g, ok := c.(domain.Group); ok {
		return GroupView{Caption: g.Caption, Items: Items(g)}
	}
	return c
}
