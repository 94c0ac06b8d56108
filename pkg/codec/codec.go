// Package codec serializes a Graph into a durable document and back.
//
// Posts are written once, keyed by id, and rules refer to their target by
// id. Decoding therefore rebuilds exactly one instance per post: shared
// targets and cycles (including self loops) keep their identity.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/scenery/pkg/domain"
)

// Version is the document format written by Encode.
const Version = 1

// ErrVersion is returned when decoding a document of an unknown version.
var ErrVersion = errors.New("unsupported graph document version")

type document struct {
	Version int       `json:"version"`
	Token   string    `json:"token,omitempty"`
	Root    string    `json:"root,omitempty"`
	Posts   []postDoc `json:"posts"`
}

type postDoc struct {
	ID      string     `json:"id"`
	Content contentDoc `json:"content"`
	Rules   []ruleDoc  `json:"rules,omitempty"`
}

type ruleDoc struct {
	When domain.Condition `json:"when"`
	To   string           `json:"to"`
}

type contentDoc struct {
	Kind domain.Kind     `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type groupDoc struct {
	Caption string       `json:"caption,omitempty"`
	Items   []contentDoc `json:"items"`
}

// Encode writes the graph, its credential and every post in creation order.
func Encode(g *domain.Graph) ([]byte, error) {
	return encode(g, true)
}

// EncodePublic is Encode without the credential, for exposing the graph.
func EncodePublic(g *domain.Graph) ([]byte, error) {
	return encode(g, false)
}

func encode(g *domain.Graph, withToken bool) ([]byte, error) {
	if g == nil {
		return nil, errors.New("codec: nil graph")
	}

	doc := document{Version: Version}
	if withToken {
		doc.Token = g.Token
	}
	if root := g.Root(); root != nil {
		doc.Root = root.ID
	}

	for _, p := range g.Posts() {
		c, err := encodeContent(p.Content)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.ID, err)
		}
		pd := postDoc{ID: p.ID, Content: c}
		for _, r := range p.Rules() {
			pd.Rules = append(pd.Rules, ruleDoc{When: r.Condition, To: r.Target.ID})
		}
		doc.Posts = append(doc.Posts, pd)
	}

	return json.Marshal(doc)
}

// Decode rebuilds a graph written by Encode. Media files are not checked
// again: the document is trusted to come from a validated graph.
func Decode(data []byte) (*domain.Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}

	g := domain.NewGraph(doc.Token)

	// First pass creates every post so rules can point forward and backward.
	for _, pd := range doc.Posts {
		c, err := decodeContent(pd.Content)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", pd.ID, err)
		}
		if _, err := g.NewPost(pd.ID, c); err != nil {
			return nil, err
		}
	}

	for _, pd := range doc.Posts {
		from, _ := g.Post(pd.ID)
		for _, rd := range pd.Rules {
			to, ok := g.Post(rd.To)
			if !ok {
				return nil, fmt.Errorf("post %s: %w: %s", pd.ID, domain.ErrPostNotFound, rd.To)
			}
			if err := from.AddNext(to, rd.When); err != nil {
				return nil, err
			}
		}
	}

	if doc.Root != "" {
		root, ok := g.Post(doc.Root)
		if !ok {
			return nil, fmt.Errorf("root: %w: %s", domain.ErrPostNotFound, doc.Root)
		}
		if err := g.SetRoot(root); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func encodeContent(c domain.Content) (contentDoc, error) {
	if c == nil {
		return contentDoc{}, errors.New("missing content")
	}

	var v any = c
	if grp, ok := c.(domain.Group); ok {
		gd := groupDoc{Caption: grp.Caption}
		for _, it := range grp.Items {
			item, err := encodeContent(it)
			if err != nil {
				return contentDoc{}, err
			}
			gd.Items = append(gd.Items, item)
		}
		v = gd
	}

	data, err := json.Marshal(v)
	if err != nil {
		return contentDoc{}, err
	}
	return contentDoc{Kind: c.Kind(), Data: data}, nil
}

func decodeContent(cd contentDoc) (domain.Content, error) {
	switch cd.Kind {
	case domain.KindText:
		return unmarshal[domain.Text](cd.Data)
	case domain.KindImage:
		return unmarshal[domain.Image](cd.Data)
	case domain.KindVideo:
		return unmarshal[domain.Video](cd.Data)
	case domain.KindVoice:
		return unmarshal[domain.Voice](cd.Data)
	case domain.KindAnimation:
		return unmarshal[domain.Animation](cd.Data)
	case domain.KindRound:
		return unmarshal[domain.Round](cd.Data)
	case domain.KindDocument:
		return unmarshal[domain.Document](cd.Data)
	case domain.KindAudio:
		return unmarshal[domain.Audio](cd.Data)
	case domain.KindSticker:
		return unmarshal[domain.Sticker](cd.Data)
	case domain.KindButtons:
		return unmarshal[domain.ButtonSet](cd.Data)
	case domain.KindGroup:
		gd, err := unmarshal[groupDoc](cd.Data)
		if err != nil {
			return nil, err
		}
		grp := domain.Group{Caption: gd.Caption}
		for _, it := range gd.Items {
			item, err := decodeContent(it)
			if err != nil {
				return nil, err
			}
			grp.Items = append(grp.Items, item)
		}
		return grp, nil
	default:
		return nil, fmt.Errorf("%w: content kind %q", domain.ErrUnsupportedFormat, cd.Kind)
	}
}

func unmarshal[T any](data json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
