// Package manifest reads bot scripts written in YAML.
//
// A script lists posts in order; the first one is the root unless root is
// set. Each post carries exactly one content key and an optional list of
// rules:
//
//	token: ${BOT_TOKEN}
//	posts:
//	  - id: ask
//	    text: Ready?
//	    next:
//	      - exact: "yes"
//	        to: menu
//	      - else: true
//	        to: ask
//	  - id: menu
//	    buttons: {caption: Pick, labels: [Left, Right]}
//	    next:
//	      - button: Left
//	        to: ask
//
// A rule without a condition is taken immediately. Media paths are
// resolved against the resource directory.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/scenery/pkg/content"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/dsl"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the script name looked up in a project directory.
const DefaultFile = "scenery.yaml"

// ErrInvalid is returned for structurally invalid scripts.
var ErrInvalid = errors.New("invalid manifest")

// Manifest is the decoded script.
type Manifest struct {
	Token string `mapstructure:"token"`
	Root  string `mapstructure:"root"`
	Posts []Post `mapstructure:"posts"`
}

// Post is one entry of the posts list. Exactly one content key is set.
type Post struct {
	ID string `mapstructure:"id"`

	Text      *string      `mapstructure:"text"`
	Image     *string      `mapstructure:"image"`
	Video     *string      `mapstructure:"video"`
	Voice     *string      `mapstructure:"voice"`
	Animation *string      `mapstructure:"animation"`
	Round     *string      `mapstructure:"round"`
	Document  *string      `mapstructure:"document"`
	Audio     *string      `mapstructure:"audio"`
	Sticker   *string      `mapstructure:"sticker"`
	Buttons   *Buttons     `mapstructure:"buttons"`
	Group     []GroupEntry `mapstructure:"group"`

	// Width is the round video side, in pixels. Only valid with round.
	Width *int `mapstructure:"width"`

	Next []Rule `mapstructure:"next"`
}

// Buttons declares a button panel.
type Buttons struct {
	Caption string   `mapstructure:"caption"`
	Labels  []string `mapstructure:"labels"`
}

// GroupEntry is one member of a group: a single kind key.
type GroupEntry struct {
	Text     *string `mapstructure:"text"`
	Image    *string `mapstructure:"image"`
	Video    *string `mapstructure:"video"`
	Document *string `mapstructure:"document"`
	Audio    *string `mapstructure:"audio"`
}

// Rule is one outgoing transition. At most one condition is set.
type Rule struct {
	To      string  `mapstructure:"to"`
	Exact   *string `mapstructure:"exact"`
	Keyword *string `mapstructure:"keyword"`
	Else    *bool   `mapstructure:"else"`
	Button  *string `mapstructure:"button"`
}

// Parse decodes a script. Environment variables in the token are expanded.
// Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var m Manifest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &m,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	m.Token = os.ExpandEnv(m.Token)
	return &m, nil
}

// ReadFile parses the script at path.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Compiler turns manifests into graphs.
type Compiler struct {
	factory *content.Factory
	resDir  string
}

// NewCompiler creates a compiler building content with factory and
// resolving relative media paths against resDir.
func NewCompiler(factory *content.Factory, resDir string) *Compiler {
	return &Compiler{factory: factory, resDir: resDir}
}

// Compile builds the graph. Every content and rule error is reported.
func (c *Compiler) Compile(ctx context.Context, m *Manifest) (*domain.Graph, error) {
	b := dsl.New(m.Token)
	if m.Root != "" {
		b.Root(m.Root)
	}

	var errs []error
	for i, p := range m.Posts {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("%w: post #%d has no id", ErrInvalid, i+1))
			continue
		}
		cnt, err := c.content(ctx, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", p.ID, err))
			continue
		}

		pb := b.Add(p.ID, cnt)
		for _, r := range p.Next {
			if err := addRule(pb, r); err != nil {
				errs = append(errs, fmt.Errorf("post %s: %w", p.ID, err))
			}
		}
	}

	g, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Compiler) content(ctx context.Context, p Post) (domain.Content, error) {
	var (
		out domain.Content
		n   int
		err error
	)
	set := func(build func() (domain.Content, error)) {
		n++
		if n == 1 {
			out, err = build()
		}
	}

	if p.Text != nil {
		set(func() (domain.Content, error) { return c.factory.Text(*p.Text), nil })
	}
	if p.Image != nil {
		set(func() (domain.Content, error) { return c.factory.Image(c.path(*p.Image)) })
	}
	if p.Video != nil {
		set(func() (domain.Content, error) { return c.factory.Video(c.path(*p.Video)) })
	}
	if p.Voice != nil {
		set(func() (domain.Content, error) { return c.factory.Voice(ctx, c.path(*p.Voice)) })
	}
	if p.Animation != nil {
		set(func() (domain.Content, error) { return c.factory.Animation(c.path(*p.Animation)) })
	}
	if p.Round != nil {
		set(func() (domain.Content, error) {
			width := domain.DefaultRoundWidth
			if p.Width != nil {
				width = *p.Width
			}
			if width < domain.MinRoundWidth {
				return nil, fmt.Errorf("%w: %w: width %d", ErrInvalid, domain.ErrInvalidDimension, width)
			}
			return c.factory.Round(ctx, c.path(*p.Round), width)
		})
	}
	if p.Document != nil {
		set(func() (domain.Content, error) { return c.factory.Document(c.path(*p.Document)) })
	}
	if p.Audio != nil {
		set(func() (domain.Content, error) { return c.factory.Audio(ctx, c.path(*p.Audio)) })
	}
	if p.Sticker != nil {
		set(func() (domain.Content, error) { return c.factory.Sticker(c.path(*p.Sticker)) })
	}
	if p.Buttons != nil {
		set(func() (domain.Content, error) { return c.factory.Buttons(p.Buttons.Caption, p.Buttons.Labels...) })
	}
	if p.Group != nil {
		set(func() (domain.Content, error) { return c.group(ctx, p.Group) })
	}

	if n != 1 {
		return nil, fmt.Errorf("%w: expected exactly one content key, found %d", ErrInvalid, n)
	}
	if p.Width != nil && p.Round == nil {
		return nil, fmt.Errorf("%w: width is only valid on round posts", ErrInvalid)
	}
	return out, err
}

func (c *Compiler) group(ctx context.Context, entries []GroupEntry) (domain.Content, error) {
	members := make([]domain.Content, 0, len(entries))
	for i, e := range entries {
		if n := countSet(e.Text != nil, e.Image != nil, e.Video != nil, e.Document != nil, e.Audio != nil); n > 1 {
			return nil, fmt.Errorf("%w: group member #%d has %d content keys", ErrInvalid, i+1, n)
		}

		var (
			m   domain.Content
			err error
		)
		switch {
		case e.Text != nil:
			m = c.factory.Text(*e.Text)
		case e.Image != nil:
			m, err = c.factory.Image(c.path(*e.Image))
		case e.Video != nil:
			m, err = c.factory.Video(c.path(*e.Video))
		case e.Document != nil:
			m, err = c.factory.Document(c.path(*e.Document))
		case e.Audio != nil:
			m, err = c.factory.Audio(ctx, c.path(*e.Audio))
		default:
			err = fmt.Errorf("%w: group member #%d has no content", ErrInvalid, i+1)
		}
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return c.factory.Group(members...)
}

func (c *Compiler) path(p string) string {
	if filepath.IsAbs(p) || c.resDir == "" {
		return p
	}
	return filepath.Join(c.resDir, p)
}

func addRule(pb *dsl.PostBuilder, r Rule) error {
	if r.To == "" {
		return fmt.Errorf("%w: rule without target", ErrInvalid)
	}

	if n := countSet(r.Exact != nil, r.Keyword != nil, r.Else != nil, r.Button != nil); n > 1 {
		return fmt.Errorf("%w: rule to %s has %d conditions", ErrInvalid, r.To, n)
	}
	if r.Else != nil && !*r.Else {
		return fmt.Errorf("%w: rule to %s: else must be true", ErrInvalid, r.To)
	}

	switch {
	case r.Exact != nil:
		pb.Exact(*r.Exact, r.To)
	case r.Keyword != nil:
		pb.Keyword(*r.Keyword, r.To)
	case r.Else != nil:
		pb.Else(r.To)
	case r.Button != nil:
		pb.Button(*r.Button, r.To)
	default:
		pb.Go(r.To)
	}
	return nil
}

func countSet(keys ...bool) int {
	n := 0
	for _, set := range keys {
		if set {
			n++
		}
	}
	return n
}
