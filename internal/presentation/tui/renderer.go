package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(s string) (string, error) { return s, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PostView turns posts into terminal text. Text and captions go through the
// markdown renderer; media are shown as a tagged file reference.
type PostView struct {
	Markdown func(string) (string, error)
	Profile  termenv.Profile
}

// NewPostView creates a view using glamour and the detected color profile.
func NewPostView() *PostView {
	return &PostView{Markdown: NewRenderer(), Profile: termenv.ColorProfile()}
}

// Plain returns a view without styling, for pipes and tests.
func Plain() *PostView {
	return &PostView{Profile: termenv.Ascii}
}

// Render formats p. live lists the buttons to show for a button post.
func (v *PostView) Render(p *domain.Post, live []domain.Button) string {
	switch c := p.Content.(type) {
	case domain.Text:
		return v.markdown(c.Body)
	case domain.ButtonSet:
		var sb strings.Builder
		sb.WriteString(v.markdown(c.Caption))
		for i, b := range live {
			label := v.Profile.String(fmt.Sprintf("[%d] %s", i+1, b.Label)).Foreground(v.Profile.Color("#818cf8")).Bold()
			fmt.Fprintf(&sb, "  %s\n", label)
		}
		return sb.String()
	case domain.Group:
		var sb strings.Builder
		for _, it := range c.Items {
			sb.WriteString(v.media(it.Kind(), it.Source()))
		}
		if c.Caption != "" {
			sb.WriteString(v.markdown(c.Caption))
		}
		return sb.String()
	default:
		return v.media(p.Kind(), p.Content.Source())
	}
}

func (v *PostView) media(kind domain.Kind, path string) string {
	tag := v.Profile.String("<" + string(kind) + ">").Foreground(v.Profile.Color("#c084fc"))
	return fmt.Sprintf("%s %s\n", tag, path)
}

func (v *PostView) markdown(s string) string {
	if s == "" {
		return ""
	}
	if v.Markdown == nil {
		return s + "\n"
	}
	out, err := v.Markdown(s)
	if err != nil {
		return s + "\n"
	}
	return out
}
