package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/scenery/pkg/domain"
)

// Overlay contains session state to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of g. Node shapes follow the
// content kind:
// - Root: ((Circle))
// - Buttons: {{Hexagon}}
// - Group: [[Subroutine]]
// - Media: ([Stadium])
// - Text: [Rectangle]
//
// Edge labels are prefixed with the rule position since the first matching
// rule wins. Unconditional rules use plain arrows, else rules dotted ones.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := g.Root()
	for _, p := range g.Posts() {
		safeID := sanitizeMermaidID(p.ID)

		opener, closer := "[", "]"
		switch {
		case p == root:
			opener, closer = "((", "))"
		case p.Kind() == domain.KindButtons:
			opener, closer = "{{", "}}"
		case p.Kind() == domain.KindGroup:
			opener, closer = "[[", "]]"
		case p.Kind() != domain.KindText:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", safeID, opener, escape(p.ID), p.Kind(), closer)

		for i, r := range p.Rules() {
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow(p, i+1, r.Condition), sanitizeMermaidID(r.Target.ID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on the light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func arrow(p *domain.Post, pos int, c domain.Condition) string {
	switch c.Kind {
	case domain.CondImmediate:
		return fmt.Sprintf("-- \"%d\" -->", pos)
	case domain.CondElse:
		return fmt.Sprintf("-. \"%d: else\" .->", pos)
	case domain.CondExact:
		return fmt.Sprintf("-- \"%d: = %s\" -->", pos, escape(c.Pattern))
	case domain.CondKeyword:
		return fmt.Sprintf("-- \"%d: ~ %s\" -->", pos, escape(c.Pattern))
	case domain.CondButton:
		label := c.Pattern
		if set, ok := p.Content.(domain.ButtonSet); ok {
			for _, b := range set.Buttons {
				if b.CallbackID == c.Pattern {
					label = b.Label
				}
			}
		}
		return fmt.Sprintf("== \"%d: [%s]\" ==>", pos, escape(label))
	default:
		return "-->"
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
