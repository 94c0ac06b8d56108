// Package validator lints dialogue graphs for authoring mistakes that the
// graph API accepts but that are almost never intended.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/scenery/pkg/domain"
)

// Severity ranks a finding.
type Severity string

const (
	// Warning marks legal but suspicious structure.
	Warning Severity = "warning"
	// Error marks structure that fails at runtime.
	Error Severity = "error"
)

// Code identifies the kind of finding.
type Code string

const (
	CodeUnreachable    Code = "unreachable"
	CodeShadowed       Code = "shadowed"
	CodeUnboundButton  Code = "unbound_button"
	CodeImmediateCycle Code = "immediate_cycle"
)

// Finding is one lint result.
type Finding struct {
	Severity Severity
	Code     Code
	PostID   string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Code, f.PostID, f.Message)
}

// Lint inspects g and returns its findings in post creation order.
func Lint(g *domain.Graph) []Finding {
	var out []Finding

	reachable := reach(g)
	for _, p := range g.Posts() {
		if !reachable[p.ID] {
			out = append(out, Finding{Warning, CodeUnreachable, p.ID, "not reachable from the root post"})
		}
		out = append(out, shadowed(p)...)
		out = append(out, unbound(p)...)
	}

	for _, cycle := range immediateCycles(g) {
		out = append(out, Finding{Error, CodeImmediateCycle, cycle[0],
			"unconditional loop never waits for input: " + strings.Join(cycle, " -> ")})
	}
	return out
}

// HasErrors reports whether any finding is an Error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}

// reach runs a breadth-first search from the root post.
func reach(g *domain.Graph) map[string]bool {
	visited := make(map[string]bool)
	root := g.Root()
	if root == nil {
		return visited
	}

	queue := []*domain.Post{root}
	visited[root.ID] = true
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, r := range p.Rules() {
			if !visited[r.Target.ID] {
				visited[r.Target.ID] = true
				queue = append(queue, r.Target)
			}
		}
	}
	return visited
}

// shadowed reports rules that can never resolve. Entering a post with an
// Immediate rule moves on through that rule at once, so every other rule
// on the post is dead. Otherwise text rules after an Else are dead.
func shadowed(p *domain.Post) []Finding {
	rules := p.Rules()
	var out []Finding
	if k := firstImmediate(rules); k >= 0 {
		for i, r := range rules {
			if i == k {
				continue
			}
			out = append(out, Finding{Warning, CodeShadowed, p.ID,
				fmt.Sprintf("rule %d (%s -> %s) never fires: the post moves on through rule %d at once", i+1, r.Condition, r.Target.ID, k+1)})
		}
		return out
	}

	var blocker *domain.Condition
	for i, r := range rules {
		if blocker != nil {
			// Else only hides text rules; buttons still resolve after it.
			if r.Condition.Kind == domain.CondButton {
				continue
			}
			out = append(out, Finding{Warning, CodeShadowed, p.ID,
				fmt.Sprintf("rule %d (%s -> %s) never fires after %s", i+1, r.Condition, r.Target.ID, blocker.Kind)})
			continue
		}
		if r.Condition.Kind == domain.CondElse {
			c := r.Condition
			blocker = &c
		}
	}
	return out
}

// firstImmediate returns the index of the first Immediate rule, or -1.
func firstImmediate(rules []domain.Rule) int {
	for i, r := range rules {
		if r.Condition.Kind == domain.CondImmediate {
			return i
		}
	}
	return -1
}

// unbound reports panel buttons without a rule.
func unbound(p *domain.Post) []Finding {
	set, ok := p.Content.(domain.ButtonSet)
	if !ok {
		return nil
	}
	bound := make(map[string]bool)
	for _, r := range p.Rules() {
		if r.Condition.Kind == domain.CondButton {
			bound[r.Condition.Pattern] = true
		}
	}

	var out []Finding
	for _, b := range set.Buttons {
		if !bound[b.CallbackID] {
			out = append(out, Finding{Warning, CodeUnboundButton, p.ID,
				fmt.Sprintf("button %q has no rule", b.Label)})
		}
	}
	return out
}

// immediateCycles finds loops made only of each post's first Immediate
// rule, which the engine follows without waiting for input until its hop
// limit.
func immediateCycles(g *domain.Graph) [][]string {
	next := make(map[string]string)
	for _, p := range g.Posts() {
		rules := p.Rules()
		if k := firstImmediate(rules); k >= 0 {
			next[p.ID] = rules[k].Target.ID
		}
	}

	seen := make(map[string]bool)
	var cycles [][]string
	starts := make([]string, 0, len(next))
	for id := range next {
		starts = append(starts, id)
	}
	sort.Strings(starts)

	for _, start := range starts {
		if seen[start] {
			continue
		}
		pos := make(map[string]int)
		var path []string
		id := start
		for {
			if i, onPath := pos[id]; onPath {
				cycle := append(append([]string(nil), path[i:]...), id)
				cycles = append(cycles, cycle)
				break
			}
			if seen[id] {
				break
			}
			to, ok := next[id]
			if !ok {
				break
			}
			pos[id] = len(path)
			path = append(path, id)
			id = to
		}
		for _, p := range path {
			seen[p] = true
		}
	}
	return cycles
}
