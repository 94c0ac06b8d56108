package domain

import "context"

// ConditionKind selects how a rule is evaluated.
type ConditionKind string

const (
	// CondImmediate resolves regardless of input, even when there is none.
	CondImmediate ConditionKind = "immediate"
	// CondExact resolves when the reply matches the pattern as a whole.
	CondExact ConditionKind = "exact"
	// CondKeyword resolves when the reply contains the pattern.
	CondKeyword ConditionKind = "keyword"
	// CondElse resolves for any reply. It only acts as a fallback when it is
	// the last rule of its post.
	CondElse ConditionKind = "else"
	// CondButton resolves when the button with the given callback id is pressed.
	CondButton ConditionKind = "button"
)

// Condition is the predicate half of a rule. It is fixed at creation.
type Condition struct {
	Kind    ConditionKind `json:"kind"`
	Pattern string        `json:"pattern,omitempty"`
}

// Immediate returns a condition taken as soon as the post is entered.
func Immediate() Condition { return Condition{Kind: CondImmediate} }

// Exact returns a condition matching the whole reply against text.
func Exact(text string) Condition { return Condition{Kind: CondExact, Pattern: text} }

// Keyword returns a condition matching replies that contain text.
func Keyword(text string) Condition { return Condition{Kind: CondKeyword, Pattern: text} }

// Else returns a condition matching any text reply.
func Else() Condition { return Condition{Kind: CondElse} }

// Pressed returns a condition matching the button with callbackID.
func Pressed(callbackID string) Condition {
	return Condition{Kind: CondButton, Pattern: callbackID}
}

// Unconditional reports whether the condition ignores the content of the
// input.
func (c Condition) Unconditional() bool {
	return c.Kind == CondImmediate || c.Kind == CondElse
}

func (c Condition) String() string {
	if c.Pattern == "" {
		return string(c.Kind)
	}
	return string(c.Kind) + ":" + c.Pattern
}

// Rule is a condition and the post it leads to. The target may be the
// owning post itself.
type Rule struct {
	Condition Condition
	Target    *Post
}

// InputKind tags the session input event.
type InputKind uint8

const (
	// InputNone means no user input yet: only unconditional rules apply.
	InputNone InputKind = iota
	// InputText is a free-form reply.
	InputText
	// InputButton is a button press carrying its callback id.
	InputButton
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputButton:
		return "button"
	default:
		return "none"
	}
}

// Input is the event a session feeds to the resolver.
type Input struct {
	Kind InputKind `json:"kind"`
	// Value is the reply text or the pressed callback id.
	Value string `json:"value,omitempty"`
}

// NoInput is the event used when a post is entered.
func NoInput() Input { return Input{Kind: InputNone} }

// TextInput wraps a text reply.
func TextInput(text string) Input { return Input{Kind: InputText, Value: text} }

// ButtonInput wraps a button press.
func ButtonInput(callbackID string) Input {
	return Input{Kind: InputButton, Value: callbackID}
}

// Matcher decides whether a free-form reply satisfies a pattern.
// keyword selects substring/keyword semantics instead of whole-reply equality.
type Matcher interface {
	Match(ctx context.Context, reply, pattern string, keyword bool) (bool, error)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(ctx context.Context, reply, pattern string, keyword bool) (bool, error)

// Match calls f.
func (f MatcherFunc) Match(ctx context.Context, reply, pattern string, keyword bool) (bool, error) {
	return f(ctx, reply, pattern, keyword)
}

// Consumed is the set of callback ids a session has already used on one post.
// A nil set is empty.
type Consumed map[string]bool

// Has reports whether id has been consumed.
func (c Consumed) Has(id string) bool { return c[id] }
