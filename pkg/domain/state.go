package domain

import "fmt"

// State is the runtime snapshot of one user session. It is the only mutable
// piece of the conversation; the graph itself is shared read-only.
type State struct {
	SessionID string `json:"session_id"`

	// CurrentPostID is the post the session is waiting on.
	CurrentPostID string `json:"current_post_id"`

	// Consumed maps a post id to the callback ids already pressed on it.
	// Only populated when the engine consumes buttons.
	Consumed map[string][]string `json:"consumed,omitempty"`

	// History lists the posts entered, oldest first.
	History []string `json:"history"`

	// Terminated is set once a post without rules is reached.
	Terminated bool `json:"terminated,omitempty"`
}

// NewState creates a clean state positioned at a specific post.
func NewState(sessionID, startPostID string) *State {
	return &State{
		SessionID:     sessionID,
		CurrentPostID: startPostID,
		Consumed:      make(map[string][]string),
		History:       []string{startPostID},
	}
}

// ConsumedOn returns the consumed set for a post.
func (s *State) ConsumedOn(postID string) Consumed {
	ids := s.Consumed[postID]
	if len(ids) == 0 {
		return nil
	}
	set := make(Consumed, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Consume records a pressed callback id for a post.
func (s *State) Consume(postID, callbackID string) {
	if s.Consumed == nil {
		s.Consumed = make(map[string][]string)
	}
	for _, id := range s.Consumed[postID] {
		if id == callbackID {
			return
		}
	}
	s.Consumed[postID] = append(s.Consumed[postID], callbackID)
}

// Clone returns a deep copy safe to mutate.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]string(nil), s.History...)
	next.Consumed = make(map[string][]string, len(s.Consumed))
	for k, v := range s.Consumed {
		next.Consumed[k] = append([]string(nil), v...)
	}
	return &next
}

// ButtonPolicy decides whether pressed buttons stay on their panel.
type ButtonPolicy uint8

const (
	// ButtonsKeep leaves every button pressable any number of times.
	ButtonsKeep ButtonPolicy = iota
	// ButtonsConsume removes a pressed button from the session's view of
	// the panel once its rule has fired.
	ButtonsConsume
)

func (p ButtonPolicy) String() string {
	if p == ButtonsConsume {
		return "consume"
	}
	return "keep"
}

// ParseButtonPolicy accepts "keep" and "consume".
func ParseButtonPolicy(s string) (ButtonPolicy, error) {
	switch s {
	case "", "keep":
		return ButtonsKeep, nil
	case "consume":
		return ButtonsConsume, nil
	default:
		return ButtonsKeep, fmt.Errorf("unknown button policy %q", s)
	}
}
