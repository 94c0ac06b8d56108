package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Every output is one line: {"type":"posts",...} or {"type":"system",...}.
// Input lines are {"text":"..."}, {"button":"<callback id>"} or a bare
// JSON string, which is a text reply. Anything else is taken as raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// Event is one line written by the JSONHandler.
type Event struct {
	Type       string      `json:"type"`
	Posts      []EventPost `json:"posts,omitempty"`
	Current    string      `json:"current,omitempty"`
	Terminated bool        `json:"terminated,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// EventPost is a delivered post within an Event. Group content is a
// codec.GroupView.
type EventPost struct {
	ID      string          `json:"id"`
	Kind    domain.Kind     `json:"kind"`
	Content any             `json:"content"`
	Buttons []domain.Button `json:"buttons,omitempty"`
}

type inputLine struct {
	Text   *string `json:"text"`
	Button *string `json:"button"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, posts []*domain.Post, state *domain.State) error {
	ev := Event{Type: "posts", Current: state.CurrentPostID, Terminated: state.Terminated}
	for _, p := range posts {
		ep := EventPost{ID: p.ID, Kind: p.Kind(), Content: codec.View(p.Content)}
		if set, ok := p.Content.(domain.ButtonSet); ok {
			ep.Buttons = set.Live(state.ConsumedOn(p.ID))
		}
		ev.Posts = append(ev.Posts, ep)
	}
	return h.Encoder.Encode(ev)
}

func (h *JSONHandler) Input(ctx context.Context) (domain.Input, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Input{}, err
		}

		text, err := h.Reader.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			return domain.Input{}, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		in, perr := parseInputLine(text)
		if perr != nil {
			if oerr := h.SystemOutput(ctx, perr.Error()); oerr != nil {
				return domain.Input{}, oerr
			}
			continue
		}
		return in, nil
	}
}

func parseInputLine(text string) (domain.Input, error) {
	var line inputLine
	if err := json.Unmarshal([]byte(text), &line); err == nil {
		switch {
		case line.Text != nil && line.Button == nil:
			clean, err := SanitizeInput(*line.Text)
			if err != nil {
				return domain.Input{}, err
			}
			return domain.TextInput(clean), nil
		case line.Button != nil && line.Text == nil:
			return domain.ButtonInput(*line.Button), nil
		default:
			return domain.Input{}, fmt.Errorf("input needs exactly one of text and button")
		}
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err != nil {
		val = text
	}
	clean, err := SanitizeInput(val)
	if err != nil {
		return domain.Input{}, err
	}
	return domain.TextInput(clean), nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "system", Message: msg})
}
