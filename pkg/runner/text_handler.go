package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/scenery/internal/presentation/tui"
	"github.com/aretw0/scenery/pkg/domain"
	"golang.org/x/term"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer
	View   *tui.PostView

	// live holds the buttons printed last, in display order.
	live []domain.Button

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithView overrides the post view.
func WithView(v *tui.PostView) TextHandlerOption {
	return func(h *TextHandler) { h.View = v }
}

// NewTextHandler creates a handler for standard text IO. Markdown styling
// is enabled only when w is a terminal.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		View:   tui.Plain(),
	}
	if IsTerminal(w) {
		h.View = tui.NewPostView()
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, posts []*domain.Post, state *domain.State) error {
	h.live = nil
	for _, p := range posts {
		var live []domain.Button
		if set, ok := p.Content.(domain.ButtonSet); ok {
			live = set.Live(state.ConsumedOn(p.ID))
			if p.ID == state.CurrentPostID {
				h.live = live
			}
		}
		if _, err := fmt.Fprint(h.Writer, h.View.Render(p, live)); err != nil {
			return err
		}
	}
	return nil
}

// Input reads a line. A line equal to the number or the label of a button
// printed for the current post presses that button; any other line is a
// text reply.
func (h *TextHandler) Input(ctx context.Context) (domain.Input, error) {
	h.initPump()

	for {
		// Only show prompt if context is not yet done
		select {
		case <-ctx.Done():
			return domain.Input{}, ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return domain.Input{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return domain.Input{}, io.EOF
			}
			if res.err != nil {
				return domain.Input{}, res.err
			}

			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			if b, ok := h.button(clean); ok {
				return domain.ButtonInput(b.CallbackID), nil
			}
			return domain.TextInput(clean), nil
		}
	}
}

func (h *TextHandler) button(line string) (domain.Button, bool) {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(h.live) {
		return h.live[n-1], true
	}
	for _, b := range h.live {
		if strings.EqualFold(b.Label, line) {
			return b, true
		}
	}
	return domain.Button{}, false
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
