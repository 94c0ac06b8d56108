package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	// CallbackIDLength is the length of generated callback ids.
	CallbackIDLength = 10

	callbackAlphabet = "abcdefghijklmnopqrstuvwxyz"

	// maxIDAttempts bounds collision retries while building a panel. With
	// 26^10 ids a panel of n buttons collides with probability ~n²/2.8e14.
	maxIDAttempts = 16
)

// Button is an interactive control of a button set. CallbackID is unique
// within its panel only.
type Button struct {
	Label      string `json:"label"`
	CallbackID string `json:"callback_id"`
}

// NewButton creates a button with a freshly generated callback id.
func NewButton(label string) Button {
	return Button{Label: label, CallbackID: GenerateCallbackID()}
}

// callbackID draws panel ids. Tests replace it.
var callbackID = GenerateCallbackID

// GenerateCallbackID returns a random identifier of CallbackIDLength
// lowercase letters.
func GenerateCallbackID() string {
	var b strings.Builder
	b.Grow(CallbackIDLength)
	for i := 0; i < CallbackIDLength; i++ {
		b.WriteByte(callbackAlphabet[rand.IntN(len(callbackAlphabet))])
	}
	return b.String()
}

// NewButtonSet builds a button panel, regenerating any callback id that
// collides with one already issued for the same panel.
func NewButtonSet(caption string, labels ...string) (*ButtonSet, error) {
	if len(labels) == 0 {
		return nil, &ContentError{Kind: KindButtons, Err: ErrEmptyButtons}
	}

	taken := make(map[string]bool, len(labels))
	buttons := make([]Button, 0, len(labels))
	for _, label := range labels {
		id := callbackID()
		for attempt := 1; taken[id] && attempt < maxIDAttempts; attempt++ {
			id = callbackID()
		}
		if taken[id] {
			return nil, &ContentError{Kind: KindButtons, Err: fmt.Errorf("%w: button %q", ErrCallbackIDs, label)}
		}
		taken[id] = true
		buttons = append(buttons, Button{Label: label, CallbackID: id})
	}

	return &ButtonSet{Caption: caption, Buttons: buttons}, nil
}

// Button returns the panel button with the given label.
func (b ButtonSet) Button(label string) (Button, bool) {
	for _, btn := range b.Buttons {
		if btn.Label == label {
			return btn, true
		}
	}
	return Button{}, false
}
