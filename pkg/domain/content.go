package domain

import "fmt"

// Kind identifies the content variant carried by a post.
type Kind string

// Content kinds. The value is also the key used for the variant in
// script files and wire views.
const (
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindVoice     Kind = "voice"
	KindAnimation Kind = "animation" // gif
	KindRound     Kind = "round"     // circular video note
	KindDocument  Kind = "document"
	KindAudio     Kind = "audio"
	KindSticker   Kind = "sticker"
	KindButtons   Kind = "buttons"
	KindGroup     Kind = "group"
)

// Round video bounds, in pixels.
const (
	MinRoundWidth     = 10
	DefaultRoundWidth = 480
)

// MaxGroupItems is the maximum number of non-text members of a group.
const MaxGroupItems = 10

// Content is the payload of a post. The set of implementations is closed:
// only the variants declared in this package satisfy it.
type Content interface {
	Kind() Kind
	// Source returns the file path of media content, or the text payload.
	Source() string
	// Validate re-checks the structural invariants that do not need I/O.
	Validate() error

	isContent()
}

// File is the common payload of media variants.
type File struct {
	Path string `json:"path"`
}

func (f File) Source() string { return f.Path }

func (f File) validate(k Kind) error {
	if f.Path == "" {
		return &ContentError{Kind: k, Err: ErrFileNotFound}
	}
	return nil
}

func (File) isContent() {}

// Text is a plain message.
type Text struct {
	Body string `json:"body"`
}

func (Text) Kind() Kind       { return KindText }
func (t Text) Source() string { return t.Body }
func (Text) Validate() error  { return nil }
func (Text) isContent()       {}

// Image is a picture sent from a resource file.
type Image struct{ File }

func (Image) Kind() Kind        { return KindImage }
func (c Image) Validate() error { return c.validate(KindImage) }

// Video is a plain video clip.
type Video struct{ File }

func (Video) Kind() Kind        { return KindVideo }
func (c Video) Validate() error { return c.validate(KindVideo) }

// Voice is a voice note; Path always points to the canonical voice format.
type Voice struct{ File }

func (Voice) Kind() Kind        { return KindVoice }
func (c Voice) Validate() error { return c.validate(KindVoice) }

// Animation is a looping gif.
type Animation struct{ File }

func (Animation) Kind() Kind        { return KindAnimation }
func (c Animation) Validate() error { return c.validate(KindAnimation) }

// Round is a circular video of Width x Width pixels.
type Round struct {
	File
	Width int `json:"width"`
}

func (Round) Kind() Kind { return KindRound }

func (c Round) Validate() error {
	if err := c.validate(KindRound); err != nil {
		return err
	}
	if c.Width < MinRoundWidth {
		return &ContentError{Kind: KindRound, Path: c.Path, Err: fmt.Errorf("%w: width %d", ErrInvalidDimension, c.Width)}
	}
	return nil
}

// Document is a file sent as an attachment.
type Document struct{ File }

func (Document) Kind() Kind        { return KindDocument }
func (c Document) Validate() error { return c.validate(KindDocument) }

// Audio is a music track; Path always points to the canonical audio format.
type Audio struct{ File }

func (Audio) Kind() Kind        { return KindAudio }
func (c Audio) Validate() error { return c.validate(KindAudio) }

// Sticker is a sticker image.
type Sticker struct{ File }

func (Sticker) Kind() Kind        { return KindSticker }
func (c Sticker) Validate() error { return c.validate(KindSticker) }

// ButtonSet is a caption with an ordered panel of buttons.
type ButtonSet struct {
	Caption string   `json:"caption"`
	Buttons []Button `json:"buttons"`
}

func (ButtonSet) Kind() Kind       { return KindButtons }
func (b ButtonSet) Source() string { return b.Caption }
func (ButtonSet) isContent()       {}

func (b ButtonSet) Validate() error {
	if len(b.Buttons) == 0 {
		return &ContentError{Kind: KindButtons, Err: ErrEmptyButtons}
	}
	seen := make(map[string]bool, len(b.Buttons))
	for _, btn := range b.Buttons {
		if btn.CallbackID == "" || seen[btn.CallbackID] {
			return &ContentError{Kind: KindButtons, Err: fmt.Errorf("duplicate or empty callback id %q", btn.CallbackID)}
		}
		seen[btn.CallbackID] = true
	}
	return nil
}

// Has reports whether the panel contains a button with the given callback id.
func (b ButtonSet) Has(callbackID string) bool {
	for _, btn := range b.Buttons {
		if btn.CallbackID == callbackID {
			return true
		}
	}
	return false
}

// Live returns the buttons not yet consumed, in panel order.
func (b ButtonSet) Live(consumed Consumed) []Button {
	out := make([]Button, 0, len(b.Buttons))
	for _, btn := range b.Buttons {
		if !consumed.Has(btn.CallbackID) {
			out = append(out, btn)
		}
	}
	return out
}

// Group is an album of media items with an optional caption taken from its
// single text member.
type Group struct {
	Caption string    `json:"caption,omitempty"`
	Items   []Content `json:"items"`
}

func (Group) Kind() Kind       { return KindGroup }
func (g Group) Source() string { return g.Caption }
func (Group) isContent()       {}

func (g Group) Validate() error {
	items := g.Items
	if g.Caption != "" {
		items = append([]Content{Text{Body: g.Caption}}, items...)
	}
	_, err := NewGroup(items...)
	return err
}

// NewGroup assembles a group post content. Text members are extracted into
// the caption. The checks run in a fixed order and the first violation
// aborts construction.
func NewGroup(members ...Content) (*Group, error) {
	if len(members) == 0 {
		return nil, &GroupError{Err: ErrEmptyGroup}
	}

	var texts []Text
	items := make([]Content, 0, len(members))
	for _, m := range members {
		switch v := m.(type) {
		case Text:
			texts = append(texts, v)
		case Document, Audio, Image, Video:
			items = append(items, m)
		default:
			kind := Kind("nil")
			if m != nil {
				kind = m.Kind()
			}
			return nil, &GroupError{Member: kind, Err: ErrUnsupportedMember}
		}
	}

	if len(items) > MaxGroupItems {
		return nil, &GroupError{Count: len(items), Err: ErrTooManyItems}
	}
	if len(texts) > 1 {
		return nil, &GroupError{Member: KindText, Count: len(texts), Err: ErrDuplicateCaption}
	}
	if err := exclusive(items, KindDocument, ErrDuplicateDocument, ErrDocumentMixing); err != nil {
		return nil, err
	}
	if err := exclusive(items, KindAudio, ErrDuplicateAudio, ErrAudioMixing); err != nil {
		return nil, err
	}

	g := &Group{Items: items}
	if len(texts) == 1 {
		g.Caption = texts[0].Body
	}
	return g, nil
}

// exclusive enforces that a kind appears at most once and never alongside
// other non-text items.
func exclusive(items []Content, kind Kind, errDup, errMix error) error {
	n := 0
	for _, it := range items {
		if it.Kind() == kind {
			n++
		}
	}
	if n > 1 {
		return &GroupError{Member: kind, Count: n, Err: errDup}
	}
	if n == 1 && len(items) > 1 {
		return &GroupError{Member: kind, Err: errMix}
	}
	return nil
}
