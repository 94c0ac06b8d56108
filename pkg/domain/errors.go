package domain

import (
	"errors"
	"fmt"
)

// Content construction errors. They are returned while the graph is being
// assembled and never during traversal.
var (
	// ErrFileNotFound is returned when a media post references a missing file.
	ErrFileNotFound = errors.New("file not found")
	// ErrEmptyPayload is returned when a media file has zero length.
	ErrEmptyPayload = errors.New("file is empty")
	// ErrUnsupportedFormat is returned when the file extension is not accepted
	// by the content kind and cannot be converted.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidDimension is returned for round videos narrower than MinRoundWidth.
	ErrInvalidDimension = errors.New("invalid video dimension")
	// ErrEmptyButtons is returned when a button set has no buttons.
	ErrEmptyButtons = errors.New("button set is empty")
	// ErrCallbackIDs is returned when unique callback ids cannot be drawn
	// for a panel.
	ErrCallbackIDs = errors.New("callback id space exhausted")
)

// Group composition errors.
var (
	ErrEmptyGroup        = errors.New("group is empty")
	ErrUnsupportedMember = errors.New("group may only contain text, documents, audio, images or videos")
	ErrTooManyItems      = errors.New("group has too many items")
	ErrDocumentMixing    = errors.New("documents cannot be mixed with other media")
	ErrAudioMixing       = errors.New("audio cannot be mixed with other media")

	// The duplicate errors are refinements of ErrTooManyItems.
	ErrDuplicateCaption  = fmt.Errorf("%w: only one text is allowed", ErrTooManyItems)
	ErrDuplicateDocument = fmt.Errorf("%w: only one document is allowed", ErrTooManyItems)
	ErrDuplicateAudio    = fmt.Errorf("%w: only one audio is allowed", ErrTooManyItems)
)

// Graph assembly errors.
var (
	ErrDuplicatePost = errors.New("duplicate post id")
	ErrPostNotFound  = errors.New("post not found")
	ErrForeignPost   = errors.New("post belongs to another graph")
	ErrNotButtonPost = errors.New("post does not carry a button set")
	ErrUnknownButton = errors.New("button is not part of the post's button set")
	ErrGraphNotFound = errors.New("graph not found")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrHopLimit is returned when a chain of unconditional transitions does not settle.
var ErrHopLimit = errors.New("transition hop limit exceeded")

// ContentError describes a rejected payload with enough context to report
// it back to the script author.
type ContentError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ContentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s post: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s post %q: %v", e.Kind, e.Path, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// GroupError reports the violated composition rule of a group post.
type GroupError struct {
	// Member is the offending member kind, empty when the rule concerns the whole group.
	Member Kind
	Count  int
	Err    error
}

func (e *GroupError) Error() string {
	switch {
	case e.Member != "":
		return fmt.Sprintf("group post: %v (member %s)", e.Err, e.Member)
	case e.Count > 0:
		return fmt.Sprintf("group post: %v (%d items)", e.Err, e.Count)
	default:
		return fmt.Sprintf("group post: %v", e.Err)
	}
}

func (e *GroupError) Unwrap() error { return e.Err }
