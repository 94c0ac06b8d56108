package ports

import "context"

// MediaService validates and converts media files for content constructors.
// All operations are synchronous; implementations bound them with their own
// timeouts.
type MediaService interface {
	// Extension returns the lowercase file extension including the dot.
	Extension(path string) string

	// ConvertToVoice transcodes path into the canonical voice format and
	// returns the new path. It fails with domain.ErrUnsupportedFormat when
	// the source format cannot be converted.
	ConvertToVoice(ctx context.Context, path string) (string, error)

	// ConvertToAudio transcodes path into the canonical audio format.
	ConvertToAudio(ctx context.Context, path string) (string, error)

	// ResizeVideo rescales the video in place.
	ResizeVideo(ctx context.Context, path string, width, height int) error
}
