// Package content builds validated post payloads from files on disk.
//
// Every media constructor runs the same checks (the file exists, is not
// empty and has an accepted extension) before any variant specific step.
// Voice and audio payloads in a convertible format are transcoded through
// the media service; round videos are resized.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports"
)

// Accepted extensions per kind. A nil list accepts any file.
var (
	ImageFormats     = []string{".jpg", ".jpeg", ".png", ".webp"}
	VideoFormats     = []string{".mp4"}
	VoiceFormats     = []string{".ogg"}
	AnimationFormats = []string{".gif"}
	RoundFormats     = []string{".mp4"}
	AudioFormats     = []string{".mp3"}
	StickerFormats   = ImageFormats
)

// Factory creates content variants. It is safe for concurrent use as long
// as the media service is.
type Factory struct {
	media    ports.MediaService
	maxRound int
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithMaxRoundWidth sets the width round videos are clamped to.
func WithMaxRoundWidth(w int) Option {
	return func(f *Factory) {
		if w >= domain.MinRoundWidth {
			f.maxRound = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = l
	}
}

// NewFactory creates a factory backed by the given media service.
func NewFactory(media ports.MediaService, opts ...Option) *Factory {
	f := &Factory{
		media:    media,
		maxRound: domain.DefaultRoundWidth,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MaxRoundWidth returns the clamp applied to round videos.
func (f *Factory) MaxRoundWidth() int { return f.maxRound }

func (f *Factory) Text(body string) domain.Text {
	return domain.Text{Body: body}
}

func (f *Factory) Image(path string) (domain.Image, error) {
	if err := f.check(domain.KindImage, path, ImageFormats); err != nil {
		return domain.Image{}, err
	}
	return domain.Image{File: domain.File{Path: path}}, nil
}

func (f *Factory) Video(path string) (domain.Video, error) {
	if err := f.check(domain.KindVideo, path, VideoFormats); err != nil {
		return domain.Video{}, err
	}
	return domain.Video{File: domain.File{Path: path}}, nil
}

func (f *Factory) Animation(path string) (domain.Animation, error) {
	if err := f.check(domain.KindAnimation, path, AnimationFormats); err != nil {
		return domain.Animation{}, err
	}
	return domain.Animation{File: domain.File{Path: path}}, nil
}

func (f *Factory) Sticker(path string) (domain.Sticker, error) {
	if err := f.check(domain.KindSticker, path, StickerFormats); err != nil {
		return domain.Sticker{}, err
	}
	return domain.Sticker{File: domain.File{Path: path}}, nil
}

// Document accepts any existing, non-empty file.
func (f *Factory) Document(path string) (domain.Document, error) {
	if err := f.check(domain.KindDocument, path, nil); err != nil {
		return domain.Document{}, err
	}
	return domain.Document{File: domain.File{Path: path}}, nil
}

// Voice returns a voice note, converting path to the voice format first when
// needed. The returned content points at the converted file.
func (f *Factory) Voice(ctx context.Context, path string) (domain.Voice, error) {
	out, err := f.converted(ctx, domain.KindVoice, path, VoiceFormats, f.media.ConvertToVoice)
	if err != nil {
		return domain.Voice{}, err
	}
	return domain.Voice{File: domain.File{Path: out}}, nil
}

// Audio returns a music track, converting path to the audio format first
// when needed.
func (f *Factory) Audio(ctx context.Context, path string) (domain.Audio, error) {
	out, err := f.converted(ctx, domain.KindAudio, path, AudioFormats, f.media.ConvertToAudio)
	if err != nil {
		return domain.Audio{}, err
	}
	return domain.Audio{File: domain.File{Path: out}}, nil
}

// Round returns a circular video. Widths above the factory maximum are
// clamped and the file is resized to a square of the final width.
func (f *Factory) Round(ctx context.Context, path string, width int) (domain.Round, error) {
	if err := f.check(domain.KindRound, path, RoundFormats); err != nil {
		return domain.Round{}, err
	}
	if width < domain.MinRoundWidth {
		return domain.Round{}, &domain.ContentError{Kind: domain.KindRound, Path: path,
			Err: fmt.Errorf("%w: width %d is below %d", domain.ErrInvalidDimension, width, domain.MinRoundWidth)}
	}
	if width > f.maxRound {
		f.logger.Debug("round width clamped", "path", path, "requested", width, "width", f.maxRound)
		width = f.maxRound
	}
	if err := f.media.ResizeVideo(ctx, path, width, width); err != nil {
		return domain.Round{}, &domain.ContentError{Kind: domain.KindRound, Path: path, Err: err}
	}
	return domain.Round{File: domain.File{Path: path}, Width: width}, nil
}

// Buttons builds a button panel with one generated callback id per label.
func (f *Factory) Buttons(caption string, labels ...string) (domain.ButtonSet, error) {
	set, err := domain.NewButtonSet(caption, labels...)
	if err != nil {
		return domain.ButtonSet{}, err
	}
	return *set, nil
}

// Group composes already built members into an album.
func (f *Factory) Group(members ...domain.Content) (domain.Group, error) {
	g, err := domain.NewGroup(members...)
	if err != nil {
		return domain.Group{}, err
	}
	return *g, nil
}

// check runs the steps shared by every media kind.
func (f *Factory) check(kind domain.Kind, path string, formats []string) error {
	if path == "" {
		return &domain.ContentError{Kind: kind, Err: domain.ErrFileNotFound}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &domain.ContentError{Kind: kind, Path: path, Err: domain.ErrFileNotFound}
		}
		return &domain.ContentError{Kind: kind, Path: path, Err: err}
	}
	if info.IsDir() {
		return &domain.ContentError{Kind: kind, Path: path, Err: fmt.Errorf("%w: is a directory", domain.ErrFileNotFound)}
	}
	if info.Size() == 0 {
		return &domain.ContentError{Kind: kind, Path: path, Err: domain.ErrEmptyPayload}
	}
	if formats != nil && !accepts(formats, f.media.Extension(path)) {
		return &domain.ContentError{Kind: kind, Path: path,
			Err: fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f.media.Extension(path))}
	}
	return nil
}

type convertFunc func(ctx context.Context, path string) (string, error)

func (f *Factory) converted(ctx context.Context, kind domain.Kind, path string, formats []string, convert convertFunc) (string, error) {
	if err := f.check(kind, path, nil); err != nil {
		return "", err
	}
	if accepts(formats, f.media.Extension(path)) {
		return path, nil
	}

	out, err := convert(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrUnsupportedFormat) {
			err = fmt.Errorf("%w: %w", domain.ErrUnsupportedFormat, err)
		}
		return "", &domain.ContentError{Kind: kind, Path: path, Err: err}
	}
	f.logger.Info("media converted", "kind", kind, "src", path, "dst", out)
	return out, nil
}

func accepts(formats []string, ext string) bool {
	for _, f := range formats {
		if f == ext {
			return true
		}
	}
	return false
}
