// Package media implements ports.MediaService on top of the ffmpeg and
// ffprobe command line tools.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/domain"
)

// Canonical formats of converted media.
const (
	VoiceExt = ".ogg"
	AudioExt = ".mp3"
)

// SquareLimit is the side below which an already square video is sent as is.
const SquareLimit = 640

// conversion lists the ffmpeg codec arguments per source extension.
type conversion map[string][]string

var (
	toVoice = conversion{
		".mp3": {"-c:a", "libvorbis", "-q:a", "4"},
		".wav": {"-acodec", "libvorbis"},
	}
	toAudio = conversion{
		".wav": {"-acodec", "libmp3lame"},
		".ogg": {"-acodec", "libmp3lame"},
	}
)

// execFunc runs a command and returns its standard output.
type execFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpeg converts media by shelling out to ffmpeg.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	logger  *slog.Logger
	run     execFunc
}

// Option configures the FFmpeg adapter.
type Option func(*FFmpeg)

// WithBinaries overrides the ffmpeg and ffprobe executables.
func WithBinaries(ffmpeg, ffprobe string) Option {
	return func(f *FFmpeg) {
		if ffmpeg != "" {
			f.ffmpeg = ffmpeg
		}
		if ffprobe != "" {
			f.ffprobe = ffprobe
		}
	}
}

// WithTimeout bounds every external invocation.
func WithTimeout(d time.Duration) Option {
	return func(f *FFmpeg) {
		f.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *FFmpeg) {
		f.logger = l
	}
}

// New creates the adapter. Binaries are resolved through PATH at call time.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		timeout: 2 * time.Minute,
		logger:  logging.NewNop(),
		run:     runCommand,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Extension returns the lowercase extension of path, including the dot.
func (f *FFmpeg) Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// ConvertToVoice writes an .ogg copy next to path and returns its location.
func (f *FFmpeg) ConvertToVoice(ctx context.Context, path string) (string, error) {
	return f.convert(ctx, path, VoiceExt, toVoice)
}

// ConvertToAudio writes an .mp3 copy next to path and returns its location.
func (f *FFmpeg) ConvertToAudio(ctx context.Context, path string) (string, error) {
	return f.convert(ctx, path, AudioExt, toAudio)
}

func (f *FFmpeg) convert(ctx context.Context, path, ext string, table conversion) (string, error) {
	codec, ok := table[f.Extension(path)]
	if !ok {
		return "", fmt.Errorf("%w: cannot convert %s to %s", domain.ErrUnsupportedFormat, filepath.Base(path), ext)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	args := append([]string{"-loglevel", "quiet", "-i", path, "-y"}, codec...)
	args = append(args, out)

	if _, err := f.exec(ctx, f.ffmpeg, args...); err != nil {
		return "", err
	}
	f.logger.Debug("media converted", "src", path, "dst", out)
	return out, nil
}

// ResizeVideo rescales the video to width x height in place. Videos that are
// already square and no larger than SquareLimit are left untouched.
func (f *FFmpeg) ResizeVideo(ctx context.Context, path string, width, height int) error {
	w, h, err := f.dimensions(ctx, path)
	if err != nil {
		return err
	}
	if w == h && h <= SquareLimit {
		f.logger.Debug("resize skipped", "path", path, "width", w)
		return nil
	}

	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".resized" + filepath.Ext(path)
	defer func() { _ = os.Remove(tmp) }()

	scale := fmt.Sprintf("scale=%d:%d", width, height)
	if _, err := f.exec(ctx, f.ffmpeg, "-loglevel", "quiet", "-i", path, "-y", "-vf", scale, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace resized video: %w", err)
	}
	f.logger.Debug("video resized", "path", path, "from", fmt.Sprintf("%dx%d", w, h), "to", scale)
	return nil
}

func (f *FFmpeg) dimensions(ctx context.Context, path string) (int, int, error) {
	out, err := f.exec(ctx, f.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path)
	if err != nil {
		return 0, 0, err
	}
	return parseSize(string(out))
}

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected ffprobe output %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe height %q: %w", h, err)
	}
	return width, height, nil
}

func (f *FFmpeg) exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.run(ctx, name, args...)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w. Stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
