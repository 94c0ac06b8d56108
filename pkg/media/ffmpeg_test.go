package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fake records invocations and answers ffprobe with size.
func fake(size string, fail error) (*[]call, execFunc) {
	var calls []call
	return &calls, func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, call{name, args})
		if fail != nil {
			return nil, fail
		}
		if name == "ffprobe" {
			return []byte(size + "\n"), nil
		}
		// ffmpeg: create the output file, always the last argument.
		return nil, os.WriteFile(args[len(args)-1], []byte("out"), 0o644)
	}
}

func TestExtension(t *testing.T) {
	f := New()
	assert.Equal(t, ".mp3", f.Extension("res/Song.MP3"))
	assert.Equal(t, "", f.Extension("res/README"))
}

func TestConvertToVoice(t *testing.T) {
	f := New()
	calls, run := fake("", nil)
	f.run = run

	src := filepath.Join(t.TempDir(), "hello.mp3")
	out, err := f.ConvertToVoice(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "hello.ogg"), out)

	require.Len(t, *calls, 1)
	assert.Equal(t, "ffmpeg", (*calls)[0].name)
	assert.Contains(t, (*calls)[0].args, "libvorbis")
}

func TestConvert_UnsupportedSource(t *testing.T) {
	f := New()
	calls, run := fake("", nil)
	f.run = run

	_, err := f.ConvertToVoice(context.Background(), "clip.flac")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = f.ConvertToAudio(context.Background(), "track.mp3")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat, "mp3 is already canonical, not a conversion source")
	assert.Empty(t, *calls)
}

func TestConvert_ToolFailure(t *testing.T) {
	f := New()
	boom := errors.New("exit status 1")
	_, run := fake("", boom)
	f.run = run

	_, err := f.ConvertToAudio(context.Background(), "take.wav")
	assert.ErrorIs(t, err, boom)
}

func TestResizeVideo(t *testing.T) {
	t.Run("square and small is skipped", func(t *testing.T) {
		f := New()
		calls, run := fake("480x480", nil)
		f.run = run

		require.NoError(t, f.ResizeVideo(context.Background(), "r.mp4", 240, 240))
		require.Len(t, *calls, 1)
		assert.Equal(t, "ffprobe", (*calls)[0].name)
	})

	t.Run("non square is rescaled in place", func(t *testing.T) {
		f := New()
		calls, run := fake("1280x720", nil)
		f.run = run

		path := filepath.Join(t.TempDir(), "r.mp4")
		require.NoError(t, os.WriteFile(path, []byte("in"), 0o644))

		require.NoError(t, f.ResizeVideo(context.Background(), path, 480, 480))
		require.Len(t, *calls, 2)
		assert.Contains(t, (*calls)[1].args, "scale=480:480")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "out", string(data))
	})
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("640x360\n")
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	_, _, err = parseSize("garbage")
	assert.Error(t, err)
}
