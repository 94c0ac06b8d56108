package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/stretchr/testify/require"
)

// WriteFile creates name under dir with the given content and returns its
// absolute path. It fails the test immediately on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write fixture")

	absPath, err := filepath.Abs(path)
	require.NoError(t, err, "Failed to get absolute path for fixture")
	return absPath
}

// Media is an in-process ports.MediaService. Conversions only rename the
// extension; Resizes records every resize request as name@WxH.
type Media struct {
	// Fail, when set, is returned by every conversion and resize.
	Fail error

	mu      sync.Mutex
	Resizes []string
}

func (m *Media) Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func (m *Media) ConvertToVoice(ctx context.Context, path string) (string, error) {
	return m.convert(path, ".ogg", ".mp3", ".wav")
}

func (m *Media) ConvertToAudio(ctx context.Context, path string) (string, error) {
	return m.convert(path, ".mp3", ".wav", ".ogg")
}

func (m *Media) ResizeVideo(ctx context.Context, path string, width, height int) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resizes = append(m.Resizes, fmt.Sprintf("%s@%dx%d", filepath.Base(path), width, height))
	return nil
}

func (m *Media) convert(path, ext string, from ...string) (string, error) {
	if m.Fail != nil {
		return "", m.Fail
	}
	src := m.Extension(path)
	for _, f := range from {
		if f == src {
			return strings.TrimSuffix(path, filepath.Ext(path)) + ext, nil
		}
	}
	return "", domain.ErrUnsupportedFormat
}
