package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/scenery/internal/cli"
	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/internal/testutils"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `
token: 123456:cli-token
posts:
  - id: start
    text: Hello
    next:
      - to: ask
  - id: ask
    text: Ready?
    next:
      - exact: "yes"
        to: done
      - else: true
        to: ask
  - id: done
    text: Bye
`

func newProject(t *testing.T, opts cli.Options) (*cli.Project, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "scenery.yaml", script)
	opts.Dir = dir
	return cli.NewProject(opts, logging.NewNop()), dir
}

func TestProject_LoadGraphFromScript(t *testing.T) {
	p, _ := newProject(t, cli.Options{})

	g, err := p.LoadGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456:cli-token", g.Token)
	assert.Equal(t, "start", g.Root().ID)
	assert.Equal(t, 3, g.Len())
}

func TestProject_BuildSealsToken(t *testing.T) {
	ctx := context.Background()
	p, dir := newProject(t, cli.Options{Key: "correct horse battery staple"})

	path, err := p.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bin", "obj.bin"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "cli-token")

	// Without the script the compiled graph is used.
	require.NoError(t, os.Remove(p.ScriptPath()))
	g, err := p.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, "123456:cli-token", g.Token)
	assert.Equal(t, 3, g.Len())

	wrong := cli.NewProject(cli.Options{Dir: dir, Key: "other"}, logging.NewNop())
	_, err = wrong.LoadGraph(ctx)
	assert.ErrorIs(t, err, middleware.ErrUnseal)

	plain := cli.NewProject(cli.Options{Dir: dir}, logging.NewNop())
	g, err = plain.LoadGraph(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "123456:cli-token", g.Token)
}

func TestProject_Empty(t *testing.T) {
	p := cli.NewProject(cli.Options{Dir: t.TempDir()}, logging.NewNop())
	_, err := p.LoadGraph(context.Background())
	assert.ErrorIs(t, err, cli.ErrNoProject)
}

func TestProject_NewBot(t *testing.T) {
	ctx := context.Background()

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		p, _ := newProject(t, cli.Options{RedisURL: "redis://" + mr.Addr() + "/0"})
		g, err := p.LoadGraph(ctx)
		require.NoError(t, err)

		bot, closeStore, err := p.NewBot(g)
		require.NoError(t, err)
		defer closeStore()

		_, err = bot.Start(ctx, "chat")
		require.NoError(t, err)
		assert.NotEmpty(t, mr.Keys())
	})

	t.Run("files", func(t *testing.T) {
		p, _ := newProject(t, cli.Options{ButtonPolicy: "consume"})
		g, err := p.LoadGraph(ctx)
		require.NoError(t, err)

		bot, closeStore, err := p.NewBot(g)
		require.NoError(t, err)
		defer closeStore()

		_, err = bot.Start(ctx, "chat")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(p.SessionDir(), "chat.json"))
	})

	t.Run("bad policy", func(t *testing.T) {
		p, _ := newProject(t, cli.Options{ButtonPolicy: "sometimes"})
		_, _, err := p.NewBot(domain.NewGraph(""))
		assert.Error(t, err)
	})
}

type event struct {
	Type       string `json:"type"`
	Current    string `json:"current"`
	Terminated bool   `json:"terminated"`
}

func events(t *testing.T, out string) []event {
	t.Helper()
	var evs []event
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var ev event
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		evs = append(evs, ev)
	}
	return evs
}

func TestRunSession_JSONAndResume(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "scenery.yaml", script)
	opts := cli.Options{Dir: dir, JSON: true, SessionID: "me"}

	var out bytes.Buffer
	require.NoError(t, cli.RunSession(opts, strings.NewReader("yes\n"), &out))
	evs := events(t, out.String())
	require.Len(t, evs, 2)
	assert.Equal(t, "ask", evs[0].Current)
	assert.Equal(t, "done", evs[1].Current)
	assert.True(t, evs[1].Terminated)

	out.Reset()
	require.NoError(t, cli.RunSession(opts, strings.NewReader(""), &out))
	evs = events(t, out.String())
	require.Len(t, evs, 1)
	assert.Equal(t, "done", evs[0].Current)

	out.Reset()
	opts.Fresh = true
	require.NoError(t, cli.RunSession(opts, strings.NewReader(""), &out))
	evs = events(t, out.String())
	require.Len(t, evs, 1)
	assert.Equal(t, "ask", evs[0].Current, "fresh run restarts at the root")
}
