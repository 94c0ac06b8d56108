package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/internal/presentation/tui"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports/tests"
	"github.com/aretw0/scenery/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_TextConversation(t *testing.T) {
	bot := scenery.New(tests.SampleGraph(t))
	in := strings.NewReader("what?\nyes\nnothing\n2\n")
	var out bytes.Buffer

	r := runner.NewRunner(bot, runner.WithInputHandler(
		runner.NewTextHandler(in, &out, runner.WithView(tui.Plain())),
	))
	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Hello\nReady?\n")
	assert.Contains(t, text, "Pick\n  [1] Left\n  [2] Right\n")
	assert.Contains(t, text, "[System] No matching answer, try again.")
	assert.True(t, strings.HasSuffix(text, "<document> res/manual.pdf\n"), text)

	state, err := bot.State(context.Background(), runner.DefaultSessionID)
	require.NoError(t, err)
	assert.True(t, state.Terminated)
	assert.Equal(t, []string{"start", "ask", "ask", "menu", "end"}, state.History)
}

func TestRunner_ButtonByLabel(t *testing.T) {
	bot := scenery.New(tests.SampleGraph(t), scenery.WithButtonPolicy(domain.ButtonsConsume))
	var out bytes.Buffer

	r := runner.NewRunner(bot, runner.WithSessionID("u1"), runner.WithInputHandler(
		runner.NewTextHandler(strings.NewReader("yes\nleft\n"), &out, runner.WithView(tui.Plain())),
	))
	require.NoError(t, r.Run(context.Background()))

	state, err := bot.State(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "end", state.CurrentPostID)
	assert.Len(t, state.Consumed["menu"], 1)
}

func TestRunner_EOFStopsQuietly(t *testing.T) {
	bot := scenery.New(tests.SampleGraph(t))
	var out bytes.Buffer

	r := runner.NewRunner(bot, runner.WithInputHandler(
		runner.NewTextHandler(strings.NewReader(""), &out, runner.WithView(tui.Plain())),
	))
	require.NoError(t, r.Run(context.Background()))

	state, err := bot.State(context.Background(), runner.DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, "ask", state.CurrentPostID)
}

func TestRunner_Resume(t *testing.T) {
	bot := scenery.New(tests.SampleGraph(t))
	ctx := context.Background()
	_, err := bot.Start(ctx, "u2")
	require.NoError(t, err)
	_, err = bot.Handle(ctx, "u2", domain.TextInput("yes"))
	require.NoError(t, err)

	var out bytes.Buffer
	r := runner.NewRunner(bot,
		runner.WithSessionID("u2"),
		runner.WithResume(true),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(""), &out, runner.WithView(tui.Plain()))),
	)
	require.NoError(t, r.Run(ctx))

	assert.True(t, strings.HasPrefix(out.String(), "Pick\n"), out.String())
}

func TestRunner_JSONConversation(t *testing.T) {
	g := tests.SampleGraph(t)
	menu, _ := g.Post("menu")
	right := menu.Content.(domain.ButtonSet).Buttons[1]

	input := strings.Join([]string{
		`"yes"`,
		`{"text":"a","button":"b"}`,
		`{"button":"` + right.CallbackID + `"}`,
	}, "\n") + "\n"
	var out bytes.Buffer

	r := runner.NewRunner(scenery.New(g), runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(input), &out)))
	require.NoError(t, r.Run(context.Background()))

	type event struct {
		Type       string `json:"type"`
		Current    string `json:"current"`
		Terminated bool   `json:"terminated"`
	}
	var events []event
	dec := json.NewDecoder(&out)
	for dec.More() {
		var ev event
		require.NoError(t, dec.Decode(&ev))
		events = append(events, ev)
	}

	require.Len(t, events, 4)
	assert.Equal(t, "ask", events[0].Current)
	assert.Equal(t, "menu", events[1].Current)
	assert.Equal(t, "system", events[2].Type)
	assert.Equal(t, "end", events[3].Current)
	assert.True(t, events[3].Terminated)
}

func TestJSONHandler_GroupItemsCarryKind(t *testing.T) {
	g := domain.NewGraph("")
	album, err := g.NewPost("album", domain.Group{Caption: "Trip", Items: []domain.Content{
		domain.Image{File: domain.File{Path: "a.jpg"}},
		domain.Video{File: domain.File{Path: "b.mp4"}},
	}})
	require.NoError(t, err)

	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader(""), &out)
	state := &domain.State{SessionID: "s", CurrentPostID: "album", Terminated: true}
	require.NoError(t, h.Output(context.Background(), []*domain.Post{album}, state))

	var ev struct {
		Posts []struct {
			Content json.RawMessage `json:"content"`
		} `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	require.Len(t, ev.Posts, 1)
	assert.JSONEq(t, `{"caption":"Trip","items":[
		{"kind":"image","source":"a.jpg"},
		{"kind":"video","source":"b.mp4"}]}`, string(ev.Posts[0].Content))
}
