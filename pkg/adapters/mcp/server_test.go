package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports/tests"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *domain.Graph) {
	t.Helper()
	g := tests.SampleGraph(t)
	return NewServer(scenery.New(g)), g
}

func TestServer_SessionTools(t *testing.T) {
	s, g := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleStart(ctx, req, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "ask", resp.CurrentPost)
	require.Len(t, resp.Posts, 2)
	assert.Equal(t, "Hello", resp.Posts[0].Source)

	resp, err = s.handleInput(ctx, req, map[string]interface{}{"session_id": "s1", "text": "yes"})
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	require.Len(t, resp.Posts, 1)
	assert.Len(t, resp.Posts[0].Buttons, 2)

	menu, _ := g.Post("menu")
	right := menu.Content.(domain.ButtonSet).Buttons[1]
	resp, err = s.handleInput(ctx, req, map[string]interface{}{"session_id": "s1", "button": right.CallbackID})
	require.NoError(t, err)
	assert.Equal(t, "end", resp.CurrentPost)
	assert.True(t, resp.Terminated)
	assert.Equal(t, "res/manual.pdf", resp.Posts[0].Source)

	resp, err = s.handleGetSession(ctx, req, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "end", resp.Posts[0].ID)
}

func TestServer_InputValidation(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleInput(ctx, req, map[string]interface{}{"session_id": "s1"})
	assert.Error(t, err)

	_, err = s.handleInput(ctx, req, map[string]interface{}{"session_id": "s1", "text": "a", "button": "b"})
	assert.Error(t, err)

	_, err = s.handleInput(ctx, req, map[string]interface{}{"session_id": "missing", "text": "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_GetGraph(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStart(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"session_id": "s1"}
	res, err := s.handleGetGraph(ctx, req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "graph TD")
	assert.Contains(t, text.Text, "class ask current;")

	req.Params.Arguments = map[string]any{"session_id": "ghost"}
	res, err = s.handleGetGraph(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_GroupItems(t *testing.T) {
	g := domain.NewGraph("")
	_, err := g.NewPost("album", domain.Group{Caption: "Trip", Items: []domain.Content{
		domain.Image{File: domain.File{Path: "a.jpg"}},
		domain.Video{File: domain.File{Path: "b.mp4"}},
	}})
	require.NoError(t, err)
	s := NewServer(scenery.New(g))

	resp, err := s.handleStart(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "Trip", resp.Posts[0].Source)
	assert.Equal(t, []codec.ItemView{
		{Kind: domain.KindImage, Source: "a.jpg"},
		{Kind: domain.KindVideo, Source: "b.mp4"},
	}, resp.Posts[0].Items)
}

type racingBot struct {
	*scenery.Bot
	next domain.Input
}

func (b *racingBot) HandleTurn(ctx context.Context, id string, in domain.Input) (*scenery.Turn, error) {
	turn, err := b.Bot.HandleTurn(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if _, err := b.Bot.Handle(ctx, id, b.next); err != nil {
		return nil, err
	}
	return turn, nil
}

func TestServer_InputRespondsWithOwnTurnState(t *testing.T) {
	g := tests.SampleGraph(t)
	menu, _ := g.Post("menu")
	left := menu.Content.(domain.ButtonSet).Buttons[0]
	s := NewServer(&racingBot{Bot: scenery.New(g), next: domain.ButtonInput(left.CallbackID)})
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, map[string]interface{}{"session_id": "s1"})
	require.NoError(t, err)

	resp, err := s.handleInput(ctx, req, map[string]interface{}{"session_id": "s1", "text": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "menu", resp.CurrentPost)
	assert.False(t, resp.Terminated)
	require.Len(t, resp.Posts, 1)
	assert.Len(t, resp.Posts[0].Buttons, 2)
}
