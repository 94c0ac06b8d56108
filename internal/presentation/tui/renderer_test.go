package tui_test

import (
	"testing"

	"github.com/aretw0/scenery/internal/presentation/tui"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostView_Plain(t *testing.T) {
	g := domain.NewGraph("")
	view := tui.Plain()

	text, err := g.NewPost("t", domain.Text{Body: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", view.Render(text, nil))

	img, _ := g.NewPost("i", domain.Image{File: domain.File{Path: "res/cat.png"}})
	assert.Equal(t, "<image> res/cat.png\n", view.Render(img, nil))

	set, err := domain.NewButtonSet("Pick", "A", "B")
	require.NoError(t, err)
	menu, _ := g.NewPost("m", *set)
	b, _ := set.Button("B")
	assert.Equal(t, "Pick\n  [1] B\n", view.Render(menu, []domain.Button{b}))

	grp, err := domain.NewGroup(domain.Text{Body: "trip"}, domain.Image{File: domain.File{Path: "a.jpg"}})
	require.NoError(t, err)
	album, _ := g.NewPost("g", *grp)
	assert.Equal(t, "<image> a.jpg\ntrip\n", view.Render(album, nil))
}
