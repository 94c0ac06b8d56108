package codec_test

import (
	"testing"

	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_PreservesIdentity(t *testing.T) {
	g := tests.SampleGraph(t)

	data, err := codec.Encode(g)
	require.NoError(t, err)

	out, err := codec.Decode(data)
	require.NoError(t, err)

	require.Equal(t, g.Len(), out.Len())
	for _, p := range g.Posts() {
		q, ok := out.Post(p.ID)
		require.True(t, ok, p.ID)
		assert.Equal(t, p.Content, q.Content)
		require.Len(t, q.Rules(), len(p.Rules()))
		for i, r := range p.Rules() {
			assert.Equal(t, r.Condition, q.Rules()[i].Condition)
			target, _ := out.Post(r.Target.ID)
			assert.Same(t, target, q.Rules()[i].Target)
		}
	}
}

func TestRoundTrip_AllContentKinds(t *testing.T) {
	g := domain.NewGraph("tok")
	grp, err := domain.NewGroup(domain.Text{Body: "album"},
		domain.Image{File: domain.File{Path: "a.jpg"}},
		domain.Video{File: domain.File{Path: "b.mp4"}})
	require.NoError(t, err)

	contents := []domain.Content{
		domain.Text{Body: "hello"},
		domain.Voice{File: domain.File{Path: "v.ogg"}},
		domain.Animation{File: domain.File{Path: "a.gif"}},
		domain.Round{File: domain.File{Path: "r.mp4"}, Width: 240},
		domain.Audio{File: domain.File{Path: "m.mp3"}},
		domain.Sticker{File: domain.File{Path: "s.webp"}},
		*grp,
	}
	var prev *domain.Post
	for _, c := range contents {
		p, err := g.NewPost("", c)
		require.NoError(t, err)
		if prev != nil {
			require.NoError(t, prev.AddNext(p, domain.Immediate()))
		}
		prev = p
	}

	data, err := codec.Encode(g)
	require.NoError(t, err)
	out, err := codec.Decode(data)
	require.NoError(t, err)

	for i, p := range out.Posts() {
		assert.Equal(t, contents[i], p.Content)
	}
	assert.Equal(t, g.Root().ID, out.Root().ID)
}

func TestDecode_Errors(t *testing.T) {
	_, err := codec.Decode([]byte(`{"version":99,"posts":[]}`))
	assert.ErrorIs(t, err, codec.ErrVersion)

	_, err = codec.Decode([]byte(`{"version":1,"posts":[{"id":"a","content":{"kind":"text","data":{"body":"x"}},"rules":[{"when":{"kind":"else"},"to":"ghost"}]}]}`))
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = codec.Decode([]byte(`{"version":1,"posts":[{"id":"a","content":{"kind":"hologram","data":{}}}]}`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = codec.Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecode_DoesNotTouchFiles(t *testing.T) {
	data := []byte(`{"version":1,"root":"p","posts":[{"id":"p","content":{"kind":"image","data":{"path":"/nonexistent/cat.png"}}}]}`)
	g, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent/cat.png", g.Root().Content.Source())
}

func TestEncodePublic_OmitsToken(t *testing.T) {
	g := tests.SampleGraph(t)

	data, err := codec.EncodePublic(g)
	require.NoError(t, err)
	assert.NotContains(t, string(data), g.Token)

	back, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, back.Token)
	assert.Equal(t, g.Len(), back.Len())
}
