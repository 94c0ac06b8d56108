package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// literal matches exactly or by substring, and counts calls.
type literal struct {
	calls int
	err   error
}

func (l *literal) Match(_ context.Context, reply, pattern string, keyword bool) (bool, error) {
	l.calls++
	if l.err != nil {
		return false, l.err
	}
	if keyword {
		return strings.Contains(reply, pattern), nil
	}
	return reply == pattern, nil
}

func newPosts(t *testing.T, ids ...string) (*domain.Graph, map[string]*domain.Post) {
	t.Helper()
	g := domain.NewGraph("token")
	posts := make(map[string]*domain.Post, len(ids))
	for _, id := range ids {
		p, err := g.NewPost(id, domain.Text{Body: id})
		require.NoError(t, err)
		posts[id] = p
	}
	return g, posts
}

func TestPost_Next_NoInputOnlyUnconditional(t *testing.T) {
	_, p := newPosts(t, "start", "a", "b", "c")
	require.NoError(t, p["start"].AddNext(p["a"], domain.Exact("yes")))
	require.NoError(t, p["start"].AddNext(p["b"], domain.Keyword("maybe")))
	require.NoError(t, p["start"].AddNext(p["c"], domain.Else()))

	m := &literal{}
	next, err := p["start"].Next(context.Background(), m, domain.NoInput(), nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Zero(t, m.calls, "matcher must not be consulted without input")
}

func TestPost_Next_ImmediateWinsRegardlessOfInput(t *testing.T) {
	_, p := newPosts(t, "start", "a", "b")
	require.NoError(t, p["start"].AddNext(p["a"], domain.Exact("yes")))
	require.NoError(t, p["start"].AddNext(p["b"], domain.Immediate()))

	ctx := context.Background()
	m := &literal{}

	next, err := p["start"].Next(ctx, m, domain.NoInput(), nil)
	require.NoError(t, err)
	assert.Same(t, p["b"], next)

	// An earlier matching rule still wins: first hit in list order.
	next, err = p["start"].Next(ctx, m, domain.TextInput("yes"), nil)
	require.NoError(t, err)
	assert.Same(t, p["a"], next)

	next, err = p["start"].Next(ctx, m, domain.TextInput("no"), nil)
	require.NoError(t, err)
	assert.Same(t, p["b"], next)
}

func TestPost_Next_ImmediateShadowsLaterRules(t *testing.T) {
	_, p := newPosts(t, "start", "a", "b")
	require.NoError(t, p["start"].AddNext(p["a"], domain.Immediate()))
	require.NoError(t, p["start"].AddNext(p["b"], domain.Exact("yes")))

	m := &literal{}
	next, err := p["start"].Next(context.Background(), m, domain.TextInput("yes"), nil)
	require.NoError(t, err)
	assert.Same(t, p["a"], next)
	assert.Zero(t, m.calls)
}

func TestPost_Next_ElseIsOrderDependent(t *testing.T) {
	ctx := context.Background()

	t.Run("else last acts as fallback", func(t *testing.T) {
		_, p := newPosts(t, "q", "yes", "other")
		require.NoError(t, p["q"].AddNext(p["yes"], domain.Exact("yes")))
		require.NoError(t, p["q"].AddNext(p["other"], domain.Else()))

		next, err := p["q"].Next(ctx, &literal{}, domain.TextInput("yes"), nil)
		require.NoError(t, err)
		assert.Same(t, p["yes"], next)

		next, err = p["q"].Next(ctx, &literal{}, domain.TextInput("nope"), nil)
		require.NoError(t, err)
		assert.Same(t, p["other"], next)
	})

	t.Run("else first preempts later rules", func(t *testing.T) {
		_, p := newPosts(t, "q", "yes", "other")
		require.NoError(t, p["q"].AddNext(p["other"], domain.Else()))
		require.NoError(t, p["q"].AddNext(p["yes"], domain.Exact("yes")))

		next, err := p["q"].Next(ctx, &literal{}, domain.TextInput("yes"), nil)
		require.NoError(t, err)
		assert.Same(t, p["other"], next)
	})

	t.Run("else ignores missing input", func(t *testing.T) {
		_, p := newPosts(t, "q", "other")
		require.NoError(t, p["q"].AddNext(p["other"], domain.Else()))

		next, err := p["q"].Next(ctx, &literal{}, domain.NoInput(), nil)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

func TestPost_Next_KeywordAndExact(t *testing.T) {
	_, p := newPosts(t, "q", "exact", "kw")
	require.NoError(t, p["q"].AddNext(p["exact"], domain.Exact("cat")))
	require.NoError(t, p["q"].AddNext(p["kw"], domain.Keyword("cat")))

	tests := []struct {
		reply string
		want  *domain.Post
	}{
		{"cat", p["exact"]},
		{"a black cat", p["kw"]},
		{"dog", nil},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			next, err := p["q"].Next(context.Background(), &literal{}, domain.TextInput(tt.reply), nil)
			require.NoError(t, err)
			assert.Same(t, tt.want, next)
		})
	}
}

func TestPost_Next_MatcherErrorPropagates(t *testing.T) {
	_, p := newPosts(t, "q", "a")
	require.NoError(t, p["q"].AddNext(p["a"], domain.Exact("x")))

	boom := errors.New("matcher down")
	_, err := p["q"].Next(context.Background(), &literal{err: boom}, domain.TextInput("x"), nil)
	assert.ErrorIs(t, err, boom)

	_, err = p["q"].Next(context.Background(), nil, domain.TextInput("x"), nil)
	assert.ErrorIs(t, err, domain.ErrNoMatcher)
}

func TestPost_Next_SelfLoop(t *testing.T) {
	_, p := newPosts(t, "loop")
	require.NoError(t, p["loop"].AddNext(p["loop"], domain.Else()))

	next, err := p["loop"].Next(context.Background(), &literal{}, domain.TextInput("again"), nil)
	require.NoError(t, err)
	assert.Same(t, p["loop"], next)
}

func TestPost_ButtonRules(t *testing.T) {
	g := domain.NewGraph("")
	set, err := domain.NewButtonSet("Pick one", "Left", "Right")
	require.NoError(t, err)

	menu, err := g.NewPost("menu", *set)
	require.NoError(t, err)
	left, _ := g.NewPost("left", domain.Text{Body: "left"})
	right, _ := g.NewPost("right", domain.Text{Body: "right"})

	leftBtn, _ := set.Button("Left")
	rightBtn, _ := set.Button("Right")
	require.NoError(t, menu.AddButtonNext(left, leftBtn))
	require.NoError(t, menu.AddButtonNext(right, rightBtn))

	ctx := context.Background()

	t.Run("pressed button resolves", func(t *testing.T) {
		next, err := menu.Next(ctx, nil, domain.ButtonInput(rightBtn.CallbackID), nil)
		require.NoError(t, err)
		assert.Same(t, right, next)
	})

	t.Run("unknown id never resolves", func(t *testing.T) {
		next, err := menu.Next(ctx, nil, domain.ButtonInput("zzzzzzzzzz"), nil)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("consumed button is no longer in the live set", func(t *testing.T) {
		consumed := domain.Consumed{leftBtn.CallbackID: true}
		next, err := menu.Next(ctx, nil, domain.ButtonInput(leftBtn.CallbackID), consumed)
		require.NoError(t, err)
		assert.Nil(t, next)

		next, err = menu.Next(ctx, nil, domain.ButtonInput(rightBtn.CallbackID), consumed)
		require.NoError(t, err)
		assert.Same(t, right, next)
	})

	t.Run("text reply does not press buttons", func(t *testing.T) {
		next, err := menu.Next(ctx, nil, domain.TextInput(leftBtn.CallbackID), nil)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("registration checks the panel", func(t *testing.T) {
		err := menu.AddButtonNext(left, domain.NewButton("stranger"))
		assert.ErrorIs(t, err, domain.ErrUnknownButton)

		err = left.AddButtonNext(right, leftBtn)
		assert.ErrorIs(t, err, domain.ErrNotButtonPost)
	})
}

func TestPost_AddNext_ForeignGraph(t *testing.T) {
	_, a := newPosts(t, "a")
	_, b := newPosts(t, "b")

	err := a["a"].AddNext(b["b"], domain.Immediate())
	assert.ErrorIs(t, err, domain.ErrForeignPost)
	assert.True(t, a["a"].Terminal())
}
