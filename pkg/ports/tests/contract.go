// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store ports.StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "start")
		state.History = append(state.History, "menu")
		state.CurrentPostID = "menu"
		state.Consume("menu", "abcdefghij")

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "menu", loaded.CurrentPostID)
		assert.Equal(t, []string{"start", "menu"}, loaded.History)
		assert.True(t, loaded.ConsumedOn("menu").Has("abcdefghij"))
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.CurrentPostID = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.CurrentPostID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "start"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "start"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "start"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// SampleGraph builds a small graph exercising every rule kind, a self loop
// and two rules sharing one target.
func SampleGraph(t *testing.T) *domain.Graph {
	t.Helper()

	g := domain.NewGraph("123456:bot-token")
	start, err := g.NewPost("start", domain.Text{Body: "Hello"})
	require.NoError(t, err)
	ask, err := g.NewPost("ask", domain.Text{Body: "Ready?"})
	require.NoError(t, err)
	set, err := domain.NewButtonSet("Pick", "Left", "Right")
	require.NoError(t, err)
	menu, err := g.NewPost("menu", *set)
	require.NoError(t, err)
	end, err := g.NewPost("end", domain.Document{File: domain.File{Path: "res/manual.pdf"}})
	require.NoError(t, err)

	require.NoError(t, start.AddNext(ask, domain.Immediate()))
	require.NoError(t, ask.AddNext(menu, domain.Exact("yes")))
	require.NoError(t, ask.AddNext(end, domain.Keyword("bye")))
	require.NoError(t, ask.AddNext(ask, domain.Else()))
	for _, b := range set.Buttons {
		require.NoError(t, menu.AddButtonNext(end, b))
	}
	return g
}

// RunGraphStoreContract verifies a GraphStore round-trips graphs with full
// fidelity, including reference identity of shared and cyclic targets.
func RunGraphStoreContract(t *testing.T, store ports.GraphStore) {
	ctx := context.Background()

	t.Run("Load Missing", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-graph")
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Round Trip", func(t *testing.T) {
		g := SampleGraph(t)
		require.NoError(t, store.Save(ctx, "sample", g))

		loaded, err := store.Load(ctx, "sample")
		require.NoError(t, err)

		assert.Equal(t, g.Token, loaded.Token)
		assert.Equal(t, g.Len(), loaded.Len())
		require.NotNil(t, loaded.Root())
		assert.Equal(t, "start", loaded.Root().ID)

		ask, ok := loaded.Post("ask")
		require.True(t, ok)
		rules := ask.Rules()
		require.Len(t, rules, 3)
		assert.Same(t, ask, rules[2].Target, "self loop must point at the same instance")

		menu, _ := loaded.Post("menu")
		end, _ := loaded.Post("end")
		mrules := menu.Rules()
		require.Len(t, mrules, 2)
		assert.Same(t, end, mrules[0].Target)
		assert.Same(t, mrules[0].Target, mrules[1].Target, "shared target must not be duplicated")

		set, ok := menu.Content.(domain.ButtonSet)
		require.True(t, ok)
		orig, _ := g.Post("menu")
		assert.Equal(t, orig.Content, set)
	})
}
