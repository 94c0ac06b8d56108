package middleware_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/scenery/pkg/adapters/memory"
	"github.com/aretw0/scenery/pkg/persistence/middleware"
	"github.com/aretw0/scenery/pkg/ports/tests"
)

func TestPassphraseMiddleware_Contract(t *testing.T) {
	mw := middleware.NewPassphraseMiddleware("correct horse battery staple")
	tests.RunGraphStoreContract(t, mw(memory.NewGraphStore()))
}

func TestPassphraseMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlyingStore := memory.NewGraphStore()
	secureStore := middleware.NewPassphraseMiddleware("correct horse battery staple")(underlyingStore)

	g := tests.SampleGraph(t)
	token := g.Token
	if err := secureStore.Save(ctx, "bot", g); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx, "bot")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if !strings.HasPrefix(stored.Token, "sealed:v2:") || strings.Contains(stored.Token, token) {
		t.Fatalf("Expected a sealed token, found: %v", stored.Token)
	}

	loaded, err := secureStore.Load(ctx, "bot")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.Token != token {
		t.Errorf("Expected token %q, got %q", token, loaded.Token)
	}
}

func TestPassphraseMiddleware_FreshSaltPerSave(t *testing.T) {
	ctx := context.Background()
	underlyingStore := memory.NewGraphStore()
	secureStore := middleware.NewPassphraseMiddleware("pass")(underlyingStore)

	var sealed []string
	for _, name := range []string{"one", "two"} {
		if err := secureStore.Save(ctx, name, tests.SampleGraph(t)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		stored, err := underlyingStore.Load(ctx, name)
		if err != nil {
			t.Fatalf("Underlying load failed: %v", err)
		}
		sealed = append(sealed, stored.Token)
	}
	if sealed[0] == sealed[1] {
		t.Fatal("Expected distinct sealed tokens for the same passphrase")
	}
}

func TestPassphraseMiddleware_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	underlyingStore := memory.NewGraphStore()

	if err := middleware.NewPassphraseMiddleware("right")(underlyingStore).Save(ctx, "bot", tests.SampleGraph(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := middleware.NewPassphraseMiddleware("wrong")(underlyingStore).Load(ctx, "bot")
	if !errors.Is(err, middleware.ErrUnseal) {
		t.Fatalf("Expected ErrUnseal, got %v", err)
	}
}

func TestPassphraseMiddleware_RejectsPlainToken(t *testing.T) {
	ctx := context.Background()
	underlyingStore := memory.NewGraphStore()
	if err := underlyingStore.Save(ctx, "bot", tests.SampleGraph(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := middleware.NewPassphraseMiddleware("pass")(underlyingStore).Load(ctx, "bot")
	if !errors.Is(err, middleware.ErrPlainToken) {
		t.Fatalf("Expected ErrPlainToken, got %v", err)
	}
}
