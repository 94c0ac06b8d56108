package matcher_test

import (
	"context"
	"testing"

	"github.com/aretw0/scenery/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		pattern string
		keyword bool
		want    bool
	}{
		{"exact equal", "yes", "yes", false, true},
		{"exact folds case", "YES", "yes", false, true},
		{"exact trims", "  yes\n", "yes", false, true},
		{"exact rejects extra words", "yes please", "yes", false, false},
		{"exact normalizes composed forms", "cafe\u0301", "caf\u00e9", false, true},
		{"keyword in sentence", "I want a black cat!", "cat", true, true},
		{"keyword is word bounded", "catalog", "cat", true, false},
		{"keyword phrase contiguous", "please talk to a human now", "talk to", true, true},
		{"keyword phrase not contiguous", "talk slowly to me", "talk to", true, false},
		{"keyword empty pattern", "anything", "", true, false},
		{"keyword case folded", "Hello THERE", "there", true, true},
	}

	m := matcher.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(context.Background(), tt.reply, tt.pattern, tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_KeepCase(t *testing.T) {
	m := &matcher.Matcher{KeepCase: true}
	got, err := m.Match(context.Background(), "YES", "yes", false)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMatcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := matcher.New().Match(ctx, "yes", "yes", false)
	assert.ErrorIs(t, err, context.Canceled)
}
