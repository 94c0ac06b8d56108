package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports"
	"golang.org/x/crypto/argon2"
)

// passphrasePrefix marks a token sealed with a passphrase-derived key. The
// payload is salt || nonce || ciphertext.
const passphrasePrefix = "sealed:v2:"

// Argon2id parameters, as recommended for interactive use.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltSize     = 16
)

// ErrUnseal is returned when a sealed token cannot be opened with the
// configured passphrase.
var ErrUnseal = errors.New("token cannot be unsealed with this passphrase")

// DeriveKey stretches passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, 32)
}

type passphraseMiddleware struct {
	next       ports.GraphStore
	passphrase string
}

// NewPassphraseMiddleware seals the platform token with a key derived from
// passphrase. Every save draws a fresh salt and stores it with the token.
func NewPassphraseMiddleware(passphrase string) Middleware {
	if passphrase == "" {
		panic("passphrase must not be empty")
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &passphraseMiddleware{next: next, passphrase: passphrase}
	}
}

func (m *passphraseMiddleware) Save(ctx context.Context, name string, g *domain.Graph) error {
	if g == nil || g.Token == "" {
		return m.next.Save(ctx, name, g)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to draw salt: %w", err)
	}
	ciphertext, err := encrypt([]byte(g.Token), DeriveKey(m.passphrase, salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	sealed := *g
	sealed.Token = passphrasePrefix + base64.StdEncoding.EncodeToString(append(salt, ciphertext...))
	return m.next.Save(ctx, name, &sealed)
}

func (m *passphraseMiddleware) Load(ctx context.Context, name string) (*domain.Graph, error) {
	g, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if g.Token == "" {
		return g, nil
	}

	encoded, ok := strings.CutPrefix(g.Token, passphrasePrefix)
	if !ok {
		return nil, ErrPlainToken
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	if len(payload) < saltSize {
		return nil, fmt.Errorf("%w: payload too short", ErrUnseal)
	}

	salt, ciphertext := payload[:saltSize], payload[saltSize:]
	plainText, err := decrypt(ciphertext, DeriveKey(m.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnseal, err)
	}

	g.Token = string(plainText)
	return g, nil
}
