package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports"
)

// sealedPrefix marks a token encrypted by this middleware.
const sealedPrefix = "sealed:v1:"

// ErrPlainToken is returned when a stored graph carries an unencrypted token.
var ErrPlainToken = errors.New("stored graph token is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.GraphStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the platform token
// of every stored graph with AES-GCM. Posts are stored as they are.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, g *domain.Graph) error {
	if g == nil || g.Token == "" {
		return m.next.Save(ctx, name, g)
	}

	ciphertext, err := encrypt([]byte(g.Token), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	// A shallow copy shares the posts; only the token differs and the
	// caller's graph is left untouched.
	sealed := *g
	sealed.Token = sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext)

	return m.next.Save(ctx, name, &sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) (*domain.Graph, error) {
	g, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if g.Token == "" {
		return g, nil
	}

	encoded, ok := strings.CutPrefix(g.Token, sealedPrefix)
	if !ok {
		return nil, ErrPlainToken
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	g.Token = string(plainText)
	return g, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
