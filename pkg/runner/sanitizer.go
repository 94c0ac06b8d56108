package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EnvMaxInputSize overrides DefaultMaxInputSize, in bytes.
const EnvMaxInputSize = "SCENERY_MAX_INPUT_SIZE"

// DefaultMaxInputSize bounds one user reply.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput rejects oversized or malformed replies and drops control
// characters other than newline, tab and carriage return. Oversized input is
// refused rather than truncated.
func SanitizeInput(input string) (string, error) {
	if limit := MaxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxInputSize returns the reply size limit in bytes.
func MaxInputSize() int {
	if n, err := strconv.Atoi(os.Getenv(EnvMaxInputSize)); err == nil && n > 0 {
		return n
	}
	return DefaultMaxInputSize
}
