package cli

import (
	"os"
	"strconv"
	"strings"
)

// Options contains the configuration shared by every command.
type Options struct {
	// Dir is the project directory holding scenery.yaml, res/ and bin/.
	Dir string

	LogLevel string
	Debug    bool
	JSON     bool

	SessionID string
	Fresh     bool

	// RedisURL selects the redis state store, e.g. redis://localhost:6379/0.
	RedisURL string

	// Key is the passphrase sealing the token of compiled graphs.
	Key string

	ButtonPolicy  string
	MaxRoundWidth int
	FFmpeg        string
	FFprobe       string
}

// FromEnv fills unset options from SCENERY_* variables.
func (o *Options) FromEnv() {
	setString(&o.RedisURL, "SCENERY_REDIS_URL")
	setString(&o.Key, "SCENERY_KEY")
	setString(&o.LogLevel, "SCENERY_LOG_LEVEL")
	setString(&o.ButtonPolicy, "SCENERY_BUTTON_POLICY")
	setString(&o.FFmpeg, "SCENERY_FFMPEG")
	setString(&o.FFprobe, "SCENERY_FFPROBE")
	if o.MaxRoundWidth == 0 {
		if n, err := strconv.Atoi(os.Getenv("SCENERY_MAX_ROUND_WIDTH")); err == nil {
			o.MaxRoundWidth = n
		}
	}
}

func setString(dst *string, env string) {
	if *dst != "" {
		return
	}
	*dst = strings.TrimSpace(os.Getenv(env))
}
