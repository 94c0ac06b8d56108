package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "scenery",
	Short: "Scenery plays scripted chat-bot conversations",
	Long: `Scenery turns a script of posts and transition rules into a running
conversation. Scripts are written in scenery.yaml next to a res/ directory
holding their media.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			opts.Dir = args[0]
		}
		if err := godotenv.Load(filepath.Join(opts.Dir, ".env")); err != nil {
			slog.Debug("no .env file loaded", "err", err)
		}
		opts.FromEnv()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Dir, "dir", ".", "Directory containing the Scenery project")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn or error (env SCENERY_LOG_LEVEL)")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging and lifecycle tracing")
	flags.StringVar(&opts.Key, "key", "", "Passphrase sealing the token of bin/obj.bin (env SCENERY_KEY)")
	flags.StringVar(&opts.RedisURL, "redis", "", "Redis URL for session state (env SCENERY_REDIS_URL)")
	flags.StringVar(&opts.ButtonPolicy, "buttons", "", "Pressed button policy: keep or consume (env SCENERY_BUTTON_POLICY)")
	flags.IntVar(&opts.MaxRoundWidth, "max-round-width", 0, "Clamp round videos to this width (env SCENERY_MAX_ROUND_WIDTH)")
	flags.StringVar(&opts.FFmpeg, "ffmpeg", "", "ffmpeg executable (env SCENERY_FFMPEG)")
	flags.StringVar(&opts.FFprobe, "ffprobe", "", "ffprobe executable (env SCENERY_FFPROBE)")
}
