package main

import (
	"os"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Play the conversation in the terminal",
	Long: `Starts the project's conversation on standard input and output. A stored
session is resumed unless --fresh is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunSession(opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&opts.JSON, "json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().StringVarP(&opts.SessionID, "session", "s", "", "Session id to run (default \"local\")")
	runCmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "Restart the session at the root post")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Args = runCmd.Args
}
