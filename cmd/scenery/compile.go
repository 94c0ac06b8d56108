package main

import (
	"fmt"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [dir]",
	Short: "Compile scenery.yaml into bin/obj.bin",
	Long: `Builds the graph from the script, converting media as needed, and stores it
in bin/obj.bin. With --key the platform token is sealed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cli.NewProject(opts, cli.NewLogger(opts)).Build(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Compiled graph written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
