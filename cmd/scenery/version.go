package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/scenery"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scenery",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scenery version %s\n", strings.TrimSpace(scenery.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
