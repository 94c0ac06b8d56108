package main

import (
	"context"
	"fmt"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/aretw0/scenery/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the flow graph visualization",
	Long:  `Loads the project and outputs a Mermaid diagram (graph TD) of its posts and rules.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := cli.NewProject(opts, cli.NewLogger(opts)).LoadGraph(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
