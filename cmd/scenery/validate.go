package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/aretw0/scenery/internal/validator"
	"github.com/spf13/cobra"
)

var errInvalidGraph = errors.New("graph has errors")

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the graph for consistency",
	Long: `Loads the project and reports unreachable posts, shadowed rules, unbound
buttons and cycles of immediate transitions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		g, err := cli.NewProject(opts, cli.NewLogger(opts)).LoadGraph(context.Background())
		if err != nil {
			return err
		}

		findings := validator.Lint(g)
		out := cmd.OutOrStdout()
		for _, f := range findings {
			fmt.Fprintln(out, f)
		}

		if validator.HasErrors(findings) || (strict && len(findings) > 0) {
			return errInvalidGraph
		}
		fmt.Fprintf(out, "Graph is valid! %d posts.\n", g.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
