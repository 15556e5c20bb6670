package cmd

import (
	"github.com/ecolens/binscan/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Waste classification evaluation tools",
		Long: `Evaluation tools for measuring the accuracy of LLM-based waste
classification against labeled datasets.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())

	return cmd
}
