package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binscan",
		Short: "Waste scanner with LLM-powered image classification",
		Long: `Binscan tells you which bin a photographed item belongs in.

Images come from file upload, drag-and-drop, a camera stream, or a URL; they
are classified by a remote scan endpoint or a built-in vision-LLM provider.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
