package cli

import (
	"fmt"
	"os"

	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/transport"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docintel",
		Short: "Extract key/value fields from form documents",
		Long: `docintel runs a form document through the configured document analysis
service and stores every extracted key/value pair in Cosmos DB.

Configuration is read from the environment and an optional .env file.`,
		Version:       transport.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env-file", ".env", "Path to a .env file with configuration overrides")
	root.AddCommand(newAnalyzeCmd())

	return root
}

// Execute runs the docintel command line
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithComponent("cli").WithError(err).Error("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
