package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/container"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// buildService wires the form service for a CLI run. Replaced in tests.
var buildService = func(ctx context.Context, cfg *config.Config, variant config.Variant) (service.FormService, func() error, error) {
	c, err := container.NewContainer(ctx, cfg, variant)
	if err != nil {
		return nil, nil, err
	}
	return c.Service(), c.Close, nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [document-url]",
		Short: "Analyse a form and store its fields",
		Long: `Analyse the form at the given URL, or at FORM_URL when no URL is given,
and store each extracted key/value pair as its own Cosmos DB record.

The extracted fields are printed to stdout as a JSON array.`,
		Example: `  # Analyse and store
  docintel analyze https://example.com/forms/application.pdf

  # Only print the extracted fields
  docintel analyze https://example.com/forms/application.pdf --dry-run

  # Print per-record persistence results as well
  docintel analyze --detail --env-file ./prod.env`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("dry-run", false, "Extract fields without storing them")
	cmd.Flags().Bool("detail", false, "Print the full outcome including per-record results")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	envFile, _ := cmd.Flags().GetString("env-file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	detail, _ := cmd.Flags().GetBool("detail")

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.Logger.SetOutput(cmd.ErrOrStderr())

	documentURL := cfg.FormURL
	if len(args) == 1 {
		documentURL = args[0]
	}
	if documentURL == "" {
		return errors.New("no document URL given and FORM_URL is not set")
	}

	variant := config.VariantFunction
	if dryRun {
		variant = config.VariantAnalyzeOnly
	}
	if err := cfg.Validate(variant); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	svc, closeFn, err := buildService(ctx, cfg, variant)
	if err != nil {
		return err
	}
	defer closeFn()

	log.WithFields(logrus.Fields{
		"url":     documentURL,
		"dry_run": dryRun,
	}).Info("Analysing document")

	var output interface{}
	if dryRun {
		fields, err := svc.ExtractFields(ctx, documentURL)
		if err != nil {
			return err
		}
		output = fields
	} else {
		outcome, err := svc.AnalyzeForm(ctx, documentURL)
		if err != nil {
			return err
		}
		if failed := outcome.FailedIndexes(); len(failed) > 0 {
			log.WithField("failed_indexes", failed).Warn("Some fields could not be stored")
		}
		output = outcome.Fields
		if detail {
			output = outcome
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
