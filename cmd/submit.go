package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/registry"
)

var submitType string

var submitCmd = &cobra.Command{
	Use:   "submit <url>",
	Short: "Register an artifact without entering the TUI",
	Long: `Submit a source URL to the registry for ingestion and rating.

Transient registry failures are retried with exponential backoff;
rejections (invalid URL, auth failure, duplicate, failed ingestion)
abort immediately.

Example:
  curio submit --type model https://huggingface.co/bert-base-uncased`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitType, "type", "t", "model",
		"artifact type: model, dataset, or code")
}

func runSubmit(_ *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	artifactType, err := registry.ParseArtifactType(submitType)
	if err != nil {
		return err
	}

	if os.Getenv("CURIO_DEBUG") != "" || debugFlag {
		cleanup, initErr := log.Init(cfg.Logging.Path)
		if initErr != nil {
			return fmt.Errorf("initializing logging: %w", initErr)
		}
		defer cleanup()
	}

	services, err := buildServices()
	if err != nil {
		return fmt.Errorf("connecting to registry: %w", err)
	}

	// Generous ceiling covering the full retry schedule
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("Submitting %s (%s)...\n", args[0], artifactType)
	artifact, err := services.Submitter.Submit(ctx, registry.SubmissionRequest{
		Type: artifactType,
		URL:  args[0],
	})
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	name := artifact.Metadata.Name
	if name == "" {
		name = artifact.Metadata.ID
	}
	fmt.Printf("Registered %s (id: %s)\n", name, artifact.Metadata.ID)
	return nil
}
