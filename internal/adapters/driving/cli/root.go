// Package cli provides the ragapp command line. It implements a driving
// adapter over the ingestion and answering services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// PipelineBuilder creates the services a command needs.
type PipelineBuilder func(ctx context.Context, settings *domain.AppSettings, needs app.Needs) (*app.Pipeline, error)

// Dependencies are the collaborators wired in by main.
type Dependencies struct {
	// Settings resolves and persists configuration.
	Settings driving.SettingsService

	// ConfigPath is shown by "config path".
	ConfigPath string

	// Build creates pipelines. Defaults to app.Build.
	Build PipelineBuilder
}

var (
	settingsService driving.SettingsService
	configPath      string
	buildPipeline   PipelineBuilder = app.Build

	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "ragapp",
	Short: "Ask questions about your documents",
	Long: `ragapp indexes documents from local directories, GitHub repositories
and Google Drive folders, then answers questions using the most relevant
passages as context.

Typical use:
  ragapp config set llm.provider openai
  ragapp ingest ./docs
  ragapp ask "How do I rotate the signing keys?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with provider keys (ignored if missing)")
}

// SetDependencies configures the services used by every command.
func SetDependencies(deps Dependencies) {
	settingsService = deps.Settings
	configPath = deps.ConfigPath
	if deps.Build != nil {
		buildPipeline = deps.Build
	}
}

// SetVersion sets the version reported by "ragapp version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadEnvFile reads provider keys from a dotenv file. Variables already in
// the environment win. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// openPipeline resolves settings and builds the services for one command.
// adjust, if set, may override settings from command flags.
func openPipeline(ctx context.Context, needs app.Needs, adjust func(*domain.AppSettings)) (*app.Pipeline, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if buildPipeline == nil {
		return nil, errors.New("pipeline builder not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if adjust != nil {
		adjust(settings)
	}

	return buildPipeline(ctx, settings, needs)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
