package cli

import (
	"github.com/spf13/cobra"

	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the index store",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of indexed records",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

func init() {
	indexCmd.AddCommand(indexStatsCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	pipeline, err := openPipeline(ctx, app.Needs{}, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	count, err := pipeline.Index.Count(ctx)
	if err != nil {
		return err
	}

	settings := pipeline.Settings.Index
	cmd.Printf("Index:   %s\n", settings.Kind)
	switch settings.Kind {
	case domain.IndexSQLite:
		cmd.Printf("Data:    %s\n", settings.DataDir)
	case domain.IndexWeaviate:
		cmd.Printf("Host:    %s (class %s)\n", settings.WeaviateHost, settings.WeaviateClass)
	}
	cmd.Printf("Records: %d\n", count)
	return nil
}
