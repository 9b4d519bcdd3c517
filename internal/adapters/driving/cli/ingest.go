package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

var (
	ingestWatch     bool
	ingestDebounce  time.Duration
	ingestFormat    string
	ingestWorkers   int
	ingestChunkSize int
	ingestOverlap   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <source>...",
	Short: "Index documents from one or more sources",
	Long: `Extracts text from every readable document in each source, splits it
into overlapping word chunks, embeds the chunks and uploads them to the
index store.

Sources:
  ./docs                   local directory (same as dir:./docs)
  github:owner/repo[@ref]  GitHub repository contents
  gdrive:<folder-id>       Google Drive folder

A document that fails is reported and skipped; the rest of the batch
continues. The command fails only when every document failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest local directories when files change")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", 2*time.Second, "quiet period before re-ingesting")
	ingestCmd.Flags().StringVarP(&ingestFormat, "format", "f", "text", "report format: text, json or yaml")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "documents processed concurrently (0 = configured)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "words per chunk (0 = configured)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "words shared by adjacent chunks (-1 = configured)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	switch ingestFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, ingestFormat)
	}

	ctx := commandContext(cmd)

	needs := app.Needs{Ingest: true}
	if ingestFormat == "text" {
		needs.Progress = func(r domain.DocumentResult) {
			if r.OK() {
				logger.Debug("ingested %s: %d/%d chunks", r.Name, r.ChunksUploaded, r.ChunksTotal)
			} else {
				logger.Warn("failed %s: %v", r.Name, r.Err)
			}
		}
	}

	pipeline, err := openPipeline(ctx, needs, applyIngestFlags)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	// 1. Resolve every source before doing any work
	sources := make([]driven.DocumentSource, 0, len(args))
	for _, ref := range args {
		src, err := pipeline.OpenSource(ctx, ref)
		if err != nil {
			return fmt.Errorf("source %s: %w", ref, err)
		}
		sources = append(sources, src)
	}

	// 2. Ingest each source once
	var lastErr error
	failedAll := true
	for _, src := range sources {
		ok, err := ingestOnce(ctx, cmd, pipeline, src)
		if err != nil {
			return err
		}
		if ok {
			failedAll = false
		} else {
			lastErr = fmt.Errorf("every document in %s failed", src.Name())
		}
	}

	if !ingestWatch {
		if failedAll && lastErr != nil {
			return lastErr
		}
		return nil
	}

	// 3. Watch mode
	return watchSources(ctx, cmd, pipeline, sources)
}

func applyIngestFlags(s *domain.AppSettings) {
	if ingestWorkers > 0 {
		s.Ingest.Workers = ingestWorkers
	}
	if ingestChunkSize > 0 {
		s.Chunking.Size = ingestChunkSize
	}
	if ingestOverlap >= 0 {
		s.Chunking.Overlap = ingestOverlap
	}
}

// ingestOnce runs one source and prints its report. It returns false when
// the source had documents and all of them failed.
func ingestOnce(ctx context.Context, cmd *cobra.Command, p *app.Pipeline, src driven.DocumentSource) (bool, error) {
	logger.Info("Ingesting %s", src.Name())

	report, err := p.Ingest.IngestSource(ctx, src)
	if err != nil {
		return false, fmt.Errorf("ingest %s: %w", src.Name(), err)
	}

	if err := printReport(cmd, src.Name(), report); err != nil {
		return false, err
	}

	allFailed := len(report.Documents) > 0 && report.Succeeded() == 0
	return !allFailed, nil
}

// watchSources re-ingests a source after its files stop changing for the
// debounce period. Sources that cannot be watched are skipped.
func watchSources(ctx context.Context, cmd *cobra.Command, p *app.Pipeline, sources []driven.DocumentSource) error {
	changes := make(chan driven.DocumentSource)
	watching := 0
	for _, src := range sources {
		w, ok := src.(driven.Watcher)
		if !ok {
			logger.Warn("%s cannot be watched, skipping", src.Name())
			continue
		}
		events, err := w.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch %s: %w", src.Name(), err)
		}
		watching++

		go func(src driven.DocumentSource) {
			for name := range events {
				logger.Debug("change in %s: %s", src.Name(), name)
				select {
				case changes <- src:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}

	if watching == 0 {
		return errors.New("no watchable sources")
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")

	pending := make(map[driven.DocumentSource]bool)
	timer := time.NewTimer(ingestDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case src := <-changes:
			pending[src] = true
			timer.Reset(ingestDebounce)
		case <-timer.C:
			for src := range pending {
				if _, err := ingestOnce(ctx, cmd, p, src); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					logger.Error("%v", err)
				}
			}
			clear(pending)
		}
	}
}

// reportView is the serialised form of an ingest report.
type reportView struct {
	Source        string                `json:"source" yaml:"source"`
	Documents     int                   `json:"documents" yaml:"documents"`
	Succeeded     int                   `json:"succeeded" yaml:"succeeded"`
	Uploaded      int                   `json:"uploaded" yaml:"uploaded"`
	SkippedChunks int                   `json:"skipped_chunks" yaml:"skipped_chunks"`
	Duration      string                `json:"duration" yaml:"duration"`
	Failures      []documentFailureView `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type documentFailureView struct {
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
}

func newReportView(source string, r *domain.IngestReport) reportView {
	v := reportView{
		Source:        source,
		Documents:     len(r.Documents),
		Succeeded:     r.Succeeded(),
		Uploaded:      r.TotalUploaded(),
		SkippedChunks: r.TotalChunkFailures(),
		Duration:      r.Duration().Round(time.Millisecond).String(),
	}
	for _, f := range r.Failed() {
		v.Failures = append(v.Failures, documentFailureView{Name: f.Name, Error: f.Err.Error()})
	}
	return v
}

func printReport(cmd *cobra.Command, source string, r *domain.IngestReport) error {
	view := newReportView(source, r)

	switch ingestFormat {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Print(string(data))
	default:
		cmd.Printf("%s: %d/%d documents, %d records uploaded", source, view.Succeeded, view.Documents, view.Uploaded)
		if view.SkippedChunks > 0 {
			cmd.Printf(", %d chunks skipped", view.SkippedChunks)
		}
		cmd.Printf(" (%s)\n", view.Duration)
		for _, f := range view.Failures {
			cmd.Printf("  failed: %s: %s\n", f.Name, f.Error)
		}
	}
	return nil
}
