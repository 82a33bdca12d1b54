package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/akolanti/DocRAG/internal/app"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newIngestCommand(opts *rootOptions) *cobra.Command {
	var noProgress bool
	cmd := &cobra.Command{
		Use:   "ingest <pattern>...",
		Short: "Ingest files matching glob patterns",
		Long: `Ingest every supported file (.pdf, .docx, .txt, .md) matching the patterns.
Patterns support ** for recursive matching.

Examples:
  docrag ingest handbook.pdf
  docrag ingest "docs/**/*.md" "contracts/*.pdf"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported files match %s", strings.Join(args, " "))
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				return runIngest(cmd, a, files, !noProgress)
			})
		},
	}
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

// expandPatterns resolves glob patterns to a sorted, de-duplicated list of supported files.
func expandPatterns(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !slices.Contains(ingest.SupportedExtensions(), strings.ToLower(filepath.Ext(m))) {
				continue
			}
			if info, err := os.Stat(m); err != nil || !info.Mode().IsRegular() {
				continue
			}
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

func runIngest(cmd *cobra.Command, a *app.App, files []string, showProgress bool) error {
	out := cmd.OutOrStdout()
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Ingesting"),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(cmd.ErrOrStderr()) }),
		)
	}

	results := make([]commonModels.IngestResult, len(files))
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(max(1, a.Settings.Server.Concurrency))
	for i, path := range files {
		g.Go(func() error {
			results[i] = a.Service.IngestDocument(cmd.Context(), rag.IngestRequest{Path: path})
			if bar != nil {
				mu.Lock()
				_ = bar.Add(1)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Status == commonModels.StatusCompleted {
			printf(out, "  ok      %-40s %4d chunks\n", truncate(r.Filename, 40), r.TotalChunks)
			continue
		}
		failed++
		printf(out, "  failed  %-40s %s\n", truncate(r.Filename, 40), r.Error)
	}
	stats := a.Index.Stats()
	printf(out, "\nIngested %d of %d files. Index holds %d vectors from %d documents.\n",
		len(files)-failed, len(files), stats.TotalVectors, stats.TotalDocuments)
	if failed == len(files) {
		return fmt.Errorf("no file could be ingested")
	}
	return nil
}
