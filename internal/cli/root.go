package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/DocRAG/internal/app"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCommand builds the docrag command tree. Output goes to the command's writer, logs to stderr.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "docrag",
		Short: "Ingest documents into a local vector index and query them",
		Long: `docrag works on the same index files as the HTTP server.

Example usage:
  docrag ingest "docs/**/*.pdf" notes.md   # Ingest files matching the patterns
  docrag query -q "refund policy"          # Nearest chunks for a query
  docrag ask -q "how are refunds issued?"  # Answer from the indexed documents
  docrag mcp                               # Serve the index as MCP tools on stdio`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger_i.SetLevel(os.Stderr, level)
		},
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "docrag.yaml", "config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newIngestCommand(opts),
		newQueryCommand(opts),
		newAskCommand(opts),
		newStatsCommand(opts),
		newClearCommand(opts),
		newMCPCommand(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads the config, builds the stack and closes it after fn returns.
func withApp(ctx context.Context, opts *rootOptions, fn func(a *app.App) error) error {
	settings, err := config.Load(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.Build(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer a.Close()
	return fn(a)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
