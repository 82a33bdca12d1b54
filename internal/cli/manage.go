package cli

import (
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocRAG/internal/app"
	"github.com/akolanti/DocRAG/internal/mcpServer"
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a.Service.Stats(cmd.Context()))
			})
		},
	}
}

func newClearCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every vector and document from the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the index without --yes")
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				if err := a.Service.ClearIndex(cmd.Context()); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Vector store cleared successfully\n")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func newMCPCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve search, ask and stats as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				s, err := mcpServer.NewServer(a.Service)
				if err != nil {
					return err
				}
				return s.Run(cmd.Context())
			})
		},
	}
}
