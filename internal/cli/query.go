package cli

import (
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/app"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/spf13/cobra"
)

func newQueryCommand(opts *rootOptions) *cobra.Command {
	var (
		query     string
		k         int
		threshold float64
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the chunks most similar to a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("query is required (-q)")
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				results, err := a.Service.Query(cmd.Context(), query, utils.Clamp(k, config.DefaultSearchResults, 1, config.MaxSearchResults), threshold)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(results)
				}
				if len(results) == 0 {
					printf(out, "No results.\n")
					return nil
				}
				for i, r := range results {
					printf(out, "%d. [%.3f] %s (chunk %d)\n   %s\n", i+1, r.SimilarityScore, r.DocumentFilename, r.ChunkIndex, truncate(r.Content, 200))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "query text")
	cmd.Flags().IntVarP(&k, "num-results", "k", config.DefaultSearchResults, "number of results (1-20)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	var (
		question       string
		k              int
		threshold      float64
		conversationId string
	)
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a question from the indexed documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" {
				return fmt.Errorf("question is required (-q)")
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				ans, err := a.Service.Answer(cmd.Context(), rag.AnswerRequest{
					Question:            question,
					K:                   utils.Clamp(k, config.DefaultContextDocs, 1, config.MaxContextDocs),
					SimilarityThreshold: threshold,
					ConversationId:      conversationId,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printf(out, "%s\n", ans.AnswerText)
				if ans.LLMError != "" {
					printf(cmd.ErrOrStderr(), "completion failed, answer built from context: %s\n", ans.LLMError)
				}
				if len(ans.Sources) > 0 {
					printf(out, "\nSources:\n")
					for _, s := range ans.Sources {
						printf(out, "  - %s (chunk %d, %.3f)\n", s.DocumentFilename, s.ChunkIndex, s.SimilarityScore)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question text")
	cmd.Flags().IntVarP(&k, "context-docs", "k", config.DefaultContextDocs, "number of context chunks (1-10)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score")
	cmd.Flags().StringVar(&conversationId, "conversation", "", "conversation id to continue")
	return cmd
}
