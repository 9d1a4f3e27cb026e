package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

var (
	searchJSON    bool
	searchContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the ingested library",
	Long: `Performs hybrid search across all ingested books.
Combines keyword (BM25) and semantic (vector) search, optionally
re-scored by a cross-encoder, and gates the results for relevance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchContext, "show-context", false, "print the assembled context block")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	results, err := retrievalService.Retrieve(ctx, query)
	if errors.Is(err, domain.ErrNoRelevantContext) {
		cmd.Println("No relevant passages found in the library for this query.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	if searchContext {
		return outputSearchContext(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchResult is the JSON output shape for one passage.
type searchResult struct {
	ChunkID  string  `json:"chunk_id"`
	Book     string  `json:"book"`
	Section  string  `json:"section"`
	Topic    string  `json:"topic"`
	Page     int     `json:"page"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
	Text     string  `json:"text"`
	Citation string  `json:"citation"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RankedPassage) error {
	out := make([]searchResult, len(results))
	for i, r := range results {
		out[i] = searchResult{
			ChunkID:  r.Passage.ChunkID,
			Book:     r.Passage.BookName,
			Section:  r.Passage.SectionTitle,
			Topic:    r.Passage.Topic,
			Page:     r.Passage.PageNumber,
			Score:    r.Score,
			Source:   string(r.Source),
			Text:     r.Passage.Text,
			Citation: r.Passage.Citation(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchContext(cmd *cobra.Command, results []domain.RankedPassage) error {
	body, citations := retrievalService.FormatContext(results)
	cmd.Println(body)
	cmd.Println()
	cmd.Println(citations)
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RankedPassage) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Passage.Citation(), results[i].Score)

		snippet := results[i].Passage.Text
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}

	return nil
}
