package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library contents and ingest history",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if passageStore == nil || runStore == nil {
		return errors.New("stores not configured")
	}

	ctx := context.Background()
	passages, err := passageStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load passages: %w", err)
	}

	counts := make(map[string]int)
	var books []string
	for _, p := range passages {
		if counts[p.BookName] == 0 {
			books = append(books, p.BookName)
		}
		counts[p.BookName]++
	}

	if len(books) == 0 {
		cmd.Println("Library is empty. Run 'psyra ingest' to add a book.")
		return nil
	}

	cmd.Printf("Library: %d books, %d passages\n\n", len(books), len(passages))
	for _, book := range books {
		cmd.Printf("  %-40s %d passages\n", book, counts[book])
	}

	reports, err := runStore.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("load ingest history: %w", err)
	}
	if len(reports) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Recent ingest runs:")
	for i, r := range reports {
		if i == 10 {
			break
		}
		cmd.Printf("  %s  %-30s pages=%d passages=%d threshold=%.2f\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.BookName, r.Pages, r.Passages, r.FontThreshold)
	}
	return nil
}
