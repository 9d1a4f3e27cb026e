package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

var exportBook string

var exportCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Export ingested passages to CSV",
	Long: `Writes the passage table to a CSV file for inspection or reuse in
other tools. By default every book is exported; --book restricts the
export to one book.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportBook, "book", "b", "", "export only this book")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	outPath := args[0]

	if passageStore == nil {
		return errors.New("passage store not configured")
	}

	ctx := context.Background()
	var passages []domain.Passage
	var err error
	if exportBook != "" {
		passages, err = passageStore.ListPassages(ctx, exportBook)
	} else {
		passages, err = passageStore.ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("load passages: %w", err)
	}
	if len(passages) == 0 {
		return errors.New("nothing to export")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"chunk_id", "book_name", "book_type", "section_title", "topic", "page_number", "text"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range passages {
		record := []string{
			p.ChunkID,
			p.BookName,
			p.BookType,
			p.SectionTitle,
			p.Topic,
			strconv.Itoa(p.PageNumber),
			p.Text,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write passage %s: %w", p.ChunkID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	cmd.Printf("Exported %d passages to %s\n", len(passages), outPath)
	return nil
}
