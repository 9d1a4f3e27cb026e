package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psyra-labs/psyra-cli/internal/ingest/watch"
)

var (
	ingestBookType string
	ingestWatch    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a PDF into the library",
	Long: `Extracts, segments and chunks a PDF, then indexes the resulting
passages for search. With --watch, the path is treated as a drop folder
and every PDF placed into it is ingested until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestBookType, "type", "t", "reference", "book type label")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch a folder and ingest dropped PDFs")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if ingestWatch {
		return runIngestWatch(cmd, path)
	}

	report, err := ingestService.IngestBook(context.Background(), path, ingestBookType)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s (%s)\n", report.BookName, report.BookType)
	cmd.Printf("  Pages:          %d\n", report.Pages)
	cmd.Printf("  Paragraphs:     %d\n", report.Paragraphs)
	cmd.Printf("  Passages:       %d\n", report.Passages)
	cmd.Printf("  Font threshold: %.2f\n", report.FontThreshold)
	cmd.Printf("  Run ID:         %s\n", report.RunID)
	return nil
}

func runIngestWatch(cmd *cobra.Command, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch folder %s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, press Ctrl+C to stop\n", dir)
	err = watch.New(dir, ingestBookType, ingestService).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
