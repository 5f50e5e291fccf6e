package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a paper or a directory of papers",
	Long: `Extracts text from the given file, chunks and embeds it, and adds it
to the retrieval index. When given a directory, every supported file in
it is ingested, one paper per worker. Re-ingesting a file replaces the
paper's previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	ctx := cmd.Context()

	if info.IsDir() {
		outcome, err := ingestService.IngestDir(ctx, path)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		saveIndex(cmd)

		cmd.Printf("Ingested %d/%d papers", outcome.Succeeded, outcome.Total)
		if outcome.Failed > 0 {
			cmd.Printf(" (%d failed)", outcome.Failed)
		}
		cmd.Println()
		for _, pe := range outcome.Errors {
			cmd.PrintErrf("  %s: %v\n", pe.PaperID, pe.Err)
		}
		return nil
	}

	paperID, err := ingestService.IngestFile(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	saveIndex(cmd)

	cmd.Printf("Ingested %s (paper %s)\n", path, paperID)
	return nil
}
