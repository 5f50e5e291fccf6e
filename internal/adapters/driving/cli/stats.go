package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Reports how many papers and chunks are stored and how many vectors
the index holds. The vector count matches the chunk count when store
and index are in sync.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	stats, err := ingestService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Papers:  %d\n", stats.PaperCount)
	cmd.Printf("Chunks:  %d\n", stats.ChunkCount)
	cmd.Printf("Vectors: %d\n", stats.VectorCount)
	return nil
}
