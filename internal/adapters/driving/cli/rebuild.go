package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from stored papers",
	Long: `Drops the vector index and recreates it by re-chunking and
re-embedding every stored paper. Use after changing the chunking
configuration or the embedding model.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Println("Rebuilding index...")

	outcome, err := ingestService.RebuildIndex(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	saveIndex(cmd)

	cmd.Printf("Rebuilt %d/%d papers", outcome.Succeeded, outcome.Total)
	if outcome.Failed > 0 {
		cmd.Printf(" (%d failed)", outcome.Failed)
	}
	cmd.Println()
	for _, pe := range outcome.Errors {
		cmd.PrintErrf("  %s: %v\n", pe.PaperID, pe.Err)
	}
	return nil
}
