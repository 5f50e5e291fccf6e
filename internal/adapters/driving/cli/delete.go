package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [paper-id]",
	Short: "Remove a paper from the corpus",
	Long: `Removes a paper's record, its chunks and its vectors. The paper no
longer appears in query results. The source file is not touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paperID := args[0]
	if err := ingestService.DeletePaper(cmd.Context(), paperID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	saveIndex(cmd)

	cmd.Printf("Deleted paper %s\n", paperID)
	return nil
}
