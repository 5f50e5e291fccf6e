package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var showChunks bool

var showCmd = &cobra.Command{
	Use:   "show [paper-id]",
	Short: "Show a stored paper",
	Long: `Prints a paper's metadata and chunking summary. With --chunks the
individual chunk texts are printed in order.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showChunks, "chunks", false, "print chunk contents")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	paper, chunks, err := retrieveService.Paper(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show failed: %w", err)
	}

	cmd.Printf("Paper:   %s\n", paper.ID)
	if paper.Title != "" {
		cmd.Printf("Title:   %s\n", paper.Title)
	}
	if paper.Authors != "" {
		cmd.Printf("Authors: %s\n", paper.Authors)
	}
	if paper.Abstract != "" {
		cmd.Printf("Abstract: %s\n", snippet(paper.Abstract, 300))
	}
	cmd.Printf("Status:  %s\n", paper.Status)
	if paper.PageCount > 0 {
		cmd.Printf("Pages:   %d\n", paper.PageCount)
	}
	cmd.Printf("Chunks:  %d\n", len(chunks))

	if showChunks {
		cmd.Println()
		for _, chunk := range chunks {
			cmd.Printf("[%d] %s\n", chunk.Position, chunk.Content)
		}
	}
	return nil
}
