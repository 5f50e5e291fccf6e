package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchSettle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest papers dropped into it",
	Long: `Watches the given directory and automatically ingests supported
files as they appear. Files are ingested once they have stopped
changing for the settle period, so partially copied papers are not
picked up. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "how long a file must be quiet before ingestion")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	// A watch session is long-lived; fail now rather than on the
	// first dropped file.
	if validateEmbedding != nil {
		if err := validateEmbedding(); err != nil {
			return fmt.Errorf("embedding configuration check: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	ctx := cmd.Context()

	// Last write time per path. A file is ingested once it has been
	// quiet for the settle period.
	pending := make(map[string]time.Time)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveIndex(cmd)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if supportsFile != nil && !supportsFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("Watch error: %v\n", err)

		case <-ticker.C:
			for path, last := range pending {
				if time.Since(last) < watchSettle {
					continue
				}
				delete(pending, path)

				paperID, err := ingestService.IngestFile(ctx, path)
				if err != nil {
					cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
					continue
				}
				saveIndex(cmd)
				cmd.Printf("Ingested %s (paper %s)\n", path, paperID)
			}
		}
	}
}
