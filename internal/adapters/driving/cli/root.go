// Package cli implements the paperdex command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/paperdex/paperdex-cli/internal/core/ports/driving"
	"github.com/paperdex/paperdex-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	ingestService   driving.IngestService
	retrieveService driving.RetrieveService

	// persistIndex flushes the vector index to disk after commands
	// that mutate it. Nil when the index is not file-backed.
	persistIndex func() error

	// supportsFile reports whether the configured extractors can
	// handle a path. Used to filter directory watches.
	supportsFile func(string) bool

	// validateEmbedding checks the embedding configuration is usable
	// before a long-running command commits to it. Nil skips the
	// check.
	validateEmbedding func() error
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "paperdex",
	Short: "Local semantic search over research papers",
	Long: `Paperdex indexes research papers for semantic retrieval.

Papers are chunked, embedded and stored locally; queries return the
passages closest in meaning to the question, with their source papers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need from the composition
// root.
type Services struct {
	Ingest   driving.IngestService
	Retrieve driving.RetrieveService

	// PersistIndex is called after ingest, rebuild and watch to make
	// the in-memory index durable. Optional.
	PersistIndex func() error

	// SupportsFile filters watched files by extension. Optional;
	// when nil every file is attempted.
	SupportsFile func(string) bool

	// ValidateEmbedding checks embedding connectivity up front.
	// Optional.
	ValidateEmbedding func() error
}

// SetServices wires the command handlers to their services.
func SetServices(s Services) {
	ingestService = s.Ingest
	retrieveService = s.Retrieve
	persistIndex = s.PersistIndex
	supportsFile = s.SupportsFile
	validateEmbedding = s.ValidateEmbedding
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context, so long-running
// commands stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// saveIndex persists the index when a saver is configured. Failures
// are reported but never mask the command's own result.
func saveIndex(cmd *cobra.Command) {
	if persistIndex == nil {
		return
	}
	if err := persistIndex(); err != nil {
		cmd.PrintErrf("Warning: failed to persist index: %v\n", err)
	}
}
