package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for shrinkrate
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shrinkrate [directory]",
		Short: "Estimate how compressible a source tree is",
		Long: `Shrinkrate estimates the compressibility of a source tree as a quick
repository-size heuristic.

It walks the directory, applies per-directory ignore files, keeps only
valid-text files, and then repeatedly compresses random shufflings of
the concatenated contents until a time budget elapses. The report shows
the raw uncompressed size and the mean compressed size with its
standard deviation across the sampled orderings.

Configuration is loaded from .shrinkrate.yaml in the scanned directory
if present. CLI flags override configuration file settings.

Examples:
  shrinkrate                      # estimate the current directory
  shrinkrate path/to/repo         # estimate another tree
  shrinkrate --budget 10s         # sample for ten seconds
  shrinkrate --algorithm gzip     # use a different transform
  shrinkrate --separator          # insert a byte between files
  shrinkrate history              # show past runs for this tree
  shrinkrate history export       # export past runs as YAML`,
		Version:      Version,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runEstimate,
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: <directory>/.shrinkrate.yaml)")
	cmd.Flags().Duration("budget", 0, "Sampling time budget (e.g. 3s, 500ms)")
	cmd.Flags().String("algorithm", "", "Compression algorithm: zstd, gzip, lz4, brotli, snappy")
	cmd.Flags().Int("workers", 0, "Transform-internal worker count (0 = all CPUs)")
	cmd.Flags().Int("level", 0, "Compression-effort preset (0 = algorithm maximum)")
	cmd.Flags().Bool("separator", false, "Insert a newline byte between concatenated files")
	cmd.Flags().String("ignore-file", "", "Per-directory ignore pattern file name")
	cmd.Flags().Bool("include-hidden", false, "Descend into dot-directories")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
