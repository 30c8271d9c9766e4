package cmd

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/shrinkrate/internal/config"
	"github.com/harrison/shrinkrate/internal/filelock"
	"github.com/harrison/shrinkrate/internal/history"
)

// defaultExportFile is the default target of "history export".
const defaultExportFile = "shrinkrate-history.yaml"

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [directory]",
		Short: "Show past estimation runs for a tree",
		Long: `Show the estimation runs recorded for a directory, newest first.

Runs are stored in the history database under the scanned directory
(.shrinkrate/history.db by default). Use --all to list the runs of
every root recorded in that database.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runHistoryList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", history.DefaultLimit, "Maximum number of runs to show")
	cmd.Flags().Bool("all", false, "List runs for every recorded root")

	cmd.AddCommand(newHistoryExportCommand())

	return cmd
}

func newHistoryExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [directory]",
		Short: "Export recorded runs as YAML",
		Long: `Export the estimation runs recorded for a directory to a YAML file.

The file is written atomically and guarded by a lock file, so
concurrent exports cannot corrupt it.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runHistoryExport,
		SilenceUsage: true,
	}

	cmd.Flags().String("output", defaultExportFile, "Export file path")
	cmd.Flags().Int("limit", 0, "Maximum number of runs to export (0 = all stored)")

	return cmd
}

// openHistoryStore resolves the history database for the directory
// argument and opens it.
func openHistoryStore(args []string) (*history.Store, string, error) {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", root, err)
	}

	cfg, err := config.LoadConfig(filepath.Join(absRoot, config.DefaultConfigFile))
	if err != nil {
		return nil, "", err
	}

	dbPath := cfg.HistoryPath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(absRoot, dbPath)
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open history database: %w", err)
	}
	return store, absRoot, nil
}

// runHistoryList implements the history command logic
func runHistoryList(cmd *cobra.Command, args []string) error {
	store, absRoot, err := openHistoryStore(args)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")

	filterRoot := absRoot
	if all {
		filterRoot = ""
	}

	runs, err := store.ListRuns(cmd.Context(), filterRoot, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded runs for %s\n", absRoot)
		return nil
	}

	for _, rec := range runs {
		printRecord(out, rec, all)
	}
	fmt.Fprintf(out, "\n%d run(s)\n", len(runs))

	return nil
}

// printRecord writes one history line. With showRoot the record's root
// path is appended, for --all listings spanning several trees.
func printRecord(out io.Writer, rec history.Record, showRoot bool) {
	mean := int64(math.Round(rec.MeanCompressed))
	stddev := int64(math.Round(rec.StdDev))

	line := fmt.Sprintf("%s  %-6s  %10s -> %s ± %s (%d samples, %s)",
		rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
		rec.Algorithm,
		humanize.Bytes(uint64(rec.UncompressedSize)),
		humanize.Bytes(uint64(mean)),
		humanize.Bytes(uint64(stddev)),
		rec.SampleCount,
		(time.Duration(rec.DurationMS) * time.Millisecond).String(),
	)
	if showRoot {
		line += "  " + rec.Root
	}
	fmt.Fprintln(out, line)
}

// runHistoryExport implements the history export command logic
func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, absRoot, err := openHistoryStore(args)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		// "All stored" still needs a bound for the query; one million
		// runs is far beyond anything the tool writes.
		limit = 1 << 20
	}

	runs, err := store.ListRuns(cmd.Context(), absRoot, limit)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if err := filelock.WriteLocked(output, data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d run(s) to %s\n", len(runs), output)
	return nil
}
