package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/shrinkrate/internal/cache"
	"github.com/harrison/shrinkrate/internal/compress"
	"github.com/harrison/shrinkrate/internal/config"
	"github.com/harrison/shrinkrate/internal/estimator"
	"github.com/harrison/shrinkrate/internal/history"
	"github.com/harrison/shrinkrate/internal/logger"
	"github.com/harrison/shrinkrate/internal/models"
	"github.com/harrison/shrinkrate/internal/scanner"
	"github.com/harrison/shrinkrate/internal/shuffle"
)

// runEstimate implements the root command: enumerate, sample, report.
func runEstimate(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := loadConfigForRoot(cmd, root)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	scan, err := scanner.Scan(root, scanner.Options{
		IgnoreFile:    cfg.IgnoreFile,
		Cache:         cache.New(cfg.CacheCapacity),
		IncludeHidden: cfg.IncludeHidden,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", root, err)
	}
	log.LogInfo(fmt.Sprintf("Found %d eligible files, %d bytes total (%d files excluded by read errors)",
		len(scan.Files), scan.UncompressedSize, len(scan.Errors)))
	if len(scan.HiddenDirs) > 0 {
		log.LogInfo(fmt.Sprintf("Skipped %d hidden directories; rerun with --include-hidden to count them",
			len(scan.HiddenDirs)))
	}

	measurer, err := compress.NewMeasurer(compress.Options{
		Algorithm: compress.Algorithm(cfg.Algorithm),
		Workers:   cfg.Workers,
		Level:     cfg.Level,
		Separator: cfg.Separator,
	})
	if err != nil {
		return err
	}

	est := estimator.New(shuffle.NewDefault(), measurer, cfg.Budget, log)
	result, err := est.Estimate(cmd.Context(), scan.Files)
	if err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	result.Root = absRoot
	result.Algorithm = cfg.Algorithm
	result.UncompressedSize = scan.UncompressedSize

	printResult(cmd.OutOrStdout(), result)

	if cfg.History {
		recordHistory(cmd.Context(), cfg, result, log)
	}

	return nil
}

// loadConfigForRoot loads the config file given via --config, falling
// back to .shrinkrate.yaml inside the scanned root.
func loadConfigForRoot(cmd *cobra.Command, root string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	return config.LoadConfig(filepath.Join(root, config.DefaultConfigFile))
}

// applyFlagOverrides overlays explicitly set CLI flags onto the
// configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("budget") {
		cfg.Budget, _ = flags.GetDuration("budget")
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm, _ = flags.GetString("algorithm")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("level") {
		cfg.Level, _ = flags.GetInt("level")
	}
	if flags.Changed("separator") {
		cfg.Separator, _ = flags.GetBool("separator")
	}
	if flags.Changed("ignore-file") {
		cfg.IgnoreFile, _ = flags.GetString("ignore-file")
	}
	if flags.Changed("include-hidden") {
		cfg.IncludeHidden, _ = flags.GetBool("include-hidden")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.History = false
	}
}

// printResult writes the two summary lines: raw size, then mean
// compressed size with its deviation, both in human-readable units
// alongside the exact byte counts.
func printResult(out io.Writer, result *models.Result) {
	mean := int64(math.Round(result.Mean))
	stddev := int64(math.Round(result.StdDev))

	fmt.Fprintf(out, "Uncompressed size: %s (%d bytes)\n",
		humanize.Bytes(uint64(result.UncompressedSize)), result.UncompressedSize)
	fmt.Fprintf(out, "Compressed size:   %s ± %s (mean %d bytes, stddev %d bytes, %d samples)\n",
		humanize.Bytes(uint64(mean)), humanize.Bytes(uint64(stddev)),
		mean, stddev, result.SampleCount())
}

// recordHistory appends the run to the history database. Failures are
// logged and otherwise ignored: a broken history store must never fail
// an estimation that already succeeded.
func recordHistory(ctx context.Context, cfg *config.Config, result *models.Result, log *logger.ConsoleLogger) {
	dbPath := cfg.HistoryPath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(result.Root, dbPath)
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		return
	}
	defer store.Close()

	rec := &history.Record{
		RunID:            uuid.NewString(),
		Root:             result.Root,
		Algorithm:        result.Algorithm,
		SampleCount:      result.SampleCount(),
		UncompressedSize: result.UncompressedSize,
		MeanCompressed:   result.Mean,
		StdDev:           result.StdDev,
		DurationMS:       result.Duration.Milliseconds(),
	}
	if err := store.RecordRun(ctx, rec); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record run: %v", err))
		return
	}

	log.LogDebug(fmt.Sprintf("Recorded run %s", rec.RunID))
}
