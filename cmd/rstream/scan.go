package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/report"
	"github.com/franz/rstream/internal/scan"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a music folder into the database",
	Long: `Scan walks the given folder, reads the tags of every audio file and
stores one song per distinct file content.

By default the whole walk runs inside one transaction: an interrupted scan
leaves the database as it was before. Use --no-transaction to commit every
song on its own instead.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
}

// addScanFlags registers the ingestion flags shared by scan and serve
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("scan-path", "s", "", "music folder to scan")
	cmd.Flags().Int("concurrency", 4, "number of files hashed and tagged in parallel")
	cmd.Flags().Bool("no-transaction", false, "commit each song separately instead of the whole scan at once")
	cmd.Flags().StringSlice("ext", nil, "additional audio file extensions (e.g. --ext .dsf)")
	cmd.Flags().String("events-dir", "artifacts", "directory for the JSONL scan event log")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	scanPath, err := GetConfigPath("scan-path", "")
	if err != nil {
		return err
	}
	if scanPath == "" {
		return fmt.Errorf("%w: scan path is required (use --scan-path/-s or set scan-path in config)", util.ErrInvalidConfig)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = ingest(ctx, st, scanPath)
	return err
}

// ingest scans path into st and reports the outcome. Only a failure to set up
// the scan is returned; per-file failures are counted in the result.
func ingest(ctx context.Context, st *store.Store, path string) (*scan.Result, error) {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: scan path is not a directory: %s", util.ErrInvalidConfig, path)
	}

	logger := newEventLogger()
	defer logger.Close()

	concurrency := GetConfigInt("concurrency", 4)
	useTx := util.UseTransaction()

	util.InfoLog("Database: %s", st.Path())
	util.InfoLog("Concurrency: %d", concurrency)
	if !useTx {
		util.WarnLog("Transaction disabled: every song is committed on its own")
	}

	scanner := scan.New(&scan.Config{
		Store:          st,
		AdditionalExts: GetConfigStringSlice("ext"),
		Concurrency:    concurrency,
		UseTransaction: useTx,
		ShowProgress:   !GetConfigBool("no-progress"),
		Logger:         logger,
	})

	start := time.Now()
	result, err := scanner.Scan(ctx, path)
	if err != nil {
		return result, fmt.Errorf("scan failed: %w", err)
	}

	util.InfoLog("Scan finished in %v", time.Since(start).Round(time.Millisecond))
	if len(result.Errors) > 0 {
		util.WarnLog("  Errors: %d (see %s)", len(result.Errors), logger.Path())
	}
	return result, nil
}

// newEventLogger opens the scan event log, falling back to a no-op logger
func newEventLogger() *report.EventLogger {
	level := report.LevelInfo
	if util.IsQuiet() {
		level = report.LevelWarning
	} else if util.IsDebug() {
		level = report.LevelDebug
	}

	dir, err := GetConfigPath("events-dir", "artifacts")
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	logger, err := report.NewEventLogger(dir, level)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	util.InfoLog("Event log: %s (run %s)", logger.Path(), logger.RunID())
	return logger
}
