package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/report"
	"github.com/franz/rstream/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown summary of the library",
	Long: `Generate a summary report in Markdown format.

The report includes:
- Song, artist and album counts and total size
- The largest artists and albums
- Songs per tag format
- Possible duplicates: different files that look like one recording

The report is saved to artifacts/reports/<timestamp>/summary.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().String("event-log", "", "Event log of the scan to reference in the report (optional)")
	reportCmd.Flags().Uint64("top", 10, "number of artists and albums to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	util.InfoLog("=== Generating Summary Report ===")
	util.InfoLog("Database: %s", st.Path())

	top, _ := cmd.Flags().GetUint64("top")
	summary, err := report.GenerateSummary(ctx, st, top)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	summary.DatabasePath = st.Path()
	summary.EventLogPath, _ = cmd.Flags().GetString("event-log")

	// Determine output path
	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, "summary.md")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdown(summary, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("  Songs: %d", summary.Songs)
	util.InfoLog("  Artists: %d", summary.Artists)
	util.InfoLog("  Albums: %d", summary.Albums)
	util.InfoLog("  Total size: %s", util.FormatBytes(summary.TotalBytes))
	if summary.Untitled > 0 {
		util.WarnLog("  Untitled songs: %d", summary.Untitled)
	}
	if len(summary.Duplicates) > 0 {
		util.InfoLog("  Possible duplicate groups: %d", len(summary.Duplicates))
	}

	return nil
}
