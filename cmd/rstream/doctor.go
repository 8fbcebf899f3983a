package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/server"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure rstream can operate correctly.

This command checks:
- SQLite version
- Database accessibility, integrity and the songs table
- The scan path (readable directory)
- Disk space next to the database
- The serve options (host and port)

Use this command to troubleshoot issues before scanning or serving.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringP("scan-path", "s", "", "music folder to check (optional)")
	doctorCmd.Flags().String("host", "127.0.0.1", "serve host to check")
	doctorCmd.Flags().IntP("port", "p", 3000, "serve port to check")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== rstream doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	// 1. Check SQLite
	results = append(results, checkSQLite())

	// 2. Check database file
	dbPath, err := GetConfigPath("db", "rstream.db")
	if err != nil {
		return err
	}
	results = append(results, checkDatabase(dbPath))

	// 3. Check scan path
	scanPath, err := GetConfigPath("scan-path", "")
	if err != nil {
		return err
	}
	if scanPath != "" {
		results = append(results, checkScanPath(scanPath))
	}

	// 4. Check disk space where the database lives
	results = append(results, checkDiskSpace(filepath.Dir(dbPath), "database"))

	// 5. Check serve options
	results = append(results, checkServeOptions(server.Options{
		Host: GetConfigString("host", "127.0.0.1"),
		Port: GetConfigInt("port", 3000),
	}))

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before running rstream.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed! System is ready.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is linked in, so only the version is of interest
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first scan)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CheckIntegrity(ctx); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	size := util.FormatBytes(info.Size())

	exists, err := db.TableExists(ctx, meta.Table)
	if err != nil || !exists {
		return checkResult{
			name:    "Database",
			warning: true,
			message: fmt.Sprintf("%s (%s, no %s table yet: run rstream scan)", dbPath, size, meta.Table),
		}
	}

	count, err := countSongs(ctx, db)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v (rescan to rebuild)", meta.Table, err),
		}
	}

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, %d songs)", dbPath, size, count),
	}
}

// checkScanPath verifies the music folder is a readable directory
func checkScanPath(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Scan path",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Scan path",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	// Check read permission by trying to list directory
	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Scan path",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	return checkResult{
		name:    "Scan path",
		message: fmt.Sprintf("%s (%d entries)", path, len(entries)),
	}
}

// checkServeOptions validates the host and port serve would bind
func checkServeOptions(opts server.Options) checkResult {
	if err := opts.Validate(); err != nil {
		return checkResult{
			name:    "Serve options",
			error:   true,
			message: err.Error(),
		}
	}
	return checkResult{
		name:    "Serve options",
		message: opts.Addr(),
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	totalBytes := stat.Blocks * uint64(stat.Bsize)
	usedBytes := totalBytes - (stat.Bfree * uint64(stat.Bsize))

	usedPercent := 0.0
	if totalBytes > 0 {
		usedPercent = float64(usedBytes) / float64(totalBytes) * 100
	}

	// Warn below 1GB free or above 95% used
	warning := false
	warningMsg := ""
	if availBytes < 1<<30 {
		warning = true
		warningMsg = " (low space!)"
	} else if usedPercent > 95 {
		warning = true
		warningMsg = " (>95% used)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", util.FormatBytes(int64(availBytes)), warningMsg),
	}
}
