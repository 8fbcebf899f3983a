package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/server"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the song library over HTTP",
	Long: `Serve the songs table as JSON and the browser UI.

With --scan-path the folder is scanned first and served once the scan has
finished. --scan-only stops after the scan.

Endpoints:
  GET /                 name and version
  GET /songs            all songs, or one page with ?page=N&per_page=M
  GET /songs/{id}       one song
  GET /search?term=     songs matching title, artist or album
  GET /albums           albums by song count
  GET /artists          artists by song count
  GET /assets/...       browser UI`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addScanFlags(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "IP address to listen on")
	serveCmd.Flags().IntP("port", "p", 3000, "port to listen on")
	serveCmd.Flags().String("static-assets-folder", "", "serve browser assets from this folder instead of the built-in ones")
	serveCmd.Flags().Bool("scan-only", false, "scan --scan-path and exit without serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	assets, err := GetConfigPath("static-assets-folder", "")
	if err != nil {
		return err
	}
	opts := server.Options{
		Host:               GetConfigString("host", "127.0.0.1"),
		Port:               GetConfigInt("port", 3000),
		StaticAssetsFolder: assets,
		Version:            Version,
	}
	scanOnly := GetConfigBool("scan-only")
	if !scanOnly {
		// Reject a bad listener before spending time on a scan
		if err := opts.Validate(); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	scanPath, err := GetConfigPath("scan-path", "")
	if err != nil {
		return err
	}
	if scanPath != "" {
		if _, err := ingest(ctx, st, scanPath); err != nil {
			return err
		}
	} else if scanOnly {
		return fmt.Errorf("%w: --scan-only needs --scan-path", util.ErrInvalidConfig)
	}
	if scanOnly {
		return nil
	}

	count, err := countSongs(ctx, st)
	if err != nil {
		util.ErrorLog("Cannot read the %s table: %v", meta.Table, err)
		util.ErrorLog("Rescan your music folder with: rstream scan --scan-path <folder>")
		return err
	}

	srv, err := server.New(st, opts)
	if err != nil {
		return err
	}

	util.InfoLog("serving %d songs from DB on %s", count, opts.Addr())
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	util.InfoLog("Server stopped")
	return nil
}

// countSongs fails when the songs table is missing or unreadable
func countSongs(ctx context.Context, q store.Querier) (int, error) {
	query, args, err := squirrel.Select("COUNT(*) AS songs").From(meta.Table).ToSql()
	if err != nil {
		return 0, err
	}
	rows, err := q.Execute(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return strconv.Atoi(rows[0]["songs"])
}
