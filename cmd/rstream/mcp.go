package main

import (
	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/mcpserver"
	"github.com/franz/rstream/internal/util"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the song library as MCP tools on stdin/stdout",
	Long: `Run an MCP server over stdio exposing the tools get_song, list_songs,
search_songs and library_stats.

stdout carries the protocol, so logs go to stderr only and the progress of
any scan is not shown. Scan the library first with rstream scan.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	util.InfoLog("MCP server on stdio, database %s", st.Path())
	return mcpserver.New(st, Version).ServeStdio()
}
