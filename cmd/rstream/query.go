package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL statement against the database and print the rows",
	Long: `Run one SQL statement and print every result row.

Columns are printed as text. NULL values and binary columns are left out of
the row they belong to.

Examples:
  rstream query "SELECT title, artist FROM songs WHERE year < 1970"
  rstream query --json "SELECT artist, COUNT(*) AS n FROM songs GROUP BY artist"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().Bool("json", false, "print one JSON object per row")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	asJSON, _ := cmd.Flags().GetBool("json")
	n, err := printQuery(ctx, st, args[0], os.Stdout, asJSON)
	if err != nil {
		return err
	}
	util.DebugLog("%d row(s)", n)
	return nil
}

// printQuery streams the rows of query to w and returns how many were printed
func printQuery(ctx context.Context, st *store.Store, query string, w io.Writer, asJSON bool) (int, error) {
	cur, err := st.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	enc := json.NewEncoder(w)
	width := util.GetTerminalWidth()

	n := 0
	for cur.Next() {
		row := cur.Row()
		if asJSON {
			if err := enc.Encode(row); err != nil {
				return n, err
			}
		} else {
			if n > 0 {
				fmt.Fprintln(w)
			}
			writeRow(w, row, width)
		}
		n++
	}
	return n, cur.Err()
}

// writeRow prints one column per line, names aligned, values cut to width
func writeRow(w io.Writer, row record.RawRow, width int) {
	names := make([]string, 0, len(row))
	pad := 0
	for name := range row {
		names = append(names, name)
		if len(name) > pad {
			pad = len(name)
		}
	}
	sort.Strings(names)

	// room left for the value, minus the "..." Truncate appends
	room := width - pad - 2 - 3
	for _, name := range names {
		value := strings.ReplaceAll(row[name], "\n", " ")
		if room > 0 {
			value = util.Truncate(value, room)
		}
		fmt.Fprintf(w, "%-*s  %s\n", pad, name, value)
	}
}
