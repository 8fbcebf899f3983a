package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/franz/rstream/internal/cluster"
	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// Summary describes the song library as stored
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`

	Songs      int   `json:"songs"`
	Artists    int   `json:"artists"`
	Albums     int   `json:"albums"`
	TotalBytes int64 `json:"total_bytes"`
	Untitled   int   `json:"untitled"`

	TopArtists []ArtistSummary `json:"top_artists"`
	TopAlbums  []AlbumSummary  `json:"top_albums"`
	Formats    []FormatSummary `json:"formats"`
	Duplicates []DuplicateGroup `json:"duplicates"`

	DatabasePath string `json:"database_path,omitempty"`
	EventLogPath string `json:"event_log_path,omitempty"`
}

// ArtistSummary is an artist with its song count
type ArtistSummary struct {
	Artist string `json:"artist"`
	Songs  int    `json:"songs"`
}

// AlbumSummary is an album with its artist and song count
type AlbumSummary struct {
	Album  string `json:"album"`
	Artist string `json:"artist"`
	Songs  int    `json:"songs"`
}

// FormatSummary is a tag format with its song count
type FormatSummary struct {
	Format string `json:"format"`
	Songs  int    `json:"songs"`
}

// DuplicateGroup lists copies of what looks like one recording, the copy
// worth keeping first
type DuplicateGroup struct {
	Artist string   `json:"artist"`
	Title  string   `json:"title"`
	Keep   string   `json:"keep"`
	Others []string `json:"others"`
}

// GenerateSummary aggregates the songs table
func GenerateSummary(ctx context.Context, q store.Querier, topN uint64) (*Summary, error) {
	s := &Summary{GeneratedAt: time.Now()}

	totals, err := queryOne(ctx, q, squirrel.Select(
		"COUNT(*) AS songs",
		"COUNT(DISTINCT artist) AS artists",
		"COUNT(DISTINCT album) AS albums",
		"COALESCE(SUM(size_bytes), 0) AS bytes",
		fmt.Sprintf("COALESCE(SUM(title = %s), 0) AS untitled", record.QuoteText(meta.DefaultTitle)),
	).From(meta.Table))
	if err != nil {
		return nil, err
	}
	s.Songs = atoi(totals["songs"])
	s.Artists = atoi(totals["artists"])
	s.Albums = atoi(totals["albums"])
	s.TotalBytes = int64(atoi(totals["bytes"]))
	s.Untitled = atoi(totals["untitled"])

	if s.TopArtists, err = Artists(ctx, q, topN); err != nil {
		return nil, err
	}
	if s.TopAlbums, err = Albums(ctx, q, topN); err != nil {
		return nil, err
	}

	rows, err := queryAll(ctx, q, squirrel.Select("format", "COUNT(*) AS songs").
		From(meta.Table).GroupBy("format").OrderBy("songs DESC", "format"))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.Formats = append(s.Formats, FormatSummary{Format: row["format"], Songs: atoi(row["songs"])})
	}

	groups, err := cluster.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		keep := g.Keep()
		dup := DuplicateGroup{Artist: keep.Artist, Title: keep.Title, Keep: keep.Path}
		for _, other := range g.Songs[1:] {
			dup.Others = append(dup.Others, other.Path)
		}
		s.Duplicates = append(s.Duplicates, dup)
	}

	return s, nil
}

// Artists lists artists by song count, most first. A zero limit lists all.
func Artists(ctx context.Context, q store.Querier, limit uint64) ([]ArtistSummary, error) {
	sel := squirrel.Select("artist", "COUNT(*) AS songs").
		From(meta.Table).GroupBy("artist").OrderBy("songs DESC", "artist")
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := queryAll(ctx, q, sel)
	if err != nil {
		return nil, err
	}

	out := make([]ArtistSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ArtistSummary{Artist: row["artist"], Songs: atoi(row["songs"])})
	}
	return out, nil
}

// Albums lists named albums by song count, most first. A zero limit lists all.
func Albums(ctx context.Context, q store.Querier, limit uint64) ([]AlbumSummary, error) {
	sel := squirrel.Select("album", "MIN(artist) AS artist", "COUNT(*) AS songs").
		From(meta.Table).Where("album <> ''").GroupBy("album").OrderBy("songs DESC", "album")
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := queryAll(ctx, q, sel)
	if err != nil {
		return nil, err
	}

	out := make([]AlbumSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, AlbumSummary{Album: row["album"], Artist: row["artist"], Songs: atoi(row["songs"])})
	}
	return out, nil
}

func queryAll(ctx context.Context, q store.Querier, b squirrel.SelectBuilder) ([]record.RawRow, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}
	return q.Execute(ctx, query, args...)
}

func queryOne(ctx context.Context, q store.Querier, b squirrel.SelectBuilder) (record.RawRow, error) {
	rows, err := queryAll(ctx, q, b)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return record.RawRow{}, nil
	}
	return rows[0], nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// WriteMarkdown writes the summary as Markdown
func WriteMarkdown(s *Summary, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(s)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown renders the summary as a Markdown document
func RenderMarkdown(s *Summary) string {
	var md strings.Builder

	md.WriteString("# rstream - Library Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05")))

	if s.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", s.DatabasePath))
	}
	if s.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", s.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Songs | %d |\n", s.Songs))
	md.WriteString(fmt.Sprintf("| Artists | %d |\n", s.Artists))
	md.WriteString(fmt.Sprintf("| Albums | %d |\n", s.Albums))
	md.WriteString(fmt.Sprintf("| Total Size | %s |\n", util.FormatBytes(s.TotalBytes)))
	if s.Untitled > 0 {
		md.WriteString(fmt.Sprintf("| Untitled | %d |\n", s.Untitled))
	}
	md.WriteString("\n")

	if len(s.TopArtists) > 0 {
		md.WriteString("## 🎤 Top Artists\n\n")
		md.WriteString("| Artist | Songs |\n")
		md.WriteString("|--------|-------|\n")
		for _, a := range s.TopArtists {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", cell(a.Artist, 60), a.Songs))
		}
		md.WriteString("\n")
	}

	if len(s.TopAlbums) > 0 {
		md.WriteString("## 💿 Top Albums\n\n")
		md.WriteString("| Album | Artist | Songs |\n")
		md.WriteString("|-------|--------|-------|\n")
		for _, a := range s.TopAlbums {
			md.WriteString(fmt.Sprintf("| %s | %s | %d |\n", cell(a.Album, 60), cell(a.Artist, 40), a.Songs))
		}
		md.WriteString("\n")
	}

	if len(s.Formats) > 0 {
		md.WriteString("## 🏷️ Tag Formats\n\n")
		md.WriteString("| Format | Songs |\n")
		md.WriteString("|--------|-------|\n")
		for _, f := range s.Formats {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", f.Format, f.Songs))
		}
		md.WriteString("\n")
	}

	if len(s.Duplicates) > 0 {
		md.WriteString("## 🔁 Possible Duplicates\n\n")
		md.WriteString("| Artist | Title | Keep | Other copies |\n")
		md.WriteString("|--------|-------|------|--------------|\n")
		for _, d := range s.Duplicates {
			others := make([]string, len(d.Others))
			for i, o := range d.Others {
				others[i] = cell(o, 60)
			}
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				cell(d.Artist, 40), cell(d.Title, 40), cell(d.Keep, 60), strings.Join(others, "<br>")))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by rstream*\n")

	return md.String()
}

// cell escapes table pipes and shortens long values
func cell(s string, maxLen int) string {
	return truncatePath(strings.ReplaceAll(s, "|", "\\|"), maxLen)
}

// truncatePath truncates a string to a maximum length, keeping start and end
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
