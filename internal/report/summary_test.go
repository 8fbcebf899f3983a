package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/store"
)

func seedLibrary(t *testing.T, songs []meta.Song) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.CreateTable(ctx, meta.Table, meta.SongDescriptor()); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	for i := range songs {
		rec, err := songs[i].Record()
		if err != nil {
			t.Fatalf("failed to build record: %v", err)
		}
		if _, err := s.Upsert(ctx, meta.Table, rec); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
	}
	return s
}

func song(id, title, artist, album string, size int64) meta.Song {
	return meta.Song{
		ID: id, Path: "/music/" + id + ".mp3",
		Title: title, Artist: artist, Album: album,
		Format: "ID3v2.3", FileType: "MP3", SizeBytes: size,
	}
}

func TestGenerateSummary(t *testing.T) {
	s := seedLibrary(t, []meta.Song{
		song("a", "One", "Miles Davis", "Kind of Blue", 1000),
		song("b", "Two", "Miles Davis", "Kind of Blue", 2000),
		song("c", "Three", "Miles Davis", "Bitches Brew", 3000),
		song("d", meta.DefaultTitle, "Coltrane", "", 500),
	})

	summary, err := GenerateSummary(context.Background(), s, 10)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}

	if summary.Songs != 4 {
		t.Errorf("expected 4 songs, got %d", summary.Songs)
	}
	if summary.Artists != 2 {
		t.Errorf("expected 2 artists, got %d", summary.Artists)
	}
	if summary.Albums != 3 {
		t.Errorf("expected 3 distinct album values, got %d", summary.Albums)
	}
	if summary.TotalBytes != 6500 {
		t.Errorf("expected 6500 bytes, got %d", summary.TotalBytes)
	}
	if summary.Untitled != 1 {
		t.Errorf("expected 1 untitled song, got %d", summary.Untitled)
	}

	if len(summary.TopArtists) != 2 || summary.TopArtists[0] != (ArtistSummary{Artist: "Miles Davis", Songs: 3}) {
		t.Errorf("unexpected top artists: %+v", summary.TopArtists)
	}

	// the empty album is not an album
	want := []AlbumSummary{
		{Album: "Kind of Blue", Artist: "Miles Davis", Songs: 2},
		{Album: "Bitches Brew", Artist: "Miles Davis", Songs: 1},
	}
	if fmt.Sprint(summary.TopAlbums) != fmt.Sprint(want) {
		t.Errorf("unexpected top albums: %+v", summary.TopAlbums)
	}

	if len(summary.Formats) != 1 || summary.Formats[0].Songs != 4 {
		t.Errorf("unexpected formats: %+v", summary.Formats)
	}
}

func TestSummaryDuplicates(t *testing.T) {
	flac := song("b", "So What", "Miles Davis", "Kind of Blue", 30<<20)
	flac.Path = "/music/b.flac"
	flac.FileType = "FLAC"

	s := seedLibrary(t, []meta.Song{
		song("a", "So What", "Miles Davis", "Kind of Blue", 8<<20),
		flac,
		song("c", "Blue in Green", "Miles Davis", "Kind of Blue", 8<<20),
	})

	summary, err := GenerateSummary(context.Background(), s, 10)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}

	if len(summary.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate group, got %+v", summary.Duplicates)
	}
	d := summary.Duplicates[0]
	if d.Keep != "/music/b.flac" {
		t.Errorf("expected the FLAC copy to be kept, got %s", d.Keep)
	}
	if len(d.Others) != 1 || d.Others[0] != "/music/a.mp3" {
		t.Errorf("unexpected other copies: %v", d.Others)
	}

	if !strings.Contains(RenderMarkdown(summary), "## 🔁 Possible Duplicates") {
		t.Error("report missing duplicates section")
	}
}

func TestArtistsLimit(t *testing.T) {
	var songs []meta.Song
	for i := 0; i < 5; i++ {
		songs = append(songs, song(fmt.Sprintf("s%d", i), "T", fmt.Sprintf("Artist %d", i), "", 1))
	}
	s := seedLibrary(t, songs)

	limited, err := Artists(context.Background(), s, 2)
	if err != nil {
		t.Fatalf("Artists failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 artists, got %d", len(limited))
	}

	all, err := Artists(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("Artists failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 artists, got %d", len(all))
	}
}

func TestReportWithEmptyData(t *testing.T) {
	s := seedLibrary(t, nil)

	summary, err := GenerateSummary(context.Background(), s, 10)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}
	if summary.Songs != 0 || summary.TotalBytes != 0 || summary.Untitled != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}

	md := RenderMarkdown(summary)
	if strings.Contains(md, "Top Artists") {
		t.Error("empty library should not render a Top Artists section")
	}
}

func TestSummaryWithoutTable(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if _, err := GenerateSummary(context.Background(), s, 10); err == nil {
		t.Error("expected an error when the songs table is missing")
	}
}

func TestWriteMarkdown(t *testing.T) {
	s := seedLibrary(t, []meta.Song{
		song("a", "One", "Pipe | Band", "Album", 2048),
	})

	summary, err := GenerateSummary(context.Background(), s, 10)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}
	summary.DatabasePath = "library.db"

	out := filepath.Join(t.TempDir(), "reports", "summary.md")
	if err := WriteMarkdown(summary, out); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	md := string(content)

	for _, want := range []string{
		"# rstream - Library Report",
		"**Database:** `library.db`",
		"| Songs | 1 |",
		"| Total Size | 2.0 kB |",
		`| Pipe \| Band | 1 |`,
		"## 💿 Top Albums",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path   string
		maxLen int
		want   string
	}{
		{"/short/path.mp3", 80, "/short/path.mp3"},
		{"abcdefghijklmnopqrstuvwxyz", 10, "abc...xyz"},
	}

	for _, tt := range tests {
		if got := truncatePath(tt.path, tt.maxLen); got != tt.want {
			t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
		}
	}
}
