package cluster

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/store"
)

func disc(n uint8) *uint8 { return &n }

func TestGenerateClusterKey(t *testing.T) {
	testCases := []struct {
		name     string
		song     *meta.Song
		expected string
	}{
		{
			name:     "basic tags",
			song:     &meta.Song{Artist: "The Beatles", Title: "Yesterday", Path: "/music/song.mp3"},
			expected: "the beatles|yesterday|disc0",
		},
		{
			name:     "case and punctuation folded",
			song:     &meta.Song{Artist: "AC/DC", Title: "Hells Bells!", Path: "/music/song.mp3"},
			expected: "acdc|hells bells|disc0",
		},
		{
			name:     "brackets folded",
			song:     &meta.Song{Artist: "Artist", Title: "Song [Live]", Path: "/music/song.mp3"},
			expected: "artist|song live|disc0",
		},
		{
			name:     "unicode normalization",
			song:     &meta.Song{Artist: "Björk", Title: "Café", Path: "/music/song.mp3"},
			expected: "björk|café|disc0",
		},
		{
			name:     "disc number",
			song:     &meta.Song{Artist: "Artist", Title: "Title", Disc: disc(2), Path: "/music/song.mp3"},
			expected: "artist|title|disc2",
		},
		{
			name:     "default artist keeps title",
			song:     &meta.Song{Artist: meta.DefaultArtist, Title: "Title", Path: "/music/song.mp3"},
			expected: "|title|disc0",
		},
		{
			name:     "default tags - uses filename",
			song:     &meta.Song{Artist: meta.DefaultArtist, Title: meta.DefaultTitle, Path: "/music/05 Track 05.wav"},
			expected: "unknown|05 track 05|disc0",
		},
		{
			name:     "default tags - different filename",
			song:     &meta.Song{Artist: meta.DefaultArtist, Title: meta.DefaultTitle, Path: "/music/19 Track 19.wav"},
			expected: "unknown|19 track 19|disc0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := GenerateClusterKey(tc.song)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGenerateClusterKey_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{"filename with only extension", "/music/.mp3", "unknown|file_music|disc0"},
		{"filename with multiple extensions", "/music/track.backup.mp3", "unknown|trackbackup|disc0"},
		{"filename with underscores", "/music/my_song.flac", "unknown|my song|disc0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			song := &meta.Song{Artist: meta.DefaultArtist, Title: meta.DefaultTitle, Path: tc.path}
			result := GenerateClusterKey(song)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestNormalizeForClustering(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"The Beatles", "the beatles"},
		{"Song (Remix)", "song remix"},
		{"  Extra   Spaces  ", "extra spaces"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := NormalizeForClustering(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestNormalizeForClustering_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only spaces", "     ", ""},
		{"multiple brackets", "[[Test]]", "test"},
		{"nested brackets", "{[Test]}", "test"},
		{"multiple ampersands", "Rock & Roll & Blues", "rock and roll and blues"},
		{"mixed operators", "Rock & Blues + Jazz", "rock and blues and jazz"},
		{"unicode characters", "Café", "café"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := NormalizeForClustering(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestFind(t *testing.T) {
	mp3 := &meta.Song{ID: "1", Artist: "Miles Davis", Title: "So What", FileType: "MP3", Path: "/a/so-what.mp3"}
	flac := &meta.Song{ID: "2", Artist: "miles davis", Title: "So What!", FileType: "FLAC", Path: "/b/so-what.flac"}
	other := &meta.Song{ID: "3", Artist: "Miles Davis", Title: "Freddie Freeloader", FileType: "MP3", Path: "/a/ff.mp3"}

	groups := Find([]*meta.Song{mp3, other, flac})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.Key != "miles davis|so what|disc0" {
		t.Errorf("unexpected key %q", g.Key)
	}
	if len(g.Songs) != 2 {
		t.Fatalf("expected 2 members, got %d", len(g.Songs))
	}
	if g.Keep() != flac {
		t.Errorf("expected FLAC copy to be kept, got %s", g.Keep().Path)
	}
}

func TestFind_Ordering(t *testing.T) {
	songs := []*meta.Song{
		{Artist: "B", Title: "x", Path: "/1"},
		{Artist: "B", Title: "x", Path: "/2"},
		{Artist: "A", Title: "y", Path: "/3"},
		{Artist: "A", Title: "y", Path: "/4"},
		{Artist: "C", Title: "z", Path: "/5"},
		{Artist: "C", Title: "z", Path: "/6"},
		{Artist: "C", Title: "z", Path: "/7"},
	}

	groups := Find(songs)
	want := []string{"c|z|disc0", "a|y|disc0", "b|x|disc0"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, key := range want {
		if groups[i].Key != key {
			t.Errorf("group %d: expected %q, got %q", i, key, groups[i].Key)
		}
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "cluster.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	if err := st.CreateTable(ctx, meta.Table, meta.SongDescriptor()); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	for _, s := range []meta.Song{
		{ID: "a", Path: "/x.mp3", Title: "Naima", Artist: "John Coltrane", Format: "ID3v2.3", FileType: "MP3"},
		{ID: "b", Path: "/x.flac", Title: "Naima", Artist: "John Coltrane", Format: "VORBIS", FileType: "FLAC"},
		{ID: "c", Path: "/y.mp3", Title: "Equinox", Artist: "John Coltrane", Format: "ID3v2.3", FileType: "MP3"},
	} {
		rec, err := s.Record()
		if err != nil {
			t.Fatalf("failed to build record: %v", err)
		}
		if _, err := st.Upsert(ctx, meta.Table, rec); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	groups, err := Load(ctx, st)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Keep().ID != "b" {
		t.Errorf("expected FLAC song b to be kept, got %s", groups[0].Keep().ID)
	}
}
