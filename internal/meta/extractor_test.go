package meta

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/rstream/internal/meta/metatest"
	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/util"
)

func TestExtractReadsID3(t *testing.T) {
	data := metatest.Build(metatest.Tags{
		Title:  "Song  A",
		Artist: "The\tBand",
		Album:  "First",
		Year:   "1999",
		Track:  "3/12",
		Genre:  "Jazz",
	}, []byte("audio"))

	song, err := Extract("music/a.mp3", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)

	id, err := util.Identity(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, id, song.ID)
	assert.Len(t, song.ID, 64)
	assert.Equal(t, "music/a.mp3", song.Path)
	assert.Equal(t, "Song A", song.Title)
	assert.Equal(t, "The Band", song.Artist)
	assert.Equal(t, "First", song.Album)
	require.NotNil(t, song.Year)
	assert.Equal(t, uint16(1999), *song.Year)
	require.NotNil(t, song.Track)
	assert.Equal(t, uint16(3), *song.Track)
	require.NotNil(t, song.TrackTotal)
	assert.Equal(t, uint16(12), *song.TrackTotal)
	require.NotNil(t, song.Genre)
	assert.Equal(t, "Jazz", *song.Genre)
	assert.Nil(t, song.Composer)
	assert.Nil(t, song.Disc)
	assert.Equal(t, string(tag.ID3v2_3), song.Format)
	assert.Equal(t, int64(len(data)), song.SizeBytes)
}

func TestExtractDefaults(t *testing.T) {
	data := metatest.Build(metatest.Tags{Album: "Only Album"}, nil)

	song, err := Extract("x.mp3", 0, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, song.Title)
	assert.Equal(t, DefaultArtist, song.Artist)
	assert.Nil(t, song.Year)
}

func TestExtractUntagged(t *testing.T) {
	_, err := Extract("noise.mp3", 256, bytes.NewReader(metatest.Untagged(256)))
	assert.ErrorIs(t, err, util.ErrNoTags)
}

func TestReadTagsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, metatest.Build(metatest.Tags{Title: "Disk"}, nil), 0o644))

	m, err := ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "Disk", m.Title())

	_, err = ReadTags(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}

func TestFromTagsNil(t *testing.T) {
	_, err := FromTags("p", "id", 0, nil)
	assert.ErrorIs(t, err, util.ErrNoTags)
}

func TestSongRecordRoundTrip(t *testing.T) {
	year, track, disc := uint16(2001), uint16(7), uint8(2)
	genre := "Rock"
	song := &Song{
		ID:        "abc",
		Path:      "/music/it's.mp3",
		Title:     `Say "Hi"`,
		Artist:    "Unknown",
		Album:     "",
		Year:      &year,
		Track:     &track,
		Disc:      &disc,
		Genre:     &genre,
		Format:    "ID3v2.3",
		FileType:  "MP3",
		SizeBytes: 4096,
	}

	rec, err := song.Record()
	require.NoError(t, err)

	row := record.RawRow{}
	for _, f := range SongDescriptor().Fields() {
		v, _ := rec.Get(f.Name)
		if v.IsNull() {
			continue // NULL columns never reach a raw row
		}
		lit, err := record.Encode(rec, f.Name)
		require.NoError(t, err)
		row[f.Name] = unquote(lit)
	}

	decoded, err := record.Decode(row, SongDescriptor())
	require.NoError(t, err)
	assert.Equal(t, song, SongFromRecord(decoded))
}

// unquote undoes QuoteText the way the engine does when reading a literal back
func unquote(lit string) string {
	if len(lit) < 2 || lit[0] != '\'' {
		return lit
	}
	var b bytes.Buffer
	body := lit[1 : len(lit)-1]
	for i := 0; i < len(body); i++ {
		b.WriteByte(body[i])
		if body[i] == '\'' {
			i++
		}
	}
	return b.String()
}

func TestCleanString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Song  Title  ", "Song Title"},
		{"Line\nBreak", "Line Break"},
		{"Bell\x07", "Bell"},
		{"Café", "Café"},
		{"", ""},
	}

	for _, tt := range tests {
		result := CleanString(tt.input)
		if result != tt.expected {
			t.Errorf("CleanString(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestSearchKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AC/DC", "acdc"},
		{"Simon & Garfunkel", "simon and garfunkel"},
		{"Don't Stop", "dont stop"},
		{"  Mixed_Case-Name ", "mixed case name"},
	}

	for _, tt := range tests {
		result := SearchKey(tt.input)
		if result != tt.expected {
			t.Errorf("SearchKey(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
