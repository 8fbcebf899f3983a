package meta

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dhowden/tag"

	"github.com/franz/rstream/internal/util"
)

// ReadTags reads the embedded tags of the file at path
func ReadTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadTagsFrom(f)
}

// ReadTagsFrom reads tags using dhowden/tag. Files without any tag block
// yield util.ErrNoTags, which callers treat as a skip rather than a failure.
func ReadTagsFrom(r io.ReadSeeker) (tag.Metadata, error) {
	m, err := tag.ReadFrom(r)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return nil, util.ErrNoTags
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return m, nil
}

// Extract hashes the content of r for the song id, rewinds, and builds the
// song from the tags
func Extract(path string, size int64, r io.ReadSeeker) (*Song, error) {
	id, err := util.Identity(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewind %s: %v", util.ErrIdentity, path, err)
	}

	m, err := ReadTagsFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromTags(path, id, size, m)
}

// FromTags builds a song from a tag bundle. Missing titles and artists get
// placeholders; numbers that do not fit their column are left absent.
func FromTags(path, id string, size int64, m tag.Metadata) (*Song, error) {
	if m == nil {
		return nil, util.ErrNoTags
	}

	s := &Song{
		ID:        id,
		Path:      path,
		Title:     CleanString(m.Title()),
		Artist:    CleanString(m.Artist()),
		Album:     CleanString(m.Album()),
		Format:    string(m.Format()),
		FileType:  string(m.FileType()),
		SizeBytes: size,
	}

	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.Artist == "" {
		s.Artist = CleanString(m.AlbumArtist())
	}
	if s.Artist == "" {
		s.Artist = DefaultArtist
	}

	s.Year = toUint16(m.Year())

	track, total := m.Track()
	s.Track = toUint16(track)
	s.TrackTotal = toUint16(total)

	if disc, _ := m.Disc(); disc > 0 && disc <= math.MaxUint8 {
		d := uint8(disc)
		s.Disc = &d
	}

	s.Genre = nonEmpty(CleanString(m.Genre()))
	s.Composer = nonEmpty(CleanString(m.Composer()))

	return s, nil
}

func toUint16(n int) *uint16 {
	if n <= 0 || n > math.MaxUint16 {
		return nil
	}
	u := uint16(n)
	return &u
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
