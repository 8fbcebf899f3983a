package meta

import (
	"github.com/franz/rstream/internal/record"
)

// Table is where songs are stored
const Table = "songs"

const (
	DefaultTitle  = "<No title>"
	DefaultArtist = "Unknown"
)

// songDescriptor is the column layout of the songs table, in column order
var songDescriptor = record.MustDescriptor(
	record.F("id", record.Text()),
	record.F("path", record.Text()),
	record.F("title", record.Text()),
	record.F("artist", record.Text()),
	record.F("album", record.Text()),
	record.F("year", record.Optional(record.Uint(16))),
	record.F("track", record.Optional(record.Uint(16))),
	record.F("track_total", record.Optional(record.Uint(16))),
	record.F("disc", record.Optional(record.Uint(8))),
	record.F("genre", record.Optional(record.Text())),
	record.F("composer", record.Optional(record.Text())),
	record.F("format", record.Text()),
	record.F("file_type", record.Text()),
	record.F("size_bytes", record.Int(64)),
)

// SongDescriptor returns the descriptor of the songs table
func SongDescriptor() *record.Descriptor {
	return songDescriptor
}

// Song is one tagged audio file
type Song struct {
	ID         string  `json:"id"`
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Year       *uint16 `json:"year,omitempty"`
	Track      *uint16 `json:"track,omitempty"`
	TrackTotal *uint16 `json:"track_total,omitempty"`
	Disc       *uint8  `json:"disc,omitempty"`
	Genre      *string `json:"genre,omitempty"`
	Composer   *string `json:"composer,omitempty"`
	Format     string  `json:"format"`
	FileType   string  `json:"file_type"`
	SizeBytes  int64   `json:"size_bytes"`
}

// Record converts the song into a typed record of the songs descriptor
func (s *Song) Record() (*record.Record, error) {
	r := record.New(songDescriptor)

	set := []struct {
		name string
		v    record.Value
	}{
		{"id", record.TextValue(s.ID)},
		{"path", record.TextValue(s.Path)},
		{"title", record.TextValue(s.Title)},
		{"artist", record.TextValue(s.Artist)},
		{"album", record.TextValue(s.Album)},
		{"year", optUint16(s.Year)},
		{"track", optUint16(s.Track)},
		{"track_total", optUint16(s.TrackTotal)},
		{"disc", optUint8(s.Disc)},
		{"genre", optText(s.Genre)},
		{"composer", optText(s.Composer)},
		{"format", record.TextValue(s.Format)},
		{"file_type", record.TextValue(s.FileType)},
		{"size_bytes", record.IntValue(s.SizeBytes)},
	}
	for _, f := range set {
		if err := r.Set(f.name, f.v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SongFromRecord rebuilds a song from a record decoded with the songs descriptor
func SongFromRecord(r *record.Record) *Song {
	s := &Song{
		ID:       r.ID(),
		Path:     r.Text("path"),
		Title:    r.Text("title"),
		Artist:   r.Text("artist"),
		Album:    r.Text("album"),
		Format:   r.Text("format"),
		FileType: r.Text("file_type"),
	}

	if v, ok := r.Get("size_bytes"); ok {
		s.SizeBytes, _ = v.Int()
	}
	s.Year = getUint16(r, "year")
	s.Track = getUint16(r, "track")
	s.TrackTotal = getUint16(r, "track_total")
	if v, ok := r.Get("disc"); ok {
		if n, ok := v.Uint(); ok {
			d := uint8(n)
			s.Disc = &d
		}
	}
	s.Genre = getText(r, "genre")
	s.Composer = getText(r, "composer")
	return s
}

func optUint16(p *uint16) record.Value {
	if p == nil {
		return record.Null()
	}
	return record.UintValue(uint64(*p))
}

func optUint8(p *uint8) record.Value {
	if p == nil {
		return record.Null()
	}
	return record.UintValue(uint64(*p))
}

func optText(p *string) record.Value {
	if p == nil {
		return record.Null()
	}
	return record.TextValue(*p)
}

func getUint16(r *record.Record, name string) *uint16 {
	v, ok := r.Get(name)
	if !ok {
		return nil
	}
	n, ok := v.Uint()
	if !ok {
		return nil
	}
	u := uint16(n)
	return &u
}

func getText(r *record.Record, name string) *string {
	v, ok := r.Get(name)
	if !ok {
		return nil
	}
	s, ok := v.Text()
	if !ok {
		return nil
	}
	return &s
}
