// Package metatest builds small tagged audio files for tests.
package metatest

import (
	"bytes"
	"encoding/binary"
)

// Tags are the ID3v2.3 text frames written by Build. Empty fields are omitted.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   string
	Track  string
	Genre  string
}

// Build returns an ID3v2.3 tag block holding t, followed by audio
func Build(t Tags, audio []byte) []byte {
	var frames bytes.Buffer
	for _, f := range []struct{ id, text string }{
		{"TIT2", t.Title},
		{"TPE1", t.Artist},
		{"TALB", t.Album},
		{"TYER", t.Year},
		{"TRCK", t.Track},
		{"TCON", t.Genre},
	} {
		if f.text == "" {
			continue
		}
		writeFrame(&frames, f.id, f.text)
	}
	frames.Write(make([]byte, 16)) // padding

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{3, 0, 0})
	out.Write(syncsafe(frames.Len()))
	out.Write(frames.Bytes())
	out.Write(audio)
	return out.Bytes()
}

// Untagged returns n bytes with no recognizable tag block
func Untagged(n int) []byte {
	return bytes.Repeat([]byte{0xAA}, n)
}

func writeFrame(buf *bytes.Buffer, id, text string) {
	data := append([]byte{0}, text...) // ISO-8859-1
	buf.WriteString(id)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	buf.Write(size[:])
	buf.Write([]byte{0, 0})
	buf.Write(data)
}

func syncsafe(n int) []byte {
	return []byte{
		byte(n>>21) & 0x7f,
		byte(n>>14) & 0x7f,
		byte(n>>7) & 0x7f,
		byte(n) & 0x7f,
	}
}
