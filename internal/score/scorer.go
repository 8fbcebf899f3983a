package score

import (
	"sort"
	"strings"

	"github.com/franz/rstream/internal/meta"
)

// Quality calculates a quality score for a stored song
// Higher score = better copy to keep
func Quality(s *meta.Song) float64 {
	score := 0.0

	// 1. Container tier (largest weight)
	lossless := isLossless(s.FileType)
	score += getFileTypeScore(s.FileType)
	if lossless {
		score += 10.0
	}

	// 2. Tag completeness bonus
	score += getTagCompletenessScore(s)

	// 3. File size bonus (larger is better for lossless, up to a point)
	if lossless && s.SizeBytes > 0 {
		sizeMB := float64(s.SizeBytes) / (1024.0 * 1024.0)
		if sizeMB > 50 {
			score += 2.0
		} else if sizeMB > 20 {
			score += 1.0
		}
	}

	return score
}

// isLossless reports whether the tag reader's file type is a lossless container
func isLossless(fileType string) bool {
	switch strings.ToUpper(fileType) {
	case "FLAC", "ALAC", "DSF":
		return true
	}
	return false
}

// getFileTypeScore returns score based on the file type the tag reader saw
func getFileTypeScore(fileType string) float64 {
	switch strings.ToUpper(fileType) {
	case "FLAC", "ALAC":
		return 40.0
	case "DSF":
		return 35.0
	case "M4A", "M4B", "M4P":
		return 20.0 // AAC in MP4
	case "OGG":
		return 18.0
	case "MP3":
		return 15.0
	default:
		return 10.0 // Unknown container
	}
}

// getTagCompletenessScore returns bonus for complete tags
func getTagCompletenessScore(s *meta.Song) float64 {
	score := 0.0

	// Core tags present
	if s.Artist != "" && s.Artist != meta.DefaultArtist {
		score += 1.0
	}
	if s.Album != "" {
		score += 1.0
	}
	if s.Title != "" && s.Title != meta.DefaultTitle {
		score += 1.0
	}
	if s.Track != nil && *s.Track > 0 {
		score += 1.0
	}

	// Bonus for complete tagging
	if score >= 4.0 {
		score += 1.0
	}

	return score
}

// better reports whether a should be kept over b
// Tie-breakers: highest score → largest file → lexical path
func better(a, b *meta.Song) bool {
	sa, sb := Quality(a), Quality(b)
	if sa != sb {
		return sa > sb
	}
	if a.SizeBytes != b.SizeBytes {
		return a.SizeBytes > b.SizeBytes
	}
	return a.Path < b.Path
}

// Rank orders songs best first, deterministically
func Rank(songs []*meta.Song) []*meta.Song {
	out := append([]*meta.Song(nil), songs...)
	sort.SliceStable(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// Best returns the copy worth keeping, or nil for no songs
func Best(songs []*meta.Song) *meta.Song {
	if len(songs) == 0 {
		return nil
	}
	winner := songs[0]
	for _, candidate := range songs[1:] {
		if better(candidate, winner) {
			winner = candidate
		}
	}
	return winner
}
