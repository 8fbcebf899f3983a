package cluster

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/score"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// Group is a set of stored songs with different content that look like the
// same recording, best copy first
type Group struct {
	Key   string
	Songs []*meta.Song
}

// Keep returns the copy worth keeping
func (g *Group) Keep() *meta.Song {
	return g.Songs[0]
}

// Load reads every stored song and groups the likely duplicates
func Load(ctx context.Context, q store.Querier) ([]Group, error) {
	recs, err := store.GetAll(ctx, q, meta.Table, meta.SongDescriptor())
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}

	songs := make([]*meta.Song, 0, len(recs))
	for _, rec := range recs {
		songs = append(songs, meta.SongFromRecord(rec))
	}

	groups := Find(songs)
	util.DebugLog("Clustering: %d songs, %d duplicate groups", len(songs), len(groups))
	return groups, nil
}

// Find groups songs by GenerateClusterKey. Only groups with more than one
// member are returned, largest first, then by key.
func Find(songs []*meta.Song) []Group {
	byKey := make(map[string][]*meta.Song)
	for _, s := range songs {
		key := GenerateClusterKey(s)
		byKey[key] = append(byKey[key], s)
	}

	var groups []Group
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, Group{Key: key, Songs: score.Rank(members)})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Songs) != len(groups[j].Songs) {
			return len(groups[i].Songs) > len(groups[j].Songs)
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// GenerateClusterKey creates a grouping key from a song's tags.
//
// Songs are keyed by content, so a re-encode or a retagged copy of the same
// recording is stored as a separate song. The key brings those copies back
// together: artist|title|disc, with case, punctuation and bracket style
// folded away. Songs whose artist and title are both the defaults the
// extractor fills in are keyed by file name instead, so untagged files only
// group when their names match.
func GenerateClusterKey(s *meta.Song) string {
	artistNorm := ""
	if s.Artist != meta.DefaultArtist {
		artistNorm = NormalizeForClustering(meta.SearchKey(s.Artist))
	}
	titleNorm := ""
	if s.Title != meta.DefaultTitle {
		titleNorm = NormalizeForClustering(meta.SearchKey(s.Title))
	}

	if artistNorm == "" && titleNorm == "" {
		filename := filepath.Base(s.Path)
		filenameNoExt := strings.TrimSuffix(filename, filepath.Ext(filename))

		titleNorm = NormalizeForClustering(meta.SearchKey(filenameNoExt))
		artistNorm = "unknown"

		// Nameless files group per folder at most
		if titleNorm == "" {
			titleNorm = fmt.Sprintf("file_%s", filepath.Base(filepath.Dir(s.Path)))
		}
	}

	disc := 0
	if s.Disc != nil {
		disc = int(*s.Disc)
	}

	return fmt.Sprintf("%s|%s|disc%d", artistNorm, titleNorm, disc)
}

// NormalizeForClustering applies additional normalization for clustering
// Removes common patterns that shouldn't affect clustering
func NormalizeForClustering(text string) string {
	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	replacer := strings.NewReplacer(
		"(", " ", // Remove parentheses
		")", " ",
		"[", " ", // Remove brackets
		"]", " ",
		"{", " ",
		"}", " ",
		"&", "and", // Normalize ampersand
		"+", "and",
	)
	text = replacer.Replace(text)

	// Collapse whitespace
	return strings.Join(strings.Fields(text), " ")
}
