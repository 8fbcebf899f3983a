package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/squirrel"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// MinSearchTerm is the shortest term a search looks up
const MinSearchTerm = 3

// SearchSongs finds songs whose title, artist or album contains term, best
// matches first. Terms shorter than MinSearchTerm match nothing.
func SearchSongs(ctx context.Context, q store.Querier, term string) ([]*meta.Song, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchTerm {
		return []*meta.Song{}, nil
	}

	query, args, err := searchQuery(term)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}

	rows, err := q.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	recs := store.DecodeAll(rows, meta.SongDescriptor())
	songs := make([]*meta.Song, 0, len(recs))
	for _, rec := range recs {
		songs = append(songs, meta.SongFromRecord(rec))
	}
	return rankSongs(songs, term), nil
}

func searchQuery(term string) (string, []any, error) {
	pattern := likePattern(term)
	where := squirrel.Or{
		squirrel.Expr(`title LIKE ? ESCAPE '\'`, pattern),
		squirrel.Expr(`artist LIKE ? ESCAPE '\'`, pattern),
		squirrel.Expr(`album LIKE ? ESCAPE '\'`, pattern),
	}
	return squirrel.Select("*").From(meta.Table).Where(where).ToSql()
}

// likePattern escapes LIKE wildcards in term and wraps it in %...%
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

type scored struct {
	song  *meta.Song
	score float64
}

// rankSongs orders songs by their best Jaro-Winkler similarity to term
func rankSongs(songs []*meta.Song, term string) []*meta.Song {
	key := meta.SearchKey(term)
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	ranked := make([]scored, len(songs))
	for i, song := range songs {
		best := 0.0
		for _, field := range []string{song.Title, song.Artist, song.Album} {
			if sim := strutil.Similarity(key, meta.SearchKey(field), metric); sim > best {
				best = sim
			}
		}
		ranked[i] = scored{song: song, score: best}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]*meta.Song, len(ranked))
	for i, r := range ranked {
		out[i] = r.song
	}
	return out
}
