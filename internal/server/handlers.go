package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/report"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

var errBadParam = errors.New("bad query parameter")

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s %s", Name, s.opts.Version)
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	recs, err := store.GetAllWithPagination(r.Context(), s.store, meta.Table, meta.SongDescriptor(), page, perPage)
	if err != nil {
		util.ErrorLog("list songs: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	songs := make([]*meta.Song, 0, len(recs))
	for _, rec := range recs {
		songs = append(songs, meta.SongFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, found, err := store.Get(r.Context(), s.store, meta.Table, meta.SongDescriptor(), id)
	if err != nil {
		util.ErrorLog("get song %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: song %s", util.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, meta.SongFromRecord(rec))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	songs, err := SearchSongs(r.Context(), s.store, r.URL.Query().Get("term"))
	if err != nil {
		util.ErrorLog("search: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := report.Albums(r.Context(), s.store, 0)
	if err != nil {
		util.ErrorLog("list albums: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := report.Artists(r.Context(), s.store, 0)
	if err != nil {
		util.ErrorLog("list artists: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

// pageParams reads the optional page and per_page query parameters
func pageParams(r *http.Request) (page, perPage *uint32, err error) {
	parse := func(name string) (*uint32, error) {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", errBadParam, name, raw)
		}
		v := uint32(n)
		return &v, nil
	}

	if page, err = parse("page"); err != nil {
		return nil, nil, err
	}
	if perPage, err = parse("per_page"); err != nil {
		return nil, nil, err
	}
	return page, perPage, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.WarnLog("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
