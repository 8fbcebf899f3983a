package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/report"
	httpserver "github.com/franz/rstream/internal/server"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

const statsTopN = 10

func (s *Server) registerSongTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_song",
			mcp.WithDescription("Get one song by its content id"),
			mcp.WithString("id", mcp.Description("Song id (hex digest of the file content)"), mcp.Required()),
		),
		s.handleGetSong,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_songs",
			mcp.WithDescription("List songs in storage order. Without page and per_page every song is returned"),
			mcp.WithNumber("page", mcp.Description("Zero-based page number")),
			mcp.WithNumber("per_page", mcp.Description("Songs per page")),
		),
		s.handleListSongs,
	)

	s.mcp.AddTool(
		mcp.NewTool("search_songs",
			mcp.WithDescription("Search songs by title, artist or album. Terms shorter than 3 characters match nothing"),
			mcp.WithString("term", mcp.Description("Search term"), mcp.Required()),
		),
		s.handleSearchSongs,
	)
}

func (s *Server) registerLibraryTools() {
	s.mcp.AddTool(
		mcp.NewTool("library_stats",
			mcp.WithDescription("Song, artist and album counts with the largest artists and albums"),
		),
		s.handleLibraryStats,
	)
}

func (s *Server) handleGetSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	rec, found, err := store.Get(ctx, s.store, meta.Table, meta.SongDescriptor(), id)
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("%v: song %s", util.ErrNotFound, id)), nil
	}
	return jsonResult(meta.SongFromRecord(rec))
}

func (s *Server) handleListSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	page, err := optionalUint(args, "page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perPage, err := optionalUint(args, "per_page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recs, err := store.GetAllWithPagination(ctx, s.store, meta.Table, meta.SongDescriptor(), page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	songs := make([]*meta.Song, 0, len(recs))
	for _, rec := range recs {
		songs = append(songs, meta.SongFromRecord(rec))
	}
	return jsonResult(songs)
}

func (s *Server) handleSearchSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, _ := req.GetArguments()["term"].(string)

	songs, err := httpserver.SearchSongs(ctx, s.store, term)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	return jsonResult(songs)
}

func (s *Server) handleLibraryStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := report.GenerateSummary(ctx, s.store, statsTopN)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	return jsonResult(summary)
}
