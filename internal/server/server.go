// Package server exposes the song library over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// Name is reported by GET /
const Name = "rstream"

//go:embed assets
var embeddedAssets embed.FS

// Options configures the HTTP listener
type Options struct {
	Host               string `validate:"required,ip"`
	Port               int    `validate:"min=1,max=65535"`
	StaticAssetsFolder string `validate:"omitempty,dir"`
	Version            string
}

// Validate checks the options before anything is bound
func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return nil
}

// Addr is the host:port the server listens on
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Server serves the songs table and the browser assets
type Server struct {
	store  *store.Store
	opts   Options
	router *mux.Router
}

// New creates a server over st. Options are validated here so a bad host or
// port is reported before the store is touched by any request.
func New(st *store.Store, opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Server{store: st, opts: opts, router: mux.NewRouter()}

	assets, err := s.assets()
	if err != nil {
		return nil, err
	}

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/songs", s.handleSongs).Methods(http.MethodGet)
	s.router.HandleFunc("/songs/{id}", s.handleSong).Methods(http.MethodGet)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/albums", s.handleAlbums).Methods(http.MethodGet)
	s.router.HandleFunc("/artists", s.handleArtists).Methods(http.MethodGet)
	s.router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))
	s.router.Use(logRequests)

	return s, nil
}

// assets returns the folder given on the command line, or the embedded copy
func (s *Server) assets() (fs.FS, error) {
	if s.opts.StaticAssetsFolder != "" {
		util.DebugLog("serving static assets at %s", s.opts.StaticAssetsFolder)
		return os.DirFS(s.opts.StaticAssetsFolder), nil
	}
	util.DebugLog("serving embedded assets")
	return fs.Sub(embeddedAssets, "assets")
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// statusRecorder captures the status code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		util.InfoLog("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}
