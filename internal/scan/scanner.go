package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc"

	"github.com/franz/rstream/internal/meta"
	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/report"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// AudioExtensions are the default supported audio file extensions
var AudioExtensions = []string{
	".mp3",
	".flac",
	".m4a",
	".aac",
	".ogg",
	".opus",
	".wav",
	".aiff",
	".aif",
	".wma",
	".ape",
	".wv",  // WavPack
	".mpc", // Musepack
}

// maxShownName bounds the file name displayed next to the progress bar
const maxShownName = 80

// Scanner walks a directory tree and upserts one song per tagged audio file
type Scanner struct {
	store          *store.Store
	fs             billy.Filesystem
	extensions     map[string]bool
	concurrency    int
	useTransaction bool
	showProgress   bool
	logger         *report.EventLogger
}

// Config holds scanner configuration
type Config struct {
	Store          *store.Store
	FS             billy.Filesystem // Rooted at the scan path; defaults to the OS filesystem
	AdditionalExts []string
	Concurrency    int
	UseTransaction bool // Wrap the whole walk in one transaction
	ShowProgress   bool
	Logger         *report.EventLogger
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	// Build extension map (case-insensitive)
	extMap := make(map[string]bool)
	for _, ext := range AudioExtensions {
		extMap[strings.ToLower(ext)] = true
	}
	for _, ext := range cfg.AdditionalExts {
		extMap[strings.ToLower(ext)] = true
	}

	return &Scanner{
		store:          cfg.Store,
		fs:             cfg.FS,
		extensions:     extMap,
		concurrency:    cfg.Concurrency,
		useTransaction: cfg.UseTransaction,
		showProgress:   cfg.ShowProgress,
		logger:         cfg.Logger,
	}
}

// Result counts what a scan did
type Result struct {
	FilesDiscovered int // audio files found by the walk
	Inserted        int
	Updated         int
	SkippedNoTags   int
	Failed          int
	Errors          []error
}

// Parsed is the number of files that produced a song
func (r *Result) Parsed() int {
	return r.Inserted + r.Updated
}

// upserter is implemented by both the store and a store transaction
type upserter interface {
	Upsert(ctx context.Context, table string, rec *record.Record) (store.Outcome, error)
}

type found struct {
	rel  string // path inside the scanned filesystem
	path string // path as stored in the songs table
}

// Scan walks root and upserts every tagged audio file beneath it. Files
// that cannot be hashed or carry no tags are skipped; failing to create
// the songs table aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	util.InfoLog("Starting scan of: %s", root)

	fsys := s.fs
	if fsys == nil {
		fsys = osfs.New(root)
	}

	if err := s.store.CreateTable(ctx, meta.Table, meta.SongDescriptor()); err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", meta.Table, err)
	}

	var w upserter = s.store
	var tx *store.Tx
	if s.useTransaction {
		var err error
		if tx, err = s.store.Begin(ctx); err != nil {
			return nil, err
		}
		defer tx.Rollback()
		w = tx
	}

	result := &Result{}
	var errMu sync.Mutex
	addError := func(err error) {
		errMu.Lock()
		result.Errors = append(result.Errors, err)
		errMu.Unlock()
	}

	var filesFound, filesProcessed, filesFailed, filesNoTags atomic.Int64

	var bar *progressbar.ProgressBar
	if s.showProgress && util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		// Indeterminate: the total is unknown until the walk ends
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	paths := make(chan found, 100)
	songs := make(chan *meta.Song, 100)

	// Single writer: every upsert of the run goes through this goroutine
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for song := range songs {
			s.write(ctx, w, song, result, addError)
		}
	}()

	var workers conc.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		workers.Go(func() {
			for f := range paths {
				song, err := s.extract(fsys, f)
				filesProcessed.Add(1)
				if bar != nil {
					bar.Describe("Scanning " + util.Truncate(filepath.Base(f.path), maxShownName))
					bar.Add(1)
				}

				switch {
				case errors.Is(err, util.ErrNoTags):
					filesNoTags.Add(1)
					util.DebugLog("No tags, skipping: %s", f.path)
					s.logger.LogSkip(f.path, "no tags")
				case err != nil:
					filesFailed.Add(1)
					util.WarnLog("Skipping %s: %v", f.path, err)
					s.logger.LogError(report.EventScan, f.path, err)
					addError(err)
				default:
					s.logger.LogScan(song.ID, song.Path, song.SizeBytes)
					songs <- song
				}
			}
		})
	}

	walkErr := billyutil.Walk(fsys, "/", func(rel string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", rel, err)
			addError(fmt.Errorf("access error: %s: %w", rel, err))
			return nil // Continue walking
		}

		if info.IsDir() || !s.isAudioFile(rel) {
			return nil
		}

		filesFound.Add(1)
		select {
		case paths <- found{rel: rel, path: filepath.Join(root, rel)}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	close(paths)
	workers.Wait()
	close(songs)
	<-writerDone

	if bar != nil {
		bar.Finish()
	}

	result.FilesDiscovered = int(filesFound.Load())
	result.SkippedNoTags = int(filesNoTags.Load())
	result.Failed += int(filesFailed.Load())

	if walkErr != nil {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return result, err
		}
	}

	util.SuccessLog("%d file(s) parsed", result.Parsed())
	util.InfoLog("Scan complete: %d found, %d inserted, %d updated, %d without tags, %d failed",
		result.FilesDiscovered, result.Inserted, result.Updated, result.SkippedNoTags, result.Failed)

	return result, nil
}

// extract hashes and tags one file
func (s *Scanner) extract(fsys billy.Filesystem, f found) (*meta.Song, error) {
	file, err := fsys.Open(f.rel)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", util.ErrIdentity, f.path, err)
	}
	defer file.Close()

	info, err := fsys.Stat(f.rel)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", util.ErrIdentity, f.path, err)
	}

	return meta.Extract(f.path, info.Size(), file)
}

// write upserts one song; only the writer goroutine touches the counters
func (s *Scanner) write(ctx context.Context, w upserter, song *meta.Song, result *Result, addError func(error)) {
	rec, err := song.Record()
	if err != nil {
		result.Failed++
		addError(fmt.Errorf("%s: %w", song.Path, err))
		return
	}

	outcome, err := w.Upsert(ctx, meta.Table, rec)
	if err != nil {
		result.Failed++
		util.ErrorLog("Failed to store %s: %v", song.Path, err)
		s.logger.LogError(report.EventUpsert, song.Path, err)
		addError(fmt.Errorf("%s: %w", song.Path, err))
		return
	}

	switch outcome {
	case store.Inserted:
		result.Inserted++
	case store.Updated:
		result.Updated++
	}
	util.DebugLog("%s %s (%s)", outcome, song.Path, song.ID[:12])
	s.logger.LogUpsert(song.ID, song.Path, outcome.String())
}

// isAudioFile checks if a file has a supported audio extension
func (s *Scanner) isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.extensions[ext]
}

// GetSupportedExtensions returns the list of supported extensions
func (s *Scanner) GetSupportedExtensions() []string {
	exts := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		exts = append(exts, ext)
	}
	return exts
}
