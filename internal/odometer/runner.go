package odometer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"
)

// Config holds the fixed discovery inputs for a corpus run.
type Config struct {
	// LogGlob locates the per-night log files.
	LogGlob string
	// SyslogPath is the live operational log, appended last to the file
	// list. Empty means no fixed file is appended.
	SyslogPath string
}

// Runner executes one full corpus pass: discover, per-file compute with
// cache, overlap bookkeeping, aggregate. Files are processed one at a time
// in a fixed order; the accepted span list and the cache are the only
// cross-file state.
type Runner struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewRunner creates a Runner backed by the given result cache.
func NewRunner(store Store, cfg Config) *Runner {
	return &Runner{store: store, cfg: cfg, now: time.Now}
}

// discover returns the ordered file list: glob matches sorted
// lexicographically, then the fixed operational log appended last.
func (r *Runner) discover() ([]string, error) {
	files, err := filepath.Glob(r.cfg.LogGlob)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", r.cfg.LogGlob, err)
	}
	sort.Strings(files)
	if r.cfg.SyslogPath != "" {
		files = append(files, r.cfg.SyslogPath)
	}
	return files, nil
}

// Run processes every discovered file in order and returns the corpus
// aggregate. A span overlap or a file with no valid records aborts the run
// with the corresponding typed error; undecodable files are skipped.
func (r *Runner) Run(ctx context.Context, progress *Progress) (*Aggregate, error) {
	files, err := r.discover()
	if err != nil {
		return nil, err
	}
	slog.Info("corpus discovered", "files", len(files))

	var (
		results []*FileResult
		spans   []FileSpan
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Dir(path)

		cached, ok, err := r.store.Get(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("cache get %q: %w", dir, err)
		}
		if ok {
			// Cached files contribute no span: their coverage was vetted
			// when the result was first computed.
			slog.Info("loading cached result", "dir", dir)
			if progress != nil {
				progress.CacheHits.Add(1)
				progress.FilesProcessed.Add(1)
			}
			results = append(results, cached)
			continue
		}
		if progress != nil {
			progress.CacheMisses.Add(1)
		}

		slog.Info("reading log", "path", path)
		res, span, err := processFile(path, r.now(), progress)
		if err != nil {
			var skip *FileSkippedError
			if errors.As(err, &skip) {
				slog.Warn("unable to read log, skipping", "path", path, "error", skip.Err)
				if progress != nil {
					progress.FilesSkipped.Add(1)
				}
				continue
			}
			return nil, err
		}

		if err := checkOverlap(spans, span); err != nil {
			return nil, err
		}
		if n := len(spans); n > 0 {
			slog.Info("gap since end of previous log",
				"path", path, "gap", span.Start.Sub(spans[n-1].End).String())
		}
		slog.Info("file covers",
			"path", path,
			"start", span.Start.Format(time.RFC3339),
			"end", span.End.Format(time.RFC3339),
			"timespan", span.End.Sub(span.Start).String())
		spans = append(spans, span)

		if err := r.store.Put(ctx, dir, res); err != nil {
			return nil, fmt.Errorf("cache put %q: %w", dir, err)
		}
		results = append(results, res)
		if progress != nil {
			progress.FilesProcessed.Add(1)
		}
	}

	agg := Summarize(results)
	agg.Spans = spans
	return agg, nil
}
