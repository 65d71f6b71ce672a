package odometer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hilodev/csuodo/internal/csu"
	"github.com/hilodev/csuodo/internal/csulog"
)

// ErrNoValidRecords marks a log file that produced fewer than two usable
// records: its covered span can never be reconstructed, which is a
// precondition violation for overlap bookkeeping, so the run aborts.
var ErrNoValidRecords = errors.New("log file contains no valid records")

// FileSkippedError wraps a condition that invalidates one file's
// contribution without failing the run: undecodable bytes or a corrupt
// numeric field. No result is cached for a skipped file.
type FileSkippedError struct {
	Path string
	Err  error
}

func (e *FileSkippedError) Error() string {
	return fmt.Sprintf("skipping %s: %v", e.Path, e.Err)
}

func (e *FileSkippedError) Unwrap() error { return e.Err }

var errNotText = errors.New("content is not valid UTF-8")

// processFile computes the odometer contribution and reconstructed span of
// one log file. The whole file is read at once; CSU logs are small enough
// that streaming buys nothing. now anchors the fallback year for files
// whose directory name is not a date.
func processFile(path string, now time.Time, progress *Progress) (*FileResult, FileSpan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, FileSpan{}, fmt.Errorf("read log %q: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return nil, FileSpan{}, &FileSkippedError{Path: path, Err: errNotText}
	}

	lines := strings.Split(string(raw), "\n")
	slog.Info("analyzing log", "path", path, "lines", len(lines))

	var (
		acc     accumulator
		tracker csulog.RolloverTracker
		first   *csulog.Stamp
		last    *csulog.Stamp
	)
	for _, line := range lines {
		if progress != nil {
			progress.LinesRead.Add(1)
		}
		rec, err := csulog.ParseLine(line)
		switch {
		case errors.Is(err, csulog.ErrNoRecord):
			continue
		case errors.Is(err, csulog.ErrBadTimestamp):
			slog.Warn("discarding record line with bad timestamp", "path", path, "line", line)
			if progress != nil {
				progress.LinesSkipped.Add(1)
			}
			continue
		case err != nil:
			// Bad position field: the log bytes cannot be trusted.
			return nil, FileSpan{}, &FileSkippedError{Path: path, Err: err}
		}

		if !csu.Valid(rec.Bar) {
			slog.Warn("discarding record with out-of-range bar", "path", path, "bar", rec.Bar)
			if progress != nil {
				progress.LinesSkipped.Add(1)
			}
			continue
		}

		tracker.Observe(rec.Stamp.Month)
		if first == nil {
			s := rec.Stamp
			first = &s
		} else {
			s := rec.Stamp
			last = &s
		}
		acc.observe(rec.Bar, rec.Position)
		if progress != nil {
			progress.RecordsAccepted.Add(1)
		}
	}

	if first == nil || last == nil {
		return nil, FileSpan{}, fmt.Errorf("%s: %w", path, ErrNoValidRecords)
	}

	anchor, ok := csulog.AnchorYear(filepath.Dir(path), now)
	if !ok {
		slog.Warn("directory name is not a date, anchoring to current year",
			"dir", filepath.Dir(path), "year", anchor)
	}
	span := FileSpan{
		Path:  path,
		Start: first.WithYear(anchor - tracker.Rollovers()),
		End:   last.WithYear(anchor),
	}
	return &acc.result, span, nil
}
