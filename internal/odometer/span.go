package odometer

import (
	"fmt"
	"time"
)

// FileSpan is the inclusive time interval one log file's records cover,
// after year reconstruction.
type FileSpan struct {
	Path  string
	Start time.Time
	End   time.Time
}

// contains reports whether t falls inside the span, endpoints included.
func (s FileSpan) contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// OverlapError reports two log files whose reconstructed spans overlap.
// Overlapping coverage means the same hardware motion would be counted
// twice, so the whole corpus computation is refused rather than one file
// skipped.
type OverlapError struct {
	New      FileSpan
	Existing FileSpan
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("log span overlap: %s starts %s inside %s (%s to %s)",
		e.New.Path, e.New.Start.Format(time.RFC3339),
		e.Existing.Path,
		e.Existing.Start.Format(time.RFC3339), e.Existing.End.Format(time.RFC3339))
}

// checkOverlap compares a candidate span against all previously accepted
// spans, in acceptance order. Which conflicting pair is reported depends
// on that order; correctness does not.
func checkOverlap(accepted []FileSpan, candidate FileSpan) error {
	for _, s := range accepted {
		if s.contains(candidate.Start) {
			return &OverlapError{New: candidate, Existing: s}
		}
	}
	return nil
}
