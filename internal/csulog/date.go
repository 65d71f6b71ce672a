package csulog

import (
	"path/filepath"
	"time"
)

// Instrument logs live in per-night directories named YYYYMMDD.
const dirDateLayout = "20060102"

// RolloverTracker infers year boundaries from a truncated log's month
// sequence. Months only move forward in file order, so a numeric decrease
// means the log crossed into a new calendar year. The count never
// decrements.
//
// Only a single rollover is reconstructed correctly: the file start is
// assumed to be at most one year before the file end. Logs spanning more
// than one year boundary are outside this design.
type RolloverTracker struct {
	lastMonth time.Month
	rollovers int
}

// Observe folds one month into the tracker, in file order.
func (t *RolloverTracker) Observe(m time.Month) {
	if t.lastMonth != 0 && m < t.lastMonth {
		t.rollovers++
	}
	t.lastMonth = m
}

// Rollovers returns the number of forward year boundaries seen so far.
func (t *RolloverTracker) Rollovers() int { return t.rollovers }

// AnchorYear derives the calendar year a log file's final records belong
// to from its directory basename. Directories that are not YYYYMMDD dates
// fall back to the year of now in UTC; ok is false on that path so the
// caller can surface the approximation, which can mis-date historical
// files.
func AnchorYear(dir string, now time.Time) (year int, ok bool) {
	if t, err := time.Parse(dirDateLayout, filepath.Base(dir)); err == nil {
		return t.Year(), true
	}
	return now.UTC().Year(), false
}
