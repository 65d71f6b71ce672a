// Package csulog parses CSU hardware motion logs: syslog-style lines whose
// leading timestamps carry month, day and time of day but no year.
package csulog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// A line is a candidate record iff it carries a two-digit bar id in a
	// Record=<NN, field.
	recordRe = regexp.MustCompile(`Record=<(\d\d),`)
	// Leading syslog stamp: month name, day (may be space-padded), HH:MM:SS.
	stampRe = regexp.MustCompile(`^(\w+)\s+(\d+)\s+(\d+:\d+:\d+)`)
)

// ErrNoRecord marks a line with no bar record at all. Callers skip these
// silently; most log lines are unrelated daemon chatter.
var ErrNoRecord = errors.New("no bar record on line")

// ErrBadTimestamp marks a line whose bar record matched but whose leading
// timestamp did not parse. Callers log the line and discard it.
var ErrBadTimestamp = errors.New("bar record without parsable timestamp")

// BadPositionError marks a record whose position field is not numeric.
// Unlike the sentinel errors above this invalidates the whole file: a
// corrupt numeric field means the log bytes cannot be trusted.
type BadPositionError struct {
	Field string
	Err   error
}

func (e *BadPositionError) Error() string {
	return fmt.Sprintf("bad position field %q: %v", e.Field, e.Err)
}

func (e *BadPositionError) Unwrap() error { return e.Err }

// Stamp is a truncated log timestamp: month, day and time of day with no
// year. The zero Stamp is not a valid reading.
type Stamp struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// WithYear resolves the stamp into an absolute UTC time in the given year.
func (s Stamp) WithYear(year int) time.Time {
	return time.Date(year, s.Month, s.Day, s.Hour, s.Minute, s.Second, 0, time.UTC)
}

// Record is one accepted bar position reading.
type Record struct {
	Bar      int
	Stamp    Stamp
	Position float64 // log native unit (millimetres of bar travel)
}

// ParseLine extracts a Record from one raw log line. The position is the
// third comma-separated field of the whole line; the syslog prefix carries
// no commas, so the first comma is the one inside Record=<NN,.
func ParseLine(line string) (Record, error) {
	rm := recordRe.FindStringSubmatch(line)
	if rm == nil {
		return Record{}, ErrNoRecord
	}
	bar, _ := strconv.Atoi(rm[1])

	sm := stampRe.FindStringSubmatch(line)
	if sm == nil {
		return Record{}, ErrBadTimestamp
	}
	day, err := strconv.Atoi(sm[2])
	if err != nil {
		return Record{}, ErrBadTimestamp
	}
	// Zero-pad the day so the fixed-width layout accepts "Nov  7 ..." lines.
	stamp, err := time.Parse("Jan 02 15:04:05", fmt.Sprintf("%s %02d %s", sm[1], day, sm[3]))
	if err != nil {
		return Record{}, ErrBadTimestamp
	}

	fields := strings.Split(strings.TrimRight(line, "\n"), ",")
	if len(fields) < 3 {
		return Record{}, &BadPositionError{Field: "", Err: errors.New("fewer than three comma-separated fields")}
	}
	pos, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Record{}, &BadPositionError{Field: fields[2], Err: err}
	}

	return Record{
		Bar: bar,
		Stamp: Stamp{
			Month:  stamp.Month(),
			Day:    stamp.Day(),
			Hour:   stamp.Hour(),
			Minute: stamp.Minute(),
			Second: stamp.Second(),
		},
		Position: pos,
	}, nil
}
