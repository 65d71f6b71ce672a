package csulog

import (
	"errors"
	"testing"
	"time"
)

func TestParseLineAcceptsRecord(t *testing.T) {
	line := "Nov  7 13:01:02 mosfireserver csud: Record=<05,1,137.55,0,OK>"
	rec, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.Bar != 5 {
		t.Errorf("Bar: got %d, want 5", rec.Bar)
	}
	want := Stamp{Month: time.November, Day: 7, Hour: 13, Minute: 1, Second: 2}
	if rec.Stamp != want {
		t.Errorf("Stamp: got %+v, want %+v", rec.Stamp, want)
	}
	if rec.Position != 137.55 {
		t.Errorf("Position: got %v, want 137.55", rec.Position)
	}
}

func TestParseLineZeroPadsDay(t *testing.T) {
	// Syslog space-pads single-digit days; the parser must still accept them.
	rec, err := ParseLine("Jan  3 00:15:59 host csud: Record=<92,1,0.25,0>")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.Stamp.Day != 3 {
		t.Errorf("Day: got %d, want 3", rec.Stamp.Day)
	}
	if rec.Bar != 92 {
		t.Errorf("Bar: got %d, want 92", rec.Bar)
	}
}

func TestParseLineNonRecordLines(t *testing.T) {
	lines := []string{
		"",
		"Nov  7 13:01:02 host csud: heartbeat ok",
		"Nov  7 13:01:02 host csud: Setup=<05,1,137.55>", // wrong keyword
	}
	for _, line := range lines {
		if _, err := ParseLine(line); !errors.Is(err, ErrNoRecord) {
			t.Errorf("ParseLine(%q): got %v, want ErrNoRecord", line, err)
		}
	}
}

func TestParseLineBadTimestamp(t *testing.T) {
	// Bar record present but no leading syslog stamp.
	_, err := ParseLine("garbage prefix Record=<05,1,137.55,0>")
	if !errors.Is(err, ErrBadTimestamp) {
		t.Errorf("got %v, want ErrBadTimestamp", err)
	}
	// Month name that is not a month.
	_, err = ParseLine("Xyz  7 13:01:02 host csud: Record=<05,1,137.55,0>")
	if !errors.Is(err, ErrBadTimestamp) {
		t.Errorf("got %v, want ErrBadTimestamp", err)
	}
}

func TestParseLineBadPositionIsFatalClass(t *testing.T) {
	_, err := ParseLine("Nov  7 13:01:02 host csud: Record=<05,1,not-a-number,0>")
	var bad *BadPositionError
	if !errors.As(err, &bad) {
		t.Fatalf("got %v, want *BadPositionError", err)
	}
	if bad.Field != "not-a-number" {
		t.Errorf("Field: got %q, want %q", bad.Field, "not-a-number")
	}
}

func TestStampWithYear(t *testing.T) {
	s := Stamp{Month: time.February, Day: 29, Hour: 1, Minute: 2, Second: 3}
	got := s.WithYear(2020)
	want := time.Date(2020, time.February, 29, 1, 2, 3, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WithYear: got %v, want %v", got, want)
	}
}
