package odometer

import (
	"errors"
	"testing"
	"time"
)

func span(path string, start, end string) FileSpan {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return FileSpan{Path: path, Start: s, End: e}
}

func TestCheckOverlapDisjoint(t *testing.T) {
	accepted := []FileSpan{
		span("/logs/a/CSU.log", "2019-01-01T00:00:00Z", "2019-02-01T00:00:00Z"),
		span("/logs/b/CSU.log", "2019-03-01T00:00:00Z", "2019-04-01T00:00:00Z"),
	}
	candidate := span("/logs/c/CSU.log", "2019-05-01T00:00:00Z", "2019-06-01T00:00:00Z")
	if err := checkOverlap(accepted, candidate); err != nil {
		t.Errorf("checkOverlap: got %v, want nil", err)
	}
}

func TestCheckOverlapStartInsideExisting(t *testing.T) {
	accepted := []FileSpan{
		span("/logs/a/CSU.log", "2019-01-01T00:00:00Z", "2019-02-01T00:00:00Z"),
	}
	candidate := span("/logs/b/CSU.log", "2019-01-15T00:00:00Z", "2019-03-01T00:00:00Z")

	err := checkOverlap(accepted, candidate)
	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("got %v, want *OverlapError", err)
	}
	if overlap.Existing.Path != "/logs/a/CSU.log" {
		t.Errorf("Existing.Path: got %q, want /logs/a/CSU.log", overlap.Existing.Path)
	}
	if overlap.New.Path != "/logs/b/CSU.log" {
		t.Errorf("New.Path: got %q, want /logs/b/CSU.log", overlap.New.Path)
	}
}

// TestCheckOverlapEndpointsInclusive verifies both span endpoints count as
// inside: a start exactly at an existing end is still an overlap.
func TestCheckOverlapEndpointsInclusive(t *testing.T) {
	accepted := []FileSpan{
		span("/logs/a/CSU.log", "2019-01-01T00:00:00Z", "2019-02-01T00:00:00Z"),
	}
	for _, start := range []string{"2019-01-01T00:00:00Z", "2019-02-01T00:00:00Z"} {
		candidate := span("/logs/b/CSU.log", start, "2019-12-01T00:00:00Z")
		if err := checkOverlap(accepted, candidate); err == nil {
			t.Errorf("start %s: got nil, want overlap", start)
		}
	}
	// One second past the existing end is no longer inside.
	candidate := span("/logs/b/CSU.log", "2019-02-01T00:00:01Z", "2019-12-01T00:00:00Z")
	if err := checkOverlap(accepted, candidate); err != nil {
		t.Errorf("start just past end: got %v, want nil", err)
	}
}
