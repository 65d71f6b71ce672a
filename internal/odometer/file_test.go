package odometer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

// TestProcessFileReconstructsYearRollover covers a log whose month
// sequence is 11, 12, 12, 1, 2: one year boundary, so the start date must
// land one year before the directory's anchor year.
func TestProcessFileReconstructsYearRollover(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20210210", []string{
		logLine("Nov", 1, "08:00:00", 5, 10.0),
		logLine("Dec", 2, "09:00:00", 5, 11.0),
		logLine("Dec", 15, "10:00:00", 5, 12.0),
		logLine("Jan", 3, "11:00:00", 5, 13.0),
		logLine("Feb", 10, "12:00:00", 5, 14.0),
	})

	_, span, err := processFile(path, testNow, nil)
	if err != nil {
		t.Fatalf("processFile: %v", err)
	}

	wantStart := time.Date(2020, time.November, 1, 8, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2021, time.February, 10, 12, 0, 0, 0, time.UTC)
	if !span.Start.Equal(wantStart) {
		t.Errorf("Start: got %v, want %v", span.Start, wantStart)
	}
	if !span.End.Equal(wantEnd) {
		t.Errorf("End: got %v, want %v", span.End, wantEnd)
	}
}

func TestProcessFileSameYearSpan(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20190704", []string{
		logLine("Jul", 4, "03:00:00", 10, 100.0),
		logLine("Jul", 5, "04:00:00", 10, 105.0),
	})

	res, span, err := processFile(path, testNow, nil)
	if err != nil {
		t.Fatalf("processFile: %v", err)
	}
	if span.Start.Year() != 2019 || span.End.Year() != 2019 {
		t.Errorf("span years: got %d–%d, want 2019–2019", span.Start.Year(), span.End.Year())
	}
	if res.Moves[9] != 1 || res.Mileage[9] != 5.0 {
		t.Errorf("bar 10: got %d moves / %v mileage, want 1 / 5.0", res.Moves[9], res.Mileage[9])
	}
}

// TestProcessFileAnchorFallback exercises the current-UTC-year fallback
// for directories that are not YYYYMMDD dates.
func TestProcessFileAnchorFallback(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "syslogs", []string{
		logLine("Mar", 1, "00:00:00", 1, 1.0),
		logLine("Mar", 2, "00:00:00", 1, 2.0),
	})

	_, span, err := processFile(path, testNow, nil)
	if err != nil {
		t.Fatalf("processFile: %v", err)
	}
	if span.End.Year() != testNow.Year() {
		t.Errorf("End year: got %d, want %d", span.End.Year(), testNow.Year())
	}
}

func TestProcessFileNoValidRecords(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20190704", []string{
		"Jul  4 03:00:00 host csud: heartbeat ok",
		"Jul  4 03:01:00 host csud: heartbeat ok",
	})

	_, _, err := processFile(path, testNow, nil)
	if !errors.Is(err, ErrNoValidRecords) {
		t.Errorf("got %v, want ErrNoValidRecords", err)
	}
}

// TestProcessFileSingleRecordHasNoSpan: one record sets the start but the
// end stays unset, so the file's span cannot be reconstructed.
func TestProcessFileSingleRecordHasNoSpan(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20190704", []string{
		logLine("Jul", 4, "03:00:00", 10, 100.0),
	})

	_, _, err := processFile(path, testNow, nil)
	if !errors.Is(err, ErrNoValidRecords) {
		t.Errorf("got %v, want ErrNoValidRecords", err)
	}
}

func TestProcessFileSkipsBinaryContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "20190704")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "CSU.log")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := processFile(path, testNow, nil)
	var skip *FileSkippedError
	if !errors.As(err, &skip) {
		t.Errorf("got %v, want *FileSkippedError", err)
	}
}

// TestProcessFileBadPositionSkipsWholeFile: a corrupt numeric field is a
// file-level failure, not a per-line skip.
func TestProcessFileBadPositionSkipsWholeFile(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20190704", []string{
		logLine("Jul", 4, "03:00:00", 10, 100.0),
		"Jul  4 03:05:00 host csud: Record=<10,1,garbled,0,OK>",
		logLine("Jul", 4, "03:10:00", 10, 105.0),
	})

	_, _, err := processFile(path, testNow, nil)
	var skip *FileSkippedError
	if !errors.As(err, &skip) {
		t.Errorf("got %v, want *FileSkippedError", err)
	}
}

// TestProcessFileDiscardsBadTimestampLines: a bar record without a leading
// stamp is logged and dropped; the rest of the file still counts.
func TestProcessFileDiscardsBadTimestampLines(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "20190704", []string{
		logLine("Jul", 4, "03:00:00", 10, 100.0),
		"continuation line Record=<10,1,999.0,0,OK>",
		logLine("Jul", 4, "03:10:00", 10, 105.0),
	})

	var progress Progress
	res, _, err := processFile(path, testNow, &progress)
	if err != nil {
		t.Fatalf("processFile: %v", err)
	}
	if res.Moves[9] != 1 || res.Mileage[9] != 5.0 {
		t.Errorf("bar 10: got %d moves / %v mileage, want 1 / 5.0 (bad line must not count)",
			res.Moves[9], res.Mileage[9])
	}
	if progress.LinesSkipped.Load() != 1 {
		t.Errorf("LinesSkipped: got %d, want 1", progress.LinesSkipped.Load())
	}
	if progress.RecordsAccepted.Load() != 2 {
		t.Errorf("RecordsAccepted: got %d, want 2", progress.RecordsAccepted.Load())
	}
}
