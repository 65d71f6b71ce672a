package odometer

import (
	"testing"

	"github.com/hilodev/csuodo/internal/csu"
)

func TestSummarizeSumsAndConvertsToMetres(t *testing.T) {
	a := &FileResult{}
	a.Mileage[0] = 1500 // mm
	a.Moves[0] = 3
	b := &FileResult{}
	b.Mileage[0] = 500
	b.Moves[0] = 1
	b.Mileage[10] = 250
	b.Moves[10] = 2

	agg := Summarize([]*FileResult{a, b})

	if got := agg.Mileage[0]; got != 2.0 {
		t.Errorf("bar 1 mileage: got %v m, want 2.0", got)
	}
	if got := agg.Moves[0]; got != 4 {
		t.Errorf("bar 1 moves: got %d, want 4", got)
	}
	if got := agg.Mileage[10]; got != 0.25 {
		t.Errorf("bar 11 mileage: got %v m, want 0.25", got)
	}
}

// TestSummarizeSlitTotals: bars 1 and 2 form slit 1, and the slit total is
// the sum of both arms.
func TestSummarizeSlitTotals(t *testing.T) {
	r := &FileResult{}
	r.Mileage[0] = 1000 // bar 1, left arm of slit 1
	r.Moves[0] = 2
	r.Mileage[1] = 3000 // bar 2, right arm of slit 1
	r.Moves[1] = 5
	r.Mileage[4] = 500 // bar 5, left arm of slit 3
	r.Moves[4] = 1

	agg := Summarize([]*FileResult{r})

	if got := agg.Slits[0]; got.Slit != 1 || got.Mileage != 4.0 || got.Moves != 7 {
		t.Errorf("slit 1: got %+v, want {1 4 7}", got)
	}
	if got := agg.Slits[2]; got.Slit != 3 || got.Mileage != 0.5 || got.Moves != 1 {
		t.Errorf("slit 3: got %+v, want {3 0.5 1}", got)
	}
	if agg.MaxSlitMileage != 4.0 {
		t.Errorf("MaxSlitMileage: got %v, want 4.0", agg.MaxSlitMileage)
	}
	if agg.MaxSlitMoves != 7 {
		t.Errorf("MaxSlitMoves: got %d, want 7", agg.MaxSlitMoves)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	a := &FileResult{}
	a.Mileage[7] = 120
	a.Moves[7] = 4
	b := &FileResult{}
	b.Mileage[7] = 30
	b.Moves[7] = 1
	c := &FileResult{}
	c.Mileage[30] = 900
	c.Moves[30] = 9

	x := Summarize([]*FileResult{a, b, c})
	y := Summarize([]*FileResult{c, b, a})

	if x.Mileage != y.Mileage || x.Moves != y.Moves {
		t.Error("aggregate depends on file order")
	}
}

func TestSummarizeEmptyCorpus(t *testing.T) {
	agg := Summarize(nil)
	if len(agg.Slits) != csu.NumSlits {
		t.Fatalf("slit count: got %d, want %d", len(agg.Slits), csu.NumSlits)
	}
	for i, st := range agg.Slits {
		if st.Slit != i+1 {
			t.Errorf("Slits[%d].Slit: got %d, want %d", i, st.Slit, i+1)
		}
		if st.Mileage != 0 || st.Moves != 0 {
			t.Errorf("Slits[%d]: got %+v, want zero totals", i, st)
		}
	}
	if agg.MaxSlitMileage != 0 || agg.MaxSlitMoves != 0 {
		t.Error("maxima of an empty corpus must be zero")
	}
}
