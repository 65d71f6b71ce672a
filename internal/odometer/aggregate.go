package odometer

import "github.com/hilodev/csuodo/internal/csu"

// Log positions are millimetres of bar travel; totals are reported in
// metres.
const mileageUnitDivisor = 1000.0

// SlitTotal sums the two arms of one slit.
type SlitTotal struct {
	Slit    int     `json:"slit"`
	Mileage float64 `json:"mileage_m"`
	Moves   int64   `json:"nmoves"`
}

// Aggregate is the corpus-wide odometer: element-wise sums over every
// processed file. It is derived from the per-file results on every run and
// never read back as input.
type Aggregate struct {
	Mileage [csu.NumBars]float64 // metres
	Moves   [csu.NumBars]int64
	Slits   [csu.NumSlits]SlitTotal

	// Maxima across slits, for downstream chart scaling.
	MaxSlitMileage float64
	MaxSlitMoves   int64

	// Spans of the files computed fresh this run, in acceptance order.
	Spans []FileSpan
}

// Summarize folds the per-file results into corpus totals. The sum is
// order-independent; processing order only affects report appearance
// downstream.
func Summarize(results []*FileResult) *Aggregate {
	agg := &Aggregate{}
	for _, r := range results {
		for i := range r.Mileage {
			agg.Mileage[i] += r.Mileage[i]
			agg.Moves[i] += r.Moves[i]
		}
	}
	for i := range agg.Mileage {
		agg.Mileage[i] /= mileageUnitDivisor
	}

	for bar := 1; bar <= csu.NumBars; bar++ {
		st := &agg.Slits[csu.SlitFor(bar)-1]
		st.Slit = csu.SlitFor(bar)
		st.Mileage += agg.Mileage[bar-1]
		st.Moves += agg.Moves[bar-1]
	}
	for _, st := range agg.Slits {
		if st.Mileage > agg.MaxSlitMileage {
			agg.MaxSlitMileage = st.Mileage
		}
		if st.Moves > agg.MaxSlitMoves {
			agg.MaxSlitMoves = st.Moves
		}
	}
	return agg
}
