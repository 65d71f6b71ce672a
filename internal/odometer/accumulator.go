package odometer

import (
	"math"

	"github.com/hilodev/csuodo/internal/csu"
)

// accumulator tracks per-bar odometer state while walking one file's
// records in order. A reading only counts toward mileage once a prior
// reading exists for that bar; the seen markers make "no prior reading"
// explicit instead of overloading position 0.
type accumulator struct {
	result  FileResult
	lastPos [csu.NumBars]float64
	seen    [csu.NumBars]bool
}

// observe folds one accepted reading into the per-bar state. The last
// position is updated unconditionally; moves and mileage only change when
// a prior reading exists and the position actually moved.
func (a *accumulator) observe(bar int, pos float64) {
	i := bar - 1
	if a.seen[i] {
		if delta := math.Abs(a.lastPos[i] - pos); delta > 0 {
			a.result.Moves[i]++
			a.result.Mileage[i] += delta
		}
	}
	a.lastPos[i] = pos
	a.seen[i] = true
}
