// Package report prepares the final per-bar arrays for the external
// plotting collaborator. It builds the slit/arm geometry masks the bar
// charts are split by and hands the data off; rendering itself lives
// outside this repository.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hilodev/csuodo/internal/csu"
	"github.com/hilodev/csuodo/internal/odometer"
)

// Fixed output basenames the plotting subsystem looks for.
const (
	MileageDataFile = "csu_bar_mileage.json"
	MovesDataFile   = "csu_bar_moves.json"
)

// Renderer renders one per-bar series to an output file. The plotting
// subsystem provides the implementation; this package only prepares data.
type Renderer interface {
	Render(slits []int, values []float64, left, right []bool, outputPath string) error
}

// Series is one plotting payload: a value per bar plus the geometry masks.
type Series struct {
	Slits  []int     `json:"slits"`
	Left   []bool    `json:"left"`
	Right  []bool    `json:"right"`
	Values []float64 `json:"values"`
}

// masks returns the per-bar slit numbers and left/right arm masks.
func masks() (slits []int, left, right []bool) {
	slits = make([]int, csu.NumBars)
	left = make([]bool, csu.NumBars)
	right = make([]bool, csu.NumBars)
	for bar := 1; bar <= csu.NumBars; bar++ {
		slits[bar-1] = csu.SlitFor(bar)
		left[bar-1] = csu.IsLeft(bar)
		right[bar-1] = csu.IsRight(bar)
	}
	return slits, left, right
}

// MileageSeries builds the bar-mileage payload (metres).
func MileageSeries(agg *odometer.Aggregate) Series {
	slits, left, right := masks()
	return Series{Slits: slits, Left: left, Right: right, Values: agg.Mileage[:]}
}

// MovesSeries builds the move-count payload.
func MovesSeries(agg *odometer.Aggregate) Series {
	slits, left, right := masks()
	values := make([]float64, csu.NumBars)
	for i, n := range agg.Moves {
		values[i] = float64(n)
	}
	return Series{Slits: slits, Left: left, Right: right, Values: values}
}

// RenderAll feeds both series to the renderer with the fixed output names.
func RenderAll(r Renderer, agg *odometer.Aggregate, dir string) error {
	m := MileageSeries(agg)
	if err := r.Render(m.Slits, m.Values, m.Left, m.Right,
		filepath.Join(dir, "csu_bar_mileage.png")); err != nil {
		return fmt.Errorf("render mileage chart: %w", err)
	}
	n := MovesSeries(agg)
	if err := r.Render(n.Slits, n.Values, n.Left, n.Right,
		filepath.Join(dir, "csu_bar_moves.png")); err != nil {
		return fmt.Errorf("render moves chart: %w", err)
	}
	return nil
}

type exportPayload struct {
	Series
	MaxSlit float64 `json:"max_slit"` // for chart scaling
}

// FileExporter writes both series as JSON files into Dir after each
// completed run, for plotting tooling that runs out of process.
// It implements odometer.Exporter.
type FileExporter struct {
	Dir string
}

// Export writes the mileage and moves payloads to their fixed filenames.
func (e *FileExporter) Export(agg *odometer.Aggregate) error {
	if err := writePayload(filepath.Join(e.Dir, MileageDataFile),
		exportPayload{Series: MileageSeries(agg), MaxSlit: agg.MaxSlitMileage}); err != nil {
		return err
	}
	return writePayload(filepath.Join(e.Dir, MovesDataFile),
		exportPayload{Series: MovesSeries(agg), MaxSlit: float64(agg.MaxSlitMoves)})
}

func writePayload(path string, p exportPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode report data: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report data %q: %w", path, err)
	}
	return nil
}
