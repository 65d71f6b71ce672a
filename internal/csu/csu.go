// Package csu holds the fixed geometry of the Configurable Slit Unit:
// 92 motorized bars paired into 46 slits. Odd-numbered bars are the left
// arm of their slit, even-numbered bars the right arm.
package csu

const (
	NumBars  = 92
	NumSlits = 46
)

// SlitFor returns the slit number (1–46) a bar belongs to.
func SlitFor(bar int) int { return (bar + 1) / 2 }

// IsLeft reports whether the bar is the left arm of its slit.
func IsLeft(bar int) bool { return bar%2 != 0 }

// IsRight reports whether the bar is the right arm of its slit.
func IsRight(bar int) bool { return bar%2 == 0 }

// Valid reports whether bar is inside the CSU bar domain.
func Valid(bar int) bool { return bar >= 1 && bar <= NumBars }
