// Package extrema classifies the points of a halo block as strict local
// minima/maxima under 6-connectivity and tracks per-timestep value
// extremes.
package extrema

import (
	"math"

	"exfield/field"
)

// The 6 unit-axis offsets; one table feeds both the minimum and the
// maximum test so the boundary handling cannot diverge between them.
var neighborOffsets = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Partial is one worker's contribution for every timestep.
type Partial struct {
	MinCounts []int
	MaxCounts []int
	MinValues []float64
	MaxValues []float64
}

// NewPartial returns a Partial with counts zeroed and value extremes at
// their identity elements.
func NewPartial(nt int) *Partial {
	p := &Partial{
		MinCounts: make([]int, nt),
		MaxCounts: make([]int, nt),
		MinValues: make([]float64, nt),
		MaxValues: make([]float64, nt),
	}
	for t := 0; t < nt; t++ {
		p.MinValues[t] = math.Inf(1)
		p.MaxValues[t] = math.Inf(-1)
	}
	return p
}

// Classify scans every owned point of the halo block for every timestep.
// A point is a local minimum iff it is strictly below every present
// neighbor, so ties disqualify and a perfectly flat region contributes
// nothing. Ghost cells beyond the global boundary are not present and are
// skipped, never compared. A point with no present neighbor at all (a
// 1x1x1 domain) counts as both minimum and maximum.
//
// No communication happens here: all non-local neighbor values were staged
// into the ghost layers beforehand.
func Classify(h *field.Halo) *Partial {
	nx, ny, nz, nt := h.Dims()
	p := NewPartial(nt)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				for t := 0; t < nt; t++ {
					val := h.At(x, y, z, t)
					if val < p.MinValues[t] {
						p.MinValues[t] = val
					}
					if val > p.MaxValues[t] {
						p.MaxValues[t] = val
					}
					isMin, isMax := true, true
					for _, d := range neighborOffsets {
						// Neighbor coordinates go into fresh variables;
						// they never alias the loop counters.
						cx, cy, cz := x+d[0], y+d[1], z+d[2]
						if !h.Present(cx, cy, cz) {
							continue
						}
						nval := h.At(cx, cy, cz, t)
						if nval <= val {
							isMin = false
						}
						if nval >= val {
							isMax = false
						}
						if !isMin && !isMax {
							break
						}
					}
					if isMin {
						p.MinCounts[t]++
					}
					if isMax {
						p.MaxCounts[t]++
					}
				}
			}
		}
	}
	return p
}
