// Package partition maps worker coordinates in a 3D process grid onto
// axis-aligned blocks of the global domain. Every worker and the
// distributor compute ranges with the same function, so a block's sender
// and its receiver always agree on its size.
package partition

import (
	"fmt"

	"exfield/model"
)

// AxisRange is a half-open interval [Start, End) of global indices along
// one axis.
type AxisRange struct {
	Start int
	End   int
}

// Size returns the number of indices in the range.
func (r AxisRange) Size() int {
	return r.End - r.Start
}

// RangeFor returns the range of axis indices owned by worker coordinate
// coord out of workers along an axis of the given extent. The split is a
// balanced block distribution: the first extent%workers coordinates own
// one extra element.
func RangeFor(coord, workers, extent int) (AxisRange, error) {
	if workers <= 0 {
		return AxisRange{}, fmt.Errorf("%w: %d workers along axis", model.ErrConfig, workers)
	}
	if coord < 0 || coord >= workers {
		return AxisRange{}, fmt.Errorf("%w: coordinate %d outside [0, %d)", model.ErrConfig, coord, workers)
	}
	if extent < workers {
		return AxisRange{}, fmt.Errorf("%w: extent %d smaller than %d workers, a worker would own nothing", model.ErrConfig, extent, workers)
	}
	base := extent / workers
	rem := extent % workers
	start := coord * base
	if coord < rem {
		start += coord
	} else {
		start += rem
	}
	size := base
	if coord < rem {
		size++
	}
	return AxisRange{Start: start, End: start + size}, nil
}

// Grid is the PX x PY x PZ process grid. Ranks are linearized x-fastest:
// rank = (pz*PY + py)*PX + px.
type Grid struct {
	PX, PY, PZ int
}

// Size returns the worker count the grid requires.
func (g Grid) Size() int {
	return g.PX * g.PY * g.PZ
}

// Coords returns the grid coordinate of a rank.
func (g Grid) Coords(rank int) (px, py, pz int) {
	px = rank % g.PX
	py = (rank / g.PX) % g.PY
	pz = rank / (g.PX * g.PY)
	return px, py, pz
}

// Rank is the inverse of Coords.
func (g Grid) Rank(px, py, pz int) int {
	return (pz*g.PY+py)*g.PX + px
}

// Extent returns the grid extent along axis (0=x, 1=y, 2=z).
func (g Grid) Extent(axis int) int {
	switch axis {
	case 0:
		return g.PX
	case 1:
		return g.PY
	default:
		return g.PZ
	}
}

// Neighbor returns the rank whose coordinate differs by dir (-1 or +1)
// along axis, and whether such a worker exists. There is no wraparound:
// at the edge of the grid ok is false.
func (g Grid) Neighbor(rank, axis, dir int) (nbr int, ok bool) {
	c := [3]int{}
	c[0], c[1], c[2] = g.Coords(rank)
	c[axis] += dir
	if c[axis] < 0 || c[axis] >= g.Extent(axis) {
		return 0, false
	}
	return g.Rank(c[0], c[1], c[2]), true
}

// Block is the Cartesian product of the three per-axis ranges owned by one
// worker.
type Block struct {
	X, Y, Z AxisRange
}

// NumPoints returns the number of grid points in the block.
func (b Block) NumPoints() int {
	return b.X.Size() * b.Y.Size() * b.Z.Size()
}

// BlockFor computes the block of the global nx*ny*nz domain owned by rank.
func BlockFor(g Grid, rank, nx, ny, nz int) (Block, error) {
	px, py, pz := g.Coords(rank)
	xr, err := RangeFor(px, g.PX, nx)
	if err != nil {
		return Block{}, err
	}
	yr, err := RangeFor(py, g.PY, ny)
	if err != nil {
		return Block{}, err
	}
	zr, err := RangeFor(pz, g.PZ, nz)
	if err != nil {
		return Block{}, err
	}
	return Block{X: xr, Y: yr, Z: zr}, nil
}
