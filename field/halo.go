package field

import (
	"fmt"

	"exfield/model"
	"exfield/partition"
)

// Halo is one worker's owned block extended by a one-cell ghost ring on
// every side. Local coordinates address owned cells as [0, nx) etc.; the
// ghost layers sit at -1 and nx (ny, nz). Ghost layers beyond the global
// domain are never filled and never read: Present decides participation
// against the global extents, not against a sentinel value.
type Halo struct {
	Block          partition.Block
	nx, ny, nz, nt int
	gnx, gny, gnz  int
	data           []float64
}

// NewHalo allocates the halo storage for a block of the gnx*gny*gnz domain.
func NewHalo(b partition.Block, gnx, gny, gnz, nt int) *Halo {
	nx, ny, nz := b.X.Size(), b.Y.Size(), b.Z.Size()
	return &Halo{
		Block: b,
		nx:    nx, ny: ny, nz: nz, nt: nt,
		gnx: gnx, gny: gny, gnz: gnz,
		data: make([]float64, (nx+2)*(ny+2)*(nz+2)*nt),
	}
}

// Dims returns the owned extents and timestep count.
func (h *Halo) Dims() (nx, ny, nz, nt int) {
	return h.nx, h.ny, h.nz, h.nt
}

func (h *Halo) index(x, y, z, t int) int {
	return (((z+1)*(h.ny+2)+(y+1))*(h.nx+2)+(x+1))*h.nt + t
}

// At returns the value at local point (x, y, z) and timestep t. Ghost
// cells are addressed with -1 / nx style coordinates.
func (h *Halo) At(x, y, z, t int) float64 {
	return h.data[h.index(x, y, z, t)]
}

// Present reports whether local coordinate (x, y, z) maps to a point
// inside the global domain. Owned cells are always present; a ghost cell
// is present exactly when a neighbor worker exists on that side.
func (h *Halo) Present(x, y, z int) bool {
	gx := h.Block.X.Start + x
	gy := h.Block.Y.Start + y
	gz := h.Block.Z.Start + z
	return gx >= 0 && gx < h.gnx &&
		gy >= 0 && gy < h.gny &&
		gz >= 0 && gz < h.gnz
}

// FillOwned populates the owned cells from a block transfer buffer
// (point-major, timestep-minor, as produced by Field.Block).
func (h *Halo) FillOwned(vals []float64) error {
	want := h.nx * h.ny * h.nz * h.nt
	if len(vals) != want {
		return fmt.Errorf("%w: block carries %d values, this worker owns %d", model.ErrProtocol, len(vals), want)
	}
	i := 0
	for z := 0; z < h.nz; z++ {
		for y := 0; y < h.ny; y++ {
			for x := 0; x < h.nx; x++ {
				copy(h.data[h.index(x, y, z, 0):], vals[i:i+h.nt])
				i += h.nt
			}
		}
	}
	return nil
}

// FaceLen returns the value count of one face transfer along axis.
func (h *Halo) FaceLen(axis int) int {
	switch axis {
	case 0:
		return h.ny * h.nz * h.nt
	case 1:
		return h.nx * h.nz * h.nt
	default:
		return h.nx * h.ny * h.nt
	}
}

// eachFace visits the face plane with fixed coordinate c along axis, in a
// fixed nesting order shared by Face and SetGhost so both sides of an
// exchange serialize identically.
func (h *Halo) eachFace(axis, c int, fn func(x, y, z int)) {
	switch axis {
	case 0:
		for z := 0; z < h.nz; z++ {
			for y := 0; y < h.ny; y++ {
				fn(c, y, z)
			}
		}
	case 1:
		for z := 0; z < h.nz; z++ {
			for x := 0; x < h.nx; x++ {
				fn(x, c, z)
			}
		}
	default:
		for y := 0; y < h.ny; y++ {
			for x := 0; x < h.nx; x++ {
				fn(x, y, c)
			}
		}
	}
}

func (h *Halo) ownedEdge(axis, side int) int {
	if side < 0 {
		return 0
	}
	switch axis {
	case 0:
		return h.nx - 1
	case 1:
		return h.ny - 1
	default:
		return h.nz - 1
	}
}

func (h *Halo) ghostEdge(axis, side int) int {
	if side < 0 {
		return -1
	}
	switch axis {
	case 0:
		return h.nx
	case 1:
		return h.ny
	default:
		return h.nz
	}
}

// Face copies out the outermost owned layer on the given side (-1 lower,
// +1 upper) of axis, for all timesteps. This is what gets sent to the
// face-adjacent neighbor.
func (h *Halo) Face(axis, side int) []float64 {
	out := make([]float64, 0, h.FaceLen(axis))
	c := h.ownedEdge(axis, side)
	h.eachFace(axis, c, func(x, y, z int) {
		i := h.index(x, y, z, 0)
		out = append(out, h.data[i:i+h.nt]...)
	})
	return out
}

// SetGhost fills the ghost layer on the given side of axis from a
// neighbor's Face buffer.
func (h *Halo) SetGhost(axis, side int, vals []float64) error {
	if len(vals) != h.FaceLen(axis) {
		return fmt.Errorf("%w: face carries %d values, expected %d", model.ErrProtocol, len(vals), h.FaceLen(axis))
	}
	i := 0
	c := h.ghostEdge(axis, side)
	h.eachFace(axis, c, func(x, y, z int) {
		copy(h.data[h.index(x, y, z, 0):], vals[i:i+h.nt])
		i += h.nt
	})
	return nil
}
