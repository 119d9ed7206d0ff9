// Package field holds the grid data: the full-domain buffer that only the
// coordinating worker ever materializes, and the per-worker halo block.
// Both are flat contiguous slices addressed through a single linearization,
// point-major and timestep-minor: ((z*NY+y)*NX+x)*NT + t.
package field

import (
	"fmt"

	"exfield/model"
	"exfield/partition"
)

// Field is the full NX*NY*NZ domain with NT timesteps per point.
type Field struct {
	NX, NY, NZ, NT int
	Data           []float64
}

// New allocates a zeroed field.
func New(nx, ny, nz, nt int) (*Field, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 || nt <= 0 {
		return nil, fmt.Errorf("%w: field extents %dx%dx%dx%d", model.ErrConfig, nx, ny, nz, nt)
	}
	return &Field{
		NX: nx, NY: ny, NZ: nz, NT: nt,
		Data: make([]float64, nx*ny*nz*nt),
	}, nil
}

// FromValues wraps an existing buffer laid out point-major/timestep-minor.
func FromValues(nx, ny, nz, nt int, vals []float64) (*Field, error) {
	f, err := New(nx, ny, nz, nt)
	if err != nil {
		return nil, err
	}
	if len(vals) != len(f.Data) {
		return nil, fmt.Errorf("%w: got %d values, domain needs %d", model.ErrData, len(vals), len(f.Data))
	}
	f.Data = vals
	return f, nil
}

// Index returns the buffer offset of (x, y, z, t).
func (f *Field) Index(x, y, z, t int) int {
	return ((z*f.NY+y)*f.NX+x)*f.NT + t
}

// At returns the value at (x, y, z, t).
func (f *Field) At(x, y, z, t int) float64 {
	return f.Data[f.Index(x, y, z, t)]
}

// Set stores a value at (x, y, z, t).
func (f *Field) Set(x, y, z, t int, v float64) {
	f.Data[f.Index(x, y, z, t)] = v
}

// Points returns the number of grid points, not counting timesteps.
func (f *Field) Points() int {
	return f.NX * f.NY * f.NZ
}

// Block copies the sub-block b out of the field, keeping each point's time
// series contiguous. This is the wire format of a distribution transfer.
func (f *Field) Block(b partition.Block) []float64 {
	out := make([]float64, 0, b.NumPoints()*f.NT)
	for z := b.Z.Start; z < b.Z.End; z++ {
		for y := b.Y.Start; y < b.Y.End; y++ {
			for x := b.X.Start; x < b.X.End; x++ {
				i := f.Index(x, y, z, 0)
				out = append(out, f.Data[i:i+f.NT]...)
			}
		}
	}
	return out
}

// SetBlock writes a block buffer produced by Block back into place. The
// inverse mapping of the distribution step.
func (f *Field) SetBlock(b partition.Block, vals []float64) error {
	if len(vals) != b.NumPoints()*f.NT {
		return fmt.Errorf("%w: block carries %d values, expected %d", model.ErrProtocol, len(vals), b.NumPoints()*f.NT)
	}
	i := 0
	for z := b.Z.Start; z < b.Z.End; z++ {
		for y := b.Y.Start; y < b.Y.End; y++ {
			for x := b.X.Start; x < b.X.End; x++ {
				copy(f.Data[f.Index(x, y, z, 0):], vals[i:i+f.NT])
				i += f.NT
			}
		}
	}
	return nil
}
