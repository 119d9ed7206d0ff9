package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exfield/dataio"
	"exfield/field"
	"exfield/model"
)

func loadValues(nx, ny, nz, nt int, vals []float64) LoadFunc {
	return func() (*field.Field, error) {
		return field.FromValues(nx, ny, nz, nt, vals)
	}
}

// Single worker, 2x2x2 domain, no halo needed. Every corner has exactly 3
// in-bounds neighbors; minima are 0 and 2, maxima 9, 8 and 4.
func TestRunCube(t *testing.T) {
	cfg := Config{PX: 1, PY: 1, PZ: 1, NX: 2, NY: 2, NZ: 2, NT: 1}
	res, err := Run(cfg, loadValues(2, 2, 2, 1, []float64{0, 7, 3, 9, 1, 8, 4, 2}))
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)

	assert.Equal(t, 2, res.Steps[0].MinCount)
	assert.Equal(t, 3, res.Steps[0].MaxCount)
	assert.Equal(t, 0.0, res.Steps[0].MinValue)
	assert.Equal(t, 9.0, res.Steps[0].MaxValue)

	assert.GreaterOrEqual(t, res.Timings.Read, 0.0)
	assert.GreaterOrEqual(t, res.Timings.Compute, 0.0)
	assert.Greater(t, res.Timings.Total, 0.0)
}

// Two workers split a 4x1x1 domain. The tied value 1 on each side of the
// cut must be seen through the exchanged ghost cells: neither copy is a
// strict minimum. The 5 and the 9 each beat their single neighbor.
func TestRunTwoWorkerHalo(t *testing.T) {
	cfg := Config{PX: 2, PY: 1, PZ: 1, NX: 4, NY: 1, NZ: 1, NT: 1}
	res, err := Run(cfg, loadValues(4, 1, 1, 1, []float64{5, 1, 1, 9}))
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)

	assert.Equal(t, 0, res.Steps[0].MinCount, "both 1s are ties, not strict minima")
	assert.Equal(t, 2, res.Steps[0].MaxCount)
	assert.Equal(t, 1.0, res.Steps[0].MinValue)
	assert.Equal(t, 9.0, res.Steps[0].MaxValue)
}

// Whatever the process grid, the global answer must match the one-worker
// run on the same field. This exercises distribution and every halo face.
func TestRunGridIndependence(t *testing.T) {
	nx, ny, nz, nt := 6, 5, 4, 3
	f := dataio.Synthetic(nx, ny, nz, nt, 42)

	load := func() (*field.Field, error) {
		return field.FromValues(nx, ny, nz, nt, append([]float64(nil), f.Data...))
	}

	base := Config{PX: 1, PY: 1, PZ: 1, NX: nx, NY: ny, NZ: nz, NT: nt}
	want, err := Run(base, load)
	require.NoError(t, err)

	grids := [][3]int{{2, 1, 1}, {1, 2, 1}, {1, 1, 2}, {3, 2, 1}, {2, 2, 2}, {1, 5, 2}}
	for _, g := range grids {
		cfg := base
		cfg.PX, cfg.PY, cfg.PZ = g[0], g[1], g[2]
		got, err := Run(cfg, load)
		require.NoError(t, err, "grid %v", g)
		assert.Equal(t, want.Steps, got.Steps, "grid %v", g)
	}
}

func TestRunConfigErrors(t *testing.T) {
	cases := []Config{
		{PX: 0, PY: 1, PZ: 1, NX: 4, NY: 4, NZ: 4, NT: 1},
		{PX: 1, PY: 1, PZ: 1, NX: 4, NY: 4, NZ: 4, NT: 0},
		{PX: 2, PY: 2, PZ: 1, NX: 4, NY: 4, NZ: 4, NT: 1, Workers: 3},
		{PX: 4, PY: 1, PZ: 1, NX: 3, NY: 4, NZ: 4, NT: 1},
	}
	for _, cfg := range cases {
		_, err := Run(cfg, loadValues(4, 4, 4, 1, make([]float64, 64)))
		assert.ErrorIs(t, err, model.ErrConfig, "%+v", cfg)
	}
}

func TestRunFieldShapeMismatch(t *testing.T) {
	cfg := Config{PX: 1, PY: 1, PZ: 1, NX: 4, NY: 1, NZ: 1, NT: 1}
	_, err := Run(cfg, loadValues(2, 1, 1, 1, []float64{1, 2}))
	assert.ErrorIs(t, err, model.ErrConfig)
}

// A coordinator-side load failure must take the whole run down, including
// workers already blocked on their receive.
func TestRunLoadFailureAbortsAllWorkers(t *testing.T) {
	boom := errors.New("unreadable input")
	cfg := Config{PX: 2, PY: 2, PZ: 1, NX: 4, NY: 4, NZ: 1, NT: 1}
	_, err := Run(cfg, func() (*field.Field, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestConfigValidate(t *testing.T) {
	good := Config{PX: 2, PY: 1, PZ: 1, NX: 8, NY: 8, NZ: 8, NT: 2, Workers: 2}
	assert.NoError(t, good.Validate())

	bad := good
	bad.Workers = 5
	assert.ErrorIs(t, bad.Validate(), model.ErrConfig)
}
