package extrema

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exfield/field"
	"exfield/partition"
)

// singleHalo stages a whole field into a one-worker halo block: every
// ghost layer sits outside the global domain, so nothing is present
// beyond the owned cells.
func singleHalo(t testing.TB, f *field.Field) *field.Halo {
	b, err := partition.BlockFor(partition.Grid{PX: 1, PY: 1, PZ: 1}, 0, f.NX, f.NY, f.NZ)
	require.NoError(t, err)
	h := field.NewHalo(b, f.NX, f.NY, f.NZ, f.NT)
	require.NoError(t, h.FillOwned(f.Block(b)))
	return h
}

// The hand-checked 2x2x2 scenario: values assigned x-fastest, each corner
// compared only against its 3 in-bounds neighbors.
func TestClassifyCube(t *testing.T) {
	f, err := field.FromValues(2, 2, 2, 1, []float64{0, 7, 3, 9, 1, 8, 4, 2})
	require.NoError(t, err)

	p := Classify(singleHalo(t, f))

	// Minima: 0 at (0,0,0) and 2 at (1,1,1). Maxima: 9, 8 and 4.
	assert.Equal(t, []int{2}, p.MinCounts)
	assert.Equal(t, []int{3}, p.MaxCounts)
	assert.Equal(t, []float64{0}, p.MinValues)
	assert.Equal(t, []float64{9}, p.MaxValues)
}

// A flat field has no strict extrema at all; the tied points must not be
// counted, and that null result is correct.
func TestClassifyFlatField(t *testing.T) {
	f, err := field.New(3, 3, 3, 2)
	require.NoError(t, err)
	for i := range f.Data {
		f.Data[i] = 4.25
	}

	p := Classify(singleHalo(t, f))

	assert.Equal(t, []int{0, 0}, p.MinCounts)
	assert.Equal(t, []int{0, 0}, p.MaxCounts)
	assert.Equal(t, []float64{4.25, 4.25}, p.MinValues)
	assert.Equal(t, []float64{4.25, 4.25}, p.MaxValues)
}

// A 1x1x1 domain point has zero present neighbors and is both a minimum
// and a maximum.
func TestClassifyDegenerateDomain(t *testing.T) {
	f, err := field.FromValues(1, 1, 1, 2, []float64{3.5, -1})
	require.NoError(t, err)

	p := Classify(singleHalo(t, f))

	assert.Equal(t, []int{1, 1}, p.MinCounts)
	assert.Equal(t, []int{1, 1}, p.MaxCounts)
	assert.Equal(t, []float64{3.5, -1}, p.MinValues)
	assert.Equal(t, []float64{3.5, -1}, p.MaxValues)
}

// Negating every value swaps minima with maxima exactly.
func TestClassifyNegationSymmetry(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	f, err := field.New(5, 4, 3, 3)
	require.NoError(t, err)
	for i := range f.Data {
		f.Data[i] = rnd.Float64() * 100
	}

	p := Classify(singleHalo(t, f))

	neg, err := field.New(5, 4, 3, 3)
	require.NoError(t, err)
	for i, v := range f.Data {
		neg.Data[i] = -v
	}
	q := Classify(singleHalo(t, neg))

	assert.Equal(t, p.MinCounts, q.MaxCounts)
	assert.Equal(t, p.MaxCounts, q.MinCounts)
	for ts := 0; ts < 3; ts++ {
		assert.Equal(t, p.MinValues[ts], -q.MaxValues[ts])
		assert.Equal(t, p.MaxValues[ts], -q.MinValues[ts])
	}
}

func BenchmarkClassify(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	f, _ := field.New(32, 32, 32, 4)
	for i := range f.Data {
		f.Data[i] = rnd.Float64()
	}
	h := singleHalo(b, f)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(h)
	}
}
