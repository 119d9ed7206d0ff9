package comm

import "math"

// ReduceFn combines two per-slot contributions.
type ReduceFn func(a, b float64) float64

// Sum adds contributions; counts reduce with this.
func Sum(a, b float64) float64 { return a + b }

// Min keeps the smaller contribution.
func Min(a, b float64) float64 { return math.Min(a, b) }

// Max keeps the larger contribution.
func Max(a, b float64) float64 { return math.Max(a, b) }

// Reduce combines equal-length vectors from every worker slot-by-slot at
// root. Non-root workers contribute their vector and get nil back; the
// root does not return before every worker has contributed, which is what
// makes the pipeline's reductions barrier-like. Every worker must call
// Reduce with the same tag and length in the same program order.
func (c *Comm) Reduce(root, tag int, in []float64, fn ReduceFn) ([]float64, error) {
	if c.rank != root {
		return nil, c.Send(root, tag, in)
	}
	out := append([]float64(nil), in...)
	for rank := 0; rank < c.Size(); rank++ {
		if rank == root {
			continue
		}
		part, err := c.Recv(rank, tag, len(in))
		if err != nil {
			return nil, err
		}
		for i, v := range part {
			out[i] = fn(out[i], v)
		}
	}
	return out, nil
}

// ReduceInts reduces integer vectors. Counts are exact: they stay well
// inside the float64 integer range.
func (c *Comm) ReduceInts(root, tag int, in []int, fn ReduceFn) ([]int, error) {
	buf := make([]float64, len(in))
	for i, v := range in {
		buf[i] = float64(v)
	}
	out, err := c.Reduce(root, tag, buf, fn)
	if err != nil || out == nil {
		return nil, err
	}
	res := make([]int, len(out))
	for i, v := range out {
		res[i] = int(v)
	}
	return res, nil
}

// ReduceScalar reduces a single value, e.g. a phase timing.
func (c *Comm) ReduceScalar(root, tag int, v float64, fn ReduceFn) (float64, error) {
	out, err := c.Reduce(root, tag, []float64{v}, fn)
	if err != nil || out == nil {
		return 0, err
	}
	return out[0], nil
}
