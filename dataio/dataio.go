// Package dataio holds the sequential I/O collaborators around the core:
// reading the raw field file on the coordinating worker, writing the
// formatted result file, and generating synthetic fields for demo runs.
package dataio

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"exfield/field"
	"exfield/model"
)

// ReadField parses a whitespace-separated text file of float values,
// point-major and timestep-minor, into a field of the given shape.
// Non-finite values are a data error: a NaN would poison the min/max
// reductions silently, so it is rejected here instead.
func ReadField(path string, nx, ny, nz, nt int) (*field.Field, error) {
	f, err := field.New(nx, ny, nz, nt)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	for i := range f.Data {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("read input: %w", err)
			}
			return nil, fmt.Errorf("%w: %s holds %d values, domain needs %d", model.ErrData, path, i, len(f.Data))
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", model.ErrData, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: value %d is %v", model.ErrData, i, v)
		}
		f.Data[i] = v
	}

	log.WithFields(log.Fields{"file": path, "points": f.Points(), "steps": nt}).Info("field loaded")
	return f, nil
}

// WriteResult writes the three-line result format: per-timestep count
// pairs, per-timestep value pairs, then the three timings.
func WriteResult(path string, res *model.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for t, s := range res.Steps {
		if t > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "(%d, %d)", s.MinCount, s.MaxCount)
	}
	fmt.Fprintln(w)
	for t, s := range res.Steps {
		if t > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "(%g, %g)", s.MinValue, s.MaxValue)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%g, %g, %g\n", res.Timings.Read, res.Timings.Compute, res.Timings.Total)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Synthetic builds a reproducible random field, a stand-in for a real
// dataset in demos and tests.
func Synthetic(nx, ny, nz, nt int, seed int64) *field.Field {
	f, err := field.New(nx, ny, nz, nt)
	if err != nil {
		panic(err)
	}
	rnd := rand.New(rand.NewSource(seed))
	for i := range f.Data {
		f.Data[i] = rnd.Float64() * 100
	}
	return f
}
