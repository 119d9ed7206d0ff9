// Package pipeline runs the distributed extrema analysis: W workers in a
// 3D process grid, each owning one block of the domain, exchanging halo
// faces with face-adjacent neighbors and reducing their partial results
// onto the coordinating worker (rank 0).
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"exfield/comm"
	"exfield/extrema"
	"exfield/field"
	"exfield/model"
	"exfield/partition"
)

// LoadFunc produces the fully populated global field. It runs only on the
// coordinating worker, inside the read/distribute timing interval.
type LoadFunc func() (*field.Field, error)

// Run executes one complete analysis and returns the global result. The
// workers are identical except that rank 0 additionally loads and
// distributes the field and collects the reductions.
//
// Any worker failure aborts the whole run: a missing contribution would
// invalidate every reduction, so there is no partial-result path.
func Run(cfg Config, load LoadFunc) (*model.Result, error) {
	if err := cfg.Validate(); err != nil {
		log.Error("configuration rejected: ", err)
		return nil, err
	}
	grid := partition.Grid{PX: cfg.PX, PY: cfg.PY, PZ: cfg.PZ}
	workers := grid.Size()
	tr := comm.NewTransport(workers)

	log.WithFields(log.Fields{
		"grid":    fmt.Sprintf("%dx%dx%d", cfg.PX, cfg.PY, cfg.PZ),
		"domain":  fmt.Sprintf("%dx%dx%d", cfg.NX, cfg.NY, cfg.NZ),
		"steps":   cfg.NT,
		"workers": workers,
	}).Info("starting run")

	results := make([]*model.Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for rank := 0; rank < workers; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			w := &worker{cfg: cfg, grid: grid, c: tr.Rank(rank)}
			if rank == 0 {
				w.load = load
			}
			res, err := w.run()
			if err != nil {
				if !errors.Is(err, comm.ErrAborted) {
					log.WithFields(log.Fields{"rank": rank}).Error("worker failed: ", err)
				}
				errs[rank] = err
				tr.Abort()
				return
			}
			results[rank] = res
		}(rank)
	}
	wg.Wait()

	// Prefer the originating failure over the secondary aborts it caused.
	var aborted error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, comm.ErrAborted) {
			aborted = err
			continue
		}
		return nil, err
	}
	if aborted != nil {
		return nil, aborted
	}
	return results[0], nil
}

type worker struct {
	cfg  Config
	grid partition.Grid
	c    *comm.Comm
	load LoadFunc
}

// run is the SPMD body executed by every worker.
func (w *worker) run() (*model.Result, error) {
	start := time.Now()

	block, err := partition.BlockFor(w.grid, w.c.Rank(), w.cfg.NX, w.cfg.NY, w.cfg.NZ)
	if err != nil {
		return nil, err
	}
	halo := field.NewHalo(block, w.cfg.NX, w.cfg.NY, w.cfg.NZ, w.cfg.NT)

	if w.c.Rank() == 0 {
		if err := w.distribute(halo); err != nil {
			return nil, err
		}
	} else {
		want := block.NumPoints() * w.cfg.NT
		vals, err := w.c.Recv(0, comm.TagBlock, want)
		if err != nil {
			return nil, err
		}
		if err := halo.FillOwned(vals); err != nil {
			return nil, err
		}
	}
	readElapsed := time.Since(start)

	computeStart := time.Now()
	if err := w.exchangeHalos(halo); err != nil {
		return nil, err
	}
	partial := extrema.Classify(halo)

	minCounts, err := w.c.ReduceInts(0, comm.TagMinCounts, partial.MinCounts, comm.Sum)
	if err != nil {
		return nil, err
	}
	maxCounts, err := w.c.ReduceInts(0, comm.TagMaxCounts, partial.MaxCounts, comm.Sum)
	if err != nil {
		return nil, err
	}
	minValues, err := w.c.Reduce(0, comm.TagMinValues, partial.MinValues, comm.Min)
	if err != nil {
		return nil, err
	}
	maxValues, err := w.c.Reduce(0, comm.TagMaxValues, partial.MaxValues, comm.Max)
	if err != nil {
		return nil, err
	}
	computeElapsed := time.Since(computeStart)
	totalElapsed := time.Since(start)

	// The slowest worker bounds observed latency, so timings reduce with max.
	readMax, err := w.c.ReduceScalar(0, comm.TagReadTime, readElapsed.Seconds(), comm.Max)
	if err != nil {
		return nil, err
	}
	computeMax, err := w.c.ReduceScalar(0, comm.TagComputeTime, computeElapsed.Seconds(), comm.Max)
	if err != nil {
		return nil, err
	}
	totalMax, err := w.c.ReduceScalar(0, comm.TagTotalTime, totalElapsed.Seconds(), comm.Max)
	if err != nil {
		return nil, err
	}

	if w.c.Rank() != 0 {
		return nil, nil
	}

	res := &model.Result{
		Steps: make([]model.TimestepResult, w.cfg.NT),
		Timings: model.Timings{
			Read:    readMax,
			Compute: computeMax,
			Total:   totalMax,
		},
	}
	for t := 0; t < w.cfg.NT; t++ {
		res.Steps[t] = model.TimestepResult{
			MinCount: minCounts[t],
			MaxCount: maxCounts[t],
			MinValue: minValues[t],
			MaxValue: maxValues[t],
		}
	}
	return res, nil
}

// distribute loads the global field on the coordinator, slices every
// worker's block out of it and sends it over. The coordinator's own block
// is copied directly. The global buffer lives only for the duration of
// this phase.
func (w *worker) distribute(halo *field.Halo) error {
	global, err := w.load()
	if err != nil {
		return err
	}
	if global.NX != w.cfg.NX || global.NY != w.cfg.NY || global.NZ != w.cfg.NZ || global.NT != w.cfg.NT {
		return fmt.Errorf("%w: field is %dx%dx%dx%d, configuration says %dx%dx%dx%d",
			model.ErrConfig,
			global.NX, global.NY, global.NZ, global.NT,
			w.cfg.NX, w.cfg.NY, w.cfg.NZ, w.cfg.NT)
	}

	if err := halo.FillOwned(global.Block(halo.Block)); err != nil {
		return err
	}
	for rank := 1; rank < w.c.Size(); rank++ {
		rb, err := partition.BlockFor(w.grid, rank, w.cfg.NX, w.cfg.NY, w.cfg.NZ)
		if err != nil {
			return err
		}
		if err := w.c.Send(rank, comm.TagBlock, global.Block(rb)); err != nil {
			return err
		}
	}
	// Drop the global buffer; only the owned blocks are needed from here on.
	global.Data = nil
	return nil
}

var faceTags = [3]int{comm.TagFaceX, comm.TagFaceY, comm.TagFaceZ}

// exchangeHalos performs the paired face exchange with up-to-6 neighbors.
// Where no neighbor exists the ghost layer stays untouched; Present keeps
// it out of every comparison.
func (w *worker) exchangeHalos(halo *field.Halo) error {
	for axis := 0; axis < 3; axis++ {
		for _, side := range [2]int{-1, 1} {
			nbr, ok := w.grid.Neighbor(w.c.Rank(), axis, side)
			if !ok {
				continue
			}
			face := halo.Face(axis, side)
			got, err := w.c.SendRecv(nbr, faceTags[axis], face, len(face))
			if err != nil {
				return err
			}
			if err := halo.SetGhost(axis, side, got); err != nil {
				return err
			}
		}
	}
	return nil
}
