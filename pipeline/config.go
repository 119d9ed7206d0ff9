package pipeline

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"exfield/model"
)

// Config is the full run configuration. Workers is optional: when set it
// must match the process-grid size (the launcher's sanity check); zero
// means "derive from the grid".
type Config struct {
	Input  string
	Output string

	PX, PY, PZ int
	NX, NY, NZ int
	NT         int

	Workers int
	Addr    string
}

// LoadConfig reads the ini file, falling back to defaults for anything
// missing. A missing file is not fatal; flags and positional arguments can
// still supply everything.
func LoadConfig(path string) Config {
	file, err := ini.Load(path)
	if err != nil {
		log.Warn("config file not loaded, using defaults: ", err)
		file = ini.Empty()
	}

	grid := file.Section("grid")
	run := file.Section("run")
	return Config{
		Input:   run.Key("Input").MustString(""),
		Output:  run.Key("Output").MustString("output.txt"),
		PX:      grid.Key("PX").MustInt(1),
		PY:      grid.Key("PY").MustInt(1),
		PZ:      grid.Key("PZ").MustInt(1),
		NX:      grid.Key("NX").MustInt(64),
		NY:      grid.Key("NY").MustInt(64),
		NZ:      grid.Key("NZ").MustInt(64),
		NT:      grid.Key("NT").MustInt(3),
		Workers: run.Key("Workers").MustInt(0),
		Addr:    run.Key("Addr").MustString(":9000"),
	}
}

// Validate applies the configuration checks that must pass before any data
// moves: positive extents, a process grid matching the worker count, and
// at least one owned point per worker per axis.
func (c Config) Validate() error {
	if c.PX <= 0 || c.PY <= 0 || c.PZ <= 0 {
		return fmt.Errorf("%w: process grid %dx%dx%d", model.ErrConfig, c.PX, c.PY, c.PZ)
	}
	if c.NX <= 0 || c.NY <= 0 || c.NZ <= 0 || c.NT <= 0 {
		return fmt.Errorf("%w: domain %dx%dx%d with %d timesteps", model.ErrConfig, c.NX, c.NY, c.NZ, c.NT)
	}
	if c.Workers != 0 && c.Workers != c.PX*c.PY*c.PZ {
		return fmt.Errorf("%w: grid %dx%dx%d needs %d workers, launcher provided %d",
			model.ErrConfig, c.PX, c.PY, c.PZ, c.PX*c.PY*c.PZ, c.Workers)
	}
	if c.NX < c.PX || c.NY < c.PY || c.NZ < c.PZ {
		return fmt.Errorf("%w: domain %dx%dx%d cannot give every worker of grid %dx%dx%d a point per axis",
			model.ErrConfig, c.NX, c.NY, c.NZ, c.PX, c.PY, c.PZ)
	}
	return nil
}
