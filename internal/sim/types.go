package sim

import "github.com/san-kum/psbody/internal/dynamo"

// Config controls a multi-tick Run.
type Config struct {
	Tick          float64
	SubIterations int
	Duration      float64
	// RecordEvery stores one frame every RecordEvery ticks; 0 or 1 stores all.
	RecordEvery int
}

func DefaultConfig() Config {
	return Config{
		Tick:          0.02,
		SubIterations: 10,
		Duration:      10.0,
		RecordEvery:   1,
	}
}

// Ticks returns the number of whole ticks that fit in Duration.
func (c Config) Ticks() int {
	if c.Tick <= 0 {
		return 0
	}
	return int(c.Duration/c.Tick + 1e-9)
}

type Result struct {
	Times      []float64
	Frames     []dynamo.Frame
	Volumes    []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Last returns the most recent recorded frame.
func (r *Result) Last() (dynamo.Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return dynamo.Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
