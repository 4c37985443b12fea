package automation

import (
	"context"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/sim"
)

// MonteCarloConfig defines Monte Carlo simulation parameters. Each trial
// starts from the rest ring with every particle displaced by up to
// Perturbation times the radius.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID   int
	FinalArea float64
	Stable    bool
	Err       error
}

// RunMonteCarlo executes the trials in parallel. The same seed reproduces
// the same perturbations.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	exps := make([]*experiment.Experiment, 0, cfg.NumTrials)
	members := make([]sim.Member, 0, cfg.NumTrials)
	slot := make([]int, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		results[trial].TrialID = trial

		exp, err := experiment.New(cfg.Base.Clone(), r.Registry)
		if err != nil {
			return nil, err
		}

		f := exp.GetSimulator().Frame()
		amp := cfg.Perturbation * cfg.Base.Body.Radius
		for i := range f.Positions {
			jitter := dynamo.Vec2{X: (rng.Float64() - 0.5) * 2 * amp, Y: (rng.Float64() - 0.5) * 2 * amp}
			f.Positions[i] = r2.Add(f.Positions[i], jitter)
		}
		if err := exp.Place(f.Positions, f.Velocities); err != nil {
			results[trial].Err = err
			continue
		}

		exps = append(exps, exp)
		members = append(members, exp.Member())
		slot = append(slot, trial)
	}

	runs, errs := sim.NewEnsemble(members...).RunEach(ctx, cfg.Base.SimConfig())
	for k, trial := range slot {
		res := &results[trial]
		res.Err = errs[k]
		if runs[k] != nil {
			if last, ok := runs[k].Last(); ok {
				res.FinalArea = last.Volume / exps[k].Body().RestArea()
			}
			res.Stable = res.Err == nil && runs[k].Metrics["stability"] == 1
		}
	}

	r.Log.Printf("monte carlo: %d trials complete", cfg.NumTrials)
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
