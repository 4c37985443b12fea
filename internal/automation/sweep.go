package automation

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/psbody/internal/analysis"
	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/sim"
)

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep. Area figures are ratios
// to the rest area.
type SweepResult struct {
	ParamValue float64
	MeanArea   float64
	AreaStd    float64
	MinArea    float64
	MaxArea    float64
	Frequency  float64
	Stable     bool
	Err        error
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.ParamMin + float64(i)*step
	}
	return vals
}

// RunSweep builds one experiment per parameter value and runs them in
// parallel. A value whose run fails is reported with Err set; the sweep
// itself only fails on an invalid sweep definition.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep has no base config")
	}
	if err := sweep.Base.Clone().Set(sweep.ParamName, sweep.ParamMin); err != nil {
		return nil, err
	}

	values := sweep.Values()
	results := make([]SweepResult, len(values))
	exps := make([]*experiment.Experiment, len(values))
	members := make([]sim.Member, 0, len(values))
	slot := make([]int, 0, len(values))

	for i, v := range values {
		results[i].ParamValue = v

		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.ParamName, v); err != nil {
			results[i].Err = err
			continue
		}
		exp, err := experiment.New(cfg, r.Registry)
		if err != nil {
			results[i].Err = err
			continue
		}
		exps[i] = exp
		members = append(members, exp.Member())
		slot = append(slot, i)
	}

	// members carry their own run config, so timing parameters sweep too
	runs, errs := sim.NewEnsemble(members...).RunEach(ctx, sweep.Base.SimConfig())
	for k, i := range slot {
		results[i].Err = errs[k]
		summarize(&results[i], exps[i], runs[k])
		r.Log.Printf("sweep %d/%d: %s=%.4f", i+1, len(values), sweep.ParamName, values[i])
	}

	return results, nil
}

func summarize(sr *SweepResult, exp *experiment.Experiment, result *sim.Result) {
	if result == nil || len(result.Volumes) == 0 {
		return
	}
	rest := exp.Body().RestArea()
	ratios := make([]float64, len(result.Volumes))
	for i, v := range result.Volumes {
		ratios[i] = v / rest
	}

	sr.MeanArea, sr.AreaStd = stat.MeanStdDev(ratios, nil)
	sr.MinArea, sr.MaxArea = ratios[0], ratios[0]
	for _, v := range ratios {
		sr.MinArea = min(sr.MinArea, v)
		sr.MaxArea = max(sr.MaxArea, v)
	}

	cfg := exp.Config()
	every := max(cfg.Run.RecordEvery, 1)
	if f, err := analysis.DominantFrequency(ratios, cfg.Run.Tick*float64(every)); err == nil {
		sr.Frequency = f
	}
	sr.Stable = sr.Err == nil && result.Metrics["stability"] == 1
}
