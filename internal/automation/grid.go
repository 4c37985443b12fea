package automation

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
)

// GridSearch tries every combination of parameter values on top of a base
// config and keeps the one with the smallest value of a run metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the best parameter set and its metric value. Combinations
// whose experiment fails to build or run are skipped.
func (g *GridSearch) Search(ctx context.Context, r *Runner, base *config.Config, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	for combo := range g.combinations() {
		if ctx.Err() != nil {
			break
		}
		val, err := g.evaluate(ctx, r, base, combo, metricName)
		if err != nil {
			r.Log.Printf("grid %v: %v", combo, err)
			continue
		}
		if val < best {
			best, bestParams = val, combo
		}
	}

	if err := ctx.Err(); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("grid search: no combination produced %q", metricName)
	}
	return bestParams, best, nil
}

// combinations walks the grid like an odometer, last parameter fastest.
// Each yielded map is fresh.
func (g *GridSearch) combinations() iter.Seq[map[string]float64] {
	return func(yield func(map[string]float64) bool) {
		for _, vals := range g.ranges {
			if len(vals) == 0 {
				return
			}
		}
		idx := make([]int, len(g.ranges))
		for {
			combo := make(map[string]float64, len(idx))
			for d, k := range idx {
				combo[g.paramNames[d]] = g.ranges[d][k]
			}
			if !yield(combo) {
				return
			}

			d := len(idx) - 1
			for ; d >= 0; d-- {
				idx[d]++
				if idx[d] < len(g.ranges[d]) {
					break
				}
				idx[d] = 0
			}
			if d < 0 {
				return
			}
		}
	}
}

func (g *GridSearch) evaluate(ctx context.Context, r *Runner, base *config.Config, combo map[string]float64, metricName string) (float64, error) {
	cfg := base.Clone()
	if err := cfg.SetAll(combo); err != nil {
		return 0, err
	}
	exp, err := experiment.New(cfg, r.Registry)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("run did not record %q", metricName)
	}
	return val, nil
}
