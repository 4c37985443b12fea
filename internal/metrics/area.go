package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/psbody/internal/dynamo"
)

// AreaRatio follows the enclosed area relative to the rest area. Value is
// the mean ratio; Stddev measures how strongly the body breathes.
type AreaRatio struct {
	name     string
	sys      dynamo.System
	restArea float64
	ratios   []float64
}

func NewAreaRatio(sys dynamo.System, restArea float64) *AreaRatio {
	return &AreaRatio{
		name:     "area_ratio",
		sys:      sys,
		restArea: restArea,
	}
}

func (a *AreaRatio) Name() string { return a.name }

func (a *AreaRatio) Observe(x dynamo.State, t float64) {
	if a.restArea <= 0 {
		return
	}
	a.ratios = append(a.ratios, a.sys.Volume(x)/a.restArea)
}

func (a *AreaRatio) Value() float64 {
	if len(a.ratios) == 0 {
		return 0
	}
	return stat.Mean(a.ratios, nil)
}

func (a *AreaRatio) Stddev() float64 {
	if len(a.ratios) < 2 {
		return 0
	}
	return stat.StdDev(a.ratios, nil)
}

// Range returns the smallest and largest observed ratios.
func (a *AreaRatio) Range() (lo, hi float64) {
	if len(a.ratios) == 0 {
		return 0, 0
	}
	lo, hi = a.ratios[0], a.ratios[0]
	for _, r := range a.ratios[1:] {
		lo = min(lo, r)
		hi = max(hi, r)
	}
	return lo, hi
}

func (a *AreaRatio) Reset() {
	a.ratios = a.ratios[:0]
}

// AreaSwing is the standard deviation of the area ratio as its own metric.
type AreaSwing struct {
	*AreaRatio
}

func NewAreaSwing(sys dynamo.System, restArea float64) *AreaSwing {
	ar := NewAreaRatio(sys, restArea)
	ar.name = "area_swing"
	return &AreaSwing{AreaRatio: ar}
}

func (a *AreaSwing) Value() float64 { return a.AreaRatio.Stddev() }
