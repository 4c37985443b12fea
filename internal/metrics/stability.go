package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/psbody/internal/dynamo"
)

// Stability is the share of samples in which the whole ring stayed finite and
// no particle moved faster than the speed limit.
type Stability struct {
	limit     float64
	bad, n    int
	firstFail float64
}

func NewStability(speedLimit float64) *Stability {
	return &Stability{limit: speedLimit, firstFail: math.NaN()}
}

func (*Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.n++
	if s.ok(x) {
		return
	}
	if s.bad == 0 {
		s.firstFail = t
	}
	s.bad++
}

func (s *Stability) ok(x dynamo.State) bool {
	if !x.IsValid() {
		return false
	}
	for _, p := range x {
		if r2.Norm(p.Velocity) > s.limit {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.n == 0 {
		return 1
	}
	return float64(s.n-s.bad) / float64(s.n)
}

// FirstFailure is the sample time of the first unstable sample, NaN if none.
func (s *Stability) FirstFailure() float64 { return s.firstFail }

func (s *Stability) Reset() { *s = *NewStability(s.limit) }
