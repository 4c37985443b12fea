package metrics

import "github.com/san-kum/psbody/internal/dynamo"

const DefaultSpeedLimit = 50.0

// Standard returns the metric set recorded with every stored run.
func Standard(sys dynamo.System, restArea float64) []dynamo.Metric {
	ms := []dynamo.Metric{
		NewEnergyDrift(sys),
		NewMomentumDrift(sys.Mass()),
		NewAreaRatio(sys, restArea),
		NewAreaSwing(sys, restArea),
		NewStability(DefaultSpeedLimit),
	}
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		ms = append([]dynamo.Metric{NewEnergy(h)}, ms...)
	}
	return ms
}
