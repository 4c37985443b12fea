package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Peaks returns the indices of strict local maxima of series above its mean.
func Peaks(series []float64) []int {
	if len(series) < 3 {
		return nil
	}
	mean := stat.Mean(series, nil)

	var idx []int
	for i := 1; i < len(series)-1; i++ {
		if series[i] > mean && series[i] > series[i-1] && series[i] >= series[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}

// LogDecrement estimates the logarithmic decrement of an oscillation about
// the final value of series, averaged over all successive peak pairs. It
// returns 0 when fewer than two peaks are found.
func LogDecrement(series []float64) float64 {
	if len(series) < 3 {
		return 0
	}
	settled := series[len(series)-1]

	peaks := Peaks(series)
	amps := make([]float64, 0, len(peaks))
	for _, i := range peaks {
		if a := series[i] - settled; a > 0 {
			amps = append(amps, a)
		}
	}
	if len(amps) < 2 {
		return 0
	}
	return math.Log(amps[0]/amps[len(amps)-1]) / float64(len(amps)-1)
}

// DampingRatio converts a logarithmic decrement to the damping ratio zeta.
func DampingRatio(delta float64) float64 {
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta)
}
