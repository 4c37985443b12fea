package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

const minSpectrumSamples = 4

type Spectrum struct {
	Freqs []float64
	Power []float64
	// Resolution is the spacing between frequency bins in Hz.
	Resolution float64
}

// PowerSpectrum returns the magnitude spectrum of series sampled every dt
// seconds. The mean is removed and a Hann window applied first, so bin 0
// carries no breathing energy.
func PowerSpectrum(series []float64, dt float64) (*Spectrum, error) {
	n := len(series)
	if n < minSpectrumSamples {
		return nil, ErrShortSeries
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, errors.New("analysis: sample interval must be positive")
	}

	mean := stat.Mean(series, nil)
	windowed := make([]float64, n)
	for i, v := range series {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	coeffs := fft.FFTReal(windowed)

	bins := n/2 + 1
	res := 1 / (float64(n) * dt)
	s := &Spectrum{
		Freqs:      make([]float64, bins),
		Power:      make([]float64, bins),
		Resolution: res,
	}
	for k := 0; k < bins; k++ {
		s.Freqs[k] = float64(k) * res
		s.Power[k] = cmplx.Abs(coeffs[k])
	}
	return s, nil
}

// Dominant returns the frequency and magnitude of the strongest bin above DC.
func (s *Spectrum) Dominant() (freq, power float64) {
	best := 0
	for k := 1; k < len(s.Power); k++ {
		if best == 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best == 0 {
		return 0, 0
	}
	return s.Freqs[best], s.Power[best]
}

func DominantFrequency(series []float64, dt float64) (float64, error) {
	s, err := PowerSpectrum(series, dt)
	if err != nil {
		return 0, err
	}
	f, _ := s.Dominant()
	return f, nil
}
