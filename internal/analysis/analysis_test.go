package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func sine(n int, dt, freq, amp, decay, offset float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		t := float64(i) * dt
		s[i] = offset + amp*math.Exp(-decay*t)*math.Cos(2*math.Pi*freq*t)
	}
	return s
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"slow", 1.5},
		{"medium", 4},
		{"fast", 11},
	}

	const dt = 0.01
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// non power-of-two length on purpose
			series := sine(1000, dt, tt.freq, 0.2, 0, 3.0)
			got, err := DominantFrequency(series, dt)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.freq) > 0.1 {
				t.Errorf("dominant frequency = %f, want %f", got, tt.freq)
			}
		})
	}
}

func TestPowerSpectrum_Shape(t *testing.T) {
	s, err := PowerSpectrum(sine(200, 0.02, 2, 1, 0, 0), 0.02)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Freqs) != 101 || len(s.Power) != 101 {
		t.Errorf("expected 101 bins, got %d", len(s.Freqs))
	}
	if math.Abs(s.Resolution-0.25) > 1e-12 {
		t.Errorf("resolution = %f, want 0.25", s.Resolution)
	}
	if math.Abs(s.Freqs[len(s.Freqs)-1]-25) > 1e-9 {
		t.Errorf("last bin should be the Nyquist frequency, got %f", s.Freqs[len(s.Freqs)-1])
	}
}

func TestPowerSpectrum_Errors(t *testing.T) {
	if _, err := PowerSpectrum([]float64{1, 2}, 0.01); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
	if _, err := PowerSpectrum(make([]float64, 16), 0); err == nil {
		t.Error("expected an error for zero dt")
	}
}

func TestPowerSpectrum_Constant(t *testing.T) {
	s, err := PowerSpectrum([]float64{2, 2, 2, 2, 2, 2, 2, 2}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for k, p := range s.Power {
		if p > 1e-12 {
			t.Errorf("bin %d has power %g for a constant series", k, p)
		}
	}
}

func TestLogDecrement(t *testing.T) {
	const (
		dt    = 0.001
		freq  = 2.0
		decay = 0.8
	)
	series := sine(5000, dt, freq, 0.5, decay, 1.0)
	// the final sample is not the settled value yet, pin it
	series = append(series, 1.0)

	got := LogDecrement(series)
	want := decay / freq
	if math.Abs(got-want) > 0.01 {
		t.Errorf("log decrement = %f, want %f", got, want)
	}

	zeta := DampingRatio(got)
	if zeta <= 0 || zeta >= 1 {
		t.Errorf("damping ratio %f outside (0, 1)", zeta)
	}
}

func TestLogDecrement_NoOscillation(t *testing.T) {
	if got := LogDecrement([]float64{1, 2, 3, 4, 5}); got != 0 {
		t.Errorf("expected 0 for a monotone series, got %f", got)
	}
}

func TestAreaPortrait(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3}
	volumes := []float64{1, 1.2, 1.4, 1.6}

	p := AreaPortrait(times, volumes)
	if p == nil || len(p.Points) != 4 {
		t.Fatal("expected 4 points")
	}
	for i, pt := range p.Points {
		if math.Abs(pt.Y-2) > 1e-9 {
			t.Errorf("rate at %d = %f, want 2", i, pt.Y)
		}
	}

	out := PhasePortraitToASCII(p, 20, 5)
	if strings.Count(out, "\n") != 5 || !strings.Contains(out, "•") {
		t.Errorf("unexpected ascii portrait:\n%s", out)
	}

	if AreaPortrait(times, volumes[:2]) != nil {
		t.Error("expected nil for mismatched lengths")
	}
}
