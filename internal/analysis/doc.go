// Package analysis characterizes the breathing of a pressure body from its
// recorded area series.
//
//   - [PowerSpectrum]: windowed FFT of the area series
//   - [DominantFrequency]: strongest non-DC oscillation
//   - [LogDecrement]: damping estimated from successive area peaks
//   - [AreaPortrait]: area against its rate of change
//
// A typical run after storing frames:
//
//	spec, err := analysis.PowerSpectrum(volumes, tick)
//	f, _ := spec.Dominant()
package analysis
