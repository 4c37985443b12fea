// Package automation runs batches of pressure-body experiments: scripted
// YAML scenarios, one-parameter sweeps, randomized robustness trials and a
// grid search that minimizes a run metric.
package automation
