package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/sim"
	"github.com/san-kum/psbody/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Settings apply in order:
// defaults, preset, config file, then the fields below.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Host       string             `yaml:"host"`
	Volume     string             `yaml:"volume"`
	Duration   float64            `yaml:"duration"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// Runner executes batch jobs. A nil Store disables saving, a nil Log
// discards progress output.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Log      *log.Logger
}

func NewRunner(reg *experiment.Registry, store *storage.Store, logger *log.Logger) *Runner {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{Registry: reg, Store: store, Log: logger}
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Build resolves the step into a full config.
func (step ScenarioStep) Build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", step.Preset)
		}
	}
	if step.Config != "" {
		if err := cfg.Overlay(step.Config); err != nil {
			return nil, err
		}
	}
	if step.Integrator != "" {
		cfg.Run.Integrator = step.Integrator
	}
	if step.Host != "" {
		cfg.World.Host = step.Host
	}
	if step.Volume != "" {
		cfg.Body.Volume = step.Volume
	}
	if step.Duration > 0 {
		cfg.Run.Duration = step.Duration
	}
	if err := cfg.SetAll(step.Params); err != nil {
		return nil, err
	}
	if step.SaveAs != "" {
		cfg.Name = step.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in a scenario, stopping at the first
// failure. Results of the completed steps are returned either way.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.Log.Printf("step %d/%d: %s (%d particles, %s, host %s)",
			i+1, len(scenario.Steps), cfg.Name, cfg.Body.Particles, cfg.Run.Integrator, cfg.World.Host)

		exp, err := experiment.New(cfg, r.Registry)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Name, Config: cfg, Result: result}
		if step.SaveAs != "" && r.Store != nil {
			id, err := r.Store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			r.Log.Printf("saved %s", id)
		}
		results = append(results, sr)
	}

	return results, nil
}
