package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	preset     string
	configFile string

	particles    int
	radius       float64
	mass         float64
	elasticity   float64
	damping      float64
	pressure     float64
	gravityScale float64
	drag         float64
	tick         float64
	iters        int
	duration     float64
	integrator   string
	host         string
	volume       string
	floor        bool
)

// numeric body flags and the config keys they set
var numericFlags = map[string]string{
	"particles":     "particles",
	"radius":        "radius",
	"mass":          "mass",
	"elasticity":    "elasticity",
	"damping":       "damping",
	"pressure":      "pressure",
	"gravity-scale": "gravity_scale",
	"drag":          "drag",
	"tick":          "tick",
	"iters":         "iterations",
	"time":          "duration",
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("psbody: ")

	rootCmd := &cobra.Command{
		Use:          "psbody",
		Short:        "2d pressure soft-body simulation lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry())
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".psbody", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addBodyFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addBodyFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot area and centroid height of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a recorded frame or the centroid path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "frame index, negative counts from the end")
	exportSVGCmd.Flags().BoolVar(&svgNormals, "normals", false, "draw particle normals")
	exportSVGCmd.Flags().BoolVar(&svgPath, "path", false, "draw the centroid path instead of a frame")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 480, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 480, "image height")
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "breathing-mode frequency and damping of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same body",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addBodyFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput by particle count",
		Args:  cobra.NoArgs,
		RunE:  benchBody,
	}
	addBodyFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and summarize the area response",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addBodyFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "pressure", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 50, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	robustCmd := &cobra.Command{
		Use:   "robust",
		Short: "monte carlo runs from randomly perturbed rest shapes",
		Args:  cobra.NoArgs,
		RunE:  runRobust,
	}
	addBodyFlags(robustCmd)
	robustCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	robustCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "max displacement as a fraction of the radius")
	robustCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters minimizing a run metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addBodyFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", nil, "parameter grid as name=min:max:steps (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "area_swing", "metric to minimize")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		analyzeCmd, presetsCmd, compareCmd, benchCmd, sweepCmd, scenarioCmd, robustCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addBodyFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.IntVar(&particles, "particles", def.Body.Particles, "number of particles")
	f.Float64Var(&radius, "radius", def.Body.Radius, "rest radius")
	f.Float64Var(&mass, "mass", def.Body.Mass, "particle mass")
	f.Float64Var(&elasticity, "elasticity", def.Body.Elasticity, "spring elasticity")
	f.Float64Var(&damping, "damping", def.Body.Damping, "spring damping")
	f.Float64Var(&pressure, "pressure", def.Body.Pressure, "internal pressure")
	f.Float64Var(&gravityScale, "gravity-scale", def.Body.GravityScale, "host gravity scale")
	f.Float64Var(&drag, "drag", def.World.Drag, "host linear drag")
	f.Float64Var(&tick, "tick", def.Run.Tick, "tick duration")
	f.IntVar(&iters, "iters", def.Run.Iterations, "sub-iterations per tick")
	f.Float64Var(&duration, "time", def.Run.Duration, "duration")
	f.StringVar(&integrator, "integrator", def.Run.Integrator, "integrator")
	f.StringVar(&host, "host", def.World.Host, "host world (none, free, chipmunk)")
	f.StringVar(&volume, "volume", def.Body.Volume, "volume estimator (divergence, extent)")
	f.BoolVar(&floor, "floor", def.World.Floor, "add a floor to the host world")
}

// buildConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := cfg.Overlay(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	for flag, key := range numericFlags {
		if !flags.Changed(flag) {
			continue
		}
		v, err := strconv.ParseFloat(flags.Lookup(flag).Value.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		if err := cfg.Set(key, v); err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	if flags.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if flags.Changed("host") {
		cfg.World.Host = host
	}
	if flags.Changed("volume") {
		cfg.Body.Volume = volume
	}
	if flags.Changed("floor") {
		cfg.World.Floor = floor
	}

	return cfg, cfg.Validate()
}
