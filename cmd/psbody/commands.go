package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/psbody/internal/analysis"
	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/export"
	"github.com/san-kum/psbody/internal/storage"
	"github.com/san-kum/psbody/internal/viz"
	"github.com/spf13/cobra"
)

var (
	svgFrame   int
	svgNormals bool
	svgPath    bool
	svgWidth   int
	svgHeight  int
	svgOut     string
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("running %s: %d particles, %s, host %s\n", cfg.Name, cfg.Body.Particles, cfg.Run.Integrator, cfg.World.Host)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		if result != nil && result.StepsTaken > 0 {
			log.Printf("stopped after %d steps", result.StepsTaken)
		}
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedNames(m) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, m[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	exp, err := experiment.New(cfg, reg)
	if err != nil {
		return err
	}
	return viz.RunLive(exp, reg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tN\tPRESSURE\tDURATION\tTICK\tINTEG\tHOST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Body.Particles,
			run.Body.Pressure,
			run.Duration,
			run.Tick,
			run.Integrator,
			run.Host,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []float64, []dynamo.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	times, frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, times, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, _, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %d particles, pressure %.2f\n", meta.Body.Particles, meta.Body.Pressure)
	fmt.Printf("samples: %d\n\n", len(frames))

	area := make([]float64, len(frames))
	height := make([]float64, len(frames))
	for i, f := range frames {
		area[i] = f.Volume
		c := centroid(f.Positions)
		height[i] = c.Y
	}

	fmt.Println(asciigraph.Plot(area, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("area")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(height, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("centroid height")))
	return nil
}

func centroid(ps []dynamo.Vec2) dynamo.Vec2 {
	var c dynamo.Vec2
	for _, p := range ps {
		c.X += p.X
		c.Y += p.Y
	}
	if n := float64(len(ps)); n > 0 {
		c.X /= n
		c.Y /= n
	}
	return c
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(args[0], os.Stdout)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).CopyFrames(args[0], os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, _, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgPath {
		path := make([]dynamo.Vec2, len(frames))
		for i, f := range frames {
			path[i] = centroid(f.Positions)
		}
		svg = export.TrajectoryToSVG(path, svgWidth, svgHeight, "#00ffff")
	} else {
		idx := svgFrame
		if idx < 0 {
			idx += len(frames)
		}
		if idx < 0 || idx >= len(frames) {
			return fmt.Errorf("frame %d out of range (%d frames)", svgFrame, len(frames))
		}
		svg = export.FrameToSVG(frames[idx], svgWidth, svgHeight, svgNormals)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}

	if svgOut == "" {
		_, err = fmt.Println(svg)
		return err
	}
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, times, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("run %s is too short to analyze", meta.ID)
	}

	area := make([]float64, len(frames))
	for i, f := range frames {
		area[i] = f.Volume
	}
	dt := times[1] - times[0]

	fmt.Printf("breathing-mode analysis: %s\n", meta.ID)
	fmt.Printf("body: %d particles, elasticity %.1f, pressure %.1f\n\n", meta.Body.Particles, meta.Body.Elasticity, meta.Body.Pressure)

	ps, err := analysis.PowerSpectrum(area, dt)
	if err != nil {
		return err
	}
	plotData := ps.Power[:max(len(ps.Power)/4, 2)]
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("area power spectrum (%.3f hz/bin)", ps.Resolution)),
	))
	fmt.Println()

	freq, _ := ps.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if delta := analysis.LogDecrement(area); delta > 0 {
		fmt.Printf("log decrement: %.4f\n", delta)
		fmt.Printf("damping ratio: %.4f\n", analysis.DampingRatio(delta))
	} else {
		fmt.Println("log decrement: no decaying oscillation found")
	}

	if p := analysis.AreaPortrait(times, area); p != nil {
		fmt.Println("\narea vs rate of change:")
		fmt.Println(analysis.PhasePortraitToASCII(p, 70, 20))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN\tELASTICITY\tDAMPING\tPRESSURE\tHOST\tFLOOR")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.1f\t%s\t%v\n",
			name, c.Body.Particles, c.Body.Elasticity, c.Body.Damping, c.Body.Pressure, c.World.Host, c.World.Floor)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	fmt.Printf("comparing integrators on %s (tick=%.4f, iters=%d, duration=%.1fs)\n\n",
		base.Name, base.Run.Tick, base.Run.Iterations, base.Run.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL AREA\tAREA SWING\tMOMENTUM DRIFT\tTIME")

	for _, name := range args {
		cfg := base.Clone()
		cfg.Run.Integrator = name

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		final := 0.0
		if last, ok := result.Last(); ok {
			final = last.Volume / exp.Body().RestArea()
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.2e\t%.2e\t%v\n",
			name, final, result.Metrics["area_swing"], result.Metrics["momentum_drift"], elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func benchBody(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	counts := []int{8, 24, 64, 128}
	subIters := []int{1, 10}

	fmt.Printf("benchmarking %s with %s, %.1fs per run\n\n", base.Name, base.Run.Integrator, base.Run.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tITERS\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range counts {
		for _, it := range subIters {
			cfg := base.Clone()
			cfg.Body.Particles = n
			cfg.Run.Iterations = it
			cfg.Run.RecordEvery = cfg.SimConfig().Ticks()

			exp, err := experiment.New(cfg, reg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
				n, it, result.StepsTaken, elapsed.Round(time.Microsecond), float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// parseGrid reads name=min:max:steps.
func parseGrid(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: want name=min:max:steps", arg)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want name=min:max:steps", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %q: steps must be a positive integer", arg)
	}

	vals := make([]float64, n)
	for i := range vals {
		if n == 1 {
			vals[i] = lo
			break
		}
		vals[i] = lo + float64(i)*(hi-lo)/float64(n-1)
	}
	return name, vals, nil
}
