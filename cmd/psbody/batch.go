package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/psbody/internal/automation"
	"github.com/san-kum/psbody/internal/experiment"
	"github.com/san-kum/psbody/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	trials  int
	perturb float64
	seed    int64

	tuneGrid   []string
	tuneMetric string
)

func newRunner(save bool) (*automation.Runner, error) {
	var st *storage.Store
	if save {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
	}
	return automation.NewRunner(experiment.NewRegistry(), st, log.Default()), nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner(false)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:      base,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	results, err := runner.RunSweep(cmd.Context(), sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN AREA\tSTD\tMIN\tMAX\tFREQ\tSTABLE\n", sweepParam)
	means := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.4g\terror: %v\n", r.ParamValue, r.Err)
			continue
		}
		means = append(means, r.MeanArea)
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\t%.4f\t%.3f\t%v\n",
			r.ParamValue, r.MeanArea, r.AreaStd, r.MinArea, r.MaxArea, r.Frequency, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(means) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(means, asciigraph.Height(10), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("mean area / rest vs %s", sweepParam))))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	runner, err := newRunner(true)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, err := runner.RunScenario(cmd.Context(), scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tSTEPS\tAREA RATIO\tRUN ID")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4f\t%s\n", i+1, r.Name, r.Result.StepsTaken, r.Result.Metrics["area_ratio"], r.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runRobust(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner(false)
	if err != nil {
		return err
	}

	results, err := runner.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	finals := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			log.Printf("trial %d: %v", r.TrialID, r.Err)
			continue
		}
		finals = append(finals, r.FinalArea)
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	if len(finals) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(finals, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("final area / rest per trial")))
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(tuneGrid) == 0 {
		return fmt.Errorf("tune needs at least one --grid")
	}
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneGrid))
	ranges := make([][]float64, 0, len(tuneGrid))
	for _, g := range tuneGrid {
		name, vals, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	runner, err := newRunner(false)
	if err != nil {
		return err
	}
	best, value, err := automation.NewGridSearch(names, ranges).Search(cmd.Context(), runner, base, tuneMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", tuneMetric, value)
	printMetrics(best)
	return nil
}
