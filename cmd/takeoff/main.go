package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/san-kum/takeoff/internal/dynamo"
	"github.com/san-kum/takeoff/internal/export"
	"github.com/san-kum/takeoff/internal/logging"
	"github.com/san-kum/takeoff/internal/metrics"
	"github.com/san-kum/takeoff/internal/optim"
	"github.com/san-kum/takeoff/internal/storage"
	"github.com/san-kum/takeoff/internal/sweep"
	"github.com/san-kum/takeoff/internal/telemetry"
	"github.com/san-kum/takeoff/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	metricsAddr string

	runFlags  *simFlags
	liveFlags *simFlags
	refFlags  *simFlags

	sweepSteps   int
	sweepWorkers int
	sweepPreset  string
	sweepDt      float64
	sweepMax     int

	plotWidth  int
	plotHeight int

	svgChart  string
	svgOut    string
	svgWidth  int
	svgHeight int

	optimGrid   []string
	optimMetric string
	optimPreset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "takeoff",
		Short: "aircraft takeoff simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			// no subcommand: interactive mode with the default aircraft
			return runInteractive(cmd.Context(), config.DefaultConfig(), "default")
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation until the target velocity",
		RunE:  runBatch,
	}
	runFlags = registerSimFlags(runCmd.Flags())

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive simulation with custom parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, label, err := liveFlags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cfg, label)
		},
	}
	liveFlags = registerSimFlags(liveCmd.Flags())

	referenceCmd := &cobra.Command{
		Use:   "reference",
		Short: "print the derived constants for a parameter set",
		RunE:  printReference,
	}
	refFlags = registerSimFlags(referenceCmd.Flags())

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "chart height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available aircraft presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMASS\tTHRUST\tCL\tCD\tTEMP\tMARGIN")
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.2f\t%.3f\t%.1f\t%.2f\n",
					name, p.Mass, p.Thrust, p.LiftCoefficient, p.DragCoefficient, p.TemperatureC, p.Margin)
			}
			return w.Flush()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "sweep one parameter and compare time to target",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of sweep points")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "", "base aircraft preset")
	sweepCmd.Flags().Float64Var(&sweepDt, "dt", config.DefaultDt, "time step (s)")
	sweepCmd.Flags().IntVar(&sweepMax, "max-steps", config.DefaultMaxSteps, "step cap per run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted list of batch simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a chart of a saved run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgChart, "chart", string(export.ChartVelocity), "chart: velocity, lift, altitude, path or runway")
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search parameters minimizing a run metric",
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().StringArrayVar(&optimGrid, "grid", nil, "parameter grid as name=v1,v2,... (repeatable)")
	optimizeCmd.Flags().StringVar(&optimMetric, "metric", "ground_roll", "metric to minimize")
	optimizeCmd.Flags().StringVar(&optimPreset, "preset", "", "base aircraft preset")
	optimizeCmd.MarkFlagRequired("grid")

	rootCmd.AddCommand(runCmd, liveCmd, referenceCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		presetsCmd, sweepCmd, scenarioCmd, optimizeCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.WithContext(ctx, logging.New())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// startTelemetry returns a recorder and, when an address is configured,
// serves it until ctx is done. The --metrics-addr flag wins over addr.
func startTelemetry(ctx context.Context, addr string) *telemetry.Recorder {
	rec := telemetry.NewRecorder()
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr == "" {
		return rec
	}

	log := logging.FromContext(ctx)
	go func() {
		if err := rec.Serve(ctx, addr); err != nil {
			log.Error(ctx, "metrics server stopped", err, "addr", addr)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return rec
}

func runInteractive(ctx context.Context, cfg *config.Config, label string) error {
	sess, err := dynamo.NewSession(cfg.Aircraft, cfg.Dt)
	if err != nil {
		return err
	}

	rec := startTelemetry(ctx, cfg.MetricsAddr)
	rec.SetConstants(sess.Constants())
	sess.AddObserver(rec)

	m := viz.NewModel(sess, label).
		OnReset(rec.Reset).
		OnParams(rec.SetConstants)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, label, err := runFlags.resolve(cmd.Flags())
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx).WithRun(label)

	st := storage.New(dataDirFor(cmd.Flags(), cfg, dataDir))
	if err := st.Init(); err != nil {
		return err
	}

	rec := startTelemetry(ctx, cfg.MetricsAddr)

	simCfg := cfg.SimConfig()
	runner := dynamo.NewRunner(simCfg)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}
	runner.AddObserver(rec)

	fmt.Printf("running %s takeoff...\n", label)
	start := time.Now()

	result, runErr := runner.Run(ctx, cfg.Aircraft)
	rec.RunFinished(result, runErr)
	if result == nil {
		log.Error(ctx, "run failed", runErr)
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(label, simCfg, result, runErr)
	if err != nil {
		return err
	}
	log.Debug("run saved", "id", runID, "steps", result.Steps)

	final := result.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "air density\t%.4f kg/m³\n", result.Constants.AirDensity)
	fmt.Fprintf(w, "weight\t%.0f N\n", result.Constants.Weight)
	fmt.Fprintf(w, "takeoff velocity\t%.2f m/s\n", result.Constants.TakeoffVelocity)
	fmt.Fprintf(w, "target velocity\t%.2f m/s\n", result.Constants.TargetVelocity)
	fmt.Fprintf(w, "steps\t%d\n", result.Steps)
	fmt.Fprintf(w, "time\t%.1f s\n", final.Time)
	fmt.Fprintf(w, "final velocity\t%.2f m/s\n", final.Velocity)
	fmt.Fprintf(w, "altitude\t%.1f m\n", final.Altitude)
	fmt.Fprintf(w, "phase\t%s\n", result.Phase)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if runErr != nil {
		var div *dynamo.DivergedError
		if errors.As(runErr, &div) {
			fmt.Printf("\nno takeoff: velocity %.2f m/s after %d steps, target %.2f m/s (terminal velocity %.2f m/s)\n",
				div.Velocity, div.Steps, div.Target, result.Constants.TerminalVelocity(result.Params))
		}
		log.Error(ctx, "run did not reach target", runErr)
		return runErr
	}
	return nil
}

func printReference(cmd *cobra.Command, args []string) error {
	cfg, label, err := refFlags.resolve(cmd.Flags())
	if err != nil {
		return err
	}

	c, err := aero.Compute(cfg.Aircraft)
	if err != nil {
		return err
	}

	fmt.Printf("reference values (%s):\n", label)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "air density\t%.4f kg/m³\n", c.AirDensity)
	fmt.Fprintf(w, "weight\t%.1f N\n", c.Weight)
	fmt.Fprintf(w, "takeoff velocity\t%.2f m/s\n", c.TakeoffVelocity)
	fmt.Fprintf(w, "target velocity\t%.2f m/s (x%.2f)\n", c.TargetVelocity, cfg.Aircraft.Margin)
	fmt.Fprintf(w, "terminal velocity\t%.2f m/s\n", c.TerminalVelocity(cfg.Aircraft))
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSTEPS\tDT\tPHASE\tAIRBORNE")

	for _, run := range runs {
		phase := run.Phase
		if run.Error != "" {
			phase = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3fs\t%s\t%t\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			phase,
			run.Airborne,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("samples: %d\n\n", len(samples))
	fmt.Print(viz.PlotSamples(samples, plotWidth, plotHeight))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, samples)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	return storage.ExportCSV(os.Stdout, samples)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if svgOut == "" {
		return export.SamplesToSVG(os.Stdout, samples, export.Chart(svgChart), svgWidth, svgHeight)
	}

	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.SamplesToSVG(f, samples, export.Chart(svgChart), svgWidth, svgHeight); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

// parseGrid parses name=v1,v2,... specs into parameter names and values.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid grid %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid grid value in %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	names, ranges, err := parseGrid(optimGrid)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if optimPreset != "" {
		p, ok := config.GetPreset(optimPreset)
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", optimPreset, config.ListPresets())
		}
		cfg.Aircraft = p
	}

	out, err := g.Search(cmd.Context(), cfg.Aircraft, cfg.SimConfig(), optimMetric)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points (%d diverged)\n", out.Evaluated, out.Diverged)
	fmt.Printf("best %s: %.4f\n", optimMetric, out.Value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, out.Params[name])
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	paramName := args[0]
	minVal, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid min: %w", err)
	}
	maxVal, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid max: %w", err)
	}

	cfg := config.DefaultConfig()
	if sweepPreset != "" {
		p, ok := config.GetPreset(sweepPreset)
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", sweepPreset, config.ListPresets())
		}
		cfg.Aircraft = p
	}
	cfg.Dt = sweepDt
	cfg.MaxSteps = sweepMax
	if err := cfg.Validate(); err != nil {
		return err
	}

	s := &sweep.ParameterSweep{
		Base:      cfg.Aircraft,
		ParamName: paramName,
		ParamMin:  minVal,
		ParamMax:  maxVal,
		NumSteps:  sweepSteps,
		Sim:       cfg.SimConfig(),
		Workers:   sweepWorkers,
	}

	fmt.Printf("sweeping %s from %g to %g (%d points)...\n\n", paramName, minVal, maxVal, sweepSteps)
	results, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tTARGET TIME\tLIFTOFF\tGROUND ROLL\tSTEPS\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Diverged() {
			status = "diverged"
		}
		fmt.Fprintf(w, "%g\t%s\t%s\t%s\t%d\t%s\n",
			r.ParamValue, seconds(r.TargetTime), seconds(r.LiftoffTime), metres(r.GroundRoll), r.Steps, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := sweep.Best(results); ok {
		fmt.Printf("\nfastest: %s=%g reaches target in %.1fs\n", paramName, best.ParamValue, best.TargetTime)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := sweep.LoadScenario(args[0])
	if err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	outcomes, err := sweep.RunScenario(cmd.Context(), sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTEPS\tTIME\tVELOCITY\tALTITUDE\tSTATUS")
	for _, o := range outcomes {
		final := o.Result.Final()
		status := scenarioStatus(o)
		preset := o.Step.Preset
		if preset == "" {
			preset = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1fs\t%.2f m/s\t%.1f m\t%s\n",
			o.Step.Name, preset, o.Result.Steps, final.Time, final.Velocity, final.Altitude, status)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	return err
}

func scenarioStatus(o sweep.StepOutcome) string {
	switch {
	case o.Err == nil:
		return o.Result.Phase.String()
	case errors.Is(o.Err, dynamo.ErrDiverged):
		return "diverged"
	case errors.Is(o.Err, context.Canceled), errors.Is(o.Err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1fs", v)
}

func metres(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.0f m", v)
}
