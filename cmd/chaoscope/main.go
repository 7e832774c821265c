package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/chaoscope/internal/analysis"
	"github.com/san-kum/chaoscope/internal/colormap"
	"github.com/san-kum/chaoscope/internal/config"
	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/export"
	"github.com/san-kum/chaoscope/internal/mapping"
	"github.com/san-kum/chaoscope/internal/render"
	"github.com/san-kum/chaoscope/internal/tui"
)

// Interactive sessions run at a lower resolution than one-shot
// renders so a frame advances in well under a second.
const exploreRes = 144

var (
	dataDir     string
	configFile  string
	preset      string
	verbose     bool
	resolution  int
	tileSize    int
	chunks      int
	frames      int
	workers     int
	outPath     string
	viewName    string
	paletteName string
	modeName    string
	systemName  string
	integName   string
	seed        int64
	shadeLo     float64
	shadeHi     float64
	saveRun     bool
	maxBytes    int64
	runID       string
	bins        int
)

// main is the entry point for the chaoscope CLI; it registers commands
// and flags and opens the interactive explorer when no subcommand is
// given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "chaoscope",
		Short: "double pendulum chaos-map renderer",
		RunE:  runExplore,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaoscope", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log render internals")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one frame to png",
		RunE:  runRender,
	}
	addSceneFlags(renderCmd, config.DefaultResolution)
	renderCmd.Flags().IntVar(&tileSize, "tile", config.DefaultTile, "tile edge in pixels")
	renderCmd.Flags().IntVar(&chunks, "chunks", 1000, "chunks per pixel")
	renderCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	renderCmd.Flags().StringVar(&outPath, "out", "chaoscope.png", "output path")
	renderCmd.Flags().Float64Var(&shadeLo, "lo", 0, "shading range low end (default: 2nd percentile)")
	renderCmd.Flags().Float64Var(&shadeHi, "hi", 0, "shading range high end (default: 98th percentile)")
	renderCmd.Flags().BoolVar(&saveRun, "save", false, "also store the raw field as a run")

	animateCmd := &cobra.Command{
		Use:   "animate",
		Short: "render an incremental frame sequence",
		RunE:  runAnimate,
	}
	addSceneFlags(animateCmd, config.DefaultResolution)
	animateCmd.Flags().IntVar(&frames, "frames", 60, "frames to advance")
	animateCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	animateCmd.Flags().Float64Var(&shadeLo, "lo", 0, "shading range low end (default: 2nd percentile)")
	animateCmd.Flags().Float64Var(&shadeHi, "hi", 0, "shading range high end (default: 98th percentile)")
	animateCmd.Flags().Int64Var(&maxBytes, "max-bytes", render.DefaultMaxBytes, "frame history memory budget")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive terminal explorer",
		RunE:  runExplore,
	}
	addSceneFlags(exploreCmd, exploreRes)

	probeCmd := &cobra.Command{
		Use:   "probe [px] [py]",
		Short: "evaluate one pixel sequentially",
		Args:  cobra.ExactArgs(2),
		RunE:  runProbe,
	}
	addSceneFlags(probeCmd, config.DefaultResolution)
	probeCmd.Flags().IntVar(&chunks, "chunks", 1000, "chunks to evolve")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "divergence onset histogram",
		RunE:  runStats,
	}
	addSceneFlags(statsCmd, config.DefaultResolution)
	statsCmd.Flags().IntVar(&chunks, "chunks", 1000, "chunks per pixel")
	statsCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	statsCmd.Flags().StringVar(&runID, "run", "", "histogram a stored run instead of rendering")
	statsCmd.Flags().IntVar(&bins, "bins", 24, "histogram bins")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(renderCmd, animateCmd, exploreCmd, probeCmd, statsCmd, presetsCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(c *cobra.Command, defRes int) {
	def := config.DefaultConfig()
	c.Flags().IntVar(&resolution, "res", defRes, "field resolution")
	c.Flags().StringVar(&systemName, "system", def.System, "system kernel")
	c.Flags().StringVar(&integName, "integrator", def.Integrator, "integrator")
	c.Flags().StringVar(&viewName, "view", def.View, "view mode")
	c.Flags().StringVar(&paletteName, "palette", def.Palette, "palette")
	c.Flags().StringVar(&modeName, "mode", def.ValueMode, "value scaling (linear|log|periodic)")
	c.Flags().Int64Var(&seed, "seed", def.Seed, "perturbation seed")
}

// loadConfig resolves defaults, preset, config file and flags, in that
// order. Flags win only when set on the invoked command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("res") {
		cfg.Resolution = resolution
	}
	if f.Changed("system") {
		cfg.System = systemName
	}
	if f.Changed("integrator") {
		cfg.Integrator = integName
	}
	if f.Changed("view") {
		cfg.View = viewName
	}
	if f.Changed("palette") {
		cfg.Palette = paletteName
	}
	if f.Changed("mode") {
		cfg.ValueMode = modeName
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("tile") {
		cfg.Tile = tileSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return cfg, nil
}

func buildScene(cfg *config.Config) (dynamo.System, func() dynamo.Integrator, *mapping.Stack, error) {
	reg := config.NewRegistry()
	sys, err := reg.System(cfg.System)
	if err != nil {
		return nil, nil, nil, err
	}
	newInteg, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return nil, nil, nil, err
	}
	stack, err := cfg.Stack()
	if err != nil {
		return nil, nil, nil, err
	}
	return sys, newInteg, stack, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func simTime(cfg *config.Config, chunks int) float64 {
	return float64(chunks*cfg.IterationsPerChunk) * cfg.Dt
}

// shaderFor builds the shader for a rendered field, auto-ranging from
// its percentiles unless --lo/--hi pin the ends.
func shaderFor(cmd *cobra.Command, cfg *config.Config, field *diverge.Field) colormap.Shader {
	pal, _ := colormap.ParsePalette(cfg.Palette)
	mode, _ := colormap.ParseMode(cfg.ValueMode)
	lo, hi := colormap.AutoRange(field)
	if cmd.Flags().Changed("lo") {
		lo = shadeLo
	}
	if cmd.Flags().Changed("hi") {
		hi = shadeHi
	}
	return colormap.Shader{Palette: pal, Mode: mode, Period: cfg.Period, Lo: lo, Hi: hi}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, newInteg, stack, err := buildScene(cfg)
	if err != nil {
		return err
	}
	view, err := diverge.ParseView(cfg.View)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tiler := render.Tiler{
		Sys:      sys,
		NewInteg: newInteg,
		Cfg:      cfg.DivergeConfig(),
		Stack:    stack,
		Res:      cfg.Resolution,
		TileSize: cfg.Tile,
		Chunks:   chunks,
		Workers:  workers,
		Log:      newLogger(),
	}

	fmt.Printf("rendering %s %dx%d (%d chunks, t=%.1fs)...\n",
		cfg.System, cfg.Resolution, cfg.Resolution, chunks, simTime(cfg, chunks))
	start := time.Now()
	field, err := tiler.Render(ctx, view)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))

	if err := export.WritePNG(outPath, field, shaderFor(cmd, cfg, field)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)

	if saveRun {
		st := export.NewStore(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		run, err := st.Create(export.RunManifest{
			System:     cfg.System,
			Integrator: cfg.Integrator,
			View:       cfg.View,
			Seed:       cfg.Seed,
			Dt:         cfg.Dt,
			Resolution: cfg.Resolution,
		})
		if err != nil {
			return err
		}
		if err := run.WriteFrame(field, chunks, simTime(cfg, chunks)); err != nil {
			return err
		}
		if err := run.Finish(); err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", run.ID())
	}
	return nil
}

func runAnimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, newInteg, stack, err := buildScene(cfg)
	if err != nil {
		return err
	}
	view, err := diverge.ParseView(cfg.View)
	if err != nil {
		return err
	}

	sess, err := render.NewSession(sys, newInteg, cfg.DivergeConfig(), stack, cfg.Resolution,
		render.SessionOptions{
			Workers:              workers,
			MaxBytes:             maxBytes,
			ChunksBetweenSamples: cfg.ChunksBetweenSamples,
			Log:                  newLogger(),
		})
	if err != nil {
		return err
	}

	st := export.NewStore(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	run, err := st.Create(export.RunManifest{
		System:     cfg.System,
		Integrator: cfg.Integrator,
		View:       cfg.View,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Resolution: cfg.Resolution,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	perFrame := cfg.ChunksBetweenSamples + 1
	start := time.Now()
	for i := 1; i <= frames; i++ {
		if err := sess.Advance(ctx); err != nil {
			if errors.Is(err, render.ErrMemoryBudget) {
				fmt.Printf("memory budget reached after %d frames\n", sess.Frames()-1)
				break
			}
			return err
		}
		fmt.Printf("frame %d/%d  t=%.2fs\n", i, frames, simTime(cfg, i*perFrame))
	}
	fmt.Printf("advanced %d frames in %v\n", sess.Frames()-1, time.Since(start))

	last := sess.Frames() - 1
	if last < 1 {
		return fmt.Errorf("no frames advanced")
	}

	// One shading range for the whole sequence, taken from the final
	// frame, so the animation does not flicker.
	shader := shaderFor(cmd, cfg, sess.Frame(last).Field(view))
	for i := 1; i <= last; i++ {
		f := sess.Frame(i).Field(view)
		if err := run.WriteFrame(f, i*perFrame, simTime(cfg, i*perFrame)); err != nil {
			return err
		}
		png := filepath.Join(run.Dir(), fmt.Sprintf("frame_%04d.png", i-1))
		if err := export.WritePNG(png, f, shader); err != nil {
			return err
		}
	}
	if err := run.Finish(); err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", run.ID())
	fmt.Printf("wrote %d frames to %s\n", last, run.Dir())
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("res") && preset == "" && configFile == "" {
		cfg.Resolution = exploreRes
	}
	return tui.Run(cfg, newLogger())
}

func runProbe(cmd *cobra.Command, args []string) error {
	px, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad pixel x %q", args[0])
	}
	py, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad pixel y %q", args[1])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if px < 0 || px >= cfg.Resolution || py < 0 || py >= cfg.Resolution {
		return fmt.Errorf("pixel (%d, %d) outside %dx%d field", px, py, cfg.Resolution, cfg.Resolution)
	}
	sys, newInteg, stack, err := buildScene(cfg)
	if err != nil {
		return err
	}

	ref := &analysis.Reference{Sys: sys, Integ: newInteg(), Cfg: cfg.DivergeConfig()}
	u, v := mapping.PixelCenter(px, py, cfg.Resolution)
	x0, p := stack.At(u, v).Realize(sys)

	fmt.Printf("pixel (%d, %d)  u=%.5f v=%.5f\n", px, py, u, v)
	var sb strings.Builder
	for i, d := range sys.StateDims() {
		fmt.Fprintf(&sb, "%s=%.4f ", d, x0[i])
	}
	fmt.Printf("state: %s\n", strings.TrimSpace(sb.String()))
	fmt.Printf("params: l1=%.3g l2=%.3g m1=%.3g m2=%.3g g=%.3g\n\n", p.L1, p.L2, p.M1, p.M2, p.G)

	hist := ref.History(stack, u, v, chunks)
	fmt.Println(asciigraph.Plot(hist,
		asciigraph.Height(10),
		asciigraph.Width(72),
		asciigraph.Caption("instant stretching rate per chunk"),
	))
	fmt.Println()

	if ps := analysis.PowerSpectrum(hist); len(ps) > 1 {
		quarter := len(ps) / 4
		if quarter < 2 {
			quarter = len(ps)
		}
		plotData := ps[:quarter]
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Caption("power spectrum"),
		))

		maxIdx := 0
		for i := 1; i < len(plotData); i++ {
			if plotData[i] > plotData[maxIdx] {
				maxIdx = i
			}
		}
		duration := simTime(cfg, chunks)
		if maxIdx > 0 && duration > 0 {
			freq := float64(maxIdx) / duration
			fmt.Printf("\ndominant frequency: %.3f hz (period %.3f s)\n", freq, 1/freq)
		}
	}

	cell := ref.Point(stack, u, v, chunks)
	fmt.Printf("\nchunks %d  t=%.2fs  valid=%v\n", cell.Chunks(), cell.Time(), cell.Valid())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, view := range diverge.Views() {
		fmt.Fprintf(w, "%s\t%.6g\n", view, cell.Record(view)[0])
	}
	return w.Flush()
}

func runStats(cmd *cobra.Command, args []string) error {
	if runID != "" {
		st := export.NewStore(dataDir)
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		if meta.View != diverge.ViewDivTime.String() && meta.View != diverge.ViewThreshold.String() {
			return fmt.Errorf("run %s stores %s frames; stats needs divtime or threshold", meta.ID, meta.View)
		}
		if len(meta.Frames) == 0 {
			return fmt.Errorf("run %s has no frames", meta.ID)
		}
		field, err := st.LoadFrame(meta, len(meta.Frames)-1)
		if err != nil {
			return err
		}
		return printHistogram(field)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, newInteg, stack, err := buildScene(cfg)
	if err != nil {
		return err
	}
	view, err := diverge.ParseView(cfg.View)
	if err != nil {
		return err
	}
	if view != diverge.ViewDivTime && view != diverge.ViewThreshold {
		view = diverge.ViewDivTime
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tiler := render.Tiler{
		Sys:      sys,
		NewInteg: newInteg,
		Cfg:      cfg.DivergeConfig(),
		Stack:    stack,
		Res:      cfg.Resolution,
		TileSize: cfg.Tile,
		Chunks:   chunks,
		Workers:  workers,
		Log:      newLogger(),
	}
	fmt.Printf("rendering %s %dx%d (%d chunks)...\n", cfg.System, cfg.Resolution, cfg.Resolution, chunks)
	field, err := tiler.Render(ctx, view)
	if err != nil {
		return err
	}
	return printHistogram(field)
}

func printHistogram(f *diverge.Field) error {
	h := analysis.HistogramDivergence(f, bins)
	total := h.Latched + h.Never + h.Invalid
	fmt.Printf("\n%d pixels: %d latched, %d never crossed, %d invalid\n\n", total, h.Latched, h.Never, h.Invalid)
	if len(h.Counts) == 0 || h.Latched == 0 {
		fmt.Println("no onsets to bin")
		return nil
	}

	maxCount := 0.0
	for _, c := range h.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	for i, c := range h.Counts {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("█", int(c/maxCount*40))
		}
		fmt.Printf("%9.1f │%-40s %d\n", h.Dividers[i], bar, int(c))
	}
	fmt.Printf("%9.1f ┴ onset chunk\n", h.Dividers[len(h.Dividers)-1])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYSTEM\tINTEG\tVIEW\tAXES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s x %s\n",
			name, p.System, p.Integrator, p.View, p.Layer.X.Dim, p.Layer.Y.Dim)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := export.NewStore(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tVIEW\tRES\tFRAMES\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.System,
			run.View,
			run.Resolution,
			len(run.Frames),
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}
