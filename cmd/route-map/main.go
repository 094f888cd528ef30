package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sirupsen/logrus"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/config"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/export"
	"github.com/sudorandom/route-map/pkg/logging"
	"github.com/sudorandom/route-map/pkg/scene"
	"github.com/sudorandom/route-map/pkg/source"
	"github.com/sudorandom/route-map/pkg/viewer"
)

type CLI struct {
	Config      string `short:"c" type:"path" help:"YAML file with map settings (default ./route-map.yaml if present)."`
	LogLevel    string `default:"info" enum:"debug,info,warn,error" help:"Log level."`
	Boundaries  string `required:"" env:"ROUTEMAP_BOUNDARIES" help:"GeoJSON FeatureCollection of country boundaries (path or http(s) URL)."`
	Connections string `env:"ROUTEMAP_CONNECTIONS" help:"GeoJSON LineStrings to animate instead of the built-in routes (path or http(s) URL)."`
	CacheDir    string `default:"data/cache" type:"path" env:"ROUTEMAP_CACHE_DIR" help:"Where downloaded data is kept. Empty to always stream."`

	View     ViewCmd     `cmd:"" default:"withargs" help:"Open the interactive map window."`
	Snapshot SnapshotCmd `cmd:"" help:"Render PNG frames at animation offsets."`
	SVG      SVGCmd      `cmd:"" name:"svg" help:"Export one frame of the map as SVG."`
	Inspect  InspectCmd  `cmd:"" help:"Print dataset and animation statistics."`
}

// app is what every command runs against once flags, config and data are
// loaded.
type app struct {
	log      *logrus.Logger
	opts     scene.Options
	features []boundary.Feature
	skipped  []boundary.Skipped
	conns    []connections.Connection
}

func (c *CLI) setup() (*app, error) {
	logger, err := logging.New(c.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SceneOptions()
	if err != nil {
		return nil, err
	}

	fetch := &source.Fetcher{CacheDir: c.CacheDir, Log: logging.Component(logger, "source")}
	ctx := context.Background()

	data, err := fetch.ReadAll(ctx, c.Boundaries)
	if err != nil {
		return nil, fmt.Errorf("boundaries: %w", err)
	}
	ds, err := boundary.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("boundaries %s: %w", c.Boundaries, err)
	}
	for _, s := range ds.Skipped {
		logger.WithFields(logrus.Fields{
			"index":  s.Index,
			"id":     s.ID,
			"reason": s.Reason,
		}).Warn("skipping boundary feature")
	}

	conns := connections.Defaults()
	if c.Connections != "" {
		if data, err = fetch.ReadAll(ctx, c.Connections); err != nil {
			return nil, fmt.Errorf("connections: %w", err)
		}
		if conns, err = connections.Parse(data); err != nil {
			return nil, fmt.Errorf("connections %s: %w", c.Connections, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"features":    len(ds.Features),
		"skipped":     len(ds.Skipped),
		"connections": len(conns),
	}).Info("data loaded")
	return &app{log: logger, opts: opts, features: ds.Features, skipped: ds.Skipped, conns: conns}, nil
}

func (a *app) mount(start time.Time, width, height int) (*scene.Scene, error) {
	if width <= 0 {
		width = a.opts.Width
	}
	if height <= 0 {
		height = a.opts.Height
	}
	sc, err := scene.New(a.conns, a.opts, logging.Component(a.log, "scene"))
	if err != nil {
		return nil, err
	}
	if err := sc.Mount(start, a.features, width, height); err != nil {
		return nil, err
	}
	return sc, nil
}

// advanceTo steps the scene in small increments so no tick is collapsed
// into a later one.
func advanceTo(sc *scene.Scene, from, to time.Time) {
	const step = 100 * time.Millisecond
	for t := from.Add(step); t.Before(to); t = t.Add(step) {
		sc.Advance(t)
	}
	sc.Advance(to)
}

type ViewCmd struct {
	CaptureDir string `type:"path" help:"Save a PNG of the window on every tick into this directory."`
	Title      string `default:"Route Map" help:"Window title."`
	TPS        int    `default:"60" help:"Ticks per second (engine updates)."`
}

func (v *ViewCmd) Run(a *app) error {
	sc, err := a.mount(time.Now(), 0, 0)
	if err != nil {
		return err
	}
	defer sc.Unmount()

	w, h := sc.Size()
	ebiten.SetTPS(v.TPS)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(v.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := viewer.New(sc, viewer.Options{CaptureDir: v.CaptureDir}, logging.Component(a.log, "viewer"))
	return ebiten.RunGame(game)
}

type SnapshotCmd struct {
	At     []time.Duration `default:"0s,2.5s,5s,5.5s" help:"Animation offsets to render."`
	OutDir string          `default:"." type:"path" help:"Directory to write PNGs into."`
	Prefix string          `default:"route-map" help:"File name prefix."`
	Width  int             `help:"Override the configured viewport width."`
	Height int             `help:"Override the configured viewport height."`
}

func (s *SnapshotCmd) Run(a *app) error {
	start := time.Now()
	sc, err := a.mount(start, s.Width, s.Height)
	if err != nil {
		return err
	}
	defer sc.Unmount()

	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	offsets := append([]time.Duration(nil), s.At...)
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	now := start
	for _, off := range offsets {
		if off < 0 {
			return fmt.Errorf("negative offset %s", off)
		}
		target := start.Add(off)
		advanceTo(sc, now, target)
		now = target

		path := filepath.Join(s.OutDir, fmt.Sprintf("%s-%06d.png", s.Prefix, off.Milliseconds()))
		if err := writeFile(path, func(f *os.File) error { return export.RenderPNG(f, sc.Frame(now)) }); err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{"path": path, "offset": off}).Info("wrote snapshot")
	}
	return nil
}

type SVGCmd struct {
	At     time.Duration `default:"2.5s" help:"Animation offset to export."`
	Out    string        `short:"o" default:"-" help:"Output file, - for stdout."`
	Width  int           `help:"Override the configured viewport width."`
	Height int           `help:"Override the configured viewport height."`
}

func (s *SVGCmd) Run(a *app) error {
	start := time.Now()
	sc, err := a.mount(start, s.Width, s.Height)
	if err != nil {
		return err
	}
	defer sc.Unmount()

	target := start.Add(s.At)
	advanceTo(sc, start, target)
	frame := sc.Frame(target)

	if s.Out == "-" {
		return export.RenderSVG(os.Stdout, frame)
	}
	if err := writeFile(s.Out, func(f *os.File) error { return export.RenderSVG(f, frame) }); err != nil {
		return err
	}
	a.log.WithField("path", s.Out).Info("wrote svg")
	return nil
}

func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

func main() {
	// .env is optional; flags and ROUTEMAP_* variables may come from it.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("route-map"),
		kong.Description("Animated world map of connections between places."),
		kong.UsageOnError(),
	)
	a, err := cli.setup()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(a))
}
