// Package config loads the map's tunable knobs from defaults, an optional
// YAML file and ROUTEMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
	"github.com/sudorandom/route-map/pkg/animation"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/scene"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Viewport   ViewportConfig   `mapstructure:"viewport"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Timing     TimingConfig     `mapstructure:"timing"`
	Colors     ColorsConfig     `mapstructure:"colors"`
	Style      StyleConfig      `mapstructure:"style"`
	Map        MapConfig        `mapstructure:"map"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type ProjectionConfig struct {
	CenterLon   float64 `mapstructure:"center_lon"`
	CenterLat   float64 `mapstructure:"center_lat"`
	ScaleOffset float64 `mapstructure:"scale_offset"`
}

type TimingConfig struct {
	TickPeriod     time.Duration `mapstructure:"tick_period"`
	DrawDuration   time.Duration `mapstructure:"draw_duration"`
	FadeDuration   time.Duration `mapstructure:"fade_duration"`
	EndLabelLinger time.Duration `mapstructure:"end_label_linger"`
	Easing         string        `mapstructure:"easing"`
}

// ColorsConfig holds hex colors such as "#1d5b55".
type ColorsConfig struct {
	Background    string `mapstructure:"background"`
	Land          string `mapstructure:"land"`
	LandStroke    string `mapstructure:"land_stroke"`
	Hover         string `mapstructure:"hover"`
	Connection    string `mapstructure:"connection"`
	Label         string `mapstructure:"label"`
	TooltipBg     string `mapstructure:"tooltip_bg"`
	TooltipBorder string `mapstructure:"tooltip_border"`
	TooltipText   string `mapstructure:"tooltip_text"`
}

type StyleConfig struct {
	LandStrokeWidth float64 `mapstructure:"land_stroke_width"`
	ConnectionWidth float64 `mapstructure:"connection_width"`
	LabelSize       float64 `mapstructure:"label_size"`
	LabelOffsetY    float64 `mapstructure:"label_offset_y"`
	TooltipOffsetX  float64 `mapstructure:"tooltip_offset_x"`
	TooltipOffsetY  float64 `mapstructure:"tooltip_offset_y"`
}

type MapConfig struct {
	ExcludeIDs []string `mapstructure:"exclude_ids"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 1400)
	v.SetDefault("viewport.height", 900)
	v.SetDefault("projection.center_lon", 0.0)
	v.SetDefault("projection.center_lat", 40.0)
	v.SetDefault("projection.scale_offset", 40.0)
	v.SetDefault("timing.tick_period", "5s")
	v.SetDefault("timing.draw_duration", "5s")
	v.SetDefault("timing.fade_duration", "1s")
	v.SetDefault("timing.end_label_linger", "1200ms")
	v.SetDefault("timing.easing", "linear")
	v.SetDefault("colors.background", "#f7f7f2")
	v.SetDefault("colors.land", "#1d5b55")
	v.SetDefault("colors.land_stroke", "#ffffff")
	v.SetDefault("colors.hover", "#ffa500")
	v.SetDefault("colors.connection", "#d11d1d")
	v.SetDefault("colors.label", "#1a1a1a")
	v.SetDefault("colors.tooltip_bg", "#ffffff")
	v.SetDefault("colors.tooltip_border", "#000000")
	v.SetDefault("colors.tooltip_text", "#000000")
	v.SetDefault("style.land_stroke_width", 0.5)
	v.SetDefault("style.connection_width", 2.0)
	v.SetDefault("style.label_size", 12.0)
	v.SetDefault("style.label_offset_y", -10.0)
	v.SetDefault("style.tooltip_offset_x", 10.0)
	v.SetDefault("style.tooltip_offset_y", -10.0)
	v.SetDefault("map.exclude_ids", []string{boundary.DefaultExcludedID})
}

// Load reads configuration from path (if not empty) and the environment.
// Without a path, ./route-map.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("route-map")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: ROUTEMAP_TIMING_TICK_PERIOD → timing.tick_period
	v.SetEnvPrefix("ROUTEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every knob is usable.
func (c *Config) Validate() error {
	var errs []string

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Sprintf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if !(geo.GeoPoint{Lon: c.Projection.CenterLon, Lat: c.Projection.CenterLat}).Valid() ||
		c.Projection.CenterLat > geo.MaxLatitude || c.Projection.CenterLat < -geo.MaxLatitude {
		errs = append(errs, fmt.Sprintf("projection center (%g, %g) is outside the map", c.Projection.CenterLon, c.Projection.CenterLat))
	}
	if _, err := c.timing(); err != nil {
		errs = append(errs, "timing: "+err.Error())
	}
	if _, err := c.palette(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) timing() (animation.Timing, error) {
	easing, err := animation.ParseEasing(c.Timing.Easing)
	if err != nil {
		return animation.Timing{}, err
	}
	t := animation.Timing{
		TickPeriod:     c.Timing.TickPeriod,
		DrawDuration:   c.Timing.DrawDuration,
		FadeDuration:   c.Timing.FadeDuration,
		EndLabelLinger: c.Timing.EndLabelLinger,
		Easing:         easing,
	}
	return t, t.Validate()
}

func (c *Config) palette() (scene.Palette, error) {
	p := scene.Palette{
		LandStrokeWidth: c.Style.LandStrokeWidth,
		ConnectionWidth: c.Style.ConnectionWidth,
		LabelSize:       c.Style.LabelSize,
	}
	colors := []struct {
		key string
		hex string
		dst *color.RGBA
	}{
		{"colors.background", c.Colors.Background, &p.Background},
		{"colors.land", c.Colors.Land, &p.Land},
		{"colors.land_stroke", c.Colors.LandStroke, &p.LandStroke},
		{"colors.hover", c.Colors.Hover, &p.Hover},
		{"colors.connection", c.Colors.Connection, &p.Connection},
		{"colors.label", c.Colors.Label, &p.Label},
		{"colors.tooltip_bg", c.Colors.TooltipBg, &p.TooltipBg},
		{"colors.tooltip_border", c.Colors.TooltipBorder, &p.TooltipBorder},
		{"colors.tooltip_text", c.Colors.TooltipText, &p.TooltipText},
	}
	var bad []string
	for _, col := range colors {
		parsed, err := ParseColor(col.hex)
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s %q", col.key, col.hex))
			continue
		}
		*col.dst = parsed
	}
	if len(bad) > 0 {
		return p, fmt.Errorf("not hex colors: %s", strings.Join(bad, ", "))
	}
	if p.LabelSize <= 0 {
		return p, fmt.Errorf("style.label_size must be positive, got %g", p.LabelSize)
	}
	return p, nil
}

// ParseColor reads "#rrggbb" or "#rgb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// SceneOptions turns the configuration into scene options. It fails only on
// a configuration that does not Validate.
func (c *Config) SceneOptions() (scene.Options, error) {
	timing, err := c.timing()
	if err != nil {
		return scene.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	palette, err := c.palette()
	if err != nil {
		return scene.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return scene.Options{
		Width:         c.Viewport.Width,
		Height:        c.Viewport.Height,
		Center:        geo.GeoPoint{Lon: c.Projection.CenterLon, Lat: c.Projection.CenterLat},
		ScaleOffset:   c.Projection.ScaleOffset,
		Timing:        timing,
		Exclude:       boundary.ExcludeIDs(c.Map.ExcludeIDs...),
		Palette:       palette,
		LabelOffset:   geo.ScreenPoint{X: 0, Y: c.Style.LabelOffsetY},
		TooltipOffset: geo.ScreenPoint{X: c.Style.TooltipOffsetX, Y: c.Style.TooltipOffsetY},
	}, nil
}
