package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/skiron-cli/internal/chart"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

// Global configuration structure.
type Global struct {
	AllowedFormats []string  `mapstructure:"allowed_formats" yaml:"allowed_formats"`
	DefaultFormat  string    `mapstructure:"default_format" yaml:"default_format"`
	DefaultDPI     float64   `mapstructure:"default_dpi" yaml:"default_dpi"`
	DefaultFigSize []float64 `mapstructure:"default_figsize" yaml:"default_figsize"`
	TitleFont      float64   `mapstructure:"title_font" yaml:"title_font"`
	LabelFont      float64   `mapstructure:"label_font" yaml:"label_font"`

	// Chart binning
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	RoseSectors   int `mapstructure:"rose_sectors" yaml:"rose_sectors"`
	HeatmapBins   int `mapstructure:"heatmap_bins" yaml:"heatmap_bins"`

	ReportName string `mapstructure:"report_name" yaml:"report_name"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"allowed_formats", "default_format", "default_dpi", "default_figsize",
	"title_font", "label_font", "histogram_bins", "rose_sectors", "heatmap_bins",
	"report_name", "log_level", "log_format",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".skiron"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.skiron/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SKIRON")
	v.AutomaticEnv()

	def := task.DefaultSettings()
	v.SetDefault("allowed_formats", def.AllowedFormats)
	v.SetDefault("default_format", def.DefaultFormat)
	v.SetDefault("default_dpi", def.Render.DPI)
	v.SetDefault("default_figsize", def.Render.FigSize[:])
	v.SetDefault("title_font", def.Render.TitleFont)
	v.SetDefault("label_font", def.Render.LabelFont)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("rose_sectors", 16)
	v.SetDefault("heatmap_bins", 10)
	v.SetDefault("report_name", "statistics.csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// TaskSettings converts the configuration into the settings tasks are validated against.
// Out-of-range values fall back to the built-in defaults.
func (c *Global) TaskSettings() task.Settings {
	s := task.DefaultSettings()
	if len(c.AllowedFormats) > 0 {
		s.AllowedFormats = nil
		for _, f := range c.AllowedFormats {
			s.AllowedFormats = append(s.AllowedFormats, strings.ToLower(strings.TrimPrefix(f, ".")))
		}
	}
	if c.DefaultFormat != "" {
		s.DefaultFormat = strings.ToLower(c.DefaultFormat)
	}
	if c.DefaultDPI >= task.MinDPI && c.DefaultDPI <= task.MaxDPI {
		s.Render.DPI = c.DefaultDPI
	}
	if len(c.DefaultFigSize) == 2 && c.DefaultFigSize[0] > 0 && c.DefaultFigSize[1] > 0 &&
		c.DefaultFigSize[0] <= task.MaxFigSide && c.DefaultFigSize[1] <= task.MaxFigSide {
		s.Render.FigSize = [2]float64{c.DefaultFigSize[0], c.DefaultFigSize[1]}
	}
	if c.TitleFont >= task.MinFont && c.TitleFont <= task.MaxFont {
		s.Render.TitleFont = c.TitleFont
	}
	if c.LabelFont >= task.MinFont && c.LabelFont <= task.MaxFont {
		s.Render.LabelFont = c.LabelFont
	}
	return s
}

// Get returns the display value of a key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "allowed_formats":
		return strings.Join(c.AllowedFormats, ","), nil
	case "default_format":
		return c.DefaultFormat, nil
	case "default_dpi":
		return strconv.FormatFloat(c.DefaultDPI, 'g', -1, 64), nil
	case "default_figsize":
		parts := make([]string, len(c.DefaultFigSize))
		for i, f := range c.DefaultFigSize {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, ","), nil
	case "title_font":
		return strconv.FormatFloat(c.TitleFont, 'g', -1, 64), nil
	case "label_font":
		return strconv.FormatFloat(c.LabelFont, 'g', -1, 64), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "rose_sectors":
		return strconv.Itoa(c.RoseSectors), nil
	case "heatmap_bins":
		return strconv.Itoa(c.HeatmapBins), nil
	case "report_name":
		return c.ReportName, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses and stores a value given on the command line.
func (c *Global) Set(key, val string) error {
	switch key {
	case "allowed_formats":
		var fs []string
		for _, f := range strings.Split(val, ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				fs = append(fs, strings.TrimPrefix(f, "."))
			}
		}
		if len(fs) == 0 {
			return fmt.Errorf("invalid allowed_formats: %q", val)
		}
		c.AllowedFormats = fs
	case "default_format":
		c.DefaultFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(val), "."))
	case "default_dpi":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || !(f >= task.MinDPI && f <= task.MaxDPI) {
			return fmt.Errorf("invalid default_dpi: %s (use %g-%g)", val, task.MinDPI, task.MaxDPI)
		}
		c.DefaultDPI = f
	case "default_figsize":
		var fs []float64
		for _, p := range strings.Split(val, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil || !(f > 0 && f <= task.MaxFigSide) {
				return fmt.Errorf("invalid default_figsize: %s (use width,height in inches)", val)
			}
			fs = append(fs, f)
		}
		if len(fs) == 1 {
			fs = append(fs, fs[0])
		}
		if len(fs) != 2 {
			return fmt.Errorf("invalid default_figsize: %s (use width,height in inches)", val)
		}
		c.DefaultFigSize = fs
	case "title_font", "label_font":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || !(f >= task.MinFont && f <= task.MaxFont) {
			return fmt.Errorf("invalid %s: %s (use %g-%g)", key, val, task.MinFont, task.MaxFont)
		}
		if key == "title_font" {
			c.TitleFont = f
		} else {
			c.LabelFont = f
		}
	case "histogram_bins", "rose_sectors", "heatmap_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "histogram_bins":
			c.HistogramBins = i
		case "rose_sectors":
			c.RoseSectors = i
		default:
			c.HeatmapBins = i
		}
	case "report_name":
		if val == "" || strings.ContainsAny(val, `/\`) {
			return fmt.Errorf("invalid report_name: %q (use a plain file name)", val)
		}
		c.ReportName = val
	case "log_level":
		if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(val)) {
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		if !slices.Contains([]string{"text", "json"}, strings.ToLower(val)) {
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ChartOptions returns the binning used by the chart orchestrator.
func (c *Global) ChartOptions() chart.Options {
	return chart.Options{
		HistogramBins: c.HistogramBins,
		RoseSectors:   c.RoseSectors,
		HeatmapBins:   c.HeatmapBins,
	}
}
