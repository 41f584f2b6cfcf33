// Package task reads a task file and validates it against the columns of its data file.
package task

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/KaramelBytes/skiron-cli/internal/utils"
	"github.com/KaramelBytes/skiron-cli/internal/vector"
)

// Pair is an ordered pair of distinct columns holding the x and y components of a vector.
type Pair struct {
	A string
	B string
}

// Key is the report column name of the pair.
func (p Pair) Key() string { return "(" + p.A + ", " + p.B + ")" }

// Slug joins the component names for file names: "a_b".
func (p Pair) Slug() string { return p.A + "_" + p.B }

// Want lists the requested outputs.
type Want struct {
	Histogram  bool
	Scatter    bool
	Rose       bool
	Heatmap    bool
	Timeseries bool
	Stats      bool
}

// Any reports whether at least one output is requested.
func (w Want) Any() bool {
	return w.Histogram || w.Scatter || w.Rose || w.Heatmap || w.Timeseries || w.Stats
}

// Charts reports whether at least one chart is requested.
func (w Want) Charts() bool {
	return w.Histogram || w.Scatter || w.Rose || w.Heatmap || w.Timeseries
}

// RenderOptions are the figure settings shared by all charts of a task.
type RenderOptions struct {
	DPI       float64
	FigSize   [2]float64 // inches, width then height
	TitleFont float64
	LabelFont float64
}

// Settings are the application-level knobs a task is validated against.
type Settings struct {
	AllowedFormats []string
	DefaultFormat  string
	Render         RenderOptions
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		AllowedFormats: []string{"png", "svg", "html"},
		DefaultFormat:  "png",
		Render: RenderOptions{
			DPI:       DefaultDPI,
			FigSize:   [2]float64{DefaultFigWidth, DefaultFigHeight},
			TitleFont: DefaultTitleFont,
			LabelFont: DefaultLabelFont,
		},
	}
}

// Spec is a validated task. A Spec is only ever returned complete; a failed
// validation returns nil and an error.
type Spec struct {
	ConfPath   string
	DataFile   string
	Headers    []string
	Scalars    []string
	Vectors    []Pair
	OutputDir  string
	Formats    []string
	Convention vector.Convention
	Want       Want
	Render     RenderOptions
	NoData     []string
	DateTime   string
	TimeFrom   *time.Time
	TimeTo     *time.Time
}

// Columns returns every requested numeric column once: scalars first, then
// vector components, in first-seen order.
func (s *Spec) Columns() []string {
	var cols []string
	seen := map[string]struct{}{}
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, c := range s.Scalars {
		add(c)
	}
	for _, p := range s.Vectors {
		add(p.A)
		add(p.B)
	}
	return cols
}

// Parse reads the task file at confPath and validates it. Relative file and
// save paths are resolved against the task file's directory.
func Parse(confPath string, settings Settings, logger *slog.Logger) (*Spec, error) {
	if strings.TrimSpace(confPath) == "" {
		return nil, &ConfigError{Reason: "no task file given"}
	}
	full, err := filepath.Abs(confPath)
	if err != nil {
		return nil, &ConfigError{Path: confPath, Reason: "resolve path", Err: err}
	}
	if _, err := os.Stat(full); err != nil {
		return nil, &ConfigError{Path: full, Reason: "task file does not exist", Err: err}
	}
	rc, err := readConfig(full, logger)
	if err != nil {
		return nil, &ConfigError{Path: full, Reason: "read task file", Err: err}
	}
	return validate(rc, full, settings, logger)
}

func validate(rc *rawConfig, confPath string, settings Settings, logger *slog.Logger) (*Spec, error) {
	confDir := filepath.Dir(confPath)
	spec := &Spec{ConfPath: confPath}

	file := rc.strs[KeyFile]
	if file == "" {
		return nil, &ConfigError{Path: confPath, Reason: "data file name is missing (key \"file\")"}
	}
	spec.DataFile = resolvePath(confDir, file)
	if _, err := os.Stat(spec.DataFile); err != nil {
		return nil, &DataFileError{Path: spec.DataFile, Err: err}
	}
	headers, err := ReadHeader(spec.DataFile)
	if err != nil {
		return nil, err
	}
	spec.Headers = headers

	spec.NoData = rc.lists[KeyNoData]
	if len(spec.NoData) == 0 {
		logger.Info("no nodata tokens given, using default", "default", DefaultNoData)
		spec.NoData = []string{DefaultNoData}
	}

	spec.Scalars = resolveScalars(rc.lists[KeyScal], headers, logger)
	spec.Vectors = resolveVectors(rc.vectors, headers, logger)
	if len(spec.Scalars)+len(spec.Vectors) == 0 {
		return nil, &ConfigError{Path: confPath, Reason: "no valid header input found"}
	}

	if dt := strings.ToLower(strings.TrimSpace(rc.strs[KeyDateTime])); dt != "" {
		if slices.Contains(headers, dt) {
			spec.DateTime = dt
		} else {
			logger.Warn("datetime column not in header, ignoring", "column", dt)
		}
	}
	spec.TimeFrom = parseBound(rc.strs[KeyTimeFrom], KeyTimeFrom, logger)
	spec.TimeTo = parseBound(rc.strs[KeyTimeTo], KeyTimeTo, logger)
	if (spec.TimeFrom != nil || spec.TimeTo != nil) && spec.DateTime == "" {
		logger.Warn("time window given without a datetime column, ignoring window")
		spec.TimeFrom, spec.TimeTo = nil, nil
	}

	spec.Want = Want{
		Histogram:  rc.bool(KeyHisto),
		Scatter:    rc.bool(KeyScatter),
		Rose:       rc.bool(KeyRose),
		Heatmap:    rc.bool(KeyHeat),
		Timeseries: rc.bool(KeySeries),
		Stats:      rc.bool(KeyStats),
	}
	if !spec.Want.Any() {
		return nil, &ConfigError{Path: confPath, Reason: "no output is requested"}
	}
	if rc.bool(KeyMeteo) {
		spec.Convention = vector.Meteorological
	} else {
		spec.Convention = vector.MathOrigin
	}

	save := rc.strs[KeySave]
	if save == "" {
		save = DefaultSave
	}
	spec.OutputDir = resolvePath(confDir, save)
	if err := ensureOutputDir(spec.OutputDir, logger); err != nil {
		return nil, &ConfigError{Path: confPath, Reason: "output folder could not be created", Err: err}
	}

	spec.Formats = resolveFormats(rc.lists[KeyFType], settings, logger)
	spec.Render = resolveRender(rc, settings.Render, logger)
	return spec, nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func ensureOutputDir(dir string, logger *slog.Logger) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	logger.Info("output folder does not exist, creating", "dir", dir)
	return utils.EnsureDir(dir)
}

// resolveScalars keeps known headers, dropping unknown ones and duplicates (first seen wins).
func resolveScalars(names, headers []string, logger *slog.Logger) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, n := range names {
		if !slices.Contains(headers, n) {
			logger.Warn("removing scalar field not found in header", "field", n)
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// resolveVectors keeps the first two distinct known names of each entry, in order.
func resolveVectors(entries [][]string, headers []string, logger *slog.Logger) []Pair {
	var out []Pair
	seen := map[Pair]struct{}{}
	for _, names := range entries {
		var known []string
		for _, n := range names {
			if slices.Contains(headers, n) && !slices.Contains(known, n) {
				known = append(known, n)
			}
		}
		if len(known) < 2 {
			logger.Warn("removing vector field without two distinct known components", "field", strings.Join(names, ","))
			continue
		}
		if len(names) > 2 {
			logger.Warn("vector field has more than two names, using the first two known", "field", strings.Join(names, ","), "used", strings.Join(known[:2], ","))
		}
		p := Pair{A: known[0], B: known[1]}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func resolveFormats(requested []string, settings Settings, logger *slog.Logger) []string {
	var out []string
	for _, f := range requested {
		f = strings.TrimPrefix(f, ".")
		if !slices.Contains(settings.AllowedFormats, f) {
			logger.Warn("removing output format that is not allowed", "format", f, "allowed", settings.AllowedFormats)
			continue
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		def := settings.DefaultFormat
		if def == "" {
			def = DefaultSettings().DefaultFormat
		}
		logger.Warn("no valid output format given, using default", "default", def)
		out = []string{def}
	}
	return out
}

func resolveRender(rc *rawConfig, def RenderOptions, logger *slog.Logger) RenderOptions {
	ro := def

	ro.DPI = rc.number(KeyDPI, def.DPI)
	if !(ro.DPI >= MinDPI && ro.DPI <= MaxDPI) {
		logger.Warn("dpi out of range, using default", "dpi", ro.DPI, "min", MinDPI, "max", MaxDPI, "default", def.DPI)
		ro.DPI = def.DPI
	}

	switch n := len(rc.figsize); {
	case n == 0:
	case n == 1:
		ro.FigSize = [2]float64{rc.figsize[0], rc.figsize[0]}
	default:
		if n > 2 {
			logger.Warn("figsize takes two values, extra values ignored", "values", rc.figsize)
		}
		ro.FigSize = [2]float64{rc.figsize[0], rc.figsize[1]}
	}
	for _, side := range ro.FigSize {
		if !(side > 0 && side <= MaxFigSide) {
			logger.Warn("figsize out of range, using default", "figsize", ro.FigSize, "default", def.FigSize)
			ro.FigSize = def.FigSize
			break
		}
	}

	ro.TitleFont = fontOrDefault(rc, KeyTitleFont, def.TitleFont, logger)
	ro.LabelFont = fontOrDefault(rc, KeyLabelFont, def.LabelFont, logger)
	return ro
}

func fontOrDefault(rc *rawConfig, key string, def float64, logger *slog.Logger) float64 {
	v := rc.number(key, def)
	if !(v >= MinFont && v <= MaxFont) {
		logger.Warn("font size out of range, using default", "key", key, "value", v, "default", def)
		return def
	}
	return v
}

func parseBound(s, key string, logger *slog.Logger) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, ok := ParseTime(s)
	if !ok {
		logger.Warn("cannot parse time bound, ignoring", "key", key, "value", s)
		return nil
	}
	return &t
}
