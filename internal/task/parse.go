package task

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

// entry is one decoded line of a task file.
type entry struct {
	key    string
	kind   kind
	tokens []string
	bare   bool
}

// rawConfig holds everything read from a task file before it is checked
// against the data file.
type rawConfig struct {
	bools   map[string]bool
	strs    map[string]string
	nums    map[string]float64
	figsize []float64
	lists   map[string][]string
	vectors [][]string
}

func newRawConfig() *rawConfig {
	return &rawConfig{
		bools: map[string]bool{},
		strs:  map[string]string{},
		nums:  map[string]float64{},
		lists: map[string][]string{},
	}
}

// splitValues splits on commas when present, else on whitespace; empty tokens are dropped.
func splitValues(s string) []string {
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLine decodes a single line. ok is false for blank, malformed or
// unknown-key lines; reason then says why (empty for blank lines).
func parseLine(line string) (e entry, ok bool, reason string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return entry{}, false, ""
	}
	words := strings.Split(trimmed, "=")
	if len(words) > 2 {
		return entry{}, false, "more than one '=' on the line"
	}
	key := strings.ToLower(strings.TrimSpace(words[0]))
	k, known := keyKind(key)
	if !known {
		return entry{}, false, fmt.Sprintf("unrecognised key %q", key)
	}
	e = entry{key: key, kind: k}
	if len(words) == 1 {
		e.bare = true
		return e, true, ""
	}
	e.tokens = splitValues(words[1])
	if len(e.tokens) == 0 {
		e.bare = true
	}
	return e, true, ""
}

// apply stores the entry in its typed slot. Multi-valued keys append.
func (rc *rawConfig) apply(e entry, logger *slog.Logger) {
	if e.bare {
		logger.Info("key has no value, using default", "key", e.key)
		return
	}
	switch e.kind {
	case kindBool:
		rc.bools[e.key] = IsTruthy(e.tokens[0])
	case kindString:
		if len(e.tokens) > 1 {
			logger.Warn("key takes a single value, extra values ignored", "key", e.key, "values", e.tokens)
		}
		rc.strs[e.key] = e.tokens[0]
	case kindNumber:
		v, err := parseNumber(e.tokens[0])
		if err != nil {
			logger.Warn("value is not a number, using default", "key", e.key, "value", e.tokens[0])
			return
		}
		rc.nums[e.key] = v
	case kindNumbers:
		vals := make([]float64, 0, len(e.tokens))
		for _, tok := range e.tokens {
			v, err := parseNumber(tok)
			if err != nil {
				logger.Warn("value is not a number, using default", "key", e.key, "value", tok)
				return
			}
			vals = append(vals, v)
		}
		rc.figsize = vals
	case kindStrings:
		for _, tok := range e.tokens {
			if e.key != KeyNoData {
				tok = strings.ToLower(tok)
			}
			rc.lists[e.key] = append(rc.lists[e.key], tok)
		}
	case kindPair:
		names := make([]string, len(e.tokens))
		for i, tok := range e.tokens {
			names[i] = strings.ToLower(tok)
		}
		rc.vectors = append(rc.vectors, names)
	}
}

// parseNumber parses a finite float. NaN and infinities are rejected.
func parseNumber(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", tok)
	}
	return v, nil
}

// bool returns the boolean for key, falling back to its documented default.
func (rc *rawConfig) bool(key string) bool {
	if v, ok := rc.bools[key]; ok {
		return v
	}
	return boolDefault(key)
}

func (rc *rawConfig) number(key string, def float64) float64 {
	if v, ok := rc.nums[key]; ok {
		return v
	}
	return def
}

// readConfig reads a task file line by line.
func readConfig(path string, logger *slog.Logger) (*rawConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc := newRawConfig()
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		e, ok, reason := parseLine(sc.Text())
		if !ok {
			if reason != "" {
				logger.Warn("ignoring task line", "line", lineNo, "reason", reason, "text", strings.TrimSpace(sc.Text()))
			}
			continue
		}
		rc.apply(e, logger)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return rc, nil
}
