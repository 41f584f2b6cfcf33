package task

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		ok     bool
		key    string
		tokens []string
		bare   bool
		reason string
	}{
		{name: "blank", line: "   ", ok: false},
		{name: "comma list", line: "scal = t, p ,q2", ok: true, key: "scal", tokens: []string{"t", "p", "q2"}},
		{name: "whitespace list", line: "ftype = png  svg", ok: true, key: "ftype", tokens: []string{"png", "svg"}},
		{name: "key is case insensitive", line: "HISTO = yes", ok: true, key: "histo", tokens: []string{"yes"}},
		{name: "bare key", line: "meteo", ok: true, key: "meteo", bare: true},
		{name: "empty value", line: "dpi =  ", ok: true, key: "dpi", bare: true},
		{name: "two equals", line: "file = a=b", ok: false, reason: "more than one '=' on the line"},
		{name: "unknown key", line: "colour = red", ok: false, reason: `unrecognised key "colour"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, ok, reason := parseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.key, e.key)
			assert.Equal(t, tt.bare, e.bare)
			if !tt.bare {
				assert.Equal(t, tt.tokens, e.tokens)
			}
		})
	}
}

func TestIsTruthy(t *testing.T) {
	t.Parallel()
	for _, tok := range []string{"1", "t", "y", "yes", "true", "TRUE", " Yes "} {
		assert.True(t, IsTruthy(tok), tok)
	}
	for _, tok := range []string{"0", "no", "false", "on", "", "2"} {
		assert.False(t, IsTruthy(tok), tok)
	}
}

func TestReadConfigAppendsAndFallsBack(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "task.conf")
	body := "file = data.csv\n" +
		"scal = t, p\n" +
		"scal = q2\n" +
		"vec = u, v\n" +
		"vec = m1u m1v\n" +
		"ftype = PNG\n" +
		"nodata = NaN, -999\n" +
		"dpi = lots\n" +
		"figsize = 8, x\n" +
		"histo = y\n" +
		"meteo\n" +
		"\n" +
		"bogus = 1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	rc, err := readConfig(path, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "data.csv", rc.strs[KeyFile])
	assert.Equal(t, []string{"t", "p", "q2"}, rc.lists[KeyScal])
	assert.Equal(t, [][]string{{"u", "v"}, {"m1u", "m1v"}}, rc.vectors)
	assert.Equal(t, []string{"png"}, rc.lists[KeyFType])
	assert.Equal(t, []string{"NaN", "-999"}, rc.lists[KeyNoData])
	assert.Equal(t, DefaultDPI, rc.number(KeyDPI, DefaultDPI))
	assert.Nil(t, rc.figsize)
	assert.True(t, rc.bool(KeyHisto))
	assert.True(t, rc.bool(KeyMeteo))
	assert.False(t, rc.bool(KeyStats))
}

func TestParseTime(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"2021-03-04", "2021-03-04 05:06", "2021-03-04T05:06:07Z", "2021/03/04 05:06:07", "202103040506"} {
		_, ok := ParseTime(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseTime("yesterday")
	assert.False(t, ok)
}

func TestParseNumberRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"nan", "NaN", "inf", "-Inf", "+infinity", "abc"} {
		_, err := parseNumber(tok)
		assert.Error(t, err, tok)
	}
	v, err := parseNumber("2.5e1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, v)
}
