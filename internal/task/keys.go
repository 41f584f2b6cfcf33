package task

import "strings"

// Recognised task file keys.
const (
	KeyFile      = "file"
	KeySave      = "save"
	KeyDateTime  = "datetime"
	KeyTimeFrom  = "timefrom"
	KeyTimeTo    = "timeto"
	KeyNoData    = "nodata"
	KeyVec       = "vec"
	KeyScal      = "scal"
	KeyFType     = "ftype"
	KeyHisto     = "histo"
	KeyScatter   = "scatter"
	KeyRose      = "rose"
	KeyHeat      = "heat"
	KeyStats     = "stats"
	KeySeries    = "series"
	KeyMeteo     = "meteo"
	KeyDPI       = "dpi"
	KeyFigSize   = "figsize"
	KeyTitleFont = "titlefont"
	KeyLabelFont = "labelfont"
)

// kind is the value category of a key. Each category is decoded into its own
// typed slot of rawConfig, so no value is ever inspected for its shape later.
type kind int

const (
	kindBool kind = iota
	kindString
	kindNumber
	kindNumbers
	kindStrings
	kindPair
)

func keyKind(key string) (kind, bool) {
	switch key {
	case KeyHisto, KeyScatter, KeyRose, KeyHeat, KeyStats, KeySeries, KeyMeteo:
		return kindBool, true
	case KeyFile, KeySave, KeyDateTime, KeyTimeFrom, KeyTimeTo:
		return kindString, true
	case KeyDPI, KeyTitleFont, KeyLabelFont:
		return kindNumber, true
	case KeyFigSize:
		return kindNumbers, true
	case KeyScal, KeyFType, KeyNoData:
		return kindStrings, true
	case KeyVec:
		return kindPair, true
	default:
		return 0, false
	}
}

// Defaults for keys whose absence is not an error.
const (
	DefaultSave      = "results"
	DefaultNoData    = "null"
	DefaultDPI       = 150.0
	DefaultTitleFont = 14.0
	DefaultLabelFont = 12.0
	DefaultFigWidth  = 10.0
	DefaultFigHeight = 10.0
	MinDPI           = 80.0
	MaxDPI           = 350.0
	MinFont          = 4.0
	MaxFont          = 72.0
	MaxFigSide       = 30.0
)

// IsTruthy reports whether a boolean token is one of 1, t, y, yes, true (any case).
func IsTruthy(tok string) bool {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "1", "t", "y", "yes", "true":
		return true
	default:
		return false
	}
}

// boolDefault is the value of a boolean key that is absent or given bare.
func boolDefault(key string) bool {
	return key == KeyMeteo
}
