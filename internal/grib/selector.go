package grib

import (
	"fmt"
	"strings"
)

// LevelKind discriminates the vertical level criterion used to pick a
// record among those sharing a variable code.
type LevelKind int

const (
	// LevelUnspecified selects the first record for the variable in
	// file order, whatever its level.
	LevelUnspecified LevelKind = iota
	// LevelSurface selects records whose level descriptor mentions the
	// surface.
	LevelSurface
	// LevelPressure selects records at a specific pressure, in mb.
	LevelPressure
)

// LevelSelector is the typed form of the level criterion. The messy
// descriptor-string matching lives here and in the parser only; callers
// work with the typed variants.
type LevelSelector struct {
	Kind     LevelKind
	Pressure int // set only when Kind == LevelPressure
}

// Unspecified returns a selector matching the first record for a variable.
func Unspecified() LevelSelector { return LevelSelector{Kind: LevelUnspecified} }

// Surface returns a selector matching surface-level records.
func Surface() LevelSelector { return LevelSelector{Kind: LevelSurface} }

// Pressure returns a selector matching records at the given pressure in mb.
func Pressure(mb int) LevelSelector { return LevelSelector{Kind: LevelPressure, Pressure: mb} }

// String renders the selector for log output and error messages.
func (s LevelSelector) String() string {
	switch s.Kind {
	case LevelSurface:
		return "surface"
	case LevelPressure:
		return fmt.Sprintf("%d mb", s.Pressure)
	default:
		return "any level"
	}
}

// Matches reports whether a level descriptor satisfies the selector.
func (s LevelSelector) Matches(level string) bool {
	switch s.Kind {
	case LevelSurface:
		return IsSurfaceLevel(level)
	case LevelPressure:
		return strings.Contains(level, fmt.Sprintf("%d mb", s.Pressure)) ||
			strings.Contains(level, fmt.Sprintf("%dmb", s.Pressure))
	default:
		return true
	}
}

// IsSurfaceLevel reports whether a level descriptor names the surface.
func IsSurfaceLevel(level string) bool {
	lower := strings.ToLower(level)
	return strings.Contains(lower, "surface") || strings.Contains(lower, "sfc")
}

// Select picks the record for the given variable code and level selector.
// The first match in file order wins; there is no scoring and no fallback
// to a nearby level. The second return value is false when no record
// matches: absence is a value, not an error, because callers treat it
// differently from infrastructure failures (e.g. by substituting another
// variable).
func Select(inv Inventory, code string, sel LevelSelector) (IndexRecord, bool) {
	for _, rec := range inv {
		if rec.Variable != code {
			continue
		}
		if sel.Matches(rec.Level) {
			return rec, true
		}
	}
	return IndexRecord{}, false
}
