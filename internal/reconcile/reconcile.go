// Package reconcile matches variables from a near-surface dataset
// against the pressure levels available for the same variables in a
// pressure-level dataset, proposing the most comparable level for each.
package reconcile

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wxslice/wxslice/internal/grib"
)

// referenceTargets are the pressure levels closest to near-surface
// conditions, in preference order.
var referenceTargets = []int{1000, 925, 850, 700}

var pressureRe = regexp.MustCompile(`(\d{2,4}) ?mb`)

// levelNames are display names for the commonly published pressure
// levels. Level 0 stands in for a surface record.
var levelNames = map[int]string{
	0:    "Surface Level",
	50:   "50 mb (~20 km, Lower Stratosphere)",
	100:  "100 mb (~16 km, Tropopause)",
	200:  "200 mb (~12 km, Upper Troposphere)",
	300:  "300 mb (~9 km, Jet Stream Level)",
	500:  "500 mb (~5.5 km, Mid-Troposphere)",
	700:  "700 mb (~3 km, Lower Troposphere)",
	850:  "850 mb (~1.5 km, Boundary Layer)",
	925:  "925 mb (~750 m, Near Surface)",
	1000: "1000 mb (Sea Level)",
}

// LevelName returns the display name for a pressure level in millibars.
func LevelName(mb int) string {
	if name, ok := levelNames[mb]; ok {
		return name
	}
	return strconv.Itoa(mb) + " mb"
}

// LevelNames maps each given level to its display name.
func LevelNames(levels []int) map[int]string {
	out := make(map[int]string, len(levels))
	for _, lv := range levels {
		out[lv] = LevelName(lv)
	}
	return out
}

// Entry reports, for one variable code, the levels each dataset offers
// and the pressure level proposed for a side-by-side comparison.
// BestMatch is nil when the pressure dataset has no levels for the
// variable.
type Entry struct {
	Variable       string   `json:"variable"`
	SurfaceLevels  []string `json:"surface_levels"`
	PressureLevels []int    `json:"pressure_levels"`
	BestMatch      *int     `json:"best_match"`
}

// Reconcile walks the union of variable codes across both inventories
// and proposes a pressure level for each. Variables with a near-surface
// reading get the level globally closest to the reference targets;
// variables without one get the middle of the available levels.
func Reconcile(surface, pressure grib.Inventory) []Entry {
	codes := map[string]struct{}{}
	for _, v := range surface.Variables() {
		codes[v] = struct{}{}
	}
	for _, v := range pressure.Variables() {
		codes[v] = struct{}{}
	}
	sorted := make([]string, 0, len(codes))
	for v := range codes {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	entries := make([]Entry, 0, len(sorted))
	for _, code := range sorted {
		surfLevels := surface.LevelsFor(code)
		levels := PressureLevels(pressure.LevelsFor(code))

		e := Entry{
			Variable:       code,
			SurfaceLevels:  surfLevels,
			PressureLevels: levels,
		}
		if len(levels) > 0 {
			var best int
			if hasNearSurface(surfLevels) {
				best = closestToTargets(levels)
			} else {
				best = levels[len(levels)/2]
			}
			e.BestMatch = &best
		}
		entries = append(entries, e)
	}
	return entries
}

// hasNearSurface reports whether any level descriptor reads as a
// near-surface measurement: a 2 meter height or an explicit surface.
func hasNearSurface(levels []string) bool {
	for _, l := range levels {
		s := strings.ToLower(l)
		if strings.Contains(s, "2 m") || strings.Contains(s, "2m") ||
			strings.Contains(s, "surface") || strings.Contains(s, "sfc") {
			return true
		}
	}
	return false
}

// closestToTargets picks the level with the smallest distance to any
// reference target. Strict improvement only, so an earlier target and
// an earlier level win ties.
func closestToTargets(levels []int) int {
	best := levels[0]
	bestDist := math.Inf(1)
	for _, t := range referenceTargets {
		for _, lv := range levels {
			if d := math.Abs(float64(lv - t)); d < bestDist {
				bestDist = d
				best = lv
			}
		}
	}
	return best
}

// PressureLevels extracts the distinct pressure values, in millibars,
// from a set of level descriptors, sorted ascending. Descriptors that
// carry no pressure are skipped.
func PressureLevels(levels []string) []int {
	seen := map[int]struct{}{}
	for _, l := range levels {
		p, ok := parsePressure(l)
		if !ok {
			continue
		}
		seen[p] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func parsePressure(level string) (int, bool) {
	if m := pressureRe.FindStringSubmatch(level); m != nil {
		p, err := strconv.Atoi(m[1])
		return p, err == nil
	}
	if p, err := strconv.Atoi(strings.TrimSpace(level)); err == nil {
		return p, true
	}
	return 0, false
}
