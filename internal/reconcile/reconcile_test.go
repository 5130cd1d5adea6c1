package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wxslice/wxslice/internal/grib"
)

func inv(lines string) grib.Inventory {
	return grib.ParseInventory(lines)
}

func TestPressureLevels(t *testing.T) {
	tests := []struct {
		name   string
		levels []string
		want   []int
	}{
		{
			"spaced and compact forms",
			[]string{"850 mb", "500mb", "1000 mb"},
			[]int{500, 850, 1000},
		},
		{
			"duplicates collapse",
			[]string{"850 mb", "850 mb", "850mb"},
			[]int{850},
		},
		{
			"bare numbers fall back",
			[]string{"925", " 700 "},
			[]int{700, 925},
		},
		{
			"non-pressure descriptors skipped",
			[]string{"surface", "2 m above ground", "850 mb"},
			[]int{850},
		},
		{"empty input", nil, []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			have := PressureLevels(tc.levels)
			if diff := cmp.Diff(tc.want, have); diff != "" {
				t.Errorf("levels mismatch (-want +have):\n%s", diff)
			}
		})
	}
}

func TestReconcileNearSurfaceHint(t *testing.T) {
	surface := inv("1:0:d=2024011512:TMP:2 m above ground:anl:\n")
	pressure := inv(
		"1:0:d=2024011512:TMP:500 mb:anl:\n" +
			"2:100:d=2024011512:TMP:700 mb:anl:\n" +
			"3:200:d=2024011512:TMP:850 mb:anl:\n" +
			"4:300:d=2024011512:TMP:925 mb:anl:\n" +
			"5:400:d=2024011512:TMP:1000 mb:anl:\n")

	entries := Reconcile(surface, pressure)
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, have %d", len(entries))
	}
	e := entries[0]
	if e.BestMatch == nil || *e.BestMatch != 1000 {
		t.Errorf("best match for near-surface TMP: want 1000, have %v", e.BestMatch)
	}
}

func TestReconcileHintWithoutThousand(t *testing.T) {
	// With 1000 mb absent the closest level to the reference targets
	// wins: 925 is 0 away from target 925.
	surface := inv("1:0:d=2024011512:TMP:surface:anl:\n")
	pressure := inv(
		"1:0:d=2024011512:TMP:500 mb:anl:\n" +
			"2:100:d=2024011512:TMP:850 mb:anl:\n" +
			"3:200:d=2024011512:TMP:925 mb:anl:\n")

	entries := Reconcile(surface, pressure)
	if e := entries[0]; e.BestMatch == nil || *e.BestMatch != 925 {
		t.Errorf("best match: want 925, have %v", e.BestMatch)
	}
}

func TestReconcileNoHintPicksMiddle(t *testing.T) {
	// HGT has no near-surface reading, so the middle of the sorted
	// levels is proposed: levels {300, 500, 700, 850} -> index 2 -> 700.
	surface := inv("1:0:d=2024011512:HGT:cloud base:anl:\n")
	pressure := inv(
		"1:0:d=2024011512:HGT:300 mb:anl:\n" +
			"2:100:d=2024011512:HGT:500 mb:anl:\n" +
			"3:200:d=2024011512:HGT:700 mb:anl:\n" +
			"4:300:d=2024011512:HGT:850 mb:anl:\n")

	entries := Reconcile(surface, pressure)
	if e := entries[0]; e.BestMatch == nil || *e.BestMatch != 700 {
		t.Errorf("best match: want 700, have %v", e.BestMatch)
	}
}

func TestReconcileNoLevels(t *testing.T) {
	// GUST exists only in the near-surface dataset: the entry is still
	// emitted, with no proposed level.
	surface := inv("1:0:d=2024011512:GUST:10 m above ground:anl:\n")
	pressure := inv("1:0:d=2024011512:TMP:850 mb:anl:\n")

	entries := Reconcile(surface, pressure)
	if len(entries) != 2 {
		t.Fatalf("want 2 entries (union of codes), have %d", len(entries))
	}
	// Entries are sorted by code: GUST then TMP
	if entries[0].Variable != "GUST" {
		t.Fatalf("want first entry GUST, have %s", entries[0].Variable)
	}
	if entries[0].BestMatch != nil {
		t.Errorf("GUST best match: want nil, have %v", *entries[0].BestMatch)
	}
	if entries[1].BestMatch == nil || *entries[1].BestMatch != 850 {
		t.Errorf("TMP best match: want 850, have %v", entries[1].BestMatch)
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		mb   int
		want string
	}{
		{0, "Surface Level"},
		{850, "850 mb (~1.5 km, Boundary Layer)"},
		{1000, "1000 mb (Sea Level)"},
		{875, "875 mb"},
	}
	for _, tc := range tests {
		if have := LevelName(tc.mb); have != tc.want {
			t.Errorf("LevelName(%d): want %q, have %q", tc.mb, tc.want, have)
		}
	}

	names := LevelNames([]int{0, 850})
	want := map[int]string{0: "Surface Level", 850: "850 mb (~1.5 km, Boundary Layer)"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("LevelNames (-want +have):\n%s", diff)
	}
}

func TestHasNearSurface(t *testing.T) {
	tests := []struct {
		name   string
		levels []string
		want   bool
	}{
		{"2 m height", []string{"2 m above ground"}, true},
		{"compact 2m", []string{"2m above ground"}, true},
		{"surface", []string{"surface"}, true},
		{"sfc abbreviation", []string{"0-SFC"}, true},
		{"pressure only", []string{"850 mb", "500 mb"}, false},
		{"10 m wind is not near-surface", []string{"10 m above ground"}, false},
		{"empty", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if have := hasNearSurface(tc.levels); have != tc.want {
				t.Errorf("want %v, have %v", tc.want, have)
			}
		})
	}
}
