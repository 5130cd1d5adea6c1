package grib

import "testing"

func TestLevelSelectorMatches(t *testing.T) {
	tests := []struct {
		name  string
		sel   LevelSelector
		level string
		want  bool
	}{
		{"unspecified matches anything", Unspecified(), "850 mb", true},
		{"unspecified matches surface", Unspecified(), "surface", true},
		{"surface matches surface", Surface(), "surface", true},
		{"surface matches sfc", Surface(), "0-SFC", true},
		{"surface is case-insensitive", Surface(), "SURFACE", true},
		{"surface rejects pressure", Surface(), "850 mb", false},
		{"pressure matches spaced form", Pressure(850), "850 mb", true},
		{"pressure matches compact form", Pressure(850), "850mb", true},
		{"pressure rejects other values", Pressure(850), "500 mb", false},
		{"pressure rejects surface", Pressure(850), "surface", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if have := tc.sel.Matches(tc.level); have != tc.want {
				t.Errorf("Matches(%q) with %s: want %v, have %v", tc.level, tc.sel, tc.want, have)
			}
		})
	}
}

func TestSelectFirstMatchWins(t *testing.T) {
	inv := ParseInventory(
		"1:0:d=2024011512:TMP:850 mb:anl:\n" +
			"2:100:d=2024011512:TMP:500 mb:anl:\n" +
			"3:200:d=2024011512:TMP:850 mb:anl:\n")

	rec, ok := Select(inv, "TMP", Pressure(850))
	if !ok {
		t.Fatal("want a match, have none")
	}
	if rec.Sequence != 1 {
		t.Errorf("want first matching record (sequence 1), have sequence %d", rec.Sequence)
	}
}

func TestSelectUnspecifiedTakesFirstForVariable(t *testing.T) {
	inv := ParseInventory(
		"1:0:d=2024011512:DPT:2 m above ground:anl:\n" +
			"2:100:d=2024011512:TMP:850 mb:anl:\n" +
			"3:200:d=2024011512:TMP:2 m above ground:anl:\n")

	rec, ok := Select(inv, "TMP", Unspecified())
	if !ok {
		t.Fatal("want a match, have none")
	}
	if rec.Sequence != 2 {
		t.Errorf("want sequence 2, have %d", rec.Sequence)
	}
}

func TestSelectNotFound(t *testing.T) {
	inv := ParseInventory("1:0:d=2024011512:TMP:850 mb:anl:\n")

	if _, ok := Select(inv, "GUST", Unspecified()); ok {
		t.Error("want no match for absent variable")
	}
	if _, ok := Select(inv, "TMP", Pressure(500)); ok {
		t.Error("want no match for absent level")
	}
}
