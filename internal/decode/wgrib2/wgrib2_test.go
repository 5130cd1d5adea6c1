package wgrib2

import (
	"testing"

	"github.com/wxslice/wxslice/pkg/logger"
)

func TestNewCommandPath(t *testing.T) {
	log := logger.NewNop()

	d := New("/opt/grib/wgrib2", log)
	if d.command != "/opt/grib/wgrib2" {
		t.Errorf("command: want /opt/grib/wgrib2, have %s", d.command)
	}

	d = New("", log)
	if d.command != "wgrib2" {
		t.Errorf("empty command: want wgrib2 fallback, have %s", d.command)
	}
}

func TestParseCSV(t *testing.T) {
	out := []byte(`"2024011512","2024011512","TMP","2 m above ground",-100.0,40.0,273.15
"2024011512","2024011512","TMP","2 m above ground",-99.0,40.0,274.15
"2024011512","2024011512","TMP","2 m above ground",-100.0,41.0,275.15
"2024011512","2024011512","TMP","2 m above ground",-99.0,41.0,276.15
`)
	field, err := parseCSV(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(field.Values) != 2 || len(field.Values[0]) != 2 {
		t.Fatalf("want 2x2 grid, have %dx%d", len(field.Values), len(field.Values[0]))
	}
	if field.Values[0][0] != 273.15 || field.Values[1][1] != 276.15 {
		t.Errorf("corner values: have %v and %v", field.Values[0][0], field.Values[1][1])
	}
	if field.Latitudes[0][0] != 40.0 || field.Latitudes[1][0] != 41.0 {
		t.Errorf("row latitudes: have %v and %v", field.Latitudes[0][0], field.Latitudes[1][0])
	}
	if field.Longitudes[0][1] != -99.0 {
		t.Errorf("column longitude: have %v", field.Longitudes[0][1])
	}
}

func TestParseCSVSkipsMalformedLines(t *testing.T) {
	out := []byte(`garbage line
"t","t","TMP","surface",-100.0,40.0,1.0
"t","t","TMP","surface",not-a-number,40.0,2.0
"t","t","TMP","surface",-99.0,40.0,3.0
`)
	field, err := parseCSV(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(field.Values) != 1 || len(field.Values[0]) != 2 {
		t.Fatalf("want 1x2 grid, have %v", field.Values)
	}
	if field.Values[0][0] != 1.0 || field.Values[0][1] != 3.0 {
		t.Errorf("values: have %v", field.Values[0])
	}
}

func TestParseCSVEmptyDump(t *testing.T) {
	if _, err := parseCSV(nil); err == nil {
		t.Error("want error for empty dump")
	}
	if _, err := parseCSV([]byte("no points here\n")); err == nil {
		t.Error("want error for dump with no grid points")
	}
}
