package sources

import "testing"

func TestURLs(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		source   string
		wantGrib string
		wantIdx  string
	}{
		{
			"RTMA",
			"https://noaa-rtma-pds.s3.amazonaws.com/rtma2p5.20240115/rtma2p5.t06z.2dvaranl_ndfd.grb2_wexp",
			"https://noaa-rtma-pds.s3.amazonaws.com/rtma2p5.20240115/rtma2p5.t06z.2dvaranl_ndfd.grb2_wexp.idx",
		},
		{
			"RTMA-PRES",
			"https://noaa-rtma-pds.s3.amazonaws.com/rtma2p5.20240115/rtma2p5.t06z.3dvaranl_ndfd.grb2_wexp",
			"https://noaa-rtma-pds.s3.amazonaws.com/rtma2p5.20240115/rtma2p5.t06z.3dvaranl_ndfd.grb2_wexp.idx",
		},
		{
			"3DRTMA",
			"https://noaa-nws-3drtma-pds.s3.amazonaws.com/3drtma/results/rtma_a/rtma3d_hrrr.v1.0.0/prod/rtma3d.20240115/06/rtma3d.t06z.anl_prslev_ndfd.grib2",
			"https://noaa-nws-3drtma-pds.s3.amazonaws.com/3drtma/results/rtma_a/rtma3d_hrrr.v1.0.0/prod/rtma3d.20240115/06/rtma3d.t06z.anl_prslev_ndfd.grib2.idx",
		},
	}
	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			gribURL, idxURL := reg[tc.source].URLs("20240115", 6)
			if gribURL != tc.wantGrib {
				t.Errorf("grib URL:\nwant %s\nhave %s", tc.wantGrib, gribURL)
			}
			if idxURL != tc.wantIdx {
				t.Errorf("idx URL:\nwant %s\nhave %s", tc.wantIdx, idxURL)
			}
		})
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	reg := DefaultRegistry()

	id, src := reg.Lookup("")
	if id != DefaultSourceID {
		t.Errorf("empty ID: want %s, have %s", DefaultSourceID, id)
	}
	if src.HasPressureLevels {
		t.Error("default source must be the surface dataset")
	}

	id, _ = reg.Lookup("NO-SUCH-SOURCE")
	if id != DefaultSourceID {
		t.Errorf("unknown ID: want %s, have %s", DefaultSourceID, id)
	}

	id, src = reg.Lookup("3DRTMA")
	if id != "3DRTMA" || !src.HasPressureLevels {
		t.Errorf("known ID: want 3DRTMA with pressure levels, have %s", id)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"20240115", "20240115", false},
		{"2024-01-15", "20240115", false},
		{"2024/01/15", "", true},
		{"15-01-2024", "", true},
		{"", "", true},
		{"2024011", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			have, err := NormalizeDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("want error, have %q", have)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if have != tc.want {
				t.Errorf("want %s, have %s", tc.want, have)
			}
		})
	}
}

func TestValidateHour(t *testing.T) {
	for _, hour := range []int{0, 12, 23} {
		if err := ValidateHour(hour); err != nil {
			t.Errorf("hour %d: unexpected error: %v", hour, err)
		}
	}
	for _, hour := range []int{-1, 24, 100} {
		if err := ValidateHour(hour); err == nil {
			t.Errorf("hour %d: want error", hour)
		}
	}
}
