// Package sources holds the registry of GRIB2 data sources and expands
// their URL templates for a given analysis date and hour.
package sources

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Source describes one remote dataset: display name, URL templates for
// the grib file and its index, and whether the dataset carries pressure
// levels. Templates use {base_url}, {date} (YYYYMMDD) and {hour:02d}
// placeholders.
type Source struct {
	Name              string `json:"name" toml:"name"`
	BaseURL           string `json:"base_url" toml:"base_url"`
	GribPattern       string `json:"grib_pattern" toml:"grib_pattern"`
	IdxPattern        string `json:"idx_pattern" toml:"idx_pattern"`
	HasPressureLevels bool   `json:"has_pressure_levels" toml:"has_pressure_levels"`
}

// Registry maps source IDs to their configurations.
type Registry map[string]Source

// DefaultSourceID is used when a request names no source or an unknown
// one.
const DefaultSourceID = "RTMA"

// DefaultRegistry returns the built-in data sources.
func DefaultRegistry() Registry {
	return Registry{
		"RTMA": {
			Name:        "RTMA 2.5km Surface",
			BaseURL:     "https://noaa-rtma-pds.s3.amazonaws.com",
			GribPattern: "{base_url}/rtma2p5.{date}/rtma2p5.t{hour:02d}z.2dvaranl_ndfd.grb2_wexp",
			IdxPattern:  "{base_url}/rtma2p5.{date}/rtma2p5.t{hour:02d}z.2dvaranl_ndfd.grb2_wexp.idx",
		},
		"RTMA-PRES": {
			Name:              "RTMA 2.5km Pressure Levels",
			BaseURL:           "https://noaa-rtma-pds.s3.amazonaws.com",
			GribPattern:       "{base_url}/rtma2p5.{date}/rtma2p5.t{hour:02d}z.3dvaranl_ndfd.grb2_wexp",
			IdxPattern:        "{base_url}/rtma2p5.{date}/rtma2p5.t{hour:02d}z.3dvaranl_ndfd.grb2_wexp.idx",
			HasPressureLevels: true,
		},
		"3DRTMA": {
			Name:              "3D-RTMA Pressure Levels",
			BaseURL:           "https://noaa-nws-3drtma-pds.s3.amazonaws.com",
			GribPattern:       "{base_url}/3drtma/results/rtma_a/rtma3d_hrrr.v1.0.0/prod/rtma3d.{date}/{hour:02d}/rtma3d.t{hour:02d}z.anl_prslev_ndfd.grib2",
			IdxPattern:        "{base_url}/3drtma/results/rtma_a/rtma3d_hrrr.v1.0.0/prod/rtma3d.{date}/{hour:02d}/rtma3d.t{hour:02d}z.anl_prslev_ndfd.grib2.idx",
			HasPressureLevels: true,
		},
	}
}

// Lookup returns the source for an ID, falling back to the default
// source for empty or unknown IDs. The returned ID is the one actually
// used.
func (r Registry) Lookup(id string) (string, Source) {
	if s, ok := r[id]; ok {
		return id, s
	}
	return DefaultSourceID, r[DefaultSourceID]
}

// IDs returns the registered source IDs, sorted.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// URLs expands the source's templates for a date (YYYYMMDD) and hour,
// returning the grib URL and the index URL.
func (s Source) URLs(date string, hour int) (gribURL, idxURL string) {
	rep := strings.NewReplacer(
		"{base_url}", s.BaseURL,
		"{date}", date,
		"{hour:02d}", fmt.Sprintf("%02d", hour),
		"{hour}", strconv.Itoa(hour),
	)
	return rep.Replace(s.GribPattern), rep.Replace(s.IdxPattern)
}

// NormalizeDate accepts YYYYMMDD or YYYY-MM-DD and returns YYYYMMDD.
func NormalizeDate(date string) (string, error) {
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", fmt.Errorf("invalid date %q: want YYYYMMDD or YYYY-MM-DD", date)
}

// ValidateHour checks that an analysis hour is within a day.
func ValidateHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour %d: want 0-23", hour)
	}
	return nil
}
