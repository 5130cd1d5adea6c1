// Package vars holds the static table of meteorological variable
// descriptors: display names, units, and the affine transform applied to
// decoded physical values.
package vars

// Descriptor describes how one variable code is presented: display name,
// target units, the affine transform from decoded values to those units,
// and the color scale used by the map layer. Descriptors are immutable
// configuration data.
type Descriptor struct {
	Code       string  `json:"code" toml:"code"`
	Name       string  `json:"name" toml:"name"`
	Units      string  `json:"units" toml:"units"`
	Multiplier float64 `json:"multiplier" toml:"multiplier"`
	Offset     float64 `json:"offset,omitempty" toml:"offset"`
	ColorScale string  `json:"color_scale" toml:"color_scale"`
}

// Table maps variable codes to descriptors. Unknown codes fall back to a
// default descriptor, never an error.
type Table map[string]Descriptor

// DefaultTable returns the built-in descriptor table.
func DefaultTable() Table {
	return Table{
		"GUST":  {Code: "GUST", Name: "Wind Gust", Units: "mph", Multiplier: 2.237, ColorScale: "YlOrRd"},
		"UGRD":  {Code: "UGRD", Name: "U-Component Wind", Units: "mph", Multiplier: 2.237, ColorScale: "RdBu_r"},
		"VGRD":  {Code: "VGRD", Name: "V-Component Wind", Units: "mph", Multiplier: 2.237, ColorScale: "RdBu_r"},
		"WIND":  {Code: "WIND", Name: "Wind Speed", Units: "mph", Multiplier: 2.237, ColorScale: "plasma"},
		"TMP":   {Code: "TMP", Name: "Temperature", Units: "°F", Multiplier: 1.8, Offset: -459.67, ColorScale: "RdYlBu_r"},
		"DPT":   {Code: "DPT", Name: "Dew Point", Units: "°F", Multiplier: 1.8, Offset: -459.67, ColorScale: "Blues"},
		"RH":    {Code: "RH", Name: "Relative Humidity", Units: "%", Multiplier: 1, ColorScale: "Blues"},
		"PRES":  {Code: "PRES", Name: "Pressure", Units: "hPa", Multiplier: 0.01, ColorScale: "viridis"},
		"PRMSL": {Code: "PRMSL", Name: "Sea Level Pressure", Units: "hPa", Multiplier: 0.01, ColorScale: "viridis"},
		"APCP":  {Code: "APCP", Name: "Precipitation", Units: "mm", Multiplier: 1, ColorScale: "Blues"},
		"VIS":   {Code: "VIS", Name: "Visibility", Units: "km", Multiplier: 0.001, ColorScale: "viridis"},
		"TCDC":  {Code: "TCDC", Name: "Total Cloud Cover", Units: "%", Multiplier: 1, ColorScale: "gray"},
		"HGT":   {Code: "HGT", Name: "Geopotential Height", Units: "m", Multiplier: 1, ColorScale: "terrain"},
	}
}

// Lookup returns the descriptor for a variable code, or the default
// descriptor (raw units, identity transform) for unknown codes.
func (t Table) Lookup(code string) Descriptor {
	if d, ok := t[code]; ok {
		return d
	}
	return Descriptor{Code: code, Name: code, Units: "raw", Multiplier: 1, ColorScale: "viridis"}
}

// Known reports whether a variable code has an explicit descriptor.
func (t Table) Known(code string) bool {
	_, ok := t[code]
	return ok
}

// Convert applies the descriptor's affine transform elementwise and
// returns a new grid. Pure and total for finite input.
func Convert(values [][]float64, d Descriptor) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v*d.Multiplier + d.Offset
		}
	}
	return out
}
