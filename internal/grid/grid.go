// Package grid provides nearest-neighbor operations on rectilinear
// latitude/longitude grids: resampling one grid onto another's
// coordinates, sampling a single point, and differencing two fields.
package grid

import "math"

// Field pairs a value grid with its per-cell coordinate grids. The grid
// is assumed rectilinear: every row shares one latitude and every
// column shares one longitude.
type Field struct {
	Values     [][]float64
	Latitudes  [][]float64
	Longitudes [][]float64
}

// axes reduces the 2-D coordinate grids of a rectilinear field to 1-D
// axes: the latitude of each row and the longitude of each column.
func axes(f Field) (lats, lons []float64) {
	lats = make([]float64, len(f.Latitudes))
	for i, row := range f.Latitudes {
		if len(row) > 0 {
			lats[i] = row[0]
		}
	}
	if len(f.Longitudes) > 0 {
		lons = append(lons, f.Longitudes[0]...)
	}
	return lats, lons
}

// nearest returns the index of the axis value closest to target. Ties
// go to the lower index. Returns -1 for an empty axis.
func nearest(axis []float64, target float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range axis {
		d := math.Abs(v - target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Resample maps src onto the coordinates of dst using independent
// nearest-neighbor lookups on each axis. Cells whose lookup fails come
// back NaN. When the two grids already share a shape the source values
// are returned as-is.
func Resample(src, dst Field) [][]float64 {
	if sameShape(src.Values, dst.Values) {
		return src.Values
	}

	srcLats, srcLons := axes(src)
	out := make([][]float64, len(dst.Values))
	for i := range dst.Values {
		out[i] = make([]float64, len(dst.Values[i]))
		for j := range dst.Values[i] {
			out[i][j] = math.NaN()
			li := nearest(srcLats, dst.Latitudes[i][j])
			lj := nearest(srcLons, dst.Longitudes[i][j])
			if li < 0 || lj < 0 || li >= len(src.Values) || lj >= len(src.Values[li]) {
				continue
			}
			out[i][j] = src.Values[li][lj]
		}
	}
	return out
}

// Point is a located sample: the value at the grid cell nearest to the
// queried coordinates, the cell's indices, and the cell's own
// coordinates.
type Point struct {
	Value    float64
	Row, Col int
	Lat, Lon float64
}

// SampleAt locates the grid cell nearest to (lat, lon) and returns it
// with its value and whether that value is usable. NaN cells and empty
// grids report false.
func SampleAt(f Field, lat, lon float64) (Point, bool) {
	lats, lons := axes(f)
	i := nearest(lats, lat)
	j := nearest(lons, lon)
	if i < 0 || j < 0 || i >= len(f.Values) || j >= len(f.Values[i]) {
		return Point{}, false
	}
	v := f.Values[i][j]
	if math.IsNaN(v) {
		return Point{}, false
	}
	return Point{Value: v, Row: i, Col: j, Lat: lats[i], Lon: lons[j]}, true
}

// Diff subtracts b from a cellwise. Both grids must share a shape; the
// caller resamples first when they do not. Any NaN operand yields NaN.
func Diff(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		out[i] = make([]float64, len(a[i]))
		for j := range a[i] {
			out[i][j] = a[i][j] - b[i][j]
		}
	}
	return out
}

// SymmetricRange returns (-m, m) where m is the largest absolute finite
// value in the grid, for rendering diffs on a scale centered at zero.
// All-NaN or empty grids report (0, 0).
func SymmetricRange(values [][]float64) (lo, hi float64) {
	var m float64
	for _, row := range values {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if a := math.Abs(v); a > m {
				m = a
			}
		}
	}
	return -m, m
}

func sameShape(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}
