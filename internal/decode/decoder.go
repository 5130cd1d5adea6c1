// Package decode defines the collaborator that turns a single GRIB2
// message, already isolated by a ranged fetch, into a latitude/longitude
// grid of values.
package decode

import (
	"context"
	"errors"
)

// ErrUnsupportedPacking marks a message whose packing the decoder cannot
// handle, typically JPEG2000 in a build without codec support.
// Implementations wrap it so callers can classify with errors.Is.
var ErrUnsupportedPacking = errors.New("unsupported grib2 packing")

// Field is one decoded GRIB2 message: a rectilinear grid of values with
// per-cell coordinates. Values[i][j] sits at (Latitudes[i][j],
// Longitudes[i][j]). All three grids share the same shape.
type Field struct {
	Values     [][]float64
	Latitudes  [][]float64
	Longitudes [][]float64
}

// Decoder decodes a raw GRIB2 message into a Field. Implementations
// report unsupported packing (for example JPEG2000 without codec
// support) through an error the caller can classify; they do not guess.
type Decoder interface {
	Decode(ctx context.Context, raw []byte) (*Field, error)
}

// Func adapts a plain function to the Decoder interface.
type Func func(ctx context.Context, raw []byte) (*Field, error)

func (f Func) Decode(ctx context.Context, raw []byte) (*Field, error) {
	return f(ctx, raw)
}
