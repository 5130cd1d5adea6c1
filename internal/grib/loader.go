package grib

import (
	"context"
	"errors"

	"github.com/wxslice/wxslice/internal/decode"
	"github.com/wxslice/wxslice/internal/vars"
	"github.com/wxslice/wxslice/pkg/logger"
)

// Coordinates carries the per-cell position grids for a decoded field.
// Both grids share the shape of the value grid.
type Coordinates struct {
	LatGrid [][]float64 `json:"lat_grid"`
	LonGrid [][]float64 `json:"lon_grid"`
}

// DecodedVariable is the result of loading one variable: converted
// values, their coordinates, and the descriptor used for conversion.
type DecodedVariable struct {
	Values      [][]float64     `json:"values"`
	Coordinates Coordinates     `json:"coordinates"`
	Descriptor  vars.Descriptor `json:"descriptor"`
}

// Loader turns a (grib URL, index URL, variable, level) request into a
// decoded, unit-converted grid using a single ranged fetch per request.
type Loader struct {
	client  *Client
	decoder decode.Decoder
	table   vars.Table
	logger  *logger.Logger
}

func NewLoader(client *Client, decoder decode.Decoder, table vars.Table, log *logger.Logger) *Loader {
	return &Loader{
		client:  client,
		decoder: decoder,
		table:   table,
		logger:  log.Named("loader"),
	}
}

// Load fetches the inventory, selects the first record matching the
// variable and level, fetches exactly that record's byte range, decodes
// it, normalizes longitudes, and applies the variable's unit conversion.
// A missing record is reported as *VariableNotFoundError carrying the
// levels that were seen for the code.
func (l *Loader) Load(ctx context.Context, gribURL, idxURL, variable string, level LevelSelector) (*DecodedVariable, error) {
	inv, err := l.client.FetchIndex(ctx, idxURL)
	if err != nil {
		return nil, err
	}
	return l.LoadFromInventory(ctx, inv, gribURL, variable, level)
}

// LoadFromInventory is Load with a pre-fetched inventory, used when the
// caller already holds one for the same grib file.
func (l *Loader) LoadFromInventory(ctx context.Context, inv Inventory, gribURL, variable string, level LevelSelector) (*DecodedVariable, error) {
	rec, ok := Select(inv, variable, level)
	if !ok {
		return nil, &VariableNotFoundError{
			Variable:   variable,
			Level:      level,
			LevelsSeen: inv.LevelsFor(variable),
		}
	}

	raw, err := l.client.FetchRange(ctx, gribURL, rec.ByteStart, rec.ByteEnd)
	if err != nil {
		return nil, err
	}

	field, err := l.decoder.Decode(ctx, raw)
	if err != nil {
		return nil, &DecodeError{
			Variable:    variable,
			Unsupported: errors.Is(err, decode.ErrUnsupportedPacking),
			Err:         err,
		}
	}

	NormalizeLongitudes(field.Longitudes)

	desc := l.table.Lookup(variable)
	l.logger.Debug("loaded variable",
		logger.String("variable", variable),
		logger.String("level", rec.Level),
		logger.Int("rows", len(field.Values)))

	return &DecodedVariable{
		Values: vars.Convert(field.Values, desc),
		Coordinates: Coordinates{
			LatGrid: field.Latitudes,
			LonGrid: field.Longitudes,
		},
		Descriptor: desc,
	}, nil
}

// NormalizeLongitudes shifts values above 180 into [-180, 180] in place.
// Idempotent.
func NormalizeLongitudes(lons [][]float64) {
	for _, row := range lons {
		for j, v := range row {
			if v > 180 {
				row[j] = v - 360
			}
		}
	}
}
