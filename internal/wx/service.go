// Package wx is the application service layer: it ties the source
// registry, the grib loader, the reconciler, and the grid operations
// together behind the operations the API exposes.
package wx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wxslice/wxslice/internal/grib"
	"github.com/wxslice/wxslice/internal/grid"
	"github.com/wxslice/wxslice/internal/reconcile"
	"github.com/wxslice/wxslice/internal/sources"
	"github.com/wxslice/wxslice/internal/storage/sqlite"
	"github.com/wxslice/wxslice/internal/vars"
	"github.com/wxslice/wxslice/pkg/logger"
)

// Service exposes the weather data operations: loading variables,
// listing what a dataset offers, reconciling levels across datasets,
// differencing, and point sampling.
type Service struct {
	registry  sources.Registry
	client    *grib.Client
	loader    *grib.Loader
	table     vars.Table
	snapshots *sqlite.SnapshotStorage
	samples   *sqlite.SampleStorage
	logger    *logger.Logger
}

// NewService creates a new weather service. The storage arguments may
// be nil, in which case snapshots and samples are not persisted.
func NewService(
	registry sources.Registry,
	client *grib.Client,
	loader *grib.Loader,
	table vars.Table,
	snapshots *sqlite.SnapshotStorage,
	samples *sqlite.SampleStorage,
	log *logger.Logger,
) *Service {
	return &Service{
		registry:  registry,
		client:    client,
		loader:    loader,
		table:     table,
		snapshots: snapshots,
		samples:   samples,
		logger:    log.Named("wx"),
	}
}

// Request identifies one dataset slice: a source, an analysis date
// (YYYYMMDD or YYYY-MM-DD) and hour.
type Request struct {
	Source string
	Date   string
	Hour   int
}

// resolve validates the request and expands the source's URL templates.
func (s *Service) resolve(req Request) (id string, src sources.Source, gribURL, idxURL string, err error) {
	date, err := sources.NormalizeDate(req.Date)
	if err != nil {
		return "", sources.Source{}, "", "", err
	}
	if err := sources.ValidateHour(req.Hour); err != nil {
		return "", sources.Source{}, "", "", err
	}
	id, src = s.registry.Lookup(req.Source)
	gribURL, idxURL = src.URLs(date, req.Hour)
	return id, src, gribURL, idxURL, nil
}

// LoadVariable loads one variable at one level from the requested
// dataset. Pressure levels are rejected for sources that do not carry
// them.
func (s *Service) LoadVariable(ctx context.Context, req Request, variable string, level grib.LevelSelector) (*grib.DecodedVariable, error) {
	id, src, gribURL, idxURL, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if level.Kind == grib.LevelPressure && !src.HasPressureLevels {
		return nil, fmt.Errorf("source %s has no pressure levels", id)
	}

	s.logger.Info("Loading variable",
		logger.String("source", id),
		logger.String("variable", variable),
		logger.String("level", level.String()))

	return s.loader.Load(ctx, gribURL, idxURL, variable, level)
}

// AvailableVariables lists the distinct variable codes in a dataset.
// For pressure-level sources the list is filtered to variables with a
// known descriptor; the full record set there is too large to be
// useful unfiltered.
func (s *Service) AvailableVariables(ctx context.Context, req Request) ([]string, error) {
	_, src, _, idxURL, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	inv, err := s.client.FetchIndex(ctx, idxURL)
	if err != nil {
		return nil, err
	}
	codes := inv.Variables()
	if !src.HasPressureLevels {
		return codes, nil
	}
	known := codes[:0]
	for _, c := range codes {
		if s.table.Known(c) {
			known = append(known, c)
		}
	}
	return known, nil
}

// PressureLevels lists the pressure levels, in millibars, a dataset
// offers for a variable, sorted ascending. A surface record adds level
// 0 at the head of the list.
func (s *Service) PressureLevels(ctx context.Context, req Request, variable string) ([]int, error) {
	_, _, _, idxURL, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	inv, err := s.client.FetchIndex(ctx, idxURL)
	if err != nil {
		return nil, err
	}
	descriptors := inv.LevelsFor(variable)
	levels := reconcile.PressureLevels(descriptors)
	for _, d := range descriptors {
		if grib.IsSurfaceLevel(d) {
			levels = append([]int{0}, levels...)
			break
		}
	}
	return levels, nil
}

// VariablesForLevel lists the variable codes available at one level of
// a dataset, sorted.
func (s *Service) VariablesForLevel(ctx context.Context, req Request, level grib.LevelSelector) ([]string, error) {
	_, _, _, idxURL, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	inv, err := s.client.FetchIndex(ctx, idxURL)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, rec := range inv {
		if level.Matches(rec.Level) {
			seen[rec.Variable] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

// CheckAvailability probes whether the dataset for the request has been
// published yet.
func (s *Service) CheckAvailability(ctx context.Context, req Request) (bool, error) {
	_, _, _, idxURL, err := s.resolve(req)
	if err != nil {
		return false, err
	}
	return s.client.CheckAvailability(ctx, idxURL)
}

// Comparison is the result of reconciling a near-surface dataset
// against a pressure-level dataset.
type Comparison struct {
	SurfaceSource  string            `json:"surface_source"`
	PressureSource string            `json:"pressure_source"`
	Date           string            `json:"date"`
	Hour           int               `json:"hour"`
	Entries        []reconcile.Entry `json:"entries"`
}

// Compare fetches both inventories concurrently, reconciles the levels,
// and persists the result as a snapshot when storage is configured.
func (s *Service) Compare(ctx context.Context, surfaceReq, pressureReq Request) (*Comparison, error) {
	surfID, _, _, surfIdxURL, err := s.resolve(surfaceReq)
	if err != nil {
		return nil, err
	}
	presID, presSrc, _, presIdxURL, err := s.resolve(pressureReq)
	if err != nil {
		return nil, err
	}
	if !presSrc.HasPressureLevels {
		return nil, fmt.Errorf("source %s has no pressure levels", presID)
	}

	type result struct {
		inv grib.Inventory
		err error
	}
	surfCh := make(chan result, 1)
	presCh := make(chan result, 1)
	go func() {
		inv, err := s.client.FetchIndex(ctx, surfIdxURL)
		surfCh <- result{inv, err}
	}()
	go func() {
		inv, err := s.client.FetchIndex(ctx, presIdxURL)
		presCh <- result{inv, err}
	}()
	surf, pres := <-surfCh, <-presCh
	if surf.err != nil {
		return nil, surf.err
	}
	if pres.err != nil {
		return nil, pres.err
	}

	date, _ := sources.NormalizeDate(surfaceReq.Date)
	cmp := &Comparison{
		SurfaceSource:  surfID,
		PressureSource: presID,
		Date:           date,
		Hour:           surfaceReq.Hour,
		Entries:        reconcile.Reconcile(surf.inv, pres.inv),
	}

	if s.snapshots != nil {
		_, err := s.snapshots.StoreSnapshot(&sqlite.SnapshotRecord{
			CreatedAt:      time.Now().UTC(),
			SurfaceSource:  cmp.SurfaceSource,
			PressureSource: cmp.PressureSource,
			Date:           cmp.Date,
			Hour:           cmp.Hour,
			Entries:        cmp.Entries,
		})
		if err != nil {
			s.logger.Warn("Failed to store comparison snapshot", logger.Error(err))
		}
	}

	return cmp, nil
}

// DiffResult is a pressure-level field minus the near-surface field for
// the same variable, on the near-surface grid, with the symmetric value
// range for rendering.
type DiffResult struct {
	Values        [][]float64      `json:"values"`
	Coordinates   grib.Coordinates `json:"coordinates"`
	Descriptor    vars.Descriptor  `json:"descriptor"`
	PressureLevel int              `json:"pressure_level"`
	RangeLo       float64          `json:"range_lo"`
	RangeHi       float64          `json:"range_hi"`
}

// DiffVariable loads the near-surface and pressure-level fields for one
// variable concurrently, resamples the pressure field onto the surface
// grid, and returns pressure minus surface.
func (s *Service) DiffVariable(ctx context.Context, surfaceReq, pressureReq Request, variable string, pressureLevel int) (*DiffResult, error) {
	type result struct {
		dv  *grib.DecodedVariable
		err error
	}
	surfCh := make(chan result, 1)
	presCh := make(chan result, 1)
	go func() {
		dv, err := s.LoadVariable(ctx, surfaceReq, variable, grib.Unspecified())
		surfCh <- result{dv, err}
	}()
	go func() {
		dv, err := s.LoadVariable(ctx, pressureReq, variable, grib.Pressure(pressureLevel))
		presCh <- result{dv, err}
	}()
	surf, pres := <-surfCh, <-presCh
	if surf.err != nil {
		return nil, surf.err
	}
	if pres.err != nil {
		return nil, pres.err
	}

	surfField := toField(surf.dv)
	resampled := grid.Resample(toField(pres.dv), surfField)
	diff := grid.Diff(resampled, surf.dv.Values)
	lo, hi := grid.SymmetricRange(diff)

	return &DiffResult{
		Values:        diff,
		Coordinates:   surf.dv.Coordinates,
		Descriptor:    surf.dv.Descriptor,
		PressureLevel: pressureLevel,
		RangeLo:       lo,
		RangeHi:       hi,
	}, nil
}

// Sample is one point reading in display units: the queried
// coordinates, the value, and the grid cell that answered (indices and
// the cell's own coordinates). Value is nil and the matched fields are
// absent when the nearest grid cell held no usable data.
type Sample struct {
	Variable   string   `json:"variable"`
	Level      string   `json:"level,omitempty"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Value      *float64 `json:"value"`
	Units      string   `json:"units"`
	GridRow    *int     `json:"grid_row,omitempty"`
	GridCol    *int     `json:"grid_col,omitempty"`
	MatchedLat *float64 `json:"matched_lat,omitempty"`
	MatchedLon *float64 `json:"matched_lon,omitempty"`
}

// SamplePoint loads a variable and reads the value at the grid cell
// nearest to (lat, lon). The sample is recorded when storage is
// configured.
func (s *Service) SamplePoint(ctx context.Context, req Request, variable string, level grib.LevelSelector, lat, lon float64) (*Sample, error) {
	dv, err := s.LoadVariable(ctx, req, variable, level)
	if err != nil {
		return nil, err
	}

	sample := &Sample{
		Variable: variable,
		Level:    level.String(),
		Lat:      lat,
		Lon:      lon,
		Units:    dv.Descriptor.Units,
	}
	if p, ok := grid.SampleAt(toField(dv), lat, lon); ok {
		sample.Value = &p.Value
		sample.GridRow = &p.Row
		sample.GridCol = &p.Col
		sample.MatchedLat = &p.Lat
		sample.MatchedLon = &p.Lon
	}

	if s.samples != nil {
		date, _ := sources.NormalizeDate(req.Date)
		id, _ := s.registry.Lookup(req.Source)
		_, err := s.samples.StoreSample(&sqlite.SampleRecord{
			CreatedAt:  time.Now().UTC(),
			Source:     id,
			Date:       date,
			Hour:       req.Hour,
			Variable:   variable,
			Level:      sample.Level,
			Lat:        lat,
			Lon:        lon,
			Value:      sample.Value,
			Units:      sample.Units,
			GridRow:    sample.GridRow,
			GridCol:    sample.GridCol,
			MatchedLat: sample.MatchedLat,
			MatchedLon: sample.MatchedLon,
		})
		if err != nil {
			s.logger.Warn("Failed to store point sample", logger.Error(err))
		}
	}

	return sample, nil
}

func toField(dv *grib.DecodedVariable) grid.Field {
	return grid.Field{
		Values:     dv.Values,
		Latitudes:  dv.Coordinates.LatGrid,
		Longitudes: dv.Coordinates.LonGrid,
	}
}
