// Package api exposes the weather service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wxslice/wxslice/internal/config"
	"github.com/wxslice/wxslice/internal/grib"
	"github.com/wxslice/wxslice/internal/reconcile"
	"github.com/wxslice/wxslice/internal/sources"
	"github.com/wxslice/wxslice/internal/storage/sqlite"
	"github.com/wxslice/wxslice/internal/wx"
	"github.com/wxslice/wxslice/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	wxService       *wx.Service
	registry        sources.Registry
	config          *config.Config
	logger          *logger.Logger
	snapshotStorage *sqlite.SnapshotStorage
	sampleStorage   *sqlite.SampleStorage
}

// NewHandler creates a new API handler. The storage arguments may be
// nil when persistence is disabled.
func NewHandler(wxService *wx.Service, registry sources.Registry, cfg *config.Config, log *logger.Logger, snapshotStorage *sqlite.SnapshotStorage, sampleStorage *sqlite.SampleStorage) *Handler {
	return &Handler{
		wxService:       wxService,
		registry:        registry,
		config:          cfg,
		logger:          log.Named("api-handler"),
		snapshotStorage: snapshotStorage,
		sampleStorage:   sampleStorage,
	}
}

// GetHealth returns a liveness probe response
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetConfig returns the public configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	// Only public values; paths and overrides stay server-side
	publicConfig := map[string]interface{}{
		"fetch": map[string]interface{}{
			"timeout_seconds": h.config.Fetch.TimeoutSeconds,
			"default_source":  h.config.Fetch.DefaultSource,
		},
		"storage": map[string]interface{}{
			"enabled": h.config.Storage.Enabled,
		},
	}
	WriteJSON(w, http.StatusOK, publicConfig)
}

// GetSources lists the configured data sources
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	type sourceInfo struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		HasPressureLevels bool   `json:"has_pressure_levels"`
		Default           bool   `json:"default"`
	}
	out := make([]sourceInfo, 0, len(h.registry))
	for _, id := range h.registry.IDs() {
		src := h.registry[id]
		out = append(out, sourceInfo{
			ID:                id,
			Name:              src.Name,
			HasPressureLevels: src.HasPressureLevels,
			Default:           id == h.config.Fetch.DefaultSource,
		})
	}
	WriteJSON(w, http.StatusOK, out)
}

// GetVariables lists the variable codes a dataset offers. With a level
// query parameter the list is restricted to that level.
func (h *Handler) GetVariables(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	var codes []string
	var err error
	if r.URL.Query().Get("level") != "" {
		level, ok := h.parseLevel(w, r)
		if !ok {
			return
		}
		codes, err = h.wxService.VariablesForLevel(r.Context(), req, level)
	} else {
		codes, err = h.wxService.AvailableVariables(r.Context(), req)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"variables": codes})
}

// GetVariableLevels lists the pressure levels a dataset offers for one
// variable
func (h *Handler) GetVariableLevels(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	variable := chi.URLParam(r, "code")
	levels, err := h.wxService.PressureLevels(r.Context(), req, variable)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"variable":    variable,
		"levels":      levels,
		"level_names": reconcile.LevelNames(levels),
	})
}

// GetData loads one variable field at one level
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	variable := r.URL.Query().Get("variable")
	if variable == "" {
		http.Error(w, "variable is required", http.StatusBadRequest)
		return
	}
	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	dv, err := h.wxService.LoadVariable(r.Context(), req, variable, level)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dv)
}

// GetComparison reconciles a near-surface dataset against a
// pressure-level dataset
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	hour, ok := h.parseHour(w, r)
	if !ok {
		return
	}
	surfaceReq := wx.Request{Source: q.Get("surface_source"), Date: date, Hour: hour}
	pressureReq := wx.Request{Source: q.Get("pressure_source"), Date: date, Hour: hour}
	if pressureReq.Source == "" {
		pressureReq.Source = "3DRTMA"
	}

	cmp, err := h.wxService.Compare(r.Context(), surfaceReq, pressureReq)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cmp)
}

// GetDiff returns pressure-level minus near-surface for one variable
func (h *Handler) GetDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	variable := q.Get("variable")
	if variable == "" {
		http.Error(w, "variable is required", http.StatusBadRequest)
		return
	}
	pressureLevel, err := strconv.Atoi(q.Get("pressure_level"))
	if err != nil {
		http.Error(w, "invalid pressure_level", http.StatusBadRequest)
		return
	}
	hour, ok := h.parseHour(w, r)
	if !ok {
		return
	}
	date := q.Get("date")
	surfaceReq := wx.Request{Source: q.Get("surface_source"), Date: date, Hour: hour}
	pressureReq := wx.Request{Source: q.Get("pressure_source"), Date: date, Hour: hour}
	if pressureReq.Source == "" {
		pressureReq.Source = "3DRTMA"
	}

	diff, err := h.wxService.DiffVariable(r.Context(), surfaceReq, pressureReq, variable, pressureLevel)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, diff)
}

// GetSample reads the value at the grid cell nearest to a point
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	variable := q.Get("variable")
	if variable == "" {
		http.Error(w, "variable is required", http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		http.Error(w, "invalid lat", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		http.Error(w, "invalid lon", http.StatusBadRequest)
		return
	}
	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	sample, err := h.wxService.SamplePoint(r.Context(), req, variable, level, lat, lon)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sample)
}

// GetAvailability probes whether a dataset has been published
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	available, err := h.wxService.CheckAvailability(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"available": available})
}

// GetSnapshots returns stored comparison snapshots. With a date query
// parameter the listing is restricted to that analysis date and hour.
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshotStorage == nil {
		http.Error(w, "storage is not enabled", http.StatusNotImplemented)
		return
	}
	limit, offset := parsePagination(r)

	var records []*sqlite.SnapshotRecord
	var err error
	if date := r.URL.Query().Get("date"); date != "" {
		hour, ok := h.parseHour(w, r)
		if !ok {
			return
		}
		records, err = h.snapshotStorage.GetSnapshotsByDate(date, hour, limit)
	} else {
		records, err = h.snapshotStorage.GetSnapshots(limit, offset)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"snapshots": records})
}

// GetSamples returns stored point samples
func (h *Handler) GetSamples(w http.ResponseWriter, r *http.Request) {
	if h.sampleStorage == nil {
		http.Error(w, "storage is not enabled", http.StatusNotImplemented)
		return
	}
	limit, offset := parsePagination(r)
	records, err := h.sampleStorage.GetSamples(limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"samples": records})
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (wx.Request, bool) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return wx.Request{}, false
	}
	hour, ok := h.parseHour(w, r)
	if !ok {
		return wx.Request{}, false
	}
	return wx.Request{
		Source: q.Get("source"),
		Date:   date,
		Hour:   hour,
	}, true
}

func (h *Handler) parseHour(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("hour")
	if raw == "" {
		return 12, true
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		http.Error(w, "invalid hour", http.StatusBadRequest)
		return 0, false
	}
	return hour, true
}

func (h *Handler) parseLevel(w http.ResponseWriter, r *http.Request) (grib.LevelSelector, bool) {
	raw := r.URL.Query().Get("level")
	switch raw {
	case "":
		return grib.Unspecified(), true
	case "surface", "sfc":
		return grib.Surface(), true
	}
	mb, err := strconv.Atoi(raw)
	if err != nil || mb < 0 {
		http.Error(w, "invalid level: want 'surface' or a pressure in mb", http.StatusBadRequest)
		return grib.LevelSelector{}, false
	}
	// Level 0 is how the levels listing reports a surface record
	if mb == 0 {
		return grib.Surface(), true
	}
	return grib.Pressure(mb), true
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// writeError maps service errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var notFound *grib.VariableNotFoundError
	if errors.As(err, &notFound) {
		WriteJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":       notFound.Error(),
			"levels_seen": notFound.LevelsSeen,
		})
		return
	}
	if grib.IsUnsupportedCompression(err) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	var idxErr *grib.IndexFetchError
	var rangeErr *grib.PartialFetchError
	if errors.As(err, &idxErr) || errors.As(err, &rangeErr) {
		h.logger.Error("Upstream fetch failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.logger.Error("Request failed", logger.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
