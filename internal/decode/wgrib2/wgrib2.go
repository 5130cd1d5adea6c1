// Package wgrib2 decodes GRIB2 messages by driving the external wgrib2
// utility over a staged temporary file.
package wgrib2

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/wxslice/wxslice/internal/decode"
	"github.com/wxslice/wxslice/pkg/logger"
)

// Decoder stages a raw GRIB2 message to a temporary file and asks wgrib2
// for a CSV dump of the field. It implements decode.Decoder.
type Decoder struct {
	command string
	logger  *logger.Logger
}

// New creates a Decoder driving the given wgrib2 executable. An empty
// command falls back to "wgrib2" in the system path.
func New(command string, log *logger.Logger) *Decoder {
	if command == "" {
		command = "wgrib2"
	}
	return &Decoder{command: command, logger: log.Named("wgrib2")}
}

// Decode writes the message to a temporary .grb2 file, runs wgrib2 -csv
// on it, and rebuilds the grid from the dump. The staging file is
// removed on every exit path.
func (d *Decoder) Decode(ctx context.Context, raw []byte) (*decode.Field, error) {
	tmp, err := os.CreateTemp("", "wxslice-*.grb2")
	if err != nil {
		return nil, fmt.Errorf("staging grib message: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("staging grib message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("staging grib message: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.command, tmpName, "-csv", "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if strings.Contains(msg, "JPEG") || strings.Contains(msg, "Functionality not enabled") {
			return nil, fmt.Errorf("%w: %s", decode.ErrUnsupportedPacking, strings.TrimSpace(msg))
		}
		d.logger.Warn("wgrib2 failed", logger.Error(err), logger.String("stderr", strings.TrimSpace(msg)))
		return nil, fmt.Errorf("wgrib2: %w", err)
	}

	field, err := parseCSV(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("wgrib2 output: %w", err)
	}
	d.logger.Debug("decoded message",
		logger.Int("rows", len(field.Values)),
		logger.Int("bytes", len(raw)))
	return field, nil
}

// parseCSV rebuilds a rectilinear grid from wgrib2 -csv output. Each
// line is "time0","time1","var","level",lon,lat,value; points arrive in
// grid scan order, so a change in latitude starts a new row.
func parseCSV(out []byte) (*decode.Field, error) {
	var (
		field   decode.Field
		curLat  float64
		haveRow bool
		vals    []float64
		lats    []float64
		lons    []float64
	)
	flush := func() {
		if haveRow {
			field.Values = append(field.Values, vals)
			field.Latitudes = append(field.Latitudes, lats)
			field.Longitudes = append(field.Longitudes, lons)
			vals, lats, lons = nil, nil, nil
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 7 {
			continue
		}
		lon, err := strconv.ParseFloat(fields[len(fields)-3], 64)
		if err != nil {
			continue
		}
		lat, err := strconv.ParseFloat(fields[len(fields)-2], 64)
		if err != nil {
			continue
		}
		val, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		if !haveRow || lat != curLat {
			flush()
			curLat = lat
			haveRow = true
		}
		vals = append(vals, val)
		lats = append(lats, lat)
		lons = append(lons, lon)
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(field.Values) == 0 {
		return nil, fmt.Errorf("no grid points in dump")
	}
	return &field, nil
}
