package data

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pv-sizing/internal/model"
	"pv-sizing/internal/timeseries"
)

// Irradiance source kinds.
const (
	SourceFile  = "file"
	SourcePVGIS = "pvgis"
)

var ErrUnsupportedSource = errors.New("unsupported irradiance source")

// IrradianceSource says where the weather series comes from.
type IrradianceSource struct {
	Kind  string
	Path  string
	PVGIS SeriesParams
}

// FetchIrradiance resolves src to a series. A pvgis source with a nil client
// is treated as disabled.
func FetchIrradiance(ctx context.Context, src IrradianceSource, client *PVGISClient) (model.IrradianceSeries, error) {
	switch src.Kind {
	case "", SourceFile:
		if src.Path == "" {
			return nil, errors.New("irradiance file path is required")
		}
		return LoadIrradianceFile(src.Path)
	case SourcePVGIS:
		if client == nil {
			return nil, fmt.Errorf("pvgis fetch is disabled: %w", ErrUnsupportedSource)
		}
		return client.Series(ctx, src.PVGIS)
	default:
		return nil, fmt.Errorf("%q: %w", src.Kind, ErrUnsupportedSource)
	}
}

// LoadIrradianceFile reads a PVGIS hourly CSV export from disk.
func LoadIrradianceFile(path string) (model.IrradianceSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePVGISCSV(bytes.NewReader(raw))
}

// ParsePVGISCSV reads a PVGIS hourly export with radiation components.
// Metadata lines before the "time," header and the legend after the data
// block are skipped. Rows on 29 February are dropped.
func ParsePVGISCSV(r io.Reader) (model.IrradianceSeries, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var header []string
	line := 0
	for sc.Scan() {
		line++
		if strings.HasPrefix(strings.TrimSpace(sc.Text()), "time,") {
			header = strings.Split(strings.TrimSpace(sc.Text()), ",")
			break
		}
	}
	if header == nil {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no \"time,\" header found: %w", ErrMissingColumn)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	required := []string{"Gb(i)", "Gd(i)", "Gr(i)", "T2m"}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingColumn)
		}
	}
	iWS, hasWS := idx["WS10m"]

	var stamps []string
	var rows [][]string
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		// The data block ends at the first blank or legend line.
		if text == "" || text[0] < '0' || text[0] > '9' {
			break
		}
		rec := strings.Split(text, ",")
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, want %d", line, len(rec), len(header))
		}
		stamps = append(stamps, rec[0])
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	times, err := timeseries.ParseIndex(stamps, timeseries.PVGISLayout)
	if err != nil {
		return nil, err
	}

	out := make(model.IrradianceSeries, 0, len(rows))
	for i, rec := range rows {
		if timeseries.IsLeapDay(times[i]) {
			continue
		}
		var vals [4]float64
		for k, name := range required {
			v, err := strconv.ParseFloat(rec[idx[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d %s: invalid value %q", i, name, rec[idx[name]])
			}
			vals[k] = v
		}
		r := model.Irradiance{
			Time:      times[i],
			Direct:    vals[0],
			Diffuse:   vals[1],
			Reflected: vals[2],
			T2m:       vals[3],
		}
		if hasWS {
			ws, err := strconv.ParseFloat(rec[iWS], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d WS10m: invalid value %q", i, rec[iWS])
			}
			r.WindSpeed = ws
		}
		out = append(out, r)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
