package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"pv-sizing/internal/model"
	"pv-sizing/internal/timeseries"
)

// Load file formats.
const (
	LoadFormatGeneric     = "generic"
	LoadFormatDistributor = "distributor"
)

var ErrMissingColumn = errors.New("required column missing")

// LoadLoadFile reads a consumption file in the given format. An empty format
// is treated as generic.
func LoadLoadFile(path, format string) (model.LoadSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.LoadSeries{}, err
	}
	defer f.Close()

	switch format {
	case "", LoadFormatGeneric:
		return ParseLoadCSV(f)
	case LoadFormatDistributor:
		return ParseDistributorLoadCSV(f)
	default:
		return model.LoadSeries{}, fmt.Errorf("unknown load format %q", format)
	}
}

// ParseLoadCSV reads "time,<column>" rows. Exactly one value column is
// allowed; an unnamed column becomes AE_kWh.
func ParseLoadCSV(r io.Reader) (model.LoadSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return model.LoadSeries{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 2 {
		return model.LoadSeries{}, fmt.Errorf("%d value columns: %w", len(header)-1, model.ErrTooManyColumns)
	}
	if len(header) < 2 {
		return model.LoadSeries{}, fmt.Errorf("value column: %w", ErrMissingColumn)
	}

	var raw []string
	var vals []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d: invalid value %q", line, rec[1])
		}
		raw = append(raw, rec[0])
		vals = append(vals, v)
	}

	times, err := timeseries.ParseIndex(raw)
	if err != nil {
		return model.LoadSeries{}, err
	}
	pts := make([]model.Point, len(times))
	for i := range times {
		pts[i] = model.Point{Time: times[i], Value: vals[i]}
	}
	return model.NewLoadSeries(strings.TrimSpace(header[1]), pts)
}

// ParseDistributorLoadCSV reads a utility meter export: ';' separated,
// decimal comma, a Fecha (dd/mm/yyyy) column and a Hora column numbered 1..24
// (25 on the autumn daylight-saving day). Rows with Hora > 24 are dropped and
// Hora 24 is read as 00:00 of the same date.
func ParseDistributorLoadCSV(r io.Reader) (model.LoadSeries, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return model.LoadSeries{}, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	iDate, okDate := col["Fecha"]
	iHour, okHour := col["Hora"]
	iVal, okVal := col[model.LoadColumn]
	if !okVal {
		iVal, okVal = col["Consumo_kWh"]
	}
	if !okDate || !okHour || !okVal {
		return model.LoadSeries{}, fmt.Errorf("need Fecha, Hora and %s: %w", model.LoadColumn, ErrMissingColumn)
	}

	var pts []model.Point
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= iDate || len(rec) <= iHour || len(rec) <= iVal {
			continue
		}
		date := strings.TrimSpace(rec[iDate])
		if date == "" || date == "0" {
			continue
		}
		hour, err := strconv.Atoi(strings.TrimSpace(rec[iHour]))
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d: invalid Hora %q", line, rec[iHour])
		}
		if hour > 24 {
			continue
		}
		if hour == 24 {
			hour = 0
		}
		day, err := time.ParseInLocation("02/01/2006", date, time.UTC)
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d %q: %w", line, date, timeseries.ErrMalformedIndex)
		}
		v, err := parseDecimalComma(rec[iVal])
		if err != nil {
			return model.LoadSeries{}, fmt.Errorf("line %d: invalid value %q", line, rec[iVal])
		}
		pts = append(pts, model.Point{Time: day.Add(time.Duration(hour) * time.Hour), Value: v})
	}

	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	return model.NewLoadSeries(model.LoadColumn, pts)
}

func parseDecimalComma(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}
