package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pv-sizing/internal/model"
	"pv-sizing/internal/tariff"
	"pv-sizing/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pvgisSample = `Latitude (decimal degrees):	40.416
Longitude (decimal degrees):	-3.703
Elevation (m):	657
Radiation database:	PVGIS-SARAH2


Slope: 35 deg.
Azimuth: 0 deg.
time,Gb(i),Gd(i),Gr(i),H_sun,T2m,WS10m,Int
20160228:2310,0.0,0.0,0.0,0.0,3.1,1.2,0.0
20160229:1210,500.0,100.0,10.0,30.0,12.0,2.0,0.0
20160301:1210,610.5,120.25,9.0,35.1,14.5,3.4,0.0

Gb(i): Beam (direct) irradiance on the inclined plane (plane of array) (W/m2)
Gd(i): Diffuse irradiance on the inclined plane (plane of array) (W/m2)
`

func TestParsePVGISCSV(t *testing.T) {
	series, err := ParsePVGISCSV(strings.NewReader(pvgisSample))
	require.NoError(t, err)
	require.Len(t, series, 2, "leap day row must be dropped")

	r := series[1]
	assert.Equal(t, time.Date(2016, 3, 1, 12, 10, 0, 0, time.UTC), r.Time)
	assert.Equal(t, 610.5, r.Direct)
	assert.Equal(t, 120.25, r.Diffuse)
	assert.Equal(t, 9.0, r.Reflected)
	assert.Equal(t, 14.5, r.T2m)
	assert.Equal(t, 3.4, r.WindSpeed)
	assert.InDelta(t, 739.75, r.Irr(), 1e-12)
}

func TestParsePVGISCSV_Errors(t *testing.T) {
	_, err := ParsePVGISCSV(strings.NewReader("no header here\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ParsePVGISCSV(strings.NewReader("time,Gb(i),Gd(i),T2m\n20160101:0010,1,2,3\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ParsePVGISCSV(strings.NewReader("time,Gb(i),Gd(i),Gr(i),T2m\n2016-01-01:0010,1,2,3,4\n"))
	assert.ErrorIs(t, err, timeseries.ErrMalformedIndex)

	_, err = ParsePVGISCSV(strings.NewReader("time,Gb(i),Gd(i),Gr(i),T2m,WS10m\n20160101:0010,1,2,3,4,calm\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `WS10m: invalid value "calm"`)
}

func TestParseLoadCSV(t *testing.T) {
	t.Run("named column", func(t *testing.T) {
		s, err := ParseLoadCSV(strings.NewReader("time,consumo\n2019-01-01 00:00:00,0.5\n2019-01-01 01:00:00,0.25\n"))
		require.NoError(t, err)
		assert.Equal(t, "consumo", s.Name)
		assert.Equal(t, []float64{0.5, 0.25}, s.Values())
	})
	t.Run("unnamed column", func(t *testing.T) {
		s, err := ParseLoadCSV(strings.NewReader("time,\n2019-01-01 00:00:00,0.5\n"))
		require.NoError(t, err)
		assert.Equal(t, model.LoadColumn, s.Name)
	})
	t.Run("too many columns", func(t *testing.T) {
		_, err := ParseLoadCSV(strings.NewReader("time,a,b\n2019-01-01 00:00:00,1,2\n"))
		assert.ErrorIs(t, err, model.ErrTooManyColumns)
	})
	t.Run("bad index", func(t *testing.T) {
		_, err := ParseLoadCSV(strings.NewReader("time,a\nnot a date,1\n"))
		assert.ErrorIs(t, err, timeseries.ErrMalformedIndex)
	})
	t.Run("duplicate hour", func(t *testing.T) {
		_, err := ParseLoadCSV(strings.NewReader("time,a\n2019-01-01 00:00:00,1\n2019-01-01 00:00:00,1\n"))
		assert.ErrorIs(t, err, model.ErrUnordered)
	})
}

func TestParseDistributorLoadCSV(t *testing.T) {
	in := "CUPS;Fecha;Hora;AE_kWh;Metodo_obtencion\n" +
		"ES00;27/10/2019;1;0,120;R\n" +
		"ES00;27/10/2019;2;0,130;R\n" +
		"ES00;27/10/2019;24;0,300;R\n" +
		"ES00;27/10/2019;25;9,999;R\n" +
		"ES00;28/10/2019;1;1.234,5;R\n" +
		"0;0;0;0;0\n"
	s, err := ParseDistributorLoadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, s.Points, 4)

	day := time.Date(2019, 10, 27, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, s.Points[0].Time)
	assert.Equal(t, 0.3, s.Points[0].Value)
	assert.Equal(t, day.Add(time.Hour), s.Points[1].Time)
	assert.Equal(t, 0.12, s.Points[1].Value)
	assert.Equal(t, 1234.5, s.Points[3].Value)
	assert.Equal(t, model.LoadColumn, s.Name)
}

func TestParseDistributorLoadCSV_MissingColumn(t *testing.T) {
	_, err := ParseDistributorLoadCSV(strings.NewReader("Fecha;Valor\n01/01/2019;1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseTariffCSV(t *testing.T) {
	var b strings.Builder
	b.WriteString("hour,price\n")
	for h := 0; h < 24; h++ {
		b.WriteString(time.Date(2023, 5, 1, (h+1)%24, 0, 0, 0, time.UTC).Format(time.DateTime))
		b.WriteString(",0.")
		b.WriteString(strings.Repeat("1", 1+h%3))
		b.WriteString("\n")
	}
	c, err := ParseTariffCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 1, c.StartHour)
	assert.Len(t, c.Prices, 24)
	assert.Equal(t, 0.1, c.Prices[0])

	_, err = ParseTariffCSV(strings.NewReader("hour,price\n0,0.1\n1,0.2\n"))
	assert.ErrorIs(t, err, tariff.ErrCurveLength)
}

func TestFetchIrradiance_Unsupported(t *testing.T) {
	_, err := FetchIrradiance(context.Background(), IrradianceSource{Kind: SourcePVGIS}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = FetchIrradiance(context.Background(), IrradianceSource{Kind: "meteonorm"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestFetchIrradiance_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irr.csv")
	require.NoError(t, os.WriteFile(path, []byte(pvgisSample), 0o644))
	series, err := FetchIrradiance(context.Background(), IrradianceSource{Kind: SourceFile, Path: path}, nil)
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestPVGISClient_Series(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/seriescalc", r.URL.Path)
		_, _ = w.Write([]byte(pvgisSample))
	}))
	defer srv.Close()

	c := NewPVGISClient(srv.URL)
	series, err := c.Series(context.Background(), SeriesParams{Lat: 40.416, Lon: -3.703, StartYear: 2016, EndYear: 2016, Angle: 35})
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Contains(t, gotQuery, "components=1")
	assert.Contains(t, gotQuery, "outputformat=csv")
	assert.Contains(t, gotQuery, "startyear=2016")
}

func TestPVGISClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Location over the sea", "status": 400}`))
	}))
	defer srv.Close()

	_, err := NewPVGISClient(srv.URL).Series(context.Background(), SeriesParams{Lat: 0, Lon: 0, StartYear: 2016, EndYear: 2016})
	var pe *PVGISError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "Location over the sea", pe.Message)
}

func TestPVGISClient_Cache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(pvgisSample))
	}))
	defer srv.Close()

	c := NewPVGISClient(srv.URL)
	c.Cache = NewResponseCache(time.Hour)
	p := SeriesParams{Lat: 40.416, Lon: -3.703, StartYear: 2016, EndYear: 2016, Angle: 35}
	first, err := c.FetchSeriesCSV(context.Background(), p)
	require.NoError(t, err)
	second, err := c.FetchSeriesCSV(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}

func TestSeriesParams_Validate(t *testing.T) {
	assert.Error(t, SeriesParams{Lat: 91, StartYear: 2016, EndYear: 2016}.Validate())
	assert.Error(t, SeriesParams{StartYear: 2017, EndYear: 2016}.Validate())
	assert.NoError(t, SeriesParams{Lat: 40, Lon: -3, StartYear: 2016, EndYear: 2020, Angle: 30, Aspect: -20}.Validate())
}

func TestResponseCache(t *testing.T) {
	c := NewResponseCache(time.Hour)
	key := GenerateCacheKey(SeriesParams{Lat: 1, Lon: 2, StartYear: 2016, EndYear: 2017})
	_, ok := c.Get(key)
	assert.False(t, ok)
	c.Set(key, []byte("x"))
	body, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), body)
	c.Clear()
	_, ok = c.Get(key)
	assert.False(t, ok)

	var nilCache *ResponseCache
	nilCache.Set(key, []byte("x"))
	_, ok = nilCache.Get(key)
	assert.False(t, ok)
}
