package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pv-sizing/internal/log"
	"pv-sizing/internal/model"
)

const defaultPVGISBaseURL = "https://re.jrc.ec.europa.eu/api/v5_2"

// PVGISClient fetches hourly radiation series from the PVGIS API.
type PVGISClient struct {
	BaseURL string
	Client  *http.Client
	// Cache overrides the process cache from GetCache when set.
	Cache *ResponseCache
}

// NewPVGISClient creates a client. An empty baseURL selects the public v5.2 API.
func NewPVGISClient(baseURL string) *PVGISClient {
	if baseURL == "" {
		baseURL = defaultPVGISBaseURL
	}
	return &PVGISClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SeriesParams selects a site, a year range and the module plane.
// Angle is the tilt from horizontal; Aspect is the azimuth in PVGIS
// convention (0 = south, 90 = west, -90 = east).
type SeriesParams struct {
	Lat       float64 `yaml:"lat" json:"lat"`
	Lon       float64 `yaml:"lon" json:"lon"`
	StartYear int     `yaml:"start_year" json:"start_year"`
	EndYear   int     `yaml:"end_year" json:"end_year"`
	Angle     float64 `yaml:"angle" json:"angle"`
	Aspect    float64 `yaml:"aspect" json:"aspect"`
}

func (p SeriesParams) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat %v out of range", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("lon %v out of range", p.Lon)
	}
	if p.StartYear == 0 || p.EndYear == 0 {
		return fmt.Errorf("start_year and end_year are required")
	}
	if p.StartYear > p.EndYear {
		return fmt.Errorf("start_year must not be after end_year")
	}
	if p.Angle < 0 || p.Angle > 90 {
		return fmt.Errorf("angle %v out of range [0, 90]", p.Angle)
	}
	if p.Aspect < -180 || p.Aspect > 180 {
		return fmt.Errorf("aspect %v out of range [-180, 180]", p.Aspect)
	}
	return nil
}

// PVGISError is a non-200 answer from the API.
type PVGISError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *PVGISError) Error() string {
	return e.Message
}

// SeriesURL builds the seriescalc request for p.
func (c *PVGISClient) SeriesURL(p SeriesParams) (string, error) {
	u, err := url.Parse(c.BaseURL + "/seriescalc")
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	q.Set("startyear", strconv.Itoa(p.StartYear))
	q.Set("endyear", strconv.Itoa(p.EndYear))
	q.Set("angle", strconv.FormatFloat(p.Angle, 'f', -1, 64))
	q.Set("aspect", strconv.FormatFloat(p.Aspect, 'f', -1, 64))
	q.Set("components", "1")
	q.Set("outputformat", "csv")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchSeriesCSV downloads the raw hourly CSV for p.
//
// Responses are cached in c.Cache, or in the process cache when
// ENABLE_PVGIS_CACHE=true outside production.
func (c *PVGISClient) FetchSeriesCSV(ctx context.Context, p SeriesParams) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cache := c.Cache
	if cache == nil {
		cache = GetCache()
	}
	key := GenerateCacheKey(p)
	if cached, found := cache.Get(key); found {
		log.Infof("[PVGIS] Cache hit: %d bytes (lat=%.4f, lon=%.4f, years=%d-%d)",
			len(cached), p.Lat, p.Lon, p.StartYear, p.EndYear)
		return cached, nil
	}

	reqURL, err := c.SeriesURL(p)
	if err != nil {
		return nil, err
	}
	log.Infof("[PVGIS] Request: GET %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Warnf("[PVGIS] Request failed: %v (duration: %v)", err, duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	log.Infof("[PVGIS] Response: %d (duration: %v, bytes: %d)", resp.StatusCode, duration, len(body))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &PVGISError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    "PVGIS rate limit exceeded",
		}
	default:
		return nil, &PVGISError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    pvgisMessage(resp.StatusCode, body),
		}
	}

	cache.Set(key, body)
	return body, nil
}

// Series downloads and parses the hourly series for p.
func (c *PVGISClient) Series(ctx context.Context, p SeriesParams) (model.IrradianceSeries, error) {
	body, err := c.FetchSeriesCSV(ctx, p)
	if err != nil {
		return nil, err
	}
	series, err := ParsePVGISCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse pvgis response: %w", err)
	}
	log.Infof("[PVGIS] Success: %d hourly records (lat=%.4f, lon=%.4f)", len(series), p.Lat, p.Lon)
	return series, nil
}

// pvgisMessage extracts the message of a JSON error body.
func pvgisMessage(status int, body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API returned status %d", status)
}
