package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pv-sizing/internal/data"
	"pv-sizing/internal/log"
)

func main() {
	var (
		lat        = flag.Float64("lat", 40.4168, "site latitude")
		lon        = flag.Float64("lon", -3.7038, "site longitude")
		startYear  = flag.Int("start-year", 2019, "first year of the series")
		endYear    = flag.Int("end-year", 2020, "last year of the series")
		angle      = flag.Float64("angle", 35, "module tilt from horizontal")
		aspect     = flag.Float64("aspect", 0, "module azimuth (0 = south, 90 = west, -90 = east)")
		outputPath = flag.String("output", "", "output file (default: ./data/pvgis_<lat>_<lon>.csv)")
		baseURL    = flag.String("base-url", os.Getenv("PVGIS_BASE_URL"), "PVGIS API base URL")
		check      = flag.Bool("check", true, "parse the download before saving it")
	)
	flag.Parse()

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	params := data.SeriesParams{
		Lat:       *lat,
		Lon:       *lon,
		StartYear: *startYear,
		EndYear:   *endYear,
		Angle:     *angle,
		Aspect:    *aspect,
	}
	if *outputPath == "" {
		*outputPath = filepath.Join("data", fmt.Sprintf("pvgis_%.4f_%.4f.csv", *lat, *lon))
	}

	client := data.NewPVGISClient(*baseURL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("Downloading hourly radiation for %.4f, %.4f (%d-%d, angle %.0f, aspect %.0f)\n",
		params.Lat, params.Lon, params.StartYear, params.EndYear, params.Angle, params.Aspect)
	body, err := client.FetchSeriesCSV(ctx, params)
	if err != nil {
		log.Fatalf("Failed to download series: %v", err)
	}

	if *check {
		series, err := data.ParsePVGISCSV(bytes.NewReader(body))
		if err != nil {
			log.Fatalf("Downloaded series does not parse: %v", err)
		}
		fmt.Printf("Parsed %d hourly rows\n", len(series))
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*outputPath, body, 0o644); err != nil {
		log.Fatalf("Failed to save series: %v", err)
	}
	fmt.Printf("Saved %d bytes to %s\n", len(body), *outputPath)
}
