package sizingtest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pv-sizing/internal/model"
	"pv-sizing/internal/timeseries"
)

// WriteLoadCSV writes s in the generic "time,AE_kWh" layout.
func WriteLoadCSV(path string, s model.LoadSeries) error {
	return writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintf(w, "time,%s\n", s.Name)
		for _, p := range s.Points {
			fmt.Fprintf(w, "%s,%g\n", p.Time.Format(time.DateTime), p.Value)
		}
	})
}

// WritePVGISCSV writes s the way the PVGIS seriescalc endpoint does,
// including the metadata header and legend footer.
func WritePVGISCSV(path string, s model.IrradianceSeries) error {
	return writeLines(path, func(w *bufio.Writer) {
		fmt.Fprintln(w, "Latitude (decimal degrees):\t40.416")
		fmt.Fprintln(w, "Longitude (decimal degrees):\t-3.703")
		fmt.Fprintln(w, "Elevation (m):\t657")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "time,Gb(i),Gd(i),Gr(i),H_sun,T2m,WS10m,Int")
		for _, r := range s {
			fmt.Fprintf(w, "%s,%g,%g,%g,0.0,%g,%g,0.0\n",
				r.Time.Format(timeseries.PVGISLayout), r.Direct, r.Diffuse, r.Reflected, r.T2m, r.WindSpeed)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Gb(i): Beam (direct) irradiance on the inclined plane (plane of array) (W/m2)")
	})
}

// WriteScenario writes a full-year load and irradiance pair into dir and
// returns their file names.
func WriteScenario(dir string) (loadFile, irrFile string, err error) {
	loadFile, irrFile = "load.csv", "pvgis.csv"
	if err := WriteLoadCSV(filepath.Join(dir, loadFile), Load(2019)); err != nil {
		return "", "", err
	}
	if err := WritePVGISCSV(filepath.Join(dir, irrFile), Irradiance(2019, 2020)); err != nil {
		return "", "", err
	}
	return loadFile, irrFile, nil
}

func writeLines(path string, fill func(w *bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
