package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/battery"
	"pv-sizing/internal/config"
	"pv-sizing/internal/data"
	"pv-sizing/internal/log"
	"pv-sizing/internal/model"
	"pv-sizing/internal/report"
	"pv-sizing/internal/sizing"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "project":
		cmdProject(os.Args[2:])
	case "battery":
		cmdBattery(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli project --config examples/scenario.yaml --out results [--png]")
	fmt.Println("  cli battery --daily-wh 10000")
	fmt.Println("  cli battery --config examples/scenario.yaml")
	fmt.Println("  cli sweep --config examples/scenario.yaml --min 2 --max 20 --step 2")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - project writes ledger.csv and cashflow.csv under --out")
	fmt.Println("  - irradiance.source: pvgis downloads the series; set PVGIS_BASE_URL to override the API")
}

func cmdProject(args []string) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	cfgPath := fs.String("config", "examples/scenario.yaml", "path to scenario YAML")
	outDir := fs.String("out", "results", "output directory for ledger and cashflow CSVs")
	png := fs.Bool("png", false, "also render daily and cashflow charts as PNG")
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	initLog(*debug)
	defer log.Sync()

	cfg, in := loadScenario(*cfgPath)
	res, err := sizing.New().Run(in)
	if err != nil {
		log.Fatalf("projection: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create %s: %v", *outDir, err)
	}
	ledgerPath := filepath.Join(*outDir, "ledger.csv")
	if err := sizing.WriteLedgerCSV(ledgerPath, res.Ledger); err != nil {
		log.Fatalf("write ledger: %v", err)
	}
	cashflowPath := filepath.Join(*outDir, "cashflow.csv")
	if err := sizing.WriteCashflowCSV(cashflowPath, res.Projection); err != nil {
		log.Fatalf("write cashflow: %v", err)
	}
	if *png {
		load, prod := res.DailyProfiles()
		for _, kind := range []string{report.KindDaily, report.KindCashflow} {
			img, err := report.Render(kind, load, prod, res.Projection.Rows)
			if err != nil {
				log.Fatalf("render %s chart: %v", kind, err)
			}
			if err := report.WritePNG(filepath.Join(*outDir, kind+".png"), img); err != nil {
				log.Fatalf("write %s chart: %v", kind, err)
			}
		}
	}

	s := res.Summary()
	fmt.Printf("panels=%d peak_kw=%.2f investment=%.2f\n", cfg.Panels, s.PeakPowerKW, s.InitialInvestment)
	fmt.Printf("load_kwh=%.1f production_kwh=%.1f imported_kwh=%.1f exported_kwh=%.1f\n",
		s.LoadKWh, s.ProductionKWh, s.ImportedKWh, s.ExportedKWh)
	fmt.Printf("cost_current=%.2f cost_with_pv=%.2f compensation=%.2f savings=%.2f\n",
		s.CostCurrent, s.CostWithPV, s.Compensation, s.Savings)
	fmt.Printf("npv=%.2f irr=%s payback_year=%s\n", s.NPV, fmtIRR(s.IRR), fmtYear(s.PaybackYear))
	if s.Battery != nil {
		fmt.Printf("battery: parallel=%d series=%d total=%d (%.1f Ah)\n",
			s.Battery.Parallel, s.Battery.Series, s.Battery.TotalBatteries, s.Battery.TotalAh)
	}
	fmt.Printf("wrote %s and %s\n", ledgerPath, cashflowPath)
}

func cmdBattery(args []string) {
	fs := flag.NewFlagSet("battery", flag.ExitOnError)
	dailyWh := fs.Float64("daily-wh", 0, "daily consumption in Wh")
	cfgPath := fs.String("config", "", "scenario YAML; its load profile and battery block are used")
	_ = fs.Parse(args)

	initLog(false)
	defer log.Sync()

	bank := model.DefaultBatteryBank()
	wh := *dailyWh
	if *cfgPath != "" {
		cfg, in := loadScenario(*cfgPath)
		if b := cfg.Bank(); b != nil {
			bank = *b
		}
		if wh == 0 {
			in.Battery = nil
			res, err := sizing.New().Run(in)
			if err != nil {
				log.Fatalf("projection: %v", err)
			}
			wh = res.DailyLoadWh
		}
	}
	if wh <= 0 {
		fmt.Fprintln(os.Stderr, "battery: --daily-wh or --config is required")
		os.Exit(2)
	}

	s, err := battery.Size(wh, bank)
	if err != nil {
		log.Fatalf("battery sizing: %v", err)
	}
	fmt.Printf("daily_wh=%.1f daily_ah=%.2f adjusted_ah=%.2f total_ah=%.2f\n", s.DailyLoadWh, s.DailyAh, s.AdjustedAh, s.TotalAh)
	fmt.Printf("parallel=%d series=%d total_batteries=%d\n", s.Parallel, s.Series, s.TotalBatteries)
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	cfgPath := fs.String("config", "examples/scenario.yaml", "path to scenario YAML")
	minN := fs.Int("min", 1, "smallest panel count")
	maxN := fs.Int("max", 20, "largest panel count")
	step := fs.Int("step", 1, "panel count step")
	workers := fs.Int("workers", 0, "parallel runs (0 = GOMAXPROCS)")
	_ = fs.Parse(args)

	initLog(false)
	defer log.Sync()

	cfg, in := loadScenario(*cfgPath)
	points, err := analysis.Sweep(context.Background(), in, analysis.Options{
		Min:   *minN,
		Max:   *maxN,
		Step:  *step,
		Limit: *workers,
	}, cfg.InitialInvestmentFor)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	ranked := analysis.RankByNPV(points)
	fmt.Printf("%-4s %-7s %-8s %-12s %-12s %-10s %-8s %-8s\n", "rank", "panels", "peak_kw", "investment", "npv", "irr", "self%", "cover%")
	for i, p := range ranked {
		fmt.Printf(
			"%-4d %-7d %-8.2f %-12.2f %-12.2f %-10s %-8.1f %-8.1f\n",
			i+1,
			p.Panels,
			p.Summary.PeakPowerKW,
			p.Summary.InitialInvestment,
			p.Summary.NPV,
			fmtIRR(p.Summary.IRR),
			p.SelfConsumption*100,
			p.Coverage*100,
		)
	}
}

func initLog(debug bool) {
	if err := log.Init(debug); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
}

// loadScenario reads and validates a scenario and loads its inputs,
// downloading from PVGIS when the scenario asks for it.
func loadScenario(path string) (*config.Config, sizing.Inputs) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	var client *data.PVGISClient
	if cfg.Irradiance.Source == data.SourcePVGIS {
		client = data.NewPVGISClient(os.Getenv("PVGIS_BASE_URL"))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	in, err := cfg.ToInputs(ctx, client)
	if err != nil {
		log.Fatalf("inputs: %v", err)
	}
	return cfg, in
}

func fmtIRR(irr *float64) string {
	if irr == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *irr*100)
}

func fmtYear(y *int) string {
	if y == nil {
		return "never"
	}
	return fmt.Sprintf("%d", *y)
}
