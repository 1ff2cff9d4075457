package sizing

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"pv-sizing/internal/finance"
)

// WriteLedgerCSV writes the hourly typical-year ledger to path.
func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	return writeFile(path, func(w io.Writer) error { return EncodeLedgerCSV(w, ledger) })
}

// EncodeLedgerCSV writes the ledger as CSV to w.
func EncodeLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"time",
		"AE_kWh",
		"Irr",
		"T2m",
		"T_cell",
		"PR",
		"kWh",
		"Wh",
		"MWh",
		"balance_kWh",
		"imported_kWh",
		"exported_kWh",
		"buy_price",
		"import_cost",
		"export_credit",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(r.LoadKWh),
			fmtFloat(r.Irr),
			fmtFloat(r.T2m),
			fmtFloat(r.TCell),
			fmtFloat(r.PR),
			fmtFloat(r.ProductionKWh),
			fmtFloat(r.ProductionKWh * 1e3),
			fmtFloat(r.ProductionKWh / 1e3),
			fmtFloat(r.BalanceKWh),
			fmtFloat(r.ImportedKWh),
			fmtFloat(r.ExportedKWh),
			fmtFloat(r.BuyPrice),
			fmtFloat(r.ImportCost),
			fmtFloat(r.ExportCredit),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteCashflowCSV writes the yearly cashflow table to path.
func WriteCashflowCSV(path string, p *finance.Projection) error {
	return writeFile(path, func(w io.Writer) error { return EncodeCashflowCSV(w, p) })
}

// EncodeCashflowCSV writes the cashflow table as CSV to w.
func EncodeCashflowCSV(out io.Writer, p *finance.Projection) error {
	w := csv.NewWriter(out)
	header := []string{
		"Year",
		"Initial investment",
		"Operation and maintenance",
		"Savings",
		"Cashflow",
		"Accumulated cashflow",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range p.Rows {
		row := []string{
			strconv.Itoa(r.Year),
			fmtFloat(r.Initial),
			fmtFloat(r.OM),
			fmtFloat(r.Savings),
			fmtFloat(r.Cashflow),
			fmtFloat(r.Accumulated),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateTime)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
