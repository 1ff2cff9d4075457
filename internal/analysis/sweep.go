// Package analysis evaluates a scenario over a range of panel counts.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"pv-sizing/internal/log"
	"pv-sizing/internal/sizing"

	"golang.org/x/sync/errgroup"
)

// Point is one panel count of a sweep.
type Point struct {
	Panels  int            `json:"panels"`
	Summary sizing.Summary `json:"summary"`
	// SelfConsumption is the share of production used on site.
	SelfConsumption float64 `json:"self_consumption"`
	// Coverage is the share of load met by the array.
	Coverage float64 `json:"coverage"`
}

// PriceFunc returns the initial investment for a panel count.
type PriceFunc func(panels int) float64

// MaxRuns caps the number of panel counts a single sweep evaluates.
const MaxRuns = 200

var ErrTooManyRuns = errors.New("sweep range has too many runs")

// Options bound a sweep. Limit <= 0 uses GOMAXPROCS workers.
type Options struct {
	Min   int
	Max   int
	Step  int
	Limit int
}

func (o Options) Counts() ([]int, error) {
	step := o.Step
	if step == 0 {
		step = 1
	}
	if o.Min <= 0 || o.Max < o.Min || step < 0 {
		return nil, fmt.Errorf("invalid sweep range %d..%d step %d", o.Min, o.Max, o.Step)
	}
	if runs := (o.Max-o.Min)/step + 1; runs > MaxRuns {
		return nil, fmt.Errorf("%d runs for %d..%d step %d: %w", runs, o.Min, o.Max, step, ErrTooManyRuns)
	}
	out := make([]int, 0, (o.Max-o.Min)/step+1)
	for n := o.Min; n <= o.Max; n += step {
		out = append(out, n)
	}
	return out, nil
}

// Sweep runs base once per panel count, repricing the investment with price.
// Results come back in count order; the first failing run cancels the rest.
func Sweep(ctx context.Context, base sizing.Inputs, opts Options, price PriceFunc) ([]Point, error) {
	if price == nil {
		return nil, errors.New("price function is required")
	}
	counts, err := opts.Counts()
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]Point, len(counts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	engine := sizing.New()
	for i, n := range counts {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := base
			in.Array.Count = n
			in.Finance.InitialInvestment = price(n)
			res, err := engine.Run(in)
			if err != nil {
				return fmt.Errorf("%d panels: %w", n, err)
			}
			out[i] = newPoint(n, res.Summary())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debugw("sweep complete", "runs", len(out), "min", opts.Min, "max", opts.Max)
	return out, nil
}

func newPoint(n int, s sizing.Summary) Point {
	p := Point{Panels: n, Summary: s}
	if s.ProductionKWh > 0 {
		p.SelfConsumption = s.SelfConsumedKWh / s.ProductionKWh
	}
	if s.LoadKWh > 0 {
		p.Coverage = s.SelfConsumedKWh / s.LoadKWh
	}
	return p
}
