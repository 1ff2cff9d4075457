package finance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// IRR returns the rate r at which Σ cashflows[k]/(1+r)^k is zero.
//
// The cashflow is read as the polynomial Σ cashflows[k]·x^k with
// x = 1/(1+r). Its roots are the eigenvalues of the companion matrix;
// real positive roots map to rates and the rate closest to zero wins.
func IRR(cashflows []float64) (float64, error) {
	if !hasSignChange(cashflows) {
		return math.NaN(), fmt.Errorf("cashflow never changes sign: %w", ErrNoConvergence)
	}

	roots, err := polyRoots(cashflows)
	if err != nil {
		return math.NaN(), err
	}

	best := math.NaN()
	for _, z := range roots {
		x := real(z)
		if x <= 0 || math.Abs(imag(z)) > 1e-9*math.Max(1, math.Abs(x)) {
			continue
		}
		x = polish(cashflows, x)
		rate := 1/x - 1
		if math.IsNaN(best) || math.Abs(rate) < math.Abs(best) {
			best = rate
		}
	}
	if math.IsNaN(best) {
		return math.NaN(), fmt.Errorf("no real positive root: %w", ErrNoConvergence)
	}
	return best, nil
}

func hasSignChange(cfs []float64) bool {
	var pos, neg bool
	for _, v := range cfs {
		pos = pos || v > 0
		neg = neg || v < 0
	}
	return pos && neg
}

// polyRoots finds the roots of Σ c[i]·x^i. Zero roots are dropped.
func polyRoots(c []float64) ([]complex128, error) {
	lo, hi := 0, len(c)-1
	for lo <= hi && c[lo] == 0 {
		lo++
	}
	for hi >= lo && c[hi] == 0 {
		hi--
	}
	c = c[lo : hi+1]
	n := len(c) - 1
	if n < 1 {
		return nil, nil
	}

	a := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		a.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		a.Set(i, n-1, -c[i]/c[n])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("companion eigen decomposition failed: %w", ErrNoConvergence)
	}
	return eig.Values(nil), nil
}

// polish refines a root of Σ c[i]·x^i with a few Newton steps.
func polish(c []float64, x float64) float64 {
	for iter := 0; iter < 20; iter++ {
		p, dp := 0.0, 0.0
		for i := len(c) - 1; i >= 0; i-- {
			dp = dp*x + p
			p = p*x + c[i]
		}
		if dp == 0 {
			return x
		}
		step := p / dp
		next := x - step
		if next <= 0 || math.IsNaN(next) {
			return x
		}
		x = next
		if math.Abs(step) < 1e-14*math.Max(1, math.Abs(x)) {
			break
		}
	}
	return x
}
