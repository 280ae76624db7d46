package tomo

import (
	"gonum.org/v1/gonum/optimize"
)

// minimizeConstrained minimizes f subject to the single inequality
// constraint g(x) >= 0 with a sequential quadratic penalty: each round
// minimizes f + mu * max(0, -g)^2 with Nelder-Mead, warm-starting from
// the previous solution while mu grows. The starting point x0 must be
// feasible.
func minimizeConstrained(f, g func([]float64) float64, x0 []float64) ([]float64, error) {
	x := make([]float64, len(x0))
	copy(x, x0)
	for _, mu := range []float64{1e2, 1e4, 1e6} {
		mu := mu
		problem := optimize.Problem{
			Func: func(v []float64) float64 {
				cost := f(v)
				if viol := -g(v); viol > 0 {
					cost += mu * viol * viol
				}
				return cost
			},
		}
		result, err := optimize.Minimize(problem, x, nil, &optimize.NelderMead{})
		if err != nil {
			if result == nil {
				return nil, err
			}
			// Keep the best point found so far even when the method stops
			// on an iteration limit.
		}
		if result != nil && result.X != nil {
			copy(x, result.X)
		}
	}
	return x, nil
}
