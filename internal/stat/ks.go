package stat

import (
	"math"
	"sort"

	gstat "gonum.org/v1/gonum/stat"
)

// KolmogorovSmirnov runs the two-sample KS test and returns the test
// statistic with its asymptotic p-value.
func KolmogorovSmirnov(x, y []float64) (statistic, pValue float64) {
	if len(x) == 0 || len(y) == 0 {
		return 0, 1
	}

	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	sort.Float64s(xs)
	sort.Float64s(ys)

	statistic = gstat.KolmogorovSmirnov(xs, nil, ys, nil)

	n1 := float64(len(xs))
	n2 := float64(len(ys))
	ne := n1 * n2 / (n1 + n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * statistic

	return statistic, ksProb(lambda)
}

// ksProb evaluates the Kolmogorov distribution tail
// Q(lambda) = 2 * sum_{j>=1} (-1)^{j-1} exp(-2 j^2 lambda^2).
func ksProb(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}

	var sum float64
	sign := 1.0
	a := -2.0 * lambda * lambda
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(a*float64(j)*float64(j))
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}

	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
