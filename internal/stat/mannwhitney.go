package stat

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// MannWhitneyU runs the two-sample Mann-Whitney rank test using the
// normal approximation with tie correction. Returns the U statistic and
// the two-sided p-value.
func MannWhitneyU(x, y []float64) (u, pValue float64) {
	n1 := len(x)
	n2 := len(y)
	if n1 == 0 || n2 == 0 {
		return 0, 1
	}

	type obs struct {
		v     float64
		first bool
	}
	all := make([]obs, 0, n1+n2)
	for _, v := range x {
		all = append(all, obs{v: v, first: true})
	}
	for _, v := range y {
		all = append(all, obs{v: v})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	// mid-rank assignment over tie groups, accumulating the tie
	// correction term sum(t^3 - t)
	var rankSumX, tieTerm float64
	i := 0
	for i < len(all) {
		j := i
		for j < len(all) && all[j].v == all[i].v {
			j++
		}
		rank := float64(i+j+1) / 2.0 // average of 1-based ranks i+1..j
		t := float64(j - i)
		if t > 1 {
			tieTerm += t*t*t - t
		}
		for k := i; k < j; k++ {
			if all[k].first {
				rankSumX += rank
			}
		}
		i = j
	}

	f1 := float64(n1)
	f2 := float64(n2)
	u1 := rankSumX - f1*(f1+1)/2.0
	u2 := f1*f2 - u1
	u = math.Min(u1, u2)

	n := f1 + f2
	mu := f1 * f2 / 2.0
	variance := f1 * f2 / 12.0 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		return u, 1
	}

	z := (u - mu) / math.Sqrt(variance)
	pValue = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if pValue > 1 {
		pValue = 1
	}
	return u, pValue
}
