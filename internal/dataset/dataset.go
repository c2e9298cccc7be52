package dataset

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"

	"github.com/go-mvd/mvd/internal/util"
)

// Dataset is a rectangular table of numeric feature columns, one label
// vector and an optional time vector used for temporal ordering.
type Dataset struct {
	Names []string
	X     [][]float64
	Y     []float64
	Time  []float64
}

type Option func(*Dataset)

func WithTime(t []float64) Option {
	return func(d *Dataset) {
		d.Time = t
	}
}

func New(names []string, x [][]float64, y []float64, opts ...Option) (*Dataset, error) {
	d := &Dataset{Names: names, X: x, Y: y}
	for _, f := range opts {
		f(d)
	}

	if len(x) != len(y) {
		return nil, fmt.Errorf("unable create dataset: %d feature rows vs %d labels", len(x), len(y))
	}
	for i := range x {
		if len(x[i]) != len(names) {
			return nil, fmt.Errorf("unable create dataset: row %d has %d values, want %d", i, len(x[i]), len(names))
		}
	}
	if d.Time != nil {
		if len(d.Time) != len(y) {
			return nil, fmt.Errorf("unable create dataset: %d time values vs %d rows", len(d.Time), len(y))
		}
		for i := range d.Time {
			if math.IsNaN(d.Time[i]) {
				return nil, fmt.Errorf("unable create dataset: null time value at row %d", i)
			}
		}
	}

	return d, nil
}

func (d *Dataset) Len() int {
	return len(d.Y)
}

func (d *Dataset) NumFeatures() int {
	return len(d.Names)
}

func (d *Dataset) HasTime() bool {
	return d.Time != nil
}

// Column returns the values of feature column j across all rows.
func (d *Dataset) Column(j int) []float64 {
	col := make([]float64, len(d.X))
	for i := range d.X {
		col[i] = d.X[i][j]
	}
	return col
}

// SortByTime returns a copy of the dataset with rows reordered by the time
// column. The sort is stable: ties keep the original row order. Datasets
// without a time column are returned unchanged.
func (d *Dataset) SortByTime() *Dataset {
	if d.Time == nil {
		return d
	}

	idx := make([]int, d.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return d.Time[idx[i]] < d.Time[idx[j]]
	})

	sorted := &Dataset{
		Names: d.Names,
		X:     make([][]float64, d.Len()),
		Y:     make([]float64, d.Len()),
		Time:  make([]float64, d.Len()),
	}
	for k, i := range idx {
		sorted.X[k] = d.X[i]
		sorted.Y[k] = d.Y[i]
		sorted.Time[k] = d.Time[i]
	}
	return sorted
}

// Range returns the feature rows and labels of the half-open row
// interval [lo, hi).
func (d *Dataset) Range(lo, hi int) ([][]float64, []float64) {
	return d.X[lo:hi], d.Y[lo:hi]
}

// Hash produces a stable digest over features, labels and timestamps,
// usable as a cache key for validation results.
func (d *Dataset) Hash() [32]byte {
	x := util.HashMatrix(d.X)
	y := util.HashVector(d.Y)

	digest := make([]byte, 0, 3*sha256.Size)
	digest = append(digest, x[:]...)
	digest = append(digest, y[:]...)
	if d.Time != nil {
		ts := util.HashVector(d.Time)
		digest = append(digest, ts[:]...)
	}
	return sha256.Sum256(digest)
}
