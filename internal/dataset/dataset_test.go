package dataset

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		names     []string
		x         [][]float64
		y         []float64
		time      []float64
		expectErr bool
	}{
		{
			name:  "positive_new",
			names: []string{"a", "b"},
			x:     [][]float64{{1, 2}, {3, 4}},
			y:     []float64{0, 1},
		},
		{
			name:      "negative_row_mismatch",
			names:     []string{"a", "b"},
			x:         [][]float64{{1, 2}, {3, 4}},
			y:         []float64{0},
			expectErr: true,
		},
		{
			name:      "negative_ragged_row",
			names:     []string{"a", "b"},
			x:         [][]float64{{1, 2}, {3}},
			y:         []float64{0, 1},
			expectErr: true,
		},
		{
			name:      "negative_time_len",
			names:     []string{"a"},
			x:         [][]float64{{1}, {2}},
			y:         []float64{0, 1},
			time:      []float64{1},
			expectErr: true,
		},
		{
			name:      "negative_null_time",
			names:     []string{"a"},
			x:         [][]float64{{1}, {2}},
			y:         []float64{0, 1},
			time:      []float64{1, math.NaN()},
			expectErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var opts []Option
			if test.time != nil {
				opts = append(opts, WithTime(test.time))
			}
			_, err := New(test.names, test.x, test.y, opts...)
			if test.expectErr && err == nil {
				t.Errorf("creating the dataset must return an error")
			}
			if !test.expectErr && err != nil {
				t.Errorf("creating the dataset returned an unexpected error: %v", err)
			}
		})
	}
}

func TestSortByTimeStable(t *testing.T) {
	ds, err := New(
		[]string{"f"},
		[][]float64{{10}, {20}, {30}, {40}},
		[]float64{0, 1, 0, 1},
		WithTime([]float64{2, 1, 1, 0}),
	)
	if err != nil {
		t.Fatalf("creating the dataset returned an unexpected error: %v", err)
	}

	sorted := ds.SortByTime()

	expectedX := []float64{40, 20, 30, 10}
	for i, want := range expectedX {
		if sorted.X[i][0] != want {
			t.Errorf("row %d after sort got %v, expected %v", i, sorted.X[i][0], want)
		}
	}
	for i := 1; i < sorted.Len(); i++ {
		if sorted.Time[i-1] > sorted.Time[i] {
			t.Errorf("time values are not ordered at row %d", i)
		}
	}
	// the original dataset must keep its row order
	if ds.X[0][0] != 10 {
		t.Errorf("source dataset was mutated by SortByTime")
	}
}

func TestColumn(t *testing.T) {
	ds, err := New(
		[]string{"a", "b"},
		[][]float64{{1, 2}, {3, 4}, {5, 6}},
		[]float64{0, 1, 0},
	)
	if err != nil {
		t.Fatalf("creating the dataset returned an unexpected error: %v", err)
	}
	col := ds.Column(1)
	expected := []float64{2, 4, 6}
	for i := range expected {
		if col[i] != expected[i] {
			t.Errorf("column value %d got %v, expected %v", i, col[i], expected[i])
		}
	}
}

func TestHash(t *testing.T) {
	base := func() *Dataset {
		d, err := New([]string{"a"}, [][]float64{{1}, {2}}, []float64{0, 1}, WithTime([]float64{10, 20}))
		if err != nil {
			t.Fatalf("creating the dataset returned an unexpected error: %v", err)
		}
		return d
	}

	d := base()
	same := base()
	if d.Hash() != same.Hash() {
		t.Errorf("identical datasets must hash equally")
	}

	labels := base()
	labels.Y = []float64{1, 0}
	if d.Hash() == labels.Hash() {
		t.Errorf("datasets differing only in labels must hash differently")
	}

	times := base()
	times.Time = []float64{10, 30}
	if d.Hash() == times.Hash() {
		t.Errorf("datasets differing only in timestamps must hash differently")
	}

	untimed := base()
	untimed.Time = nil
	if d.Hash() == untimed.Hash() {
		t.Errorf("dropping the time vector must change the hash")
	}
}
