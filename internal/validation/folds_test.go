package validation

import (
	"errors"
	"testing"
)

func TestExpandingWindow(t *testing.T) {
	tests := []struct {
		name               string
		n                  int
		splits             int
		expectedTrainSizes []int
		expectedTestSize   int
		expectErr          bool
	}{
		{
			name:               "positive_thousand_rows_five_splits",
			n:                  1000,
			splits:             5,
			expectedTrainSizes: []int{166, 333, 500, 666, 833},
		},
		{
			name:               "positive_even_split",
			n:                  30,
			splits:             2,
			expectedTrainSizes: []int{10, 20},
		},
		{
			name:      "negative_not_enough_rows",
			n:         3,
			splits:    5,
			expectErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			folds, err := expandingWindow(test.n, test.splits)
			if test.expectErr {
				if err == nil {
					t.Errorf("fold construction must return an error")
					return
				}
				var insufficientErr *InsufficientDataError
				if !errors.As(err, &insufficientErr) {
					t.Errorf("error got %T, expected InsufficientDataError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("fold construction returned an unexpected error: %v", err)
			}
			if len(folds) != test.splits {
				t.Fatalf("fold count got %d, expected %d", len(folds), test.splits)
			}
			for i, fold := range folds {
				if fold.TrainLen() != test.expectedTrainSizes[i] {
					t.Errorf("fold %d train size got %d, expected %d", i, fold.TrainLen(), test.expectedTrainSizes[i])
				}
				if fold.TrainHi != fold.TestLo {
					t.Errorf("fold %d train window must end where the test window starts", i)
				}
			}
		})
	}
}

// test windows must tile the tail of the dataset with no row skipped or
// duplicated
func TestExpandingWindowCoverage(t *testing.T) {
	const n, splits = 1000, 5
	folds, err := expandingWindow(n, splits)
	if err != nil {
		t.Fatalf("fold construction returned an unexpected error: %v", err)
	}

	seen := make([]bool, n)
	for _, fold := range folds {
		for i := fold.TestLo; i < fold.TestHi; i++ {
			if seen[i] {
				t.Errorf("row %d appears in more than one test window", i)
			}
			seen[i] = true
		}
	}
	firstTest := folds[0].TestLo
	for i := firstTest; i < n; i++ {
		if !seen[i] {
			t.Errorf("row %d is skipped by all test windows", i)
		}
	}
	if folds[len(folds)-1].TestHi != n {
		t.Errorf("last test window must end at the dataset boundary")
	}
}

func TestExpandingWindowNoOverlap(t *testing.T) {
	folds, err := expandingWindow(1000, 5)
	if err != nil {
		t.Fatalf("fold construction returned an unexpected error: %v", err)
	}
	for _, fold := range folds {
		if fold.TrainHi > fold.TestLo {
			t.Errorf("fold %d train rows overlap its test rows", fold.Index)
		}
	}
}
