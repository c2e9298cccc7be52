package logreg

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-mvd/mvd/internal/earlystop"
)

func TestFitPredictSeparable(t *testing.T) {
	tests := []struct {
		name string
		x    [][]float64
		y    []float64
	}{
		{
			name: "positive_one_dim",
			x:    [][]float64{{-2}, {-1.5}, {-1}, {-0.5}, {0.5}, {1}, {1.5}, {2}},
			y:    []float64{0, 0, 0, 0, 1, 1, 1, 1},
		},
		{
			name: "positive_two_dim",
			x:    [][]float64{{-1, -1}, {-2, -1}, {-1, -2}, {1, 1}, {2, 1}, {1, 2}},
			y:    []float64{0, 0, 0, 1, 1, 1},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := New(WithIterations(500))
			if err := l.Fit(test.x, test.y); err != nil {
				t.Fatalf("fitting returned an unexpected error: %v", err)
			}
			preds, err := l.Predict(test.x)
			if err != nil {
				t.Fatalf("predict returned an unexpected error: %v", err)
			}
			for i := range preds {
				if preds[i] != test.y[i] {
					t.Errorf("prediction for row %d got %v, expected %v", i, preds[i], test.y[i])
				}
			}
		})
	}
}

func TestPredictUnfitted(t *testing.T) {
	l := New()
	if _, err := l.Predict([][]float64{{1}}); err == nil {
		t.Errorf("predicting with an unfitted model must return an error")
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	l := New(WithIterations(100))
	if err := l.Fit([][]float64{{-1}, {1}}, []float64{0, 1}); err != nil {
		t.Fatalf("fitting returned an unexpected error: %v", err)
	}

	w := l.Weights()
	restored := New()
	restored.SetWeights(w)

	p1, err := l.PredictProba([][]float64{{0.3}})
	if err != nil {
		t.Fatalf("predict returned an unexpected error: %v", err)
	}
	p2, err := restored.PredictProba([][]float64{{0.3}})
	if err != nil {
		t.Fatalf("predict on restored model returned an unexpected error: %v", err)
	}
	if p1[0] != p2[0] {
		t.Errorf("restored model probability got %v, expected %v", p2[0], p1[0])
	}
}

func TestFitEarlyStoppingRestoresBestWeights(t *testing.T) {
	x := [][]float64{{-2}, {-1}, {1}, {2}}
	y := []float64{0, 0, 1, 1}

	// An unreachable delta makes every observation after the first a
	// wait, so training stops after patience iterations and rolls back
	// to the first snapshot.
	stopped := New(
		WithIterations(200),
		WithEarlyStopping(earlystop.New(
			earlystop.WithPatience(1),
			earlystop.WithMinDelta(math.Inf(1)),
			earlystop.WithRestoreBestWeights(),
		)),
	)
	if err := stopped.Fit(x, y); err != nil {
		t.Fatalf("fitting returned an unexpected error: %v", err)
	}

	single := New(WithIterations(1))
	if err := single.Fit(x, y); err != nil {
		t.Fatalf("fitting returned an unexpected error: %v", err)
	}

	if !reflect.DeepEqual(stopped.Weights(), single.Weights()) {
		t.Errorf("restored weights got %v, expected the first-iteration weights %v", stopped.Weights(), single.Weights())
	}
}

func TestFitEarlyStoppingConverging(t *testing.T) {
	x := [][]float64{{-2}, {-1.5}, {-1}, {1}, {1.5}, {2}}
	y := []float64{0, 0, 0, 1, 1, 1}

	l := New(WithIterations(500), WithEarlyStopping(earlystop.New()))
	if err := l.Fit(x, y); err != nil {
		t.Fatalf("fitting returned an unexpected error: %v", err)
	}
	preds, err := l.Predict(x)
	if err != nil {
		t.Fatalf("predict returned an unexpected error: %v", err)
	}
	for i := range preds {
		if preds[i] != y[i] {
			t.Errorf("prediction for row %d got %v, expected %v", i, preds[i], y[i])
		}
	}
}

func TestFitStoppedControllerErrors(t *testing.T) {
	c := earlystop.New(earlystop.WithPatience(1), earlystop.WithMinDelta(math.Inf(1)))

	first := New(WithIterations(10), WithEarlyStopping(c))
	if err := first.Fit([][]float64{{-1}, {1}}, []float64{0, 1}); err != nil {
		t.Fatalf("fitting returned an unexpected error: %v", err)
	}

	second := New(WithIterations(10), WithEarlyStopping(c))
	if err := second.Fit([][]float64{{-1}, {1}}, []float64{0, 1}); err == nil {
		t.Errorf("fitting with a stopped controller must return an error")
	}
}
