package earlystop

import (
	"testing"
)

type fakeWeighted struct {
	weights []float64
}

func (f *fakeWeighted) Weights() []float64 {
	return f.weights
}

func (f *fakeWeighted) SetWeights(w []float64) {
	f.weights = w
}

func TestObserveConstantScores(t *testing.T) {
	tests := []struct {
		name         string
		patience     int
		minDelta     float64
		scores       []float64
		expectedStop int // 1-based call index, 0 means never
	}{
		{
			name:         "positive_constant_sequence",
			patience:     3,
			minDelta:     0.001,
			scores:       []float64{0.80, 0.80, 0.80, 0.80},
			expectedStop: 4,
		},
		{
			name:         "positive_improving_sequence",
			patience:     3,
			minDelta:     0.001,
			scores:       []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95},
			expectedStop: 0,
		},
		{
			name:         "positive_plateau_after_improvement",
			patience:     2,
			minDelta:     0.001,
			scores:       []float64{0.70, 0.80, 0.80, 0.80},
			expectedStop: 4,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := New(WithPatience(test.patience), WithMinDelta(test.minDelta))
			stoppedAt := 0
			for i, score := range test.scores {
				state, err := c.Observe(score, nil)
				if err != nil {
					t.Fatalf("observation %d returned an unexpected error: %v", i+1, err)
				}
				if state == StateStopped {
					stoppedAt = i + 1
					break
				}
			}
			if stoppedAt != test.expectedStop {
				t.Errorf("controller stopped at call %d, expected %d", stoppedAt, test.expectedStop)
			}
		})
	}
}

func TestObserveFirstScoreImproves(t *testing.T) {
	c := New(WithPatience(3))
	state, err := c.Observe(0.5, nil)
	if err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}
	if state != StateImproved {
		t.Errorf("first observation state got %v, expected %v", state, StateImproved)
	}
	if best, ok := c.BestScore(); !ok || best != 0.5 {
		t.Errorf("best score got %v, expected 0.5", best)
	}
}

func TestObserveAfterStop(t *testing.T) {
	c := New(WithPatience(1))
	if _, err := c.Observe(0.5, nil); err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}
	state, err := c.Observe(0.5, nil)
	if err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}
	if state != StateStopped {
		t.Fatalf("state got %v, expected %v", state, StateStopped)
	}
	if _, err := c.Observe(0.9, nil); err == nil {
		t.Errorf("observing a stopped controller must return an error")
	}
}

func TestRestoreBestWeights(t *testing.T) {
	c := New(WithPatience(2), WithMinDelta(0.001), WithRestoreBestWeights())
	m := &fakeWeighted{weights: []float64{1, 2, 3}}

	if _, err := c.Observe(0.9, m); err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}

	// the model keeps training and drifts away from the best weights
	m.weights = []float64{9, 9, 9}
	if _, err := c.Observe(0.85, m); err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}
	state, err := c.Observe(0.85, m)
	if err != nil {
		t.Fatalf("observation returned an unexpected error: %v", err)
	}
	if state != StateStopped {
		t.Fatalf("state got %v, expected %v", state, StateStopped)
	}

	expected := []float64{1, 2, 3}
	for i := range expected {
		if m.weights[i] != expected[i] {
			t.Errorf("restored weight %d got %v, expected %v", i, m.weights[i], expected[i])
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	weights := []float64{0.25, -1.5, 3.75, 0}
	encoded, err := encodeWeights(weights)
	if err != nil {
		t.Fatalf("encoding returned an unexpected error: %v", err)
	}
	decoded, err := decodeWeights(encoded)
	if err != nil {
		t.Fatalf("decoding returned an unexpected error: %v", err)
	}
	if len(decoded) != len(weights) {
		t.Fatalf("decoded length got %d, expected %d", len(decoded), len(weights))
	}
	for i := range weights {
		if decoded[i] != weights[i] {
			t.Errorf("decoded weight %d got %v, expected %v", i, decoded[i], weights[i])
		}
	}
}
