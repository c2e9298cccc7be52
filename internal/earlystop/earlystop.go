package earlystop

import (
	"fmt"
)

// State of the controller after an observation.
type State uint8

const (
	StateWaiting State = iota
	StateImproved
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateImproved:
		return "IMPROVED"
	case StateStopped:
		return "STOPPED"
	default:
		return "WAITING"
	}
}

// Weighted is implemented by models whose parameters can be snapshotted
// and restored when training stops.
type Weighted interface {
	Weights() []float64
	SetWeights([]float64)
}

type Option func(*Controller)

func WithPatience(n int) Option {
	return func(c *Controller) {
		c.patience = n
	}
}

func WithMinDelta(d float64) Option {
	return func(c *Controller) {
		c.minDelta = d
	}
}

func WithRestoreBestWeights() Option {
	return func(c *Controller) {
		c.restoreBest = true
	}
}

const DefaultPatience = 3

// Controller is a patience-based stopping rule for iterative training.
// It is owned by exactly one training loop: observations are synchronous
// and the controller is discarded once it reports StateStopped.
type Controller struct {
	patience    int
	minDelta    float64
	restoreBest bool

	wait     int
	best     float64
	hasBest  bool
	stopped  bool
	snapshot []byte
}

func New(opts ...Option) *Controller {
	c := &Controller{patience: DefaultPatience}
	for _, f := range opts {
		f(c)
	}
	return c
}

func (c *Controller) Wait() int {
	return c.wait
}

func (c *Controller) BestScore() (float64, bool) {
	return c.best, c.hasBest
}

// Observe feeds the score of the latest iteration. The model argument
// may be nil when weight restoration is not requested. A StateStopped
// result is terminal.
func (c *Controller) Observe(score float64, m Weighted) (State, error) {
	if c.stopped {
		return StateStopped, fmt.Errorf("controller is already stopped")
	}

	if !c.hasBest || score > c.best+c.minDelta {
		c.best = score
		c.hasBest = true
		c.wait = 0
		if c.restoreBest && m != nil {
			snap, err := encodeWeights(m.Weights())
			if err != nil {
				return StateImproved, fmt.Errorf("unable snapshot weights: %w", err)
			}
			c.snapshot = snap
		}
		return StateImproved, nil
	}

	c.wait++
	if c.wait >= c.patience {
		c.stopped = true
		if c.restoreBest && m != nil && c.snapshot != nil {
			weights, err := decodeWeights(c.snapshot)
			if err != nil {
				return StateStopped, fmt.Errorf("unable restore weights: %w", err)
			}
			m.SetWeights(weights)
		}
		return StateStopped, nil
	}

	return StateWaiting, nil
}
