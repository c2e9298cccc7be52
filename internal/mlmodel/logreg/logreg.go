package logreg

import (
	"fmt"
	"math"

	"github.com/go-mvd/mvd/internal/earlystop"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"gonum.org/v1/gonum/floats"
)

var _ mlmodel.ProbaModel = (*LogReg)(nil)

const (
	DefaultLearningRate = 0.1
	DefaultIterations   = 200
)

type Option func(*LogReg)

func WithLearningRate(lr float64) Option {
	return func(l *LogReg) {
		l.lr = lr
	}
}

func WithIterations(n int) Option {
	return func(l *LogReg) {
		l.iterations = n
	}
}

func WithL2(lambda float64) Option {
	return func(l *LogReg) {
		l.l2 = lambda
	}
}

// WithEarlyStopping hands Fit a stopping controller fed with the
// training log-loss after every iteration. The controller must be
// fresh: a stopped one fails the fit on its first observation.
func WithEarlyStopping(c *earlystop.Controller) Option {
	return func(l *LogReg) {
		l.stopper = c
	}
}

// LogReg is a plain gradient-descent logistic regression. It doubles as
// the canary model for target-leakage probing: deliberately simple, fast
// to fit and with a probability output for AUC scoring.
type LogReg struct {
	lr         float64
	iterations int
	l2         float64
	stopper    *earlystop.Controller

	weights   []float64
	intercept float64
	fitted    bool
}

func New(opts ...Option) *LogReg {
	l := &LogReg{
		lr:         DefaultLearningRate,
		iterations: DefaultIterations,
	}
	for _, f := range opts {
		f(l)
	}
	return l
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func (l *LogReg) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("unable fit logreg: empty feature matrix")
	}
	if len(x) != len(y) {
		return fmt.Errorf("unable fit logreg: %d rows vs %d labels", len(x), len(y))
	}

	dims := len(x[0])
	l.weights = make([]float64, dims)
	l.intercept = 0

	n := float64(len(x))
	grad := make([]float64, dims)
	for it := 0; it < l.iterations; it++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64
		for i := range x {
			p := sigmoid(floats.Dot(l.weights, x[i]) + l.intercept)
			diff := p - y[i]
			floats.AddScaled(grad, diff, x[i])
			gradB += diff
		}
		for j := range grad {
			grad[j] = grad[j]/n + l.l2*l.weights[j]
		}
		floats.AddScaled(l.weights, -l.lr, grad)
		l.intercept -= l.lr * gradB / n

		if l.stopper != nil {
			state, err := l.stopper.Observe(-l.logLoss(x, y), l)
			if err != nil {
				return fmt.Errorf("unable fit logreg: %w", err)
			}
			if state == earlystop.StateStopped {
				break
			}
		}
	}

	l.fitted = true
	return nil
}

func (l *LogReg) logLoss(x [][]float64, y []float64) float64 {
	const eps = 1e-15
	var loss float64
	for i := range x {
		p := sigmoid(floats.Dot(l.weights, x[i]) + l.intercept)
		p = math.Min(math.Max(p, eps), 1-eps)
		loss -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return loss / float64(len(x))
}

func (l *LogReg) PredictProba(x [][]float64) ([]float64, error) {
	if !l.fitted {
		return nil, fmt.Errorf("unable predict: logreg is not fitted")
	}
	probs := make([]float64, len(x))
	for i := range x {
		if len(x[i]) != len(l.weights) {
			return nil, fmt.Errorf("unable predict: row %d has %d values, want %d", i, len(x[i]), len(l.weights))
		}
		probs[i] = sigmoid(floats.Dot(l.weights, x[i]) + l.intercept)
	}
	return probs, nil
}

func (l *LogReg) Predict(x [][]float64) ([]float64, error) {
	probs, err := l.PredictProba(x)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(probs))
	for i := range probs {
		if probs[i] >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Weights returns the coefficient vector with the intercept appended,
// in the layout the early-stopping snapshot codec expects.
func (l *LogReg) Weights() []float64 {
	w := make([]float64, len(l.weights)+1)
	copy(w, l.weights)
	w[len(w)-1] = l.intercept
	return w
}

func (l *LogReg) SetWeights(w []float64) {
	if len(w) == 0 {
		return
	}
	l.weights = make([]float64, len(w)-1)
	copy(l.weights, w[:len(w)-1])
	l.intercept = w[len(w)-1]
	l.fitted = true
}
