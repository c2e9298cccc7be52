package validation

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-mvd/mvd/internal/dataset"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/scoring"
	"github.com/go-mvd/mvd/pkg/rworker"
	gstat "gonum.org/v1/gonum/stat"
)

// FoldScores holds per-metric train and test scores of one fold.
type FoldScores struct {
	Fold  int                `json:"fold"`
	Train map[string]float64 `json:"train"`
	Test  map[string]float64 `json:"test"`
}

// Run is the outcome of a temporal cross-validation: raw per-fold scores
// plus their aggregates and the derived overfitting classification.
type Run struct {
	Folds       []FoldScores       `json:"folds"`
	TrainMean   map[string]float64 `json:"trainMean"`
	TrainStd    map[string]float64 `json:"trainStd"`
	TestMean    map[string]float64 `json:"testMean"`
	TestStd     map[string]float64 `json:"testStd"`
	OverfitGap  float64            `json:"overfitGap"`
	OverfitRisk model.Risk         `json:"overfitRisk"`
}

type Option func(*Validator)

// WithModelProvider enables parallel fold evaluation: every fold gets a
// fresh model from the factory instead of refitting the shared instance.
func WithModelProvider(fn mlmodel.ProvideFn) Option {
	return func(v *Validator) {
		v.provideFn = fn
	}
}

type Validator struct {
	cfg       Config
	provideFn mlmodel.ProvideFn
}

func New(cfg Config, opts ...Option) *Validator {
	v := &Validator{cfg: cfg}
	for _, f := range opts {
		f(v)
	}
	return v
}

func (v *Validator) Config() Config {
	return v.cfg
}

// CrossValidate fits and scores the model over expanding-window temporal
// folds of ds. Rows are stable-sorted by the time column first, so no
// fold ever trains on rows that follow its test window. The model is
// mutated by fitting; fit errors propagate to the caller unchanged.
func (v *Validator) CrossValidate(ctx context.Context, ds *dataset.Dataset, m mlmodel.Model) (*Run, error) {
	if v.cfg.NSplits < 2 {
		return nil, fmt.Errorf("unable cross validate: n_splits %d is below 2", v.cfg.NSplits)
	}
	if len(v.cfg.Metrics) == 0 {
		return nil, fmt.Errorf("unable cross validate: empty metric set")
	}
	metricFns := make(map[string]scoring.Func, len(v.cfg.Metrics))
	for _, name := range v.cfg.Metrics {
		fn, ok := scoring.For(name)
		if !ok {
			return nil, &UnknownMetricError{Metric: name}
		}
		metricFns[name] = fn
	}

	sorted := ds.SortByTime()
	folds, err := expandingWindow(sorted.Len(), v.cfg.NSplits)
	if err != nil {
		return nil, err
	}

	scores := make([]FoldScores, len(folds))
	if v.provideFn != nil && v.cfg.MaxParallelFolds > 1 {
		if err := v.evalParallel(sorted, folds, metricFns, scores); err != nil {
			return nil, err
		}
	} else {
		for _, fold := range folds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fs, err := evalFold(sorted, fold, m, metricFns)
			if err != nil {
				return nil, err
			}
			scores[fold.Index] = fs
		}
	}

	run := &Run{Folds: scores}
	v.aggregate(run)
	return run, nil
}

// evalParallel runs folds through a bounded worker pool. Results land in
// a fold-indexed slice, so aggregation order stays deterministic no
// matter how the scheduler interleaves workers.
func (v *Validator) evalParallel(ds *dataset.Dataset, folds []Fold, metricFns map[string]scoring.Func, out []FoldScores) error {
	var wg sync.WaitGroup
	rate := make(chan struct{}, v.cfg.MaxParallelFolds)
	errCh := make(chan error, 1)

	for i := range folds {
		fold := folds[i]
		rworker.Job(&wg, func() error {
			m, err := v.provideFn()
			if err != nil {
				return fmt.Errorf("unable create model for fold %d: %w", fold.Index, err)
			}
			fs, err := evalFold(ds, fold, m, metricFns)
			if err != nil {
				return err
			}
			out[fold.Index] = fs
			return nil
		}, rate, errCh)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func evalFold(ds *dataset.Dataset, fold Fold, m mlmodel.Model, metricFns map[string]scoring.Func) (FoldScores, error) {
	trainX, trainY := ds.Range(fold.TrainLo, fold.TrainHi)
	testX, testY := ds.Range(fold.TestLo, fold.TestHi)

	if err := m.Fit(trainX, trainY); err != nil {
		return FoldScores{}, err
	}
	trainScores, err := mlmodel.Scores(m, trainX)
	if err != nil {
		return FoldScores{}, err
	}
	testScores, err := mlmodel.Scores(m, testX)
	if err != nil {
		return FoldScores{}, err
	}

	fs := FoldScores{
		Fold:  fold.Index,
		Train: make(map[string]float64, len(metricFns)),
		Test:  make(map[string]float64, len(metricFns)),
	}
	for name, fn := range metricFns {
		fs.Train[name] = fn(trainY, trainScores)
		fs.Test[name] = fn(testY, testScores)
	}
	return fs, nil
}

func (v *Validator) aggregate(run *Run) {
	run.TrainMean = map[string]float64{}
	run.TrainStd = map[string]float64{}
	run.TestMean = map[string]float64{}
	run.TestStd = map[string]float64{}

	for _, name := range v.cfg.Metrics {
		train := make([]float64, len(run.Folds))
		test := make([]float64, len(run.Folds))
		for i, fs := range run.Folds {
			train[i] = fs.Train[name]
			test[i] = fs.Test[name]
		}
		run.TrainMean[name] = gstat.Mean(train, nil)
		run.TrainStd[name] = gstat.StdDev(train, nil)
		run.TestMean[name] = gstat.Mean(test, nil)
		run.TestStd[name] = gstat.StdDev(test, nil)
	}

	gapMetric := v.cfg.Metrics[0]
	for _, name := range v.cfg.Metrics {
		if name == scoring.MetricROCAUC {
			gapMetric = name
			break
		}
	}

	run.OverfitGap = run.TrainMean[gapMetric] - run.TestMean[gapMetric]
	switch {
	case run.OverfitGap > 2*v.cfg.TrainValGap:
		run.OverfitRisk = model.RiskHigh
	case run.OverfitGap > v.cfg.TrainValGap:
		run.OverfitRisk = model.RiskMedium
	default:
		run.OverfitRisk = model.RiskLow
	}

	// a high fold-to-fold spread is an instability signal even when the
	// mean gap looks fine
	if run.OverfitRisk == model.RiskLow && run.TestStd[gapMetric] > v.cfg.CVStdThreshold {
		run.OverfitRisk = model.RiskMedium
	}
}
