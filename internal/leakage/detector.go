package leakage

import (
	"fmt"
	"math"

	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/mlmodel/logreg"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/scoring"
	"github.com/go-mvd/mvd/internal/stat"
	gstat "gonum.org/v1/gonum/stat"
)

const eps = 1e-8

// FeatureStats holds the distribution comparison of one feature between
// the train and test partitions.
type FeatureStats struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"pValue"`
	MeanDiff  float64 `json:"meanDiff"`
	StdRatio  float64 `json:"stdRatio"`
	Risk      float64 `json:"risk"`
}

type FeatureReport struct {
	Features      map[string]FeatureStats `json:"features"`
	HighRisk      []string                `json:"highRisk"`
	HighRiskCount int                     `json:"highRiskCount"`
}

// TargetReport is the canary-model probe result: implausibly high or
// implausibly similar train/test performance is itself a leakage signal.
type TargetReport struct {
	TrainAUC   float64 `json:"trainAuc"`
	TestAUC    float64 `json:"testAuc"`
	Gap        float64 `json:"gap"`
	Risk       float64 `json:"risk"`
	Suspicious bool    `json:"suspicious"`
}

// Report aggregates all leakage probes for one train/test split.
// Computed once, never mutated afterward.
type Report struct {
	Feature     FeatureReport `json:"feature"`
	Target      TargetReport  `json:"target"`
	FailedShare float64       `json:"failedShare"`
	Overall     model.Risk    `json:"overall"`
}

type Option func(*Detector)

// WithCanary swaps the probe model factory, default is a plain logistic
// regression.
func WithCanary(fn mlmodel.ProvideFn) Option {
	return func(d *Detector) {
		d.canaryFn = fn
	}
}

type Detector struct {
	cfg      Config
	canaryFn mlmodel.ProvideFn
}

func New(cfg Config, opts ...Option) *Detector {
	d := &Detector{
		cfg: cfg,
		canaryFn: func() (mlmodel.Model, error) {
			return logreg.New(), nil
		},
	}
	for _, f := range opts {
		f(d)
	}
	return d
}

func column(x [][]float64, j int) []float64 {
	col := make([]float64, len(x))
	for i := range x {
		col[i] = x[i][j]
	}
	return col
}

// DetectFeatureDistributionLeakage compares every feature's train and
// test distribution with a KS test plus normalized mean and std checks.
func (d *Detector) DetectFeatureDistributionLeakage(trainX, testX [][]float64, names []string) FeatureReport {
	rep := FeatureReport{Features: make(map[string]FeatureStats, len(names))}

	for j, name := range names {
		train := column(trainX, j)
		test := column(testX, j)

		statistic, p := stat.KolmogorovSmirnov(train, test)

		trainMean, trainStd := gstat.MeanStdDev(train, nil)
		testMean, testStd := gstat.MeanStdDev(test, nil)

		var meanDiff, stdRatio float64
		if trainStd > eps {
			meanDiff = math.Abs(trainMean-testMean) / trainStd
			lo, hi := trainStd, testStd
			if hi < lo {
				lo, hi = hi, lo
			}
			if lo > eps {
				stdRatio = hi / lo
			}
		}

		var risk float64
		if p < d.cfg.PValueThreshold {
			risk += 0.4
		}
		if meanDiff > d.cfg.MeanDiffThreshold {
			risk += 0.3
		}
		if stdRatio > d.cfg.StdRatioThreshold {
			risk += 0.3
		}

		rep.Features[name] = FeatureStats{
			Statistic: statistic,
			PValue:    p,
			MeanDiff:  meanDiff,
			StdRatio:  stdRatio,
			Risk:      risk,
		}
		if risk > d.cfg.HighRiskScore {
			rep.HighRisk = append(rep.HighRisk, name)
		}
	}

	rep.HighRiskCount = len(rep.HighRisk)
	return rep
}

// DetectTargetLeakage fits the canary model on the train partition only
// and inspects its AUC on both sides of the split.
func (d *Detector) DetectTargetLeakage(trainX, testX [][]float64, trainY, testY []float64) (TargetReport, error) {
	canary, err := d.canaryFn()
	if err != nil {
		return TargetReport{}, fmt.Errorf("unable create canary model: %w", err)
	}
	if err := canary.Fit(trainX, trainY); err != nil {
		return TargetReport{}, fmt.Errorf("unable fit canary model: %w", err)
	}

	trainScores, err := mlmodel.Scores(canary, trainX)
	if err != nil {
		return TargetReport{}, fmt.Errorf("unable score canary on train: %w", err)
	}
	testScores, err := mlmodel.Scores(canary, testX)
	if err != nil {
		return TargetReport{}, fmt.Errorf("unable score canary on test: %w", err)
	}

	rep := TargetReport{
		TrainAUC: scoring.ROCAUC(trainY, trainScores),
		TestAUC:  scoring.ROCAUC(testY, testScores),
	}
	rep.Gap = math.Abs(rep.TrainAUC - rep.TestAUC)

	if rep.TestAUC > 0.95 {
		rep.Risk += 0.5
	}
	if rep.Gap < 0.01 {
		rep.Risk += 0.3
	}
	if rep.TrainAUC > 0.99 {
		rep.Risk += 0.2
	}
	rep.Suspicious = rep.TestAUC > 0.95 || rep.Gap < 0.01

	return rep, nil
}

// Detect runs the feature-distribution probe, the target probe and a
// per-feature KS + Mann-Whitney battery, then folds the three signals
// into one LOW/MEDIUM/HIGH classification.
func (d *Detector) Detect(trainX, testX [][]float64, trainY, testY []float64, names []string) (*Report, error) {
	rep := &Report{}
	rep.Feature = d.DetectFeatureDistributionLeakage(trainX, testX, names)

	target, err := d.DetectTargetLeakage(trainX, testX, trainY, testY)
	if err != nil {
		return nil, err
	}
	rep.Target = target

	failed := 0
	for j := range names {
		train := column(trainX, j)
		test := column(testX, j)
		_, ksP := stat.KolmogorovSmirnov(train, test)
		_, mwP := stat.MannWhitneyU(train, test)
		if ksP < d.cfg.BatteryAlpha || mwP < d.cfg.BatteryAlpha {
			failed++
		}
	}
	if len(names) > 0 {
		rep.FailedShare = float64(failed) / float64(len(names))
	}

	signals := 0
	if rep.Feature.HighRiskCount > 0 {
		signals++
	}
	if rep.Target.Risk > d.cfg.TargetRiskThreshold {
		signals++
	}
	// near-perfect held-out performance is a standalone signal: a pure
	// label copy must classify as HIGH even when feature distributions
	// look clean
	if rep.Target.TestAUC > 0.95 {
		signals++
	}
	if rep.FailedShare > d.cfg.FailedShareThreshold {
		signals++
	}

	switch {
	case signals >= 2:
		rep.Overall = model.RiskHigh
	case signals == 1:
		rep.Overall = model.RiskMedium
	default:
		rep.Overall = model.RiskLow
	}
	return rep, nil
}
