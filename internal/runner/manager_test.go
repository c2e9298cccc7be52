package runner

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/go-mvd/mvd/internal/cache"
	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/dataset"
	"github.com/go-mvd/mvd/internal/leakage"
	"github.com/go-mvd/mvd/internal/mlmodel/logreg"
	"github.com/go-mvd/mvd/internal/notify"
	"github.com/go-mvd/mvd/internal/validation"
)

func testValidationConfig() validation.Config {
	return validation.Config{
		NSplits:        3,
		TrainValGap:    0.05,
		CVStdThreshold: 1,
		Metrics:        []string{"roc_auc"},
	}
}

func testLeakageConfig() leakage.Config {
	return leakage.Config{
		PValueThreshold:      0.01,
		MeanDiffThreshold:    2,
		StdRatioThreshold:    2,
		HighRiskScore:        0.5,
		TargetRiskThreshold:  0.7,
		FailedShareThreshold: 0.5,
		BatteryAlpha:         0.01,
	}
}

func testDataset(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	rnd := rand.New(rand.NewSource(17))
	x := make([][]float64, rows)
	y := make([]float64, rows)
	times := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := rnd.NormFloat64()
		x[i] = []float64{v, rnd.NormFloat64()}
		if v > 0 {
			y[i] = 1
		}
		times[i] = float64(i)
	}
	ds, err := dataset.New([]string{"f0", "f1"}, x, y, dataset.WithTime(times))
	if err != nil {
		t.Fatalf("unable create dataset: %v", err)
	}
	return ds
}

func newTestManager(t *testing.T, opts ...Option) *manager {
	t.Helper()
	shutdownCh := make(chan error, 4)
	notifier, err := notify.New(shutdownCh)
	if err != nil {
		t.Fatalf("unable create notifier: %v", err)
	}
	m, err := New(
		&database.DB{},
		validation.New(testValidationConfig()),
		leakage.New(testLeakageConfig()),
		notifier,
		shutdownCh,
		opts...,
	)
	if err != nil {
		t.Fatalf("unable create manager: %v", err)
	}
	return m
}

func TestManagerValidate(t *testing.T) {
	m := newTestManager(t, WithDBFlushSize(100))

	job := Job{ModelID: "test-model", Dataset: testDataset(t, 200), Model: logreg.New()}
	report, err := m.Validate(context.Background(), job)
	if err != nil {
		t.Fatalf("validate returned an unexpected error: %v", err)
	}
	if report.ModelID != "test-model" {
		t.Errorf("report model id got %s, expected test-model", report.ModelID)
	}
	if report.Score < 0 || report.Score > 100 {
		t.Errorf("report score %v out of [0, 100]", report.Score)
	}
	if len(m.dbTxExecutor.buf) != 1 {
		t.Errorf("finished report was not buffered for storage, buf len %d", len(m.dbTxExecutor.buf))
	}
}

func TestManagerValidateCached(t *testing.T) {
	m := newTestManager(t, WithDBFlushSize(100), WithCache(cache.NewMemory(time.Minute, 16)))

	job := Job{ModelID: "test-model", Dataset: testDataset(t, 200), Model: logreg.New()}
	first, err := m.Validate(context.Background(), job)
	if err != nil {
		t.Fatalf("validate returned an unexpected error: %v", err)
	}
	second, err := m.Validate(context.Background(), Job{
		ModelID: "test-model",
		Dataset: testDataset(t, 200),
		Model:   logreg.New(),
	})
	if err != nil {
		t.Fatalf("validate returned an unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("resubmitted dataset must be served from cache, got new report %s", second.ID)
	}
	if len(m.dbTxExecutor.buf) != 1 {
		t.Errorf("cached validation must not store a second report, buf len %d", len(m.dbTxExecutor.buf))
	}
}

func TestManagerValidateInsufficientData(t *testing.T) {
	m := newTestManager(t, WithDBFlushSize(100))

	ds, err := dataset.New(
		[]string{"f0", "f1"},
		[][]float64{{1, 2}, {3, 4}},
		[]float64{0, 1},
	)
	if err != nil {
		t.Fatalf("unable create dataset: %v", err)
	}
	if _, err := m.Validate(context.Background(), Job{ModelID: "test-model", Dataset: ds, Model: logreg.New()}); err == nil {
		t.Errorf("validate on a two row dataset must fail")
	}
}
