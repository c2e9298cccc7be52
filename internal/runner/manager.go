// Package runner executes validation jobs: it drives the cross
// validation and leakage analyses, generates reports, batches them into
// persistent storage and alerts on low scoring models.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-mvd/mvd/internal/cache"
	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/dataset"
	"github.com/go-mvd/mvd/internal/leakage"
	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/notify"
	"github.com/go-mvd/mvd/internal/obs"
	"github.com/go-mvd/mvd/internal/report"
	reportDb "github.com/go-mvd/mvd/internal/report/database"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/validation"
	"github.com/go-mvd/mvd/pkg/iqueue"
)

// Contract for returning the Manager instance
type ProvideFn func(notify.Manager, chan<- error) (Manager, error)

// Manager defines the behavior of the background validation service.
type Manager interface {
	Validator
	// Start method of the service
	Run(context.Context) error
	// Method for stopping the service
	Stop()
}

// Validator defines the job execution surface: Validate runs a job
// synchronously, Submit queues it for background execution.
type Validator interface {
	Validate(ctx context.Context, job Job) (*model.Report, error)
	Submit(job Job) error
}

// Job is one validation request: a model instance and the dataset to
// validate it against.
type Job struct {
	ModelID string
	Dataset *dataset.Dataset
	Model   mlmodel.Model
}

// Abstractions for getting dependencies
type (
	fetchReportsByModelFn func(string, reportDb.FilterFn) ([]model.Report, error)
	deleteReportsFn       func(context.Context, []model.Report) error
	appendReportsFn       func(context.Context, []model.Report) error
	fetchKeysFn           func() ([]string, error)
	countByModelFn        func(string) (int, error)
)

type pullDependencies struct {
	fetchReportsByModel fetchReportsByModelFn
	deleteReports       deleteReportsFn
	appendReports       appendReportsFn
	fetchKeys           fetchKeysFn
	countByModel        countByModelFn
}

type Options struct {
	maxReportsStored int
	maxStorageTime   time.Duration
	minScoreAlert    float64
	dbFlushTime      time.Duration
	dbFlushSize      int
	rebuildDBTime    time.Duration
	deps             pullDependencies
}

type Option func(*manager)

func WithDBFlushTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.dbFlushTime = t
	}
}

func WithDBFlushSize(n int) Option {
	return func(o *manager) {
		o.opts.dbFlushSize = n
	}
}

func WithRebuildDBTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.rebuildDBTime = t
	}
}

func WithMaxReportsStored(n int) Option {
	return func(o *manager) {
		o.opts.maxReportsStored = n
	}
}

func WithMaxStorageTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.maxStorageTime = t
	}
}

func WithMinScoreAlert(score float64) Option {
	return func(o *manager) {
		o.opts.minScoreAlert = score
	}
}

func WithCache(c cache.Cache) Option {
	return func(o *manager) {
		o.reportCache = c
	}
}

// New returns the manager
func New(
	db *database.DB,
	validator *validation.Validator,
	detector *leakage.Detector,
	notifier notify.Manager,
	shutdownCh chan<- error,
	opts ...Option,
) (*manager, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier instance is not created")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator instance is not created")
	}
	if detector == nil {
		return nil, fmt.Errorf("detector instance is not created")
	}

	d := &manager{
		reportDB:   reportDb.New(db),
		validator:  validator,
		detector:   detector,
		notifier:   notifier,
		shutDownCh: shutdownCh,
		jobCh:      make(chan Job, 1),
		queue:      iqueue.New(),
	}

	for _, f := range opts {
		f(d)
	}

	d.opts.deps = pullDependencies{
		fetchReportsByModel: d.reportDB.FindByModel,
		deleteReports:       d.reportDB.DeleteMany,
		appendReports:       d.reportDB.AppendMany,
		fetchKeys:           d.reportDB.Keys,
		countByModel:        d.reportDB.CountByModel,
	}

	d.dbScheduler = newDBScheduler(dbSchedulerConfig{
		maxReportsStored: d.opts.maxReportsStored,
		maxStorageTime:   d.opts.maxStorageTime,
		rebuildDBTime:    d.opts.rebuildDBTime,
	})

	d.dbTxExecutor = newDBTxExecutor(
		dbTxExecutorOptions{
			dbFlushTime: d.opts.dbFlushTime,
			dbFlushSize: d.opts.dbFlushSize,
		},
		shutdownCh,
	)

	return d, nil
}

type manager struct {
	mtx sync.RWMutex

	opts Options
	// Main report storage
	reportDB *reportDb.DB
	// The notification manager
	notifier notify.Manager
	// The transaction manager in the store
	dbTxExecutor *dbTxExecutor
	// Managing data in storage
	dbScheduler *dbScheduler

	validator *validation.Validator
	detector  *leakage.Detector
	// optional report cache keyed by model id and dataset hash
	reportCache cache.Cache

	// Queue for submitted jobs
	queue *iqueue.Queue
	// New job channel for processing
	jobCh chan Job
	// Channel to shutdown the application
	shutDownCh chan<- error

	closed bool

	cancelNotifier func()
	cancel         func()
}

var _ Manager = (*manager)(nil)

// Run starts the collector, the storage maintenance loops and the
// notification service.
func (d *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	c, cancel := context.WithCancel(context.Background())
	d.cancelNotifier = cancel

	go d.queue.Loop()
	go d.collector(ctx)
	d.worker(ctx, runtime.NumCPU())
	go d.dbTxExecutor.flusher(ctx, d.opts.deps.appendReports)
	go d.dbScheduler.schedule(
		ctx,
		d.opts.deps.fetchKeys,
		d.opts.deps.countByModel,
		d.opts.deps.fetchReportsByModel,
		d.opts.deps.deleteReports,
	)

	if err := d.notifier.Run(c); err != nil {
		return fmt.Errorf("notify.Run: %w", err)
	}

	return nil
}

// Stop the manager
func (d *manager) Stop() {
	d.cancel()
}

// Submit queues a job for background execution.
func (d *manager) Submit(job Job) error {
	d.mtx.RLock()
	if d.closed {
		d.mtx.RUnlock()
		return fmt.Errorf("error submit job, shutting down")
	}
	d.jobCh <- job
	d.mtx.RUnlock()
	return nil
}

// Validate executes a job synchronously and returns the generated
// report. Finished reports are cached against the dataset hash, so a
// resubmission of unchanged data never refits the model.
func (d *manager) Validate(ctx context.Context, job Job) (*model.Report, error) {
	d.mtx.RLock()
	if d.closed {
		d.mtx.RUnlock()
		return nil, fmt.Errorf("error to validate, shutting down")
	}
	d.mtx.RUnlock()

	logger := logging.FromContext(ctx)
	key := cacheKey(job)
	if d.reportCache != nil {
		if raw, hit, err := d.reportCache.Get(ctx, key); err == nil && hit {
			var cached model.Report
			if err := json.Unmarshal(raw, &cached); err == nil {
				logger.Debugf("report cache hit for model %s", job.ModelID)
				return &cached, nil
			}
		}
	}

	obs.RecordRunStarted(ctx, job.ModelID)
	started := time.Now()

	run, err := d.validator.CrossValidate(ctx, job.Dataset, job.Model)
	if err != nil {
		obs.RecordRunFailed(ctx, job.ModelID)
		return nil, fmt.Errorf("unable cross validate model %s: %w", job.ModelID, err)
	}

	sorted := job.Dataset.SortByTime()
	split, err := validation.HoldoutSplit(sorted.Len(), d.validator.Config().NSplits)
	if err != nil {
		obs.RecordRunFailed(ctx, job.ModelID)
		return nil, err
	}
	trainX, trainY := sorted.Range(split.TrainLo, split.TrainHi)
	testX, testY := sorted.Range(split.TestLo, split.TestHi)

	leak, err := d.detector.Detect(trainX, testX, trainY, testY, sorted.Names)
	if err != nil {
		obs.RecordRunFailed(ctx, job.ModelID)
		return nil, fmt.Errorf("unable detect leakage for model %s: %w", job.ModelID, err)
	}

	rep := report.Generate(job.ModelID, run, leak)
	obs.RecordRunCompleted(ctx, job.ModelID, float64(time.Since(started))/float64(time.Millisecond))

	d.dbTxExecutor.write(ctx, rep, d.opts.deps.appendReports)

	if rep.Score < d.opts.minScoreAlert {
		d.alert(rep)
	}

	if d.reportCache != nil {
		if raw, err := json.Marshal(rep); err == nil {
			if err := d.reportCache.Set(ctx, key, raw); err != nil {
				logger.Errorf("unable cache report for model %s: %v", job.ModelID, err)
			}
		}
	}

	return &rep, nil
}

func cacheKey(job Job) string {
	return fmt.Sprintf("report:%s:%x", job.ModelID, job.Dataset.Hash())
}

func (d *manager) process(ctx context.Context, job Job) error {
	if _, err := d.Validate(ctx, job); err != nil {
		return err
	}
	return nil
}

func (d *manager) alert(in ...model.Report) {
	d.mtx.RLock()
	if !d.closed {
		d.mtx.RUnlock()
		d.notifier.Notify(in...)
		return
	}
	d.mtx.RUnlock()
}

// shutdown drains the queue, processing every job left in it.
func (d *manager) shutdown(ctx context.Context) error {
	for {
		front := d.queue.Queue().Front()
		if front == nil {
			d.cancelNotifier()
			break
		}

		if err := d.process(ctx, front.Value.(Job)); err != nil {
			return fmt.Errorf("runner shutdown: unable processed job: %w", err)
		}

		d.queue.Queue().Remove(front)
	}
	return nil
}

func (d *manager) receive(ctx context.Context) {
	logger := logging.FromContext(ctx)
	defer func() {
		d.shutDownCh <- d.shutdown(ctx)
	}()

	for {
		select {
		case recv, ok := <-d.queue.Receive():
			if !ok {
				return
			}
			if err := d.process(ctx, recv.(Job)); err != nil {
				logger.Errorf("unable processed job: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (d *manager) worker(ctx context.Context, num int) {
	for i := 0; i < num; i++ {
		go d.receive(ctx)
	}
}

func (d *manager) collector(ctx context.Context) {
	defer close(d.jobCh)
	for {
		select {
		case in := <-d.jobCh:
			d.queue.Send(in)
		case <-ctx.Done():
			d.mtx.Lock()
			d.closed = true
			d.mtx.Unlock()
			return
		}
	}
}
