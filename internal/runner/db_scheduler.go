package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/report/model"
)

type dbSchedulerConfig struct {
	maxReportsStored int
	maxStorageTime   time.Duration
	rebuildDBTime    time.Duration
}

func newDBScheduler(config dbSchedulerConfig) *dbScheduler {
	return &dbScheduler{opts: config}
}

// dbScheduler keeps the report store bounded: it drops reports past the
// configured age and trims each model bucket down to the configured
// maximum, oldest first.
type dbScheduler struct {
	opts dbSchedulerConfig
}

// processOutdatedReports fetches the reports of one model that outlived
// maxStorageTime and bulk deletes them.
func (s *dbScheduler) processOutdatedReports(
	modelID string,
	fetchFn fetchReportsByModelFn,
	deleteFn deleteReportsFn,
) error {
	reports, err := fetchFn(modelID, func(report model.Report) bool {
		return time.Since(report.CreatedAt) > s.opts.maxStorageTime
	})
	if err != nil {
		return fmt.Errorf("unable find reports by model %s: %w", modelID, err)
	}

	if err := deleteFn(context.Background(), reports); err != nil {
		return fmt.Errorf("unable delete outdated reports of model %s: %w", modelID, err)
	}
	return nil
}

// processOverSizeReports sorts one model's reports by creation date and
// deletes the oldest ones above the stored maximum.
func (s *dbScheduler) processOverSizeReports(
	modelID string,
	fetchFn fetchReportsByModelFn,
	deleteFn deleteReportsFn,
) error {
	reports, err := fetchFn(modelID, nil)
	if err != nil {
		return fmt.Errorf("unable find reports by model %s: %w", modelID, err)
	}

	if len(reports) <= s.opts.maxReportsStored {
		return nil
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.UnixNano() < reports[j].CreatedAt.UnixNano()
	})

	if err := deleteFn(context.Background(), reports[:len(reports)-s.opts.maxReportsStored]); err != nil {
		return fmt.Errorf("unable delete oversize reports of model %s: %w", modelID, err)
	}
	return nil
}

func (s *dbScheduler) rebuildOutdated(
	keysFn fetchKeysFn,
	fetchFn fetchReportsByModelFn,
	deleteFn deleteReportsFn,
) error {
	keys, err := keysFn()
	if err != nil {
		return fmt.Errorf("unable to fetch report keys: %w", err)
	}
	for i := range keys {
		if err := s.processOutdatedReports(keys[i], fetchFn, deleteFn); err != nil {
			return fmt.Errorf("unable process reports: %w", err)
		}
	}
	return nil
}

func (s *dbScheduler) rebuildSize(
	keysFn fetchKeysFn,
	countFn countByModelFn,
	fetchFn fetchReportsByModelFn,
	deleteFn deleteReportsFn,
) error {
	keys, err := keysFn()
	if err != nil {
		return fmt.Errorf("unable fetch keys: %w", err)
	}
	for i := range keys {
		length, err := countFn(keys[i])
		if err != nil {
			return fmt.Errorf("unable count by model %s: %w", keys[i], err)
		}
		if length > s.opts.maxReportsStored {
			if err := s.processOverSizeReports(keys[i], fetchFn, deleteFn); err != nil {
				return fmt.Errorf("unable process reports: %w", err)
			}
		}
	}
	return nil
}

func (s *dbScheduler) schedule(
	ctx context.Context,
	keysFn fetchKeysFn,
	countFn countByModelFn,
	fetchFn fetchReportsByModelFn,
	deleteFn deleteReportsFn,
) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(s.opts.rebuildDBTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.opts.maxReportsStored > 0 {
				if err := s.rebuildSize(keysFn, countFn, fetchFn, deleteFn); err != nil {
					logger.Errorf("unable db rebuild size: %v", err)
				}
			}
			if s.opts.maxStorageTime > 0 {
				if err := s.rebuildOutdated(keysFn, fetchFn, deleteFn); err != nil {
					logger.Errorf("unable db rebuild outdated: %v", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
