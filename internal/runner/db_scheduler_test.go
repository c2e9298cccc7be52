package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	reportDb "github.com/go-mvd/mvd/internal/report/database"
	"github.com/go-mvd/mvd/internal/report/model"
)

func TestProcessOverSizeReports(t *testing.T) {
	tests := []struct {
		name             string
		maxReportsStored int
		expectedErr      error
		expectedLen      int
		batch            []model.Report
	}{
		{
			name:             "positive_process_over_size_reports",
			maxReportsStored: 3,
			batch: []model.Report{
				testReport(), testReport(), testReport(), testReport(), testReport(),
			},
			expectedLen: 3,
			expectedErr: nil,
		},
		{
			name:             "negative_process_over_size_reports",
			maxReportsStored: 3,
			batch: []model.Report{
				testReport(), testReport(), testReport(), testReport(), testReport(),
			},
			expectedLen: 3,
			expectedErr: errors.New("test error"),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			scheduler := newDBScheduler(dbSchedulerConfig{maxReportsStored: test.maxReportsStored})
			err := scheduler.processOverSizeReports(
				"test-model",
				func(s string, fn reportDb.FilterFn) ([]model.Report, error) {
					return test.batch, test.expectedErr
				},
				func(ctx context.Context, reports []model.Report) error {
					test.batch = test.batch[0:test.maxReportsStored]
					return test.expectedErr
				},
			)
			if test.expectedErr != nil && err == nil {
				t.Errorf(
					"calling the processOverSizeReports method, err got: %v, expected: %v",
					err,
					test.expectedErr,
				)
			}
			if err == nil && len(test.batch) != test.expectedLen {
				t.Errorf(
					"calling the processOverSizeReports method, the length of data got: %v, expected: %v",
					len(test.batch),
					test.expectedLen,
				)
			}
		})
	}
}

func TestProcessOutdatedReports(t *testing.T) {
	old := testReport()
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	fresh := testReport()

	tests := []struct {
		name           string
		maxStorageTime time.Duration
		batch          []model.Report
		expectedLen    int
	}{
		{
			name:           "positive_process_outdated_reports",
			maxStorageTime: 24 * time.Hour,
			batch:          []model.Report{old, fresh},
			expectedLen:    1,
		},
		{
			name:           "negative_process_outdated_reports",
			maxStorageTime: 24 * time.Hour,
			batch:          []model.Report{fresh},
			expectedLen:    0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			scheduler := newDBScheduler(dbSchedulerConfig{maxStorageTime: test.maxStorageTime})
			deleted := 0
			err := scheduler.processOutdatedReports(
				"test-model",
				func(s string, fn reportDb.FilterFn) ([]model.Report, error) {
					var outdated []model.Report
					for i := range test.batch {
						if fn(test.batch[i]) {
							outdated = append(outdated, test.batch[i])
						}
					}
					return outdated, nil
				},
				func(ctx context.Context, reports []model.Report) error {
					deleted = len(reports)
					return nil
				},
			)
			if err != nil {
				t.Fatalf("calling the processOutdatedReports method, err got: %v, expected: nil", err)
			}
			if deleted != test.expectedLen {
				t.Errorf(
					"calling the processOutdatedReports method, deleted got: %v, expected: %v",
					deleted,
					test.expectedLen,
				)
			}
		})
	}
}
