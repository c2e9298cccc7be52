package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-mvd/mvd/internal/report/model"
)

func testReport() model.Report {
	return model.NewReport("test-model", 80, model.RiskLow, model.RiskLow, nil, nil)
}

func TestDbTxExecutorFlusher(t *testing.T) {
	tests := []struct {
		name           string
		expectedLen    int
		expectedBufLen int
		waitingTime    time.Duration
		batch          []model.Report
	}{
		{
			name:        "positive_flusher",
			waitingTime: 1 * time.Second,
			batch: []model.Report{
				testReport(), testReport(), testReport(), testReport(), testReport(),
			},
			expectedLen:    5,
			expectedBufLen: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			shutdownCh := make(chan error, 1)
			txExecutor := newDBTxExecutor(dbTxExecutorOptions{dbFlushTime: 1 * time.Second}, shutdownCh)
			length := 0
			bit := int64(0)
			ctx, cancel := context.WithCancel(context.TODO())
			txExecutor.buf = test.batch
			go txExecutor.flusher(ctx, func(ctx context.Context, reports []model.Report) error {
				if atomic.LoadInt64(&bit) == 0 {
					length = len(reports)
					atomic.StoreInt64(&bit, 1)
				}
				return nil
			})

			time.Sleep(test.waitingTime * 2)
			cancel()
			<-shutdownCh

			if length != test.expectedLen {
				t.Errorf(
					"calling the flusher method, the length of the inserted data got: %v, expected: %v",
					length,
					test.expectedLen,
				)
			}

			if len(txExecutor.buf) != test.expectedBufLen {
				t.Errorf(
					"calling the flusher method, the length of buffer got: %v, expected: %v",
					len(txExecutor.buf),
					test.expectedBufLen,
				)
			}
		})
	}
}

func TestDbTxExecutorWrite(t *testing.T) {
	tests := []struct {
		name        string
		items       []model.Report
		expectedLen int
	}{
		{
			name:        "positive_write_one",
			items:       []model.Report{testReport()},
			expectedLen: 1,
		},
		{
			name:        "positive_write_two",
			items:       []model.Report{testReport(), testReport()},
			expectedLen: 2,
		},
		{
			name:        "positive_write_three",
			items:       []model.Report{testReport(), testReport(), testReport()},
			expectedLen: 3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			txExecutor := &dbTxExecutor{opts: dbTxExecutorOptions{dbFlushSize: 100}}
			for _, item := range test.items {
				txExecutor.write(context.Background(), item, func(ctx context.Context, reports []model.Report) error {
					return nil
				})
			}

			if len(txExecutor.buf) != test.expectedLen {
				t.Errorf(
					"calling the write method, the length of the inserted data got: %v, expected: %v",
					len(txExecutor.buf),
					test.expectedLen,
				)
			}
		})
	}
}

func TestDbTxExecutorBulkAppend(t *testing.T) {
	tests := []struct {
		name           string
		expectedLen    int
		expectedBufLen int
		buf            []model.Report
	}{
		{
			name: "positive_bulk_append",
			buf: []model.Report{
				testReport(), testReport(), testReport(), testReport(), testReport(),
			},
			expectedLen:    5,
			expectedBufLen: 0,
		},
		{
			name:           "negative_bulk_append",
			buf:            []model.Report{},
			expectedLen:    0,
			expectedBufLen: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			txExecutor := &dbTxExecutor{}
			length := 0
			txExecutor.buf = test.buf
			txExecutor.bulkAppend(context.Background(), func(ctx context.Context, reports []model.Report) error {
				length = len(reports)
				return nil
			})

			if length != test.expectedLen {
				t.Errorf(
					"calling the bulkAppend method, the length of the inserted data got: %v, expected: %v",
					length,
					test.expectedLen,
				)
			}

			if len(txExecutor.buf) != test.expectedBufLen {
				t.Errorf(
					"calling the bulkAppend method, the length of buffer got: %v, expected: %v",
					len(txExecutor.buf),
					test.expectedBufLen,
				)
			}
		})
	}
}

func TestDbTxExecutorShutdown(t *testing.T) {
	tests := []struct {
		name           string
		expectedLen    int
		expectedBufLen int
		expectedErr    error
		buf            []model.Report
	}{
		{
			name: "positive_shutdown",
			buf: []model.Report{
				testReport(), testReport(), testReport(), testReport(), testReport(),
			},
			expectedLen:    5,
			expectedBufLen: 0,
			expectedErr:    nil,
		},
		{
			name:           "negative_shutdown",
			buf:            []model.Report{},
			expectedLen:    0,
			expectedBufLen: 0,
			expectedErr:    errors.New("test"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			length := 0
			txExecutor := &dbTxExecutor{}
			txExecutor.buf = test.buf
			err := txExecutor.shutdown(func(ctx context.Context, reports []model.Report) error {
				length = len(reports)
				if test.expectedErr != nil {
					return test.expectedErr
				}
				return nil
			})

			if test.expectedErr == nil && err != nil {
				t.Errorf("calling the shutdown method, err got: %v, expected: %v", err, test.expectedErr)
			}

			if length != test.expectedLen {
				t.Errorf(
					"calling the shutdown method, the length of the inserted data got: %v, expected: %v",
					length,
					test.expectedLen,
				)
			}

			if len(txExecutor.buf) != test.expectedBufLen {
				t.Errorf(
					"calling the shutdown method, the length of buffer got: %v, expected: %v",
					len(txExecutor.buf),
					test.expectedBufLen,
				)
			}
		})
	}
}
