package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/report/model"
)

func newDBTxExecutor(opts dbTxExecutorOptions, shutdownCh chan<- error) *dbTxExecutor {
	return &dbTxExecutor{opts: opts, shutdownCh: shutdownCh}
}

type dbTxExecutorOptions struct {
	dbFlushSize int
	dbFlushTime time.Duration
}

// dbTxExecutor accumulates finished reports and inserts them in bulk
// into persistent storage.
type dbTxExecutor struct {
	mtx sync.RWMutex

	opts dbTxExecutorOptions
	// buffer of reports awaiting the next flush
	buf        []model.Report
	shutdownCh chan<- error
}

// shutdown urgently inserts all buffered reports into persistent storage.
func (tx *dbTxExecutor) shutdown(appendFn appendReportsFn) error {
	tx.mtx.Lock()
	defer tx.mtx.Unlock()
	if err := appendFn(context.Background(), tx.buf); err != nil {
		return fmt.Errorf("txExecutor: append many operation failed: %w", err)
	}
	tx.buf = tx.buf[:0]
	return nil
}

// write adds a report to the buffer and triggers a bulk insert once the
// buffer outgrows the flush size.
func (tx *dbTxExecutor) write(ctx context.Context, report model.Report, appendFn appendReportsFn) {
	tx.mtx.Lock()
	if tx.buf == nil {
		tx.buf = []model.Report{}
	}

	tx.buf = append(tx.buf, report)
	bufLen := len(tx.buf)
	tx.mtx.Unlock()

	if bufLen >= tx.opts.dbFlushSize {
		go tx.bulkAppend(ctx, appendFn)
	}
}

func (tx *dbTxExecutor) bulkAppend(ctx context.Context, appendFn appendReportsFn) {
	logger := logging.FromContext(ctx)

	tx.mtx.Lock()
	tmpBuf := make([]model.Report, len(tx.buf))
	copy(tmpBuf, tx.buf)
	tx.buf = tx.buf[:0]
	tx.mtx.Unlock()

	if err := appendFn(context.Background(), tmpBuf); err != nil {
		logger.Errorf("txExecutor: append many operation failed: %v", err)
	}
}

// flusher periodically drains the buffer into the database.
func (tx *dbTxExecutor) flusher(ctx context.Context, appendFn appendReportsFn) {
	defer func() {
		tx.shutdownCh <- tx.shutdown(appendFn)
	}()
	ticker := time.NewTicker(tx.opts.dbFlushTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tx.bulkAppend(ctx, appendFn)
		case <-ctx.Done():
			return
		}
	}
}
