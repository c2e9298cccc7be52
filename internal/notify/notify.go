// Package notify posts low scoring validation reports to configured
// webhook targets.
package notify

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-mvd/mvd/internal/httputil"
	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/util"
	"github.com/go-mvd/mvd/pkg/rworker"
)

type ProvideFn = func(chan<- error) (Manager, error)

const UserAgent = "MVD/0.1"

type Options struct {
	maxConcurrentRequest int
	requestTimeout       time.Duration
	alertInterval        time.Duration
	targets              Targets
}

type Option func(*manager)

func WithMaxConcurrentRequest(n int) Option {
	return func(o *manager) {
		o.opts.maxConcurrentRequest = n
	}
}

func WithAlertInterval(t time.Duration) Option {
	return func(o *manager) {
		o.opts.alertInterval = t
	}
}

func WithRequestTimeout(t time.Duration) Option {
	return func(o *manager) {
		o.opts.requestTimeout = t
	}
}

func WithTargets(m Targets) Option {
	return func(o *manager) {
		o.opts.targets = m
	}
}

type payload struct {
	ModelID string         `json:"modelId"`
	Reports []model.Report `json:"reports"`
}

type Notifier interface {
	Notify(reports ...model.Report)
}

type Manager interface {
	Notifier
	Run(context.Context) error
	Stop()
}

func New(shutdownCh chan<- error, opts ...Option) (*manager, error) {
	m := &manager{
		shutdownCh: shutdownCh,
		clients:    map[string]*http.Client{},
		pending:    map[string][]model.Report{},
	}
	for _, f := range opts {
		f(m)
	}
	if m.opts.alertInterval <= 0 {
		m.opts.alertInterval = 5 * time.Second
	}
	if m.opts.maxConcurrentRequest <= 0 {
		m.opts.maxConcurrentRequest = 64
	}
	if m.opts.requestTimeout <= 0 {
		m.opts.requestTimeout = 15 * time.Second
	}
	for _, target := range m.opts.targets {
		if _, ok := m.clients[target.URL]; !ok {
			client, err := httputil.NewClientFromConfig(target.HTTPConfig, true)
			if err != nil {
				return nil, fmt.Errorf("unable create client for target %s: %w", target.URL, err)
			}
			m.clients[target.URL] = client
		}
	}
	return m, nil
}

type manager struct {
	mtx        sync.RWMutex
	opts       Options
	shutdownCh chan<- error
	clients    map[string]*http.Client
	// reports queued per model id until the next tick
	pending map[string][]model.Report
	cancel  func()
}

var _ Manager = (*manager)(nil)

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.notifier(ctx)
	return nil
}

func (m *manager) Stop() {
	m.cancel()
}

func (m *manager) Notify(reports ...model.Report) {
	m.mtx.Lock()
	for i := range reports {
		m.pending[reports[i].ModelID] = append(m.pending[reports[i].ModelID], reports[i])
	}
	m.mtx.Unlock()
}

// take drains the pending reports a target is subscribed to.
func (m *manager) take(target Target) []model.Report {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if target.ModelID != "" {
		reports := m.pending[target.ModelID]
		m.pending[target.ModelID] = nil
		return reports
	}
	var reports []model.Report
	for k := range m.pending {
		reports = append(reports, m.pending[k]...)
		m.pending[k] = nil
	}
	return reports
}

func (m *manager) requeue(reports []model.Report) {
	m.mtx.Lock()
	for i := range reports {
		m.pending[reports[i].ModelID] = append(m.pending[reports[i].ModelID], reports[i])
	}
	m.mtx.Unlock()
}

func (m *manager) shutdown() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	dropped := 0
	for _, reports := range m.pending {
		dropped += len(reports)
	}
	if dropped > 0 {
		return fmt.Errorf("notify shutdown: %d undelivered reports", dropped)
	}
	return nil
}

func (m *manager) notifier(ctx context.Context) {
	logger := logging.FromContext(ctx)
	errCh := make(chan error, 1)
	rateCh := make(chan struct{}, m.opts.maxConcurrentRequest)
	defer close(errCh)
	defer close(rateCh)
	go func() {
		for err := range errCh {
			logger.Errorf("alert error: %v", err)
		}
	}()
	defer func() {
		m.shutdownCh <- m.shutdown()
	}()
	wg := sync.WaitGroup{}
	ticker := time.NewTicker(m.opts.alertInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, target := range m.opts.targets {
				target := target
				reports := m.take(target)
				if len(reports) == 0 {
					continue
				}
				rworker.Job(&wg, func() error {
					if err := m.do(context.Background(), target, reports); err != nil {
						m.requeue(reports)
						return fmt.Errorf("alert do request error: %w", err)
					}
					return nil
				}, rateCh, errCh)
			}
			wg.Wait()
		case <-ctx.Done():
			return
		}
	}
}

func (m *manager) do(ctx context.Context, target Target, reports []model.Report) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.requestTimeout)
	defer cancel()

	body, err := json.Marshal(payload{ModelID: target.ModelID, Reports: reports})
	if err != nil {
		return fmt.Errorf("unable encode json data: %w", err)
	}

	buf := util.GetBytesBuffer()
	defer func() {
		buf.Reset()
		util.PutBytesBuffer(buf)
	}()
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(body); err != nil {
		return fmt.Errorf("unable gzip request body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable close gzip writer: %w", err)
	}

	link, err := url.Parse(target.URL)
	if err != nil {
		return fmt.Errorf("url parsing error: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", link.String(), buf)
	if err != nil {
		return fmt.Errorf("creating request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Add("User-Agent", UserAgent)

	client, ok := m.clients[target.URL]
	if !ok {
		return fmt.Errorf("client for target %s not defined", target.URL)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("response was not 200 OK: %s", resp.Status)
	}
	return nil
}
