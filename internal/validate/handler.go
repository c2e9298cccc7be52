package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-mvd/mvd/internal/dataset"
	"github.com/go-mvd/mvd/internal/httputil"
	"github.com/go-mvd/mvd/internal/logging"
	"github.com/go-mvd/mvd/internal/mlmodel"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/runner"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 64 * 1024 * 1024

// ProvideModelFn returns a fresh model instance for an algorithm name.
type ProvideModelFn func(algorithm string) (mlmodel.Model, error)

type item struct {
	ModelID      string      `json:"model"`
	Algorithm    string      `json:"algorithm"`
	FeatureNames []string    `json:"featureNames"`
	Features     [][]float64 `json:"features"`
	Labels       []float64   `json:"labels"`
	Time         []float64   `json:"time"`
}

type request struct {
	// Async jobs are queued and return no reports
	Async bool   `json:"async"`
	Data  []item `json:"data"`
}

type response struct {
	Status string         `json:"status"`
	Data   []model.Report `json:"data,omitempty"`
}

func NewHandler(cfg *Config, mgr runner.Validator, provideFn ProvideModelFn) (http.Handler, error) {
	if mgr == nil {
		return nil, fmt.Errorf("runner instance is not created")
	}
	if provideFn == nil {
		return nil, fmt.Errorf("model provider is not defined")
	}
	return &handler{cfg: cfg, mgr: mgr, provideFn: provideFn}, nil
}

type handler struct {
	cfg       *Config
	mgr       runner.Validator
	provideFn ProvideModelFn
}

func (h *handler) job(in item) (runner.Job, error) {
	var opts []dataset.Option
	if in.Time != nil {
		opts = append(opts, dataset.WithTime(in.Time))
	}
	ds, err := dataset.New(in.FeatureNames, in.Features, in.Labels, opts...)
	if err != nil {
		return runner.Job{}, fmt.Errorf("invalid dataset for model %s: %w", in.ModelID, err)
	}
	m, err := h.provideFn(in.Algorithm)
	if err != nil {
		return runner.Job{}, fmt.Errorf("unable create model %s: %w", in.ModelID, err)
	}
	return runner.Job{ModelID: in.ModelID, Dataset: ds, Model: m}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		logger.Debug(fmt.Sprintf(`{"error": "%v"}`, "content-type is not application/json"))
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Data) == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "data must not be empty"}`)
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	logger.Debugf("validate request: %s", spew.Sdump(req.Data[0].ModelID, req.Data[0].Algorithm, len(req.Data[0].Features)))

	if req.Async {
		for _, in := range req.Data {
			job, err := h.job(in)
			if err != nil {
				httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
				return
			}
			if err := h.mgr.Submit(job); err != nil {
				httputil.RespInternalError(ctx, w, `{"error": "submit error, %v"}`, err)
				return
			}
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = fmt.Fprintf(w, `{"status": "accepted"}`)
		return
	}

	reports := make([]model.Report, len(req.Data))
	errGrp := errgroup.Group{}
	mtx := sync.Mutex{}
	for i, in := range req.Data {
		i, in := i, in
		errGrp.Go(func() error {
			job, err := h.job(in)
			if err != nil {
				return err
			}
			report, err := h.mgr.Validate(ctx, job)
			if err != nil {
				return fmt.Errorf("validate error: %w", err)
			}
			mtx.Lock()
			reports[i] = *report
			mtx.Unlock()
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "validate processing error, %v"}`, err)
		return
	}

	bytes, err := json.Marshal(response{Status: "ok", Data: reports})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
