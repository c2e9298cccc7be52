// Package reports serves stored validation reports over HTTP.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-mvd/mvd/internal/httputil"
	"github.com/go-mvd/mvd/internal/logging"
	reportDb "github.com/go-mvd/mvd/internal/report/database"
	"github.com/go-mvd/mvd/internal/report/model"
)

// Store is the report lookup surface the handler needs.
type Store interface {
	Keys() ([]string, error)
	FindByModel(modelID string, filter reportDb.FilterFn) ([]model.Report, error)
}

type response struct {
	ModelID string         `json:"modelId"`
	Data    []model.Report `json:"data"`
}

func NewHandler(cfg *Config, store Store) (http.Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("report store is not created")
	}
	return &handler{cfg: cfg, store: store}, nil
}

type handler struct {
	cfg   *Config
	store Store
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	modelID := r.URL.Query().Get("model")
	if modelID == "" {
		keys, err := h.store.Keys()
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "failed to fetch model keys %v"}`, err)
			return
		}
		bytes, err := json.Marshal(struct {
			Models []string `json:"models"`
		}{Models: keys})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "%s", bytes)
		return
	}

	list, err := h.store.FindByModel(modelID, nil)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to fetch reports %v"}`, err)
		return
	}

	// newest first
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if len(list) > h.cfg.MaxItems {
		list = list[:h.cfg.MaxItems]
	}

	bytes, err := json.Marshal(response{ModelID: modelID, Data: list})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
