package integration

import "github.com/go-mvd/mvd/internal/report/model"

type Item struct {
	ModelID      string      `json:"model"`
	Algorithm    string      `json:"algorithm"`
	FeatureNames []string    `json:"featureNames"`
	Features     [][]float64 `json:"features"`
	Labels       []float64   `json:"labels"`
	Time         []float64   `json:"time"`
}

type Request struct {
	Async bool   `json:"async"`
	Data  []Item `json:"data"`
}

type ValidateResponse struct {
	Status string         `json:"status"`
	Data   []model.Report `json:"data"`
}

type ReportsResponse struct {
	ModelID string         `json:"modelId"`
	Data    []model.Report `json:"data"`
}
