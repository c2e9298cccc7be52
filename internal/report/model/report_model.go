package model

import (
	"time"

	"github.com/google/uuid"
)

// Risk is a coarse three-level classification shared by the overfitting
// and leakage analyses.
type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// Severity orders risks for comparisons; unknown values rank lowest.
func (r Risk) Severity() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

func NewReport(modelID string, score float64, overfit, leakage Risk, recommendations []string, details map[string]interface{}) Report {
	return Report{
		ID:              uuid.New(),
		ModelID:         modelID,
		Score:           score,
		OverfitRisk:     overfit,
		LeakageRisk:     leakage,
		Recommendations: recommendations,
		Details:         details,
		CreatedAt:       time.Now(),
	}
}

// Report is the immutable outcome of one validation run, ready for JSON
// serialization by whatever layer fronts the daemon.
type Report struct {
	ID              uuid.UUID              `json:"id"`
	ModelID         string                 `json:"modelId"`
	Score           float64                `json:"score"`
	OverfitRisk     Risk                   `json:"overfitRisk"`
	LeakageRisk     Risk                   `json:"leakageRisk"`
	Recommendations []string               `json:"recommendations"`
	Details         map[string]interface{} `json:"details,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}
