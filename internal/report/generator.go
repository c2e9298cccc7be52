package report

import (
	"github.com/go-mvd/mvd/internal/leakage"
	"github.com/go-mvd/mvd/internal/report/model"
	"github.com/go-mvd/mvd/internal/validation"
)

const (
	recommendOverfitHigh   = "High overfitting risk: reduce model complexity, add regularization or collect more training data"
	recommendOverfitMedium = "Moderate overfitting risk: tune regularization and keep watching the train/validation gap"
	recommendLeakageHigh   = "High leakage risk: rebuild the train/test split and audit features correlated with the target"
	recommendLeakageMedium = "Moderate leakage risk: verify preprocessing is fitted on training data only"
	recommendRobust        = "The model generalizes well and shows a robust validation profile"
	recommendExcellent     = "Excellent: the model passed all validation checks"
)

// Generate folds a validation run and a leakage report into one 0-100
// score with recommendations. Deterministic: identical inputs always
// produce an identical report payload.
func Generate(modelID string, run *validation.Run, leak *leakage.Report) model.Report {
	score := 100.0
	recommendations := []string{}

	switch run.OverfitRisk {
	case model.RiskHigh:
		score -= 30
		recommendations = append(recommendations, recommendOverfitHigh)
	case model.RiskMedium:
		score -= 15
		recommendations = append(recommendations, recommendOverfitMedium)
	}

	switch leak.Overall {
	case model.RiskHigh:
		score -= 40
		recommendations = append(recommendations, recommendLeakageHigh)
	case model.RiskMedium:
		score -= 20
		recommendations = append(recommendations, recommendLeakageMedium)
	}

	if score < 0 {
		score = 0
	}
	if score >= 80 {
		recommendations = append(recommendations, recommendRobust)
	}
	if score >= 90 {
		recommendations = append(recommendations, recommendExcellent)
	}

	details := map[string]interface{}{
		"validation": run,
		"leakage":    leak,
	}
	return model.NewReport(modelID, score, run.OverfitRisk, leak.Overall, recommendations, details)
}
