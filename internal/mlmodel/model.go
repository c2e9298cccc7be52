package mlmodel

// ProvideFn is a factory contract returning a fresh untrained model.
type ProvideFn func() (Model, error)

// Model is the capability set every validated learner must satisfy.
// Fit mutates the receiver; the validator relies on that pass-by-reference
// contract and never copies models.
type Model interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// ProbaModel is an optional extension for models able to emit
// probability-like scores. Ranking metrics prefer it over hard labels.
type ProbaModel interface {
	Model
	PredictProba(x [][]float64) ([]float64, error)
}

// Scores returns probability scores when the model supports them and class
// predictions otherwise.
func Scores(m Model, x [][]float64) ([]float64, error) {
	if pm, ok := m.(ProbaModel); ok {
		return pm.PredictProba(x)
	}
	return m.Predict(x)
}
