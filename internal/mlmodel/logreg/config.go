package logreg

type Config struct {
	LearningRate float64 `envconfig:"MVD_LOGREG_LEARNING_RATE" default:"0.1"`
	Iterations   int     `envconfig:"MVD_LOGREG_ITERATIONS" default:"200"`
	L2           float64 `envconfig:"MVD_LOGREG_L2" default:"0"`

	// Patience 0 disables early stopping.
	Patience int     `envconfig:"MVD_LOGREG_PATIENCE" default:"3"`
	MinDelta float64 `envconfig:"MVD_LOGREG_MIN_DELTA" default:"0.0001"`
}
