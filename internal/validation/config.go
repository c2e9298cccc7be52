package validation

type Config struct {
	// Number of expanding-window folds
	NSplits int `envconfig:"MVD_VALIDATION_N_SPLITS" default:"5"`
	// Mean train/test AUC gap above which overfitting risk is MEDIUM (2x for HIGH)
	TrainValGap float64 `envconfig:"MVD_VALIDATION_TRAIN_VAL_GAP" default:"0.05"`
	// Test-score stddev across folds above which the run is considered unstable
	CVStdThreshold float64 `envconfig:"MVD_VALIDATION_CV_STD_THRESHOLD" default:"0.03"`
	// Scoring metrics computed per fold
	Metrics []string `envconfig:"MVD_VALIDATION_METRICS" default:"roc_auc,precision,recall,f1"`
	// Upper bound on concurrently evaluated folds, 1 disables parallelism
	MaxParallelFolds int `envconfig:"MVD_VALIDATION_MAX_PARALLEL_FOLDS" default:"1"`
}
