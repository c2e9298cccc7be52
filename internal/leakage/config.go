package leakage

type Config struct {
	// p-value below which a feature distribution shift counts as significant
	PValueThreshold float64 `envconfig:"MVD_LEAKAGE_P_VALUE_THRESHOLD" default:"0.01"`
	// normalized train/test mean difference flagged as a shift
	MeanDiffThreshold float64 `envconfig:"MVD_LEAKAGE_MEAN_DIFF_THRESHOLD" default:"2.0"`
	// train/test std ratio flagged as a shift
	StdRatioThreshold float64 `envconfig:"MVD_LEAKAGE_STD_RATIO_THRESHOLD" default:"2.0"`
	// per-feature risk score above which the feature is high risk
	HighRiskScore float64 `envconfig:"MVD_LEAKAGE_HIGH_RISK_SCORE" default:"0.5"`
	// target-probe risk score above which target leakage counts toward the overall risk
	TargetRiskThreshold float64 `envconfig:"MVD_LEAKAGE_TARGET_RISK_THRESHOLD" default:"0.7"`
	// share of statistically failing features that counts toward the overall risk
	FailedShareThreshold float64 `envconfig:"MVD_LEAKAGE_FAILED_SHARE_THRESHOLD" default:"0.1"`
	// significance level of the per-feature KS / Mann-Whitney battery
	BatteryAlpha float64 `envconfig:"MVD_LEAKAGE_BATTERY_ALPHA" default:"0.05"`
}
