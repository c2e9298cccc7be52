package validation

import "fmt"

// InsufficientDataError reports a fold that would end up with an empty
// train or test window.
type InsufficientDataError struct {
	Fold  int
	Train int
	Test  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: fold %d has %d train and %d test rows", e.Fold, e.Train, e.Test)
}

// UnknownMetricError reports a requested scoring metric the validator
// does not implement.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Metric)
}
