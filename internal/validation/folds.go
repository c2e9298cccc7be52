package validation

// Fold is one expanding-window train/test partition over a time-sorted
// dataset. All intervals are half-open row ranges; TrainHi == TestLo, so
// a fold's train window always ends where its test window begins and the
// two never intersect.
type Fold struct {
	Index   int
	TrainLo int
	TrainHi int
	TestLo  int
	TestHi  int
}

func (f Fold) TrainLen() int {
	return f.TrainHi - f.TrainLo
}

func (f Fold) TestLen() int {
	return f.TestHi - f.TestLo
}

// HoldoutSplit returns the last expanding-window fold: train on the
// first splits segments, test on the final one. The leakage analysis
// runs on this partition.
func HoldoutSplit(n, splits int) (Fold, error) {
	folds, err := expandingWindow(n, splits)
	if err != nil {
		return Fold{}, err
	}
	return folds[len(folds)-1], nil
}

// expandingWindow partitions n rows into splits folds: the sorted rows
// are cut into splits+1 segments, fold k trains on segments [0..k] and
// tests on segment k+1. Test windows tile the last splits segments with
// no row skipped or duplicated.
func expandingWindow(n, splits int) ([]Fold, error) {
	folds := make([]Fold, splits)
	for k := 0; k < splits; k++ {
		boundary := (k + 1) * n / (splits + 1)
		next := (k + 2) * n / (splits + 1)
		folds[k] = Fold{
			Index:   k,
			TrainLo: 0,
			TrainHi: boundary,
			TestLo:  boundary,
			TestHi:  next,
		}
		if folds[k].TrainLen() == 0 || folds[k].TestLen() == 0 {
			return nil, &InsufficientDataError{Fold: k, Train: folds[k].TrainLen(), Test: folds[k].TestLen()}
		}
	}
	return folds, nil
}
