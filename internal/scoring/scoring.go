package scoring

import (
	"math"
	"sort"
)

const (
	MetricROCAUC    = "roc_auc"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1"
)

// classification threshold applied to probability scores
const threshold = 0.5

// Func scores probability-like predictions against binary labels.
type Func func(y, scores []float64) float64

var registry = map[string]Func{
	MetricROCAUC:    ROCAUC,
	MetricPrecision: Precision,
	MetricRecall:    Recall,
	MetricF1:        F1,
}

// For returns the scoring function registered under name.
func For(name string) (Func, bool) {
	fn, ok := registry[name]
	return fn, ok
}

func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func confusion(y, scores []float64) (tp, fp, tn, fn int) {
	for i := range y {
		pred := scores[i] >= threshold
		pos := y[i] == 1
		switch {
		case pred && pos:
			tp++
		case pred && !pos:
			fp++
		case !pred && !pos:
			tn++
		default:
			fn++
		}
	}
	return
}

func Precision(y, scores []float64) float64 {
	tp, fp, _, _ := confusion(y, scores)
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

func Recall(y, scores []float64) float64 {
	tp, _, _, fn := confusion(y, scores)
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

func F1(y, scores []float64) float64 {
	p := Precision(y, scores)
	r := Recall(y, scores)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// ROCAUC computes the area under the ROC curve by a single sorted scan,
// trapezoid rule between distinct score cutoffs.
func ROCAUC(y, scores []float64) float64 {
	type pair struct {
		s float64
		y float64
	}
	n := len(y)
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = pair{scores[i], y[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })

	var pos, neg int
	for _, p := range pairs {
		if p.y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}

	tp, fp := 0, 0
	prevS := math.Inf(1)
	var auc, prevTPR, prevFPR float64
	for i := 0; i < n; i++ {
		if pairs[i].s != prevS {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
			prevTPR, prevFPR = tpr, fpr
			prevS = pairs[i].s
		}
		if pairs[i].y == 1 {
			tp++
		} else {
			fp++
		}
	}
	tpr := float64(tp) / float64(pos)
	fpr := float64(fp) / float64(neg)
	auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
	return auc
}
