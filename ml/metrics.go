package ml

import (
	"errors"
	"sort"
)

type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarises predictions on a held-out set.
type ClassificationReport struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Evaluate compares yTrue and yPred. The report lists the sorted union of
// both label sets; a zero denominator yields 0.
func Evaluate(yTrue, yPred []string) (*ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, errors.New("yTrue and yPred size mismatch")
	}
	if len(yTrue) == 0 {
		return nil, ErrEmptyInput
	}

	labelSet := make(map[string]struct{})
	for i := range yTrue {
		labelSet[yTrue[i]] = struct{}{}
		labelSet[yPred[i]] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	truePos := make(map[string]int)
	predicted := make(map[string]int)
	actual := make(map[string]int)
	correct := 0
	for i := range yTrue {
		actual[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			truePos[yTrue[i]]++
			correct++
		}
	}

	report := &ClassificationReport{
		Classes: make([]ClassMetrics, 0, len(labels)),
		Total:   len(yTrue),
	}
	report.Accuracy = float64(correct) / float64(len(yTrue))

	var macro, weighted ClassMetrics
	for _, label := range labels {
		m := ClassMetrics{
			Label:     label,
			Precision: safeDiv(float64(truePos[label]), float64(predicted[label])),
			Recall:    safeDiv(float64(truePos[label]), float64(actual[label])),
			Support:   actual[label],
		}
		m.F1 = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)
		report.Classes = append(report.Classes, m)

		macro.Precision += m.Precision
		macro.Recall += m.Recall
		macro.F1 += m.F1
		w := float64(m.Support)
		weighted.Precision += w * m.Precision
		weighted.Recall += w * m.Recall
		weighted.F1 += w * m.F1
	}

	k := float64(len(labels))
	total := float64(len(yTrue))
	report.MacroAvg = ClassMetrics{
		Label:     "macro avg",
		Precision: macro.Precision / k,
		Recall:    macro.Recall / k,
		F1:        macro.F1 / k,
		Support:   len(yTrue),
	}
	report.WeightedAvg = ClassMetrics{
		Label:     "weighted avg",
		Precision: weighted.Precision / total,
		Recall:    weighted.Recall / total,
		F1:        weighted.F1 / total,
		Support:   len(yTrue),
	}
	return report, nil
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
