package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is an L2-regularised multinomial (softmax) classifier.
// Intercepts are not penalised.
type LogisticRegression struct {
	C       float64 `json:"c"`
	MaxIter int     `json:"max_iter"`
	Tol     float64 `json:"tol"`

	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"` // [class][feature]
	Intercept []float64   `json:"intercept"`
	NIter     int         `json:"n_iter"`
	Converged bool        `json:"converged"`
}

func NewLogisticRegression(c float64, maxIter int, tol float64) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: maxIter, Tol: tol}
}

// Fit trains on rows with numFeatures columns. Classes are the sorted set of
// distinct labels and must number at least two.
func (m *LogisticRegression) Fit(rows []SparseVector, labels []string, numFeatures int) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit classifier: %w", ErrEmptyInput)
	}
	if len(rows) != len(labels) {
		return fmt.Errorf("rows and labels size mismatch: %d != %d", len(rows), len(labels))
	}
	if m.C <= 0 {
		return errors.New("C must be positive")
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	classes := distinctSorted(labels)
	if len(classes) < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	targets := make([]int, len(labels))
	for i, label := range labels {
		targets[i] = classIdx[label]
	}

	obj := &softmaxObjective{
		rows:    rows,
		targets: targets,
		k:       len(classes),
		d:       numFeatures,
		alpha:   1 / (m.C * float64(len(rows))),
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return obj.evaluate(x, nil) },
		Grad: func(grad, x []float64) { obj.evaluate(x, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: m.Tol,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	start := make([]float64, obj.k*(obj.d+1))
	result, err := optimize.Minimize(problem, start, settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("optimize: %w", err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("optimizer diverged")
		}
	}

	m.Classes = classes
	m.Coef = make([][]float64, obj.k)
	m.Intercept = make([]float64, obj.k)
	stride := obj.d + 1
	for c := 0; c < obj.k; c++ {
		m.Coef[c] = append([]float64(nil), result.X[c*stride:c*stride+obj.d]...)
		m.Intercept[c] = result.X[c*stride+obj.d]
	}
	m.NIter = result.Stats.MajorIterations
	m.Converged = err == nil &&
		(result.Status == optimize.GradientThreshold || result.Status == optimize.FunctionConvergence)
	return nil
}

// PredictProba returns the class distribution for one row, ordered like Classes.
func (m *LogisticRegression) PredictProba(row SparseVector) ([]float64, error) {
	if len(m.Classes) == 0 || len(m.Coef) != len(m.Classes) {
		return nil, fmt.Errorf("classifier: %w", ErrNotFitted)
	}
	scores := make([]float64, len(m.Classes))
	for c := range m.Classes {
		scores[c] = row.Dot(m.Coef[c]) + m.Intercept[c]
	}
	softmax(scores)
	return scores, nil
}

// Predict returns the most probable class; ties go to the earlier class.
func (m *LogisticRegression) Predict(row SparseVector) (string, error) {
	proba, err := m.PredictProba(row)
	if err != nil {
		return "", err
	}
	return m.Classes[argmax(proba)], nil
}

type softmaxObjective struct {
	rows    []SparseVector
	targets []int
	k, d    int
	alpha   float64
}

// evaluate returns mean cross-entropy plus alpha/2 * ||W||^2 and, when grad is
// non-nil, writes the gradient into it.
func (o *softmaxObjective) evaluate(x, grad []float64) float64 {
	stride := o.d + 1
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	n := float64(len(o.rows))
	scores := make([]float64, o.k)
	loss := 0.0
	for i, row := range o.rows {
		for c := 0; c < o.k; c++ {
			w := x[c*stride : c*stride+o.d]
			scores[c] = row.Dot(w) + x[c*stride+o.d]
		}
		lse := logSumExp(scores)
		loss += lse - scores[o.targets[i]]
		if grad == nil {
			continue
		}
		for c := 0; c < o.k; c++ {
			g := math.Exp(scores[c] - lse)
			if c == o.targets[i] {
				g--
			}
			g /= n
			base := c * stride
			for j, idx := range row.Indices {
				grad[base+idx] += g * row.Values[j]
			}
			grad[base+o.d] += g
		}
	}
	loss /= n

	penalty := 0.0
	for c := 0; c < o.k; c++ {
		base := c * stride
		for j := 0; j < o.d; j++ {
			w := x[base+j]
			penalty += w * w
			if grad != nil {
				grad[base+j] += o.alpha * w
			}
		}
	}
	return loss + 0.5*o.alpha*penalty
}

func logSumExp(values []float64) float64 {
	maxVal := math.Inf(-1)
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - maxVal)
	}
	return maxVal + math.Log(sum)
}

func softmax(values []float64) {
	lse := logSumExp(values)
	for i, v := range values {
		values[i] = math.Exp(v - lse)
	}
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func distinctSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0)
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
