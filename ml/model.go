package ml

// TextClassifier is the read-only surface the predictor service needs.
type TextClassifier interface {
	Predict(texts []string) ([]string, error)
	PredictProba(texts []string) ([][]float64, error)
	Classes() []string
}
