package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FormatVersion is written into every saved artifact.
const FormatVersion = 1

// Pipeline chains the TF-IDF vectorizer and the logistic regression. Once
// fitted or loaded it is read-only and safe for concurrent use.
type Pipeline struct {
	FormatVersion int                 `json:"format_version"`
	Vectorizer    *TfidfVectorizer    `json:"tfidf"`
	Classifier    *LogisticRegression `json:"clf"`
}

func NewPipeline(vectorizer *TfidfVectorizer, classifier *LogisticRegression) *Pipeline {
	return &Pipeline{
		FormatVersion: FormatVersion,
		Vectorizer:    vectorizer,
		Classifier:    classifier,
	}
}

func (p *Pipeline) Fit(texts, labels []string) error {
	if p.Vectorizer == nil || p.Classifier == nil {
		return fmt.Errorf("pipeline: %w", ErrNotFitted)
	}
	rows, err := p.Vectorizer.FitTransform(texts)
	if err != nil {
		return err
	}
	return p.Classifier.Fit(rows, labels, p.Vectorizer.NumFeatures())
}

func (p *Pipeline) Predict(texts []string) ([]string, error) {
	if p.Vectorizer == nil || p.Classifier == nil {
		return nil, fmt.Errorf("pipeline: %w", ErrNotFitted)
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		row, err := p.Vectorizer.Transform(text)
		if err != nil {
			return nil, err
		}
		if out[i], err = p.Classifier.Predict(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pipeline) PredictProba(texts []string) ([][]float64, error) {
	if p.Vectorizer == nil || p.Classifier == nil {
		return nil, fmt.Errorf("pipeline: %w", ErrNotFitted)
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		row, err := p.Vectorizer.Transform(text)
		if err != nil {
			return nil, err
		}
		if out[i], err = p.Classifier.PredictProba(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pipeline) Classes() []string {
	if p.Classifier == nil {
		return nil
	}
	return append([]string(nil), p.Classifier.Classes...)
}

// Save writes the artifact atomically: a temp file in the target directory
// is renamed over path only after it is fully written.
func (p *Pipeline) Save(path string) error {
	if p.Classifier == nil || len(p.Classifier.Classes) == 0 {
		return fmt.Errorf("save: %w", ErrNotFitted)
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pipeline: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadPipeline reads an artifact written by Save and checks that its parts
// agree with each other.
func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Pipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if p.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format_version %d", ErrUnsupportedFormat, p.FormatVersion)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Vectorizer.buildIndex()
	return &p, nil
}

func (p *Pipeline) validate() error {
	v, c := p.Vectorizer, p.Classifier
	if v == nil || c == nil {
		return fmt.Errorf("%w: missing stage", ErrInconsistentModel)
	}
	if len(v.Terms) == 0 || len(v.Terms) != len(v.IDF) {
		return fmt.Errorf("%w: vocabulary/idf size mismatch", ErrInconsistentModel)
	}
	if len(c.Classes) < 2 || len(c.Coef) != len(c.Classes) || len(c.Intercept) != len(c.Classes) {
		return fmt.Errorf("%w: class/coef size mismatch", ErrInconsistentModel)
	}
	for _, row := range c.Coef {
		if len(row) != len(v.Terms) {
			return fmt.Errorf("%w: coef width %d != vocabulary %d", ErrInconsistentModel, len(row), len(v.Terms))
		}
	}
	return nil
}
