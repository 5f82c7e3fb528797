package ml

import "fmt"

// ModelTypeTfidfLogReg names the only artifact layout this package reads.
const ModelTypeTfidfLogReg = "tfidf_logreg"

func LoadModel(modelType, path string) (TextClassifier, error) {
	switch modelType {
	case ModelTypeTfidfLogReg, "":
		model, err := LoadPipeline(path)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, modelType)
	}
}
