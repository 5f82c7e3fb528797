package ml

import "errors"

var (
	ErrNotFitted         = errors.New("model not trained")
	ErrEmptyInput        = errors.New("empty input")
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrUnsupportedModel  = errors.New("unsupported model type")
	ErrInconsistentModel = errors.New("inconsistent model artifact")
)
