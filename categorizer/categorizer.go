// Package categorizer assigns institutional categories to documents, either
// through the prediction service or by keyword matching.
package categorizer

import (
	"context"

	"go.uber.org/zap"
)

const (
	MethodLocalML         = "local-ml"
	MethodLocalMLFallback = "local-ml-fallback"
	MethodKeyword         = "keyword-matching"
)

// Request holds the document text.
type Request struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Score is one category's keyword score.
type Score struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Result holds the chosen category.
type Result struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Method       string  `json:"method"`
	ModelVersion string  `json:"modelVersion,omitempty"`
	Scores       []Score `json:"allScores,omitempty"`
}

// Categorizer categorizes documents.
type Categorizer interface {
	Categorize(ctx context.Context, req Request) (Result, error)
}

type fallbackCategorizer struct {
	primary  Categorizer
	fallback Categorizer
	logger   *zap.Logger
}

// WithFallback returns a Categorizer that asks primary first and, on error,
// answers from fallback with the method rewritten to MethodLocalMLFallback.
func WithFallback(primary, fallback Categorizer, logger *zap.Logger) Categorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackCategorizer{primary: primary, fallback: fallback, logger: logger}
}

func (c *fallbackCategorizer) Categorize(ctx context.Context, req Request) (Result, error) {
	res, err := c.primary.Categorize(ctx, req)
	if err == nil {
		return res, nil
	}
	c.logger.Warn("primary categorizer failed, using fallback", zap.Error(err))

	res, fbErr := c.fallback.Categorize(ctx, req)
	if fbErr != nil {
		return Result{}, fbErr
	}
	res.Method = MethodLocalMLFallback
	return res, nil
}
