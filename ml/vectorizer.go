package ml

import (
	"fmt"
	"math"
	"sort"
)

// TfidfVectorizer turns documents into L2-normalised TF-IDF rows over word
// n-grams. Terms with document frequency below MinDF are dropped.
type TfidfVectorizer struct {
	NgramMin int       `json:"ngram_min"`
	NgramMax int       `json:"ngram_max"`
	MinDF    int       `json:"min_df"`
	Terms    []string  `json:"terms"` // sorted; position is the feature index
	IDF      []float64 `json:"idf"`

	vocabulary map[string]int
}

func NewTfidfVectorizer(ngramMin, ngramMax, minDF int) *TfidfVectorizer {
	return &TfidfVectorizer{NgramMin: ngramMin, NgramMax: ngramMax, MinDF: minDF}
}

func (v *TfidfVectorizer) analyze(doc string) []string {
	return NGrams(Tokenize(doc), v.NgramMin, v.NgramMax)
}

// Fit learns the vocabulary and idf weights from docs.
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("fit vectorizer: %w", ErrEmptyInput)
	}
	if v.NgramMin < 1 || v.NgramMax < v.NgramMin {
		return fmt.Errorf("invalid ngram range (%d, %d)", v.NgramMin, v.NgramMax)
	}
	minDF := v.MinDF
	if minDF < 1 {
		minDF = 1
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, gram := range v.analyze(doc) {
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			df[gram]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= minDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("empty vocabulary; min_df=%d prunes every term", minDF)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	v.Terms = terms
	v.IDF = idf
	v.buildIndex()
	return nil
}

func (v *TfidfVectorizer) buildIndex() {
	v.vocabulary = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.vocabulary[term] = i
	}
}

// NumFeatures is the vocabulary size.
func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.Terms)
}

// Transform maps one document onto the learned vocabulary. Unknown terms are
// ignored; a document with no known terms yields an empty row.
func (v *TfidfVectorizer) Transform(doc string) (SparseVector, error) {
	if v.vocabulary == nil {
		return SparseVector{}, fmt.Errorf("vectorizer: %w", ErrNotFitted)
	}

	counts := make(map[int]float64)
	for _, gram := range v.analyze(doc) {
		if idx, ok := v.vocabulary[gram]; ok {
			counts[idx]++
		}
	}

	row := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		row.Indices = append(row.Indices, idx)
	}
	sort.Ints(row.Indices)
	for _, idx := range row.Indices {
		row.Values = append(row.Values, counts[idx]*v.IDF[idx])
	}

	if norm := row.Norm(); norm > 0 {
		for i := range row.Values {
			row.Values[i] /= norm
		}
	}
	return row, nil
}

func (v *TfidfVectorizer) TransformAll(docs []string) ([]SparseVector, error) {
	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		row, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func (v *TfidfVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.TransformAll(docs)
}
