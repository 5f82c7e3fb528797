package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTfidfVectorizerIDF(t *testing.T) {
	docs := []string{"apple banana", "apple cherry", "banana apple"}
	v := NewTfidfVectorizer(1, 1, 1)
	require.NoError(t, v.Fit(docs))

	assert.Equal(t, []string{"apple", "banana", "cherry"}, v.Terms)
	assert.InDelta(t, 1.0, v.IDF[0], 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[1], 1e-12)
	assert.InDelta(t, math.Log(2.0)+1, v.IDF[2], 1e-12)
}

func TestTfidfVectorizerMinDFDropsRareTerms(t *testing.T) {
	docs := []string{"apple banana", "apple cherry", "banana apple"}
	v := NewTfidfVectorizer(1, 2, 2)
	require.NoError(t, v.Fit(docs))

	// every bigram and "cherry" occur in a single document
	assert.Equal(t, []string{"apple", "banana"}, v.Terms)
}

func TestTfidfVectorizerTransformNormalises(t *testing.T) {
	v := NewTfidfVectorizer(1, 1, 1)
	require.NoError(t, v.Fit([]string{"apple banana", "apple cherry", "banana apple"}))

	row, err := v.Transform("apple apple")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, row.Indices)
	assert.InDelta(t, 1.0, row.Values[0], 1e-12)

	row, err = v.Transform("banana cherry durian")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, row.Indices)
	assert.InDelta(t, 1.0, row.Norm(), 1e-12)
	assert.Greater(t, row.Values[1], row.Values[0])
}

func TestTfidfVectorizerUnknownTextIsEmptyRow(t *testing.T) {
	v := NewTfidfVectorizer(1, 2, 1)
	require.NoError(t, v.Fit([]string{"apple banana", "cherry"}))

	row, err := v.Transform(" ")
	require.NoError(t, err)
	assert.Equal(t, 0, row.Len())
}

func TestTfidfVectorizerErrors(t *testing.T) {
	v := NewTfidfVectorizer(1, 2, 2)
	err := v.Fit(nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	err = v.Fit([]string{"one", "two"})
	assert.Error(t, err, "every term pruned by min_df")

	_, err = NewTfidfVectorizer(1, 1, 1).Transform("x")
	assert.True(t, errors.Is(err, ErrNotFitted))
}
