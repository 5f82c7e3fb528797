package ml

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLabels(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var labels []string
	for i := 0; ; i++ {
		added := false
		for _, k := range keys {
			if i < counts[k] {
				labels = append(labels, k)
				added = true
			}
		}
		if !added {
			return labels
		}
	}
}

func TestStratifiedSplitSizesAndProportions(t *testing.T) {
	labels := repeatLabels(map[string]int{"A": 50, "B": 30, "C": 20})
	train, test, err := StratifiedSplit(labels, 0.3, 42)
	require.NoError(t, err)

	assert.Len(t, test, 30)
	assert.Len(t, train, 70)

	perClass := map[string]int{}
	for _, i := range test {
		perClass[labels[i]]++
	}
	assert.Equal(t, map[string]int{"A": 15, "B": 9, "C": 6}, perClass)

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i], "index %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, len(labels))
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	labels := repeatLabels(map[string]int{"A": 7, "B": 5, "C": 3, "D": 2})
	train1, test1, err := StratifiedSplit(labels, 0.3, 42)
	require.NoError(t, err)
	train2, test2, err := StratifiedSplit(labels, 0.3, 42)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	train3, _, err := StratifiedSplit(labels, 0.3, 7)
	require.NoError(t, err)
	assert.Len(t, train3, len(train1))
}

func TestStratifiedSplitEveryClassKeepsATrainingRow(t *testing.T) {
	labels := repeatLabels(map[string]int{"A": 2, "B": 2, "C": 2, "D": 2, "E": 12})
	train, _, err := StratifiedSplit(labels, 0.3, 42)
	require.NoError(t, err)

	inTrain := map[string]int{}
	for _, i := range train {
		inTrain[labels[i]]++
	}
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		assert.GreaterOrEqual(t, inTrain[c], 1, c)
	}
}

func TestStratifiedSplitErrors(t *testing.T) {
	_, _, err := StratifiedSplit(nil, 0.3, 42)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, _, err = StratifiedSplit([]string{"A", "A", "B"}, 0.3, 42)
	assert.ErrorContains(t, err, "only 1 member")

	_, _, err = StratifiedSplit([]string{"A", "A", "A"}, 0.3, 42)
	assert.ErrorContains(t, err, "at least 2 classes")

	// 4 classes, n_test = ceil(0.3*8) = 3
	_, _, err = StratifiedSplit([]string{"A", "A", "B", "B", "C", "C", "D", "D"}, 0.3, 42)
	assert.ErrorContains(t, err, "test size")

	_, _, err = StratifiedSplit([]string{"A", "A", "B", "B"}, 1.0, 42)
	assert.Error(t, err)
}

func TestApproximateModeSumsToDraws(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alloc := approximateMode([]int{3, 3, 3}, 4, rng)
	total := 0
	for _, a := range alloc {
		assert.GreaterOrEqual(t, a, 1)
		total += a
	}
	assert.Equal(t, 4, total)
}
