package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions sample indices into train and test sets so that
// each label keeps roughly its share in both. The same labels, ratio and seed
// always produce the same partition.
func StratifiedSplit(labels []string, testRatio float64, seed int64) (train, test []int, err error) {
	n := len(labels)
	if n == 0 {
		return nil, nil, fmt.Errorf("split: %w", ErrEmptyInput)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0,1), got %v", testRatio)
	}

	classes := distinctSorted(labels)
	members := make([][]int, len(classes))
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	for i, label := range labels {
		c := classIdx[label]
		members[c] = append(members[c], i)
	}

	if len(classes) < 2 {
		return nil, nil, fmt.Errorf("stratified split needs at least 2 classes, got %d", len(classes))
	}
	counts := make([]int, len(classes))
	for c, m := range members {
		counts[c] = len(m)
		if len(m) < 2 {
			return nil, nil, fmt.Errorf("class %q has only %d member; at least 2 are required", classes[c], len(m))
		}
	}

	nTest := int(math.Ceil(testRatio * float64(n)))
	nTrain := n - nTest
	if nTrain < len(classes) {
		return nil, nil, fmt.Errorf("train size %d is smaller than the number of classes %d", nTrain, len(classes))
	}
	if nTest < len(classes) {
		return nil, nil, fmt.Errorf("test size %d is smaller than the number of classes %d", nTest, len(classes))
	}

	rng := rand.New(rand.NewSource(seed))
	trainQuota := approximateMode(counts, nTrain, rng)
	remaining := make([]int, len(counts))
	for c := range counts {
		remaining[c] = counts[c] - trainQuota[c]
	}
	testQuota := approximateMode(remaining, nTest, rng)

	for c, m := range members {
		perm := rng.Perm(len(m))
		for k, p := range perm {
			switch {
			case k < trainQuota[c]:
				train = append(train, m[p])
			case k < trainQuota[c]+testQuota[c]:
				test = append(test, m[p])
			}
		}
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// approximateMode spreads draws over classes in proportion to counts: every
// class gets the floor of its share, and the leftover draws go to the largest
// fractional remainders, ties picked at random.
func approximateMode(counts []int, draws int, rng *rand.Rand) []int {
	total := 0
	for _, c := range counts {
		total += c
	}
	alloc := make([]int, len(counts))
	if total == 0 {
		return alloc
	}

	remainder := make([]float64, len(counts))
	assigned := 0
	for i, c := range counts {
		share := float64(c) / float64(total) * float64(draws)
		alloc[i] = int(math.Floor(share))
		remainder[i] = share - float64(alloc[i])
		assigned += alloc[i]
	}
	need := draws - assigned

	distinct := append([]float64(nil), remainder...)
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	for k := 0; k < len(distinct) && need > 0; k++ {
		if k > 0 && distinct[k] == distinct[k-1] {
			continue
		}
		var tied []int
		for i, r := range remainder {
			if r == distinct[k] {
				tied = append(tied, i)
			}
		}
		rng.Shuffle(len(tied), func(i, j int) { tied[i], tied[j] = tied[j], tied[i] })
		take := len(tied)
		if take > need {
			take = need
		}
		for _, i := range tied[:take] {
			alloc[i]++
		}
		need -= take
	}
	return alloc
}
