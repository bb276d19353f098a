package bbbc005

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// SplitData partitions index-aligned image and target paths into training and
// validation subsets, stratified by the cell count encoded in each image name.
//
// The validation subset receives ceil(fraction*n) samples and every cell
// count keeps its proportion in both subsets as closely as integer counts
// allow. The same inputs and seed always yield the same split.
//
// Returns ErrLengthMismatch if the sequences differ in length, ErrNameMismatch
// if an image name carries no cell count, ErrClassTooSmall if a cell count
// occurs only once, and ErrSplitTooSmall if a subset cannot hold one sample
// of every cell count.
func SplitData(imagePaths, targetPaths []string, seed int64, opts ...SplitOption) (Split, error) {
	if len(imagePaths) != len(targetPaths) {
		return Split{}, fmt.Errorf("%d images, %d targets: %w", len(imagePaths), len(targetPaths), ErrLengthMismatch)
	}

	cfg := newSplitConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	classes := make([]int, len(imagePaths))
	for i, path := range imagePaths {
		n, err := NumberOfCells(path)
		if err != nil {
			return Split{}, err
		}
		classes[i] = n
	}

	rng := rand.New(rand.NewSource(seed))
	train, val, err := stratifiedIndices(classes, cfg.valFraction, rng)
	if err != nil {
		return Split{}, err
	}

	split := Split{
		TrainImages:  make([]string, len(train)),
		ValImages:    make([]string, len(val)),
		TrainTargets: make([]string, len(train)),
		ValTargets:   make([]string, len(val)),
	}
	for i, idx := range train {
		split.TrainImages[i] = imagePaths[idx]
		split.TrainTargets[i] = targetPaths[idx]
	}
	for i, idx := range val {
		split.ValImages[i] = imagePaths[idx]
		split.ValTargets[i] = targetPaths[idx]
	}
	return split, nil
}

// stratifiedIndices returns shuffled training and validation indices into classes.
func stratifiedIndices(classes []int, valFraction float64, rng *rand.Rand) (train, val []int, err error) {
	n := len(classes)
	nVal := int(math.Ceil(valFraction * float64(n)))
	nTrain := n - nVal

	// Members of each class, in input order.
	members := make(map[int][]int)
	for i, c := range classes {
		members[c] = append(members[c], i)
	}
	keys := make([]int, 0, len(members))
	for c := range members {
		keys = append(keys, c)
	}
	sort.Ints(keys)

	counts := make([]int, len(keys))
	for i, c := range keys {
		counts[i] = len(members[c])
		if counts[i] < 2 {
			return nil, nil, fmt.Errorf("cell count %d has %d member: %w", c, counts[i], ErrClassTooSmall)
		}
	}
	if nTrain < len(keys) {
		return nil, nil, fmt.Errorf("training subset of %d for %d classes: %w", nTrain, len(keys), ErrSplitTooSmall)
	}
	if nVal < len(keys) {
		return nil, nil, fmt.Errorf("validation subset of %d for %d classes: %w", nVal, len(keys), ErrSplitTooSmall)
	}

	trainAlloc := apportion(counts, nTrain, rng)
	remaining := make([]int, len(counts))
	for i := range counts {
		remaining[i] = counts[i] - trainAlloc[i]
	}
	valAlloc := apportion(remaining, nVal, rng)

	train = make([]int, 0, nTrain)
	val = make([]int, 0, nVal)
	for i, c := range keys {
		for j, p := range rng.Perm(counts[i]) {
			switch {
			case j < trainAlloc[i]:
				train = append(train, members[c][p])
			case j < trainAlloc[i]+valAlloc[i]:
				val = append(val, members[c][p])
			}
		}
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(val), func(i, j int) { val[i], val[j] = val[j], val[i] })
	return train, val, nil
}

// apportion distributes draws over classes proportionally to counts using the
// largest-remainder method. Classes tied on remainder are ordered randomly.
func apportion(counts []int, draws int, rng *rand.Rand) []int {
	alloc := make([]int, len(counts))

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return alloc
	}

	remainders := make([]float64, len(counts))
	need := draws
	for i, c := range counts {
		exact := float64(draws) * float64(c) / float64(total)
		alloc[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(alloc[i])
		need -= alloc[i]
	}

	// Distinct remainders, largest first.
	levels := append([]float64(nil), remainders...)
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))

	for k := 0; need > 0 && k < len(levels); k++ {
		if k > 0 && levels[k] == levels[k-1] {
			continue
		}
		var tied []int
		for i, r := range remainders {
			if r == levels[k] {
				tied = append(tied, i)
			}
		}
		rng.Shuffle(len(tied), func(i, j int) { tied[i], tied[j] = tied[j], tied[i] })
		for _, i := range tied {
			if need == 0 {
				break
			}
			alloc[i]++
			need--
		}
	}
	return alloc
}
