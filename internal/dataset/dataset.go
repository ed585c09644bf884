package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

var (
	ErrUnknownDistribution = errors.New("unknown distribution")
	ErrInvalidSize         = errors.New("invalid input size")
)

// Distribution describes how the values of a generated sequence are laid out
type Distribution string

const (
	// Uniform draws values uniformly from [0, n)
	Uniform Distribution = "uniform"
	// Random draws values from the small domain [0, 10) so majorities can occur
	Random Distribution = "random"
	// Sorted is 0..n-1 ascending
	Sorted Distribution = "sorted"
	// Reverse is n-1..0 descending
	Reverse Distribution = "reverse"
	// NearlySorted is Sorted with about 5% of positions randomly swapped
	NearlySorted Distribution = "nearly_sorted"
	// Majority fills 60% of the positions with MajorityValue and shuffles
	Majority Distribution = "majority"
)

// MajorityValue is the element planted by the Majority distribution
const MajorityValue = 5

const (
	randomDomain  = 10
	majorityShare = 0.6
	swapEvery     = 20 // elements per random swap
)

// Distributions lists every supported distribution
func Distributions() []Distribution {
	return []Distribution{Uniform, Random, Sorted, Reverse, NearlySorted, Majority}
}

// ParseDistribution converts a name such as "nearly_sorted" to a Distribution.
// Dashes are accepted in place of underscores.
func ParseDistribution(name string) (Distribution, error) {
	normalized := Distribution(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, d := range Distributions() {
		if d == normalized {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDistribution, name)
}

// Generator produces input sequences. The same seed yields the same sequences.
// A Generator is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns a new sequence of length n laid out according to d
func (g *Generator) Generate(d Distribution, n int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	a := make([]int, n)
	switch d {
	case Uniform:
		for i := range a {
			a[i] = g.rnd.Intn(max(1, n))
		}
	case Random:
		for i := range a {
			a[i] = g.rnd.Intn(randomDomain)
		}
	case Sorted:
		for i := range a {
			a[i] = i
		}
	case Reverse:
		for i := range a {
			a[i] = n - i - 1
		}
	case NearlySorted:
		for i := range a {
			a[i] = i
		}
		if n > 0 {
			swaps := max(1, n/swapEvery)
			for i := 0; i < swaps; i++ {
				x, y := g.rnd.Intn(n), g.rnd.Intn(n)
				a[x], a[y] = a[y], a[x]
			}
		}
	case Majority:
		g.fillMajority(a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, string(d))
	}
	return a, nil
}

// fillMajority plants ceil(0.6*n) copies of MajorityValue, fills the rest with other values
// from [0, n] and shuffles
func (g *Generator) fillMajority(a []int) {
	n := len(a)
	if n == 0 {
		return
	}
	count := int(math.Ceil(float64(n) * majorityShare))
	for i := 0; i < count; i++ {
		a[i] = MajorityValue
	}
	for i := count; i < n; i++ {
		v := g.rnd.Intn(n + 1)
		for v == MajorityValue {
			v = g.rnd.Intn(n + 1)
		}
		a[i] = v
	}
	g.rnd.Shuffle(n, func(i, j int) { a[i], a[j] = a[j], a[i] })
}
