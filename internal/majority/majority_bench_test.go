package majority

import (
	"fmt"
	"testing"

	"majority-vote/internal/dataset"
	"majority-vote/internal/metrics"
)

var benchSizes = []int{100, 1_000, 10_000, 100_000}

var benchDistributions = []dataset.Distribution{
	dataset.Random,
	dataset.Sorted,
	dataset.Reverse,
	dataset.NearlySorted,
}

// sink keeps the compiler from discarding results
var sink int

func BenchmarkFindMajority(b *testing.B) {
	for _, d := range benchDistributions {
		for _, n := range benchSizes {
			seq, err := dataset.NewGenerator(1).Generate(d, n)
			if err != nil {
				b.Fatal(err)
			}

			b.Run(fmt.Sprintf("%s/n=%d/metrics=false", d, n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					v, _ := FindMajority(seq, nil)
					sink += v
				}
			})

			b.Run(fmt.Sprintf("%s/n=%d/metrics=true", d, n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					rec := metrics.NewRecorder(metrics.WithoutGC())
					v, _ := FindMajority(seq, rec)
					sink += v
				}
			})
		}
	}
}
