package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{1, 2, 7, 100, 1001} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeNBoundsWorkers(t *testing.T) {
	var calls int32
	ParallelizeN(10, 3, func(start, end int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(3), calls)

	calls = 0
	ParallelizeN(2, 8, func(start, end int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(2), calls)
}

func TestParallelizeWithThreshold(t *testing.T) {
	var ranges [][2]int
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})
	assert.Equal(t, [][2]int{{0, 5}}, ranges)

	called := false
	ParallelizeWithThreshold(0, 10, func(int, int) { called = true })
	assert.False(t, called)
	Parallelize(0, func(int, int) { called = true })
	assert.False(t, called)
}
