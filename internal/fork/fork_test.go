package fork

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionCoversRangeExactlyOnce(t *testing.T) {
	assert := require.New(t)

	for _, tc := range []struct{ begin, end, maxWorkers, minChunk int }{
		{0, 1000, 8, 100},
		{0, 50, 8, 100},  // below min chunk -> single range
		{10, 10, 4, 2},   // empty
		{0, 97, 3, 10},   // uneven split
		{0, 5000, 50, 1}, // many small ranges, capped at maxWorkers
	} {
		ranges := Partition(tc.begin, tc.end, tc.maxWorkers, tc.minChunk)
		seen := make([]bool, tc.end-tc.begin)
		for _, r := range ranges {
			assert.LessOrEqual(r.Begin, r.End)
			for i := r.Begin; i < r.End; i++ {
				assert.False(seen[i-tc.begin], "index %d covered twice", i)
				seen[i-tc.begin] = true
			}
		}
		for i, s := range seen {
			assert.True(s, "index %d not covered", i+tc.begin)
		}
		if tc.end > tc.begin {
			assert.LessOrEqual(len(ranges), MaxWorkers)
		}
	}
}

func TestPartitionRespectsMaxWorkers(t *testing.T) {
	ranges := Partition(0, 10_000, 4, 1)
	require.Len(t, ranges, 4)
}

func TestPartitionBelowMinChunkIsSingleRange(t *testing.T) {
	ranges := Partition(0, 99, 50, 100)
	require.Len(t, ranges, 1)
	require.Equal(t, Range{0, 99}, ranges[0])
}

func TestExecuteJoinsAllWorkersBeforeReturning(t *testing.T) {
	const n = 10_000
	out := make([]int, n)

	Execute(0, n, 0, 0, func(r Range) {
		for i := r.Begin; i < r.End; i++ {
			out[i] = i * i
		}
	})

	for i := 0; i < n; i++ {
		require.Equal(t, i*i, out[i])
	}
}

func TestExecuteDisjointRangesNoRaces(t *testing.T) {
	var mu sync.Mutex
	var touched []Range

	Execute(0, 5000, 16, 50, func(r Range) {
		mu.Lock()
		touched = append(touched, r)
		mu.Unlock()
	})

	sort.Slice(touched, func(i, j int) bool { return touched[i].Begin < touched[j].Begin })
	cursor := 0
	for _, r := range touched {
		require.Equal(t, cursor, r.Begin)
		cursor = r.End
	}
	require.Equal(t, 5000, cursor)
}

func TestExecuteEmptyRangeIsNoop(t *testing.T) {
	called := false
	Execute(5, 5, 0, 0, func(Range) { called = true })
	require.False(t, called)
}
