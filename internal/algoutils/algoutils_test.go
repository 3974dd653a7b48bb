package algoutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(i int) string { return string(rune('a' + i)) })
	require.Equal(t, []string{"b", "c", "d"}, got)
}

func TestMapRange(t *testing.T) {
	got := MapRange(2, 5, func(i int) int { return i * i })
	require.Equal(t, []int{4, 9, 16}, got)
}

func TestMapRangeEmpty(t *testing.T) {
	got := MapRange(3, 3, func(i int) int { return i })
	require.Empty(t, got)
}

func TestPermute(t *testing.T) {
	slice := []string{"a", "b", "c", "d"}
	// permutation[i] says which index slice[i] should end up at.
	permutation := []int{2, 0, 3, 1}
	Permute(slice, permutation)
	require.Equal(t, []string{"b", "d", "a", "c"}, slice)
	require.Equal(t, []int{2, 0, 3, 1}, permutation)
}

func TestInvertPermutation(t *testing.T) {
	p := []int{2, 0, 3, 1}
	inv := InvertPermutation(p)
	for i, v := range p {
		require.Equal(t, i, inv[v])
	}
}

func TestBinarySearch(t *testing.T) {
	slice := []int{1, 3, 5, 7, 9}
	require.Equal(t, 2, BinarySearch(slice, 5))
	require.Equal(t, 2, BinarySearch(slice, 4))
	require.Equal(t, 0, BinarySearch(slice, 0))
	require.Equal(t, 4, BinarySearch(slice, 9))
}
