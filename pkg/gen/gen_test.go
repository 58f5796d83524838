package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMaxAbs(t *testing.T) {
	require.Equal(t, 2, Min(2, 3))
	require.Equal(t, 3, Max(2, 3))
	require.Equal(t, 1.5, Abs(-1.5))
	require.Equal(t, 1.5, Abs(1.5))
}

func TestIndexOf(t *testing.T) {
	require.Equal(t, 1, IndexOf([]string{"a", "b", "c"}, "b"))
	require.Equal(t, -1, IndexOf([]string{"a"}, "z"))
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	require.Equal(t, []int{1, 2, 3}, SortedKeys(m))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 5.0, Clamp(7.0, 0.0, 5.0))
	require.Equal(t, 0.0, Clamp(-1.0, 0.0, 5.0))
	require.Equal(t, 3.0, Clamp(3.0, 0.0, 5.0))
}
