package zcolor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	r, g, b, err := HexToIRGB("#ff8800")
	require.NoError(t, err)
	require.Equal(t, 255, r)
	require.Equal(t, 136, g)
	require.Equal(t, 0, b)
	require.Equal(t, "#ff8800", IRGBToHex(r, g, b))

	_, _, _, err = HexToIRGB("ff8800")
	require.Error(t, err)
	_, _, _, err = HexToIRGB("#ff88")
	require.Error(t, err)
}

// Every integer RGB triple must survive the trip through float RGB,
// even though float->int conversion truncates.
func TestIRGBRoundTrip(t *testing.T) {
	// A full 256^3 sweep is pointless; channels are independent.
	for v := 0; v <= 255; v++ {
		c := IRGBToRGB(v, 255-v, v/2)
		r, g, b := RGBToIRGB(c)
		require.Equal(t, v, r)
		require.Equal(t, 255-v, g)
		require.Equal(t, v/2, b)
	}
}

func TestSRGB(t *testing.T) {
	s := RGBToSRGB(RGB{1, 0, 0.25})
	require.Equal(t, 1.0, s[0])
	require.Equal(t, 0.0, s[1])
	require.InDelta(t, 0.533, s[2], 0.01)

	sa := RGBToSRGBA(RGB{1, 1, 1}, 0.5)
	require.Equal(t, RGBA{1, 1, 1, 0.5}, sa)

	require.Equal(t, RGBA{0.1, 0.2, 0.3, 1.0}, RGBToRGBA(RGB{0.1, 0.2, 0.3}, 1.0))
}

func TestClosest(t *testing.T) {
	red := RGB{1, 0, 0}
	candidates := []RGB{red, {0, 1, 0}, {0, 0, 1}}

	// Close enough within a loose threshold
	got, ok := Closest(RGB{0.99, 0, 0}, candidates, 0.01)
	require.True(t, ok)
	require.Equal(t, red, got)

	// Too far with a tight threshold
	_, ok = Closest(RGB{0.99, 0, 0}, candidates, 0.0001)
	require.False(t, ok)

	// No candidates at all
	_, ok = Closest(red, nil, 1)
	require.False(t, ok)

	// First-wins tie-break
	a := RGB{0.4, 0, 0}
	b := RGB{0.6, 0, 0}
	got, ok = Closest(RGB{0.5, 0, 0}, []RGB{a, b}, 1)
	require.True(t, ok)
	require.Equal(t, a, got)
}

func TestAllocator(t *testing.T) {
	a := NewAllocator()
	seen := map[string]bool{}
	n := a.Remaining()
	for i := 0; i < n; i++ {
		c, err := a.NextNamed()
		require.NoError(t, err)
		require.False(t, seen[c.Hex], "duplicate color %v", c.Hex)
		seen[c.Hex] = true
	}

	// Exhausted: error, but keeps yielding a color
	c, err := a.NextNamed()
	require.ErrorIs(t, err, ErrPaletteExhausted)
	require.Equal(t, Palette[len(Palette)-1], c)
	_, err = a.Next()
	require.ErrorIs(t, err, ErrPaletteExhausted)
}

// Two allocators must hand out the same sequence.
func TestAllocatorDeterministic(t *testing.T) {
	a1 := NewAllocator()
	a2 := NewAllocator()
	for i := 0; i < 5; i++ {
		c1, err1 := a1.Next()
		c2, err2 := a2.Next()
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.Equal(t, c1, c2)
	}
}

func TestPaletteValid(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Palette {
		_, err := HexToRGB(c.Hex)
		require.NoError(t, err, "palette entry %v", c.Name)
		require.False(t, seen[c.Hex], fmt.Sprintf("palette color %v (%v) repeated", c.Hex, c.Name))
		seen[c.Hex] = true
	}
}
