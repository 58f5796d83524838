package zcolor

import "errors"

// ErrPaletteExhausted is returned by Allocator.Next once every unique
// palette entry has been handed out.
var ErrPaletteExhausted = errors.New("color palette exhausted")

// Allocator hands out unique colors from the fixed Palette, in order.
// Each accumulation session owns its own Allocator, so color-to-category
// assignment is deterministic across runs and there is no shared state
// to leak between sessions or tests.
type Allocator struct {
	next int
}

// NewAllocator returns an allocator with its cursor at the first
// allocatable palette entry (entry 0 is the default color).
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// NextNamed returns the next unused palette entry.
// Once the palette is exhausted it keeps returning the final entry
// together with ErrPaletteExhausted, so a caller that chooses to treat
// exhaustion as non-fatal can continue with duplicate colors.
func (a *Allocator) NextNamed() (Color, error) {
	if a.next >= len(Palette) {
		return Palette[len(Palette)-1], ErrPaletteExhausted
	}
	c := Palette[a.next]
	a.next++
	return c, nil
}

// Next is NextNamed reduced to the float color.
func (a *Allocator) Next() (RGB, error) {
	c, err := a.NextNamed()
	return c.RGB(), err
}

// Remaining reports how many unique colors are still available.
func (a *Allocator) Remaining() int {
	return len(Palette) - a.next
}
