package zcolor

// Color is a named entry in the fixed palette.
type Color struct {
	Name string
	Hex  string
}

// Palette is the fixed, ordered list of colors handed out to object
// categories. The order matters: category colors must be deterministic
// across runs, so allocation always walks this list from the start.
// Entry 0 is reserved as the default color (see DefaultColor); allocation
// begins at entry 1.
var Palette = []Color{
	{"zumo purple", "#8648bd"},
	{"red", "#ff0000"},
	{"green", "#00cc00"},
	{"blue", "#0000ff"},
	{"yellow", "#ffdd00"},
	{"cyan", "#00bbdd"},
	{"magenta", "#cc00cc"},
	{"orange", "#ff8800"},
	{"chartreuse", "#88ff00"},
	{"spring green", "#00ff88"},
	{"azure", "#0088ff"},
	{"violet", "#8800ff"},
	{"rose", "#ff0088"},
	{"maroon", "#800000"},
	{"olive", "#808000"},
	{"dark green", "#008000"},
	{"teal", "#008080"},
	{"navy", "#000080"},
	{"purple", "#800080"},
	{"brown", "#a52a2a"},
	{"coral", "#ff7f50"},
	{"gold", "#ffd700"},
	{"khaki", "#f0e68c"},
	{"lavender", "#e6e6fa"},
	{"salmon", "#fa8072"},
	{"sienna", "#a0522d"},
	{"tan", "#d2b48c"},
	{"tomato", "#ff6347"},
	{"turquoise", "#40e0d0"},
	{"wheat", "#f5deb3"},
	{"crimson", "#dc143c"},
	{"indigo", "#4b0082"},
	{"orchid", "#da70d6"},
	{"plum", "#dda0dd"},
	{"sky blue", "#87ceeb"},
	{"slate blue", "#6a5acd"},
	{"steel blue", "#4682b4"},
	{"royal blue", "#4169e1"},
	{"sea green", "#2e8b57"},
	{"forest green", "#228b22"},
	{"lime green", "#32cd32"},
	{"olive drab", "#6b8e23"},
	{"dark khaki", "#bdb76b"},
	{"goldenrod", "#daa520"},
	{"chocolate", "#d2691e"},
	{"peru", "#cd853f"},
	{"rosy brown", "#bc8f8f"},
	{"indian red", "#cd5c5c"},
	{"firebrick", "#b22222"},
	{"hot pink", "#ff69b4"},
	{"deep pink", "#ff1493"},
	{"pale violet", "#db7093"},
	{"thistle", "#d8bfd8"},
	{"powder blue", "#b0e0e6"},
	{"cadet blue", "#5f9ea0"},
	{"dark cyan", "#008b8b"},
	{"aquamarine", "#7fffd4"},
	{"medium spring", "#00fa9a"},
	{"dark sea green", "#8fbc8f"},
	{"yellow green", "#9acd32"},
	{"dark orange", "#ff8c00"},
	{"light salmon", "#ffa07a"},
	{"dark salmon", "#e9967a"},
	{"light coral", "#f08080"},
	{"medium orchid", "#ba55d3"},
	{"dark orchid", "#9932cc"},
	{"blue violet", "#8a2be2"},
	{"medium purple", "#9370db"},
	{"cornflower", "#6495ed"},
	{"dodger blue", "#1e90ff"},
	{"deep sky blue", "#00bfff"},
	{"light sea green", "#20b2aa"},
	{"medium turquoise", "#48d1cc"},
	{"dark turquoise", "#00ced1"},
	{"dark goldenrod", "#b8860b"},
	{"dark red", "#8b0000"},
	{"dark magenta", "#8b008b"},
	{"dark violet", "#9400d3"},
	{"midnight blue", "#191970"},
	{"dark slate gray", "#2f4f4f"},
	{"dim gray", "#696969"},
	{"gray", "#808080"},
	{"silver", "#c0c0c0"},
	{"misty rose", "#ffe4e1"},
	{"peach puff", "#ffdab9"},
	{"moccasin", "#ffe4b5"},
	{"lemon chiffon", "#fffacd"},
	{"honeydew", "#f0fff0"},
	{"mint cream", "#f5fffa"},
	{"alice blue", "#f0f8ff"},
	{"lavender blush", "#fff0f5"},
	{"sandy brown", "#f4a460"},
	{"burlywood", "#deb887"},
	{"gainsboro", "#dcdcdc"},
	{"pale green", "#98fb98"},
	{"pale turquoise", "#afeeee"},
}

// RGB returns the palette entry as a float color.
func (c Color) RGB() RGB {
	rgb, err := HexToRGB(c.Hex)
	if err != nil {
		// Palette entries are compile-time constants; a bad one is a bug.
		panic(err)
	}
	return rgb
}

// DefaultColor is the color used when nothing was explicitly assigned.
func DefaultColor() RGB {
	return Palette[0].RGB()
}
