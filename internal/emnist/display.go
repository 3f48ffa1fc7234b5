package emnist

import (
	"fmt"
	"io"
	"strings"
)

// shadeRamp orders glyphs from empty background to full stroke.
const shadeRamp = " .:-=+*#%@"

// Render writes a terminal rendering of the image to w, one glyph per
// pixel, rows top to bottom.
func Render(w io.Writer, img *Image) {
	var b strings.Builder
	b.Grow((ImageSize + 1) * ImageSize)
	for r := 0; r < ImageSize; r++ {
		for c := 0; c < ImageSize; c++ {
			b.WriteByte(shadeRamp[shadeLevel(img[r][c])])
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

// shadeLevel maps a 0-255 pixel magnitude onto a ramp index.
func shadeLevel(p float32) int {
	level := int(p) * (len(shadeRamp) - 1) / 255
	if level < 0 {
		return 0
	}
	if level >= len(shadeRamp) {
		return len(shadeRamp) - 1
	}
	return level
}
