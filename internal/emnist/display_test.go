package emnist

import (
	"strings"
	"testing"
)

func TestRenderShape(t *testing.T) {
	var img Image
	var buf strings.Builder
	Render(&buf, &img)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != ImageSize {
		t.Fatalf("rendered %d lines, want %d", len(lines), ImageSize)
	}
	for i, line := range lines {
		if len(line) != ImageSize {
			t.Errorf("line %d has %d glyphs, want %d", i, len(line), ImageSize)
		}
	}
}

func TestRenderShades(t *testing.T) {
	var img Image
	img[0][0] = 0
	img[0][1] = 255
	img[27][27] = 128

	var buf strings.Builder
	Render(&buf, &img)
	lines := strings.Split(buf.String(), "\n")

	if lines[0][0] != ' ' {
		t.Errorf("zero pixel rendered as %q, want space", lines[0][0])
	}
	if lines[0][1] != '@' {
		t.Errorf("full pixel rendered as %q, want '@'", lines[0][1])
	}
	if lines[27][27] == ' ' || lines[27][27] == '@' {
		t.Errorf("mid pixel rendered as %q, want an intermediate glyph", lines[27][27])
	}
}

func TestShadeLevelBounds(t *testing.T) {
	if got := shadeLevel(0); got != 0 {
		t.Errorf("shadeLevel(0) = %d, want 0", got)
	}
	if got := shadeLevel(255); got != len(shadeRamp)-1 {
		t.Errorf("shadeLevel(255) = %d, want %d", got, len(shadeRamp)-1)
	}
	if got := shadeLevel(300); got != len(shadeRamp)-1 {
		t.Errorf("shadeLevel(300) = %d, want clamp to %d", got, len(shadeRamp)-1)
	}
}
