package emnist

import "testing"

func TestClassMappingSize(t *testing.T) {
	mapping := ClassMapping()
	if len(mapping) != NumClasses {
		t.Fatalf("len(mapping) = %d, want %d", len(mapping), NumClasses)
	}
}

func TestClassMappingFixedPoints(t *testing.T) {
	mapping := ClassMapping()

	for _, tc := range []struct {
		class int
		want  rune
	}{
		{0, '0'},
		{9, '9'},
		{10, 'A'},
		{35, 'Z'},
		{36, 'a'},
		{61, 'z'},
	} {
		if got := mapping[tc.class]; got != tc.want {
			t.Errorf("mapping[%d] = %q, want %q", tc.class, got, tc.want)
		}
	}
}

func TestClassMappingInjective(t *testing.T) {
	mapping := ClassMapping()

	seen := make(map[rune]int, len(mapping))
	for class, ch := range mapping {
		if prev, ok := seen[ch]; ok {
			t.Errorf("character %q mapped from both class %d and %d", ch, prev, class)
		}
		seen[ch] = class
	}
}

func TestClassMappingDeterministic(t *testing.T) {
	a, b := ClassMapping(), ClassMapping()
	for class, ch := range a {
		if b[class] != ch {
			t.Errorf("mapping[%d] differs between calls: %q vs %q", class, ch, b[class])
		}
	}
}
