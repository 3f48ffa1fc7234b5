package emnist

// ClassMapping returns the mapping from class index 0..61 to its
// printable character: digits '0'-'9', then uppercase 'A'-'Z', then
// lowercase 'a'-'z'. Pure and deterministic; every call returns an
// equivalent map.
func ClassMapping() map[int]rune {
	mapping := make(map[int]rune, NumClasses)
	idx := 0
	for _, span := range []struct{ lo, hi rune }{
		{'0', '9'},
		{'A', 'Z'},
		{'a', 'z'},
	} {
		for c := span.lo; c <= span.hi; c++ {
			mapping[idx] = c
			idx++
		}
	}
	return mapping
}
