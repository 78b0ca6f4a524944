package slash

// multisetEqual compares two slices ignoring order. Every element of b may be
// matched at most once, so [x, x, y] and [x, y, y] are different.
func multisetEqual[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && eq(x, y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}
