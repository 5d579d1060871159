package common

// Last returns the final element of s, or false when s is empty.
func Last[S ~[]E, E any](s S) (E, bool) {
	var last E
	if len(s) == 0 {
		return last, false
	}

	return s[len(s)-1], true
}
