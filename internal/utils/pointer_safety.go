package utils

// Value dereferences v, returning the zero value when v is nil. Used
// when reading the backend's optional-heavy JSON payloads.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// First returns the first non-zero value, or the zero value when all
// candidates are zero. It encodes the profile-merge precedence rule:
// earlier sources win, later sources fill gaps.
func First[T comparable](candidates ...T) T {
	var zero T
	for _, c := range candidates {
		if c != zero {
			return c
		}
	}
	return zero
}
