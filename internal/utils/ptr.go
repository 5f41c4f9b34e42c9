package utils

// Ptr returns a pointer to a copy of v, for optional seed and request fields.
func Ptr[T any](v T) *T {
	return &v
}
