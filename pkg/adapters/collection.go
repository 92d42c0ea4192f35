package adapters

import "fmt"

// Wrap returns a list holding element only.
func Wrap[T any](element T) []T {
	return []T{element}
}

// Unwrap returns the single element of list. A list of any other length is
// rejected with ErrNotSingleton unless force is set, in which case the first
// element is returned. An empty list has no first element and is always
// rejected.
func Unwrap[T any](list []T, force bool) (T, error) {
	var zero T
	if len(list) != 1 && !force {
		return zero, fmt.Errorf("%w: a list with %d element(s)", ErrNotSingleton, len(list))
	}
	if len(list) == 0 {
		return zero, fmt.Errorf("%w: empty list", ErrNotSingleton)
	}
	return list[0], nil
}
