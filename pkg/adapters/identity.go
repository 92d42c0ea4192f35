package adapters

// NoProcess returns v unchanged. Pipelines use it as the "do nothing" branch
// of a switch.
func NoProcess[T any](v T) T {
	return v
}
