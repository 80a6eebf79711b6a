package infix

// Twice doubles n.
func Twice(n int) int {
	return n * 2
}
