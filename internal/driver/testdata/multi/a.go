package multi

// ScaledA returns the weights scaled by two.
func ScaledA() any {
	return weights() * 2
}
