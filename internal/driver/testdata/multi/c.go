package multi

// ScaledC returns the weights scaled by two.
func ScaledC() any {
	return weights() * 2
}
