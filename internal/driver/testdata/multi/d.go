package multi

// ScaledD returns the weights scaled by two.
func ScaledD() any {
	return weights() * 2
}
