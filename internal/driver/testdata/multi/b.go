package multi

// ScaledB returns the weights scaled by two.
func ScaledB() any {
	return weights() * 2
}
