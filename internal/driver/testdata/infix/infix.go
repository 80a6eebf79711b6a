// Package infix uses arithmetic operators on tensors.
package infix

import "github.com/born-ml/dunder/tensor"

// Product returns a @ b scaled by two.
func Product(a, b *tensor.Tensor) *tensor.Tensor {
	return a * b * 2
}

// Residual returns x@w + b - x.
func Residual(x, w, b *tensor.Tensor) *tensor.Tensor {
	return x*w + b - x
}
