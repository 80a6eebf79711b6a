// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides differentiable rank-2 tensors.
//
// # Overview
//
// A Tensor is an immutable matrix of float64 that remembers how it was
// computed. Calling Backward on a result fills in the gradient of every
// tensor it depends on.
//
// # Basic Usage
//
//	a := tensor.MustNew([][]float64{{1, 2}, {3, 4}})
//	b := tensor.MustNew([][]float64{{5, 6}, {7, 8}})
//
//	c := a.Mul(b).Mul(tensor.Scalar(2)) // [[38 44] [86 100]]
//
//	if err := c.Backward(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(a.Grad())
//
// # Operators
//
// Written with infix operators, the expression above is a*b*2. The dunder
// command lowers such expressions into the method calls shown, so tensor
// code can be written in either style.
//
// # Errors
//
// Package functions (Add, Sub, MatMul, Mul, Sum) return errors wrapping
// ErrShapeMismatch or ErrDimensionMismatch. Tensor methods of the same names
// panic with those errors instead, so that calls chain.
package tensor
