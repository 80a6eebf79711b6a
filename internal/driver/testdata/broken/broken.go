package broken

import "github.com/born-ml/dunder/tensor"

func Double(a *tensor.Tensor) *tensor.Tensor { return a * 2 }

func Wrong() int { return "not an int" }
