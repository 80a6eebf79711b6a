// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package lower rewrites infix arithmetic on tensors into method calls.
//
// Go has no operator overloading, so a*b*2 on two *tensor.Tensor values does
// not compile. The lowering pass turns it into the equivalent
//
//	a.Mul(b).Mul(tensor.Scalar(2))
//
// using the type information of the surrounding package.
//
// Example:
//
//	fset := token.NewFileSet()
//	pkgs, _ := packages.Load(&packages.Config{Fset: fset, Mode: mode}, "./...")
//	for _, pkg := range pkgs {
//	    for _, file := range pkg.Syntax {
//	        res := lower.File(fset, file, pkg.Types, pkg.TypesInfo)
//	        fmt.Println(res.Total(), "expressions lowered")
//	    }
//	}
//
// The dunder command wraps this in a complete load, lower and emit cycle.
package lower

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/born-ml/dunder/internal/lower"
)

// Rules configures the operator table and the scalar constructor.
type Rules = lower.Rules

// Result summarizes one lowering pass.
type Result = lower.Result

// Pass lowers files according to a fixed set of rules.
type Pass = lower.Pass

// DefaultRules returns the standard table: + → Add, - → Sub, * → Mul and
// literals wrapped by Scalar.
func DefaultRules() Rules {
	return lower.DefaultRules()
}

// New returns a Pass for rules.
func New(rules Rules) (*Pass, error) {
	return lower.New(rules)
}

// File lowers file in place using DefaultRules.
func File(fset *token.FileSet, file *ast.File, pkg *types.Package, info *types.Info) *Result {
	return lower.File(fset, file, pkg, info)
}
