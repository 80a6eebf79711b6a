// Package lower rewrites infix arithmetic on values that declare arithmetic
// methods into explicit method calls.
//
// Given a type-checked file, every binary expression
//
//	a + b   a - b   a * b
//
// whose left operand's type has a matching one-argument, one-result method
// (Add, Sub, Mul by default) becomes a call of that method:
//
//	a.Add(b)   a.Sub(b)   a.Mul(b)
//
// A product with exactly one numeric literal operand first wraps the literal
// with the scalar constructor found next to the other operand's type:
//
//	a * 2   → a.Mul(Scalar(2))
//	2 * a   → Scalar(2).Mul(a)
//
// Operands are lowered before the expression that contains them, so chains
// such as a*b*2 lower to a.Mul(b).Mul(Scalar(2)). Any expression that cannot
// be lowered is left exactly as written and the pass never fails.
package lower

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"sort"

	"golang.org/x/tools/go/ast/astutil"
)

// Result summarizes one lowering pass.
type Result struct {
	// Rewritten counts the expressions lowered per operator.
	Rewritten map[token.Token]int
	// Wrapped counts numeric literals wrapped by the scalar constructor.
	Wrapped int
	// Skipped counts expressions using a lowered operator that were left
	// untouched because no capability matched.
	Skipped int
	// Imports lists the import paths added to the file, sorted.
	Imports []string
}

// Total returns the number of rewritten expressions.
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Rewritten {
		n += c
	}
	return n
}

// Changed reports whether the pass modified the file.
func (r *Result) Changed() bool {
	return r.Total() > 0 || len(r.Imports) > 0
}

// Pass lowers files according to a fixed set of rules.
// A Pass holds no per-file state and may be used concurrently.
type Pass struct {
	rules Rules
}

// New returns a Pass for rules.
func New(rules Rules) (*Pass, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	methods := make(map[token.Token]string, len(rules.Methods))
	for op, name := range rules.Methods {
		methods[op] = name
	}
	return &Pass{rules: Rules{Methods: methods, Scalar: rules.Scalar}}, nil
}

// File lowers file using DefaultRules. See Pass.File.
func File(fset *token.FileSet, file *ast.File, pkg *types.Package, info *types.Info) *Result {
	return (&Pass{rules: DefaultRules()}).File(fset, file, pkg, info)
}

// File rewrites file in place. pkg and info must come from type-checking the
// package containing file; they are only read. Expressions whose types are
// unknown, for instance because the package has type errors, are left alone.
//
// Running File again over its own output changes nothing.
func (p *Pass) File(fset *token.FileSet, file *ast.File, pkg *types.Package, info *types.Info) *Result {
	l := &lowering{
		rules:   p.rules,
		file:    file,
		reg:     newRegistry(pkg, info),
		imports: make(map[string]string),
		res:     &Result{Rewritten: make(map[token.Token]int)},
	}
	astutil.Apply(file, nil, l.post)

	// Imports are added after the walk: inserting a declaration while
	// Apply iterates file.Decls would revisit nodes.
	paths := make([]string, 0, len(l.imports))
	for importPath := range l.imports {
		paths = append(paths, importPath)
	}
	sort.Strings(paths)
	for _, importPath := range paths {
		name := l.imports[importPath]
		if name == path.Base(importPath) {
			name = ""
		}
		if astutil.AddNamedImport(fset, file, name, importPath) {
			l.res.Imports = append(l.res.Imports, importPath)
		}
	}
	return l.res
}

// lowering is the state of a single File call.
type lowering struct {
	rules   Rules
	file    *ast.File
	reg     *registry
	imports map[string]string // path → qualifier
	res     *Result
}

// post runs after a node's children have been visited, so both operands of
// a binary expression are already in their final form.
func (l *lowering) post(c *astutil.Cursor) bool {
	be, ok := c.Node().(*ast.BinaryExpr)
	if !ok {
		return true
	}
	name := l.rules.method(be.Op)
	if name == "" {
		return true
	}

	if be.Op == token.MUL {
		if call, ok := l.scalarProduct(be, name); ok {
			c.Replace(call)
			return true
		}
	}
	if call, ok := l.methodCall(be.X, name, be.Y, be.OpPos); ok {
		l.res.Rewritten[be.Op]++
		c.Replace(call)
		return true
	}
	l.res.Skipped++
	return true
}

// scalarProduct lowers a product with exactly one numeric literal operand.
func (l *lowering) scalarProduct(be *ast.BinaryExpr, name string) (ast.Expr, bool) {
	litLeft, litRight := isNumericLiteral(be.X), isNumericLiteral(be.Y)
	if litLeft == litRight || l.rules.Scalar == "" {
		return nil, false
	}

	lit, other := be.Y, be.X
	if litLeft {
		lit, other = be.X, be.Y
	}
	want := l.reg.typeOf(other)
	if want == nil {
		return nil, false
	}
	ctor, ok := l.reg.scalarConstructor(l.file, be.OpPos, l.rules.Scalar, want)
	if !ok {
		return nil, false
	}

	wrapped := &ast.CallExpr{
		Fun:    ctor.expr(lit.Pos()),
		Lparen: lit.Pos(),
		Args:   []ast.Expr{lit},
		Rparen: lit.End() - 1,
	}
	l.reg.record(wrapped, want)

	recv, arg := other, ast.Expr(wrapped)
	if litLeft {
		recv, arg = wrapped, other
	}
	call, ok := l.methodCall(recv, name, arg, be.OpPos)
	if !ok {
		return nil, false
	}
	if ctor.addImport != "" {
		l.imports[ctor.addImport] = ctor.qualifier
	}
	l.res.Rewritten[be.Op]++
	l.res.Wrapped++
	return call, true
}

// methodCall builds recv.name(arg) if recv's type has that capability.
// The selector and the opening parenthesis take the operator's position and
// the closing parenthesis ends with arg, so comments around the expression
// stay where they were.
func (l *lowering) methodCall(recv ast.Expr, name string, arg ast.Expr, opPos token.Pos) (ast.Expr, bool) {
	m, ok := l.reg.method(recv, name)
	if !ok {
		return nil, false
	}
	if needsParens(recv) {
		recv = &ast.ParenExpr{Lparen: recv.Pos(), X: recv, Rparen: recv.End() - 1}
	}
	call := &ast.CallExpr{
		Fun:    &ast.SelectorExpr{X: recv, Sel: &ast.Ident{NamePos: opPos, Name: m.name}},
		Lparen: opPos,
		Args:   []ast.Expr{arg},
		Rparen: arg.End() - 1,
	}
	l.reg.record(call, m.result)
	return call, true
}

// isNumericLiteral reports whether e is an integer or floating-point literal,
// possibly signed or parenthesized.
func isNumericLiteral(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return e.Kind == token.INT || e.Kind == token.FLOAT
	case *ast.ParenExpr:
		return isNumericLiteral(e.X)
	case *ast.UnaryExpr:
		return (e.Op == token.ADD || e.Op == token.SUB) && isNumericLiteral(e.X)
	}
	return false
}

// needsParens reports whether e must be parenthesized to be used as the
// operand of a selector.
func needsParens(e ast.Expr) bool {
	switch e.(type) {
	case *ast.StarExpr, *ast.UnaryExpr, *ast.BinaryExpr, *ast.CompositeLit, *ast.FuncLit:
		return true
	}
	return false
}
