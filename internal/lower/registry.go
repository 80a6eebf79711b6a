package lower

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/types/typeutil"
)

// capability is a method an operand type can be lowered to.
type capability struct {
	name   string
	result types.Type
}

// registry answers capability queries for one package.
//
// Method sets are cached per type identity. Expressions produced by the pass
// itself are not known to the type checker, so their result types are
// recorded here as they are created.
type registry struct {
	pkg     *types.Package
	info    *types.Info
	msets   typeutil.MethodSetCache
	lowered map[ast.Expr]types.Type
}

func newRegistry(pkg *types.Package, info *types.Info) *registry {
	return &registry{
		pkg:     pkg,
		info:    info,
		lowered: make(map[ast.Expr]types.Type),
	}
}

// typeOf returns the static type of e, or nil when it is unknown.
func (r *registry) typeOf(e ast.Expr) types.Type {
	e = ast.Unparen(e)
	if t, ok := r.lowered[e]; ok {
		return t
	}
	if r.info == nil {
		return nil
	}
	t := r.info.TypeOf(e)
	if t == nil || t == types.Typ[types.Invalid] {
		return nil
	}
	return t
}

// record stores the type of an expression created by the pass.
func (r *registry) record(e ast.Expr, t types.Type) {
	r.lowered[e] = t
}

// addressable reports whether e denotes a variable whose address may be
// taken implicitly for a pointer-receiver method call.
func (r *registry) addressable(e ast.Expr) bool {
	e = ast.Unparen(e)
	if _, ok := r.lowered[e]; ok {
		return false
	}
	if r.info == nil {
		return false
	}
	tv, ok := r.info.Types[e]
	return ok && tv.Addressable()
}

// method returns the capability of e named name. The method must take exactly
// one argument and return exactly one result.
func (r *registry) method(e ast.Expr, name string) (capability, bool) {
	t := r.typeOf(e)
	if t == nil || name == "" {
		return capability{}, false
	}

	sel := r.msets.MethodSet(t).Lookup(r.pkg, name)
	if sel == nil && r.addressable(e) {
		if _, isPtr := t.Underlying().(*types.Pointer); !isPtr && !types.IsInterface(t) {
			sel = r.msets.MethodSet(types.NewPointer(t)).Lookup(r.pkg, name)
		}
	}
	if sel == nil || sel.Kind() != types.MethodVal {
		return capability{}, false
	}

	sig, ok := sel.Type().(*types.Signature)
	if !ok || sig.Variadic() || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return capability{}, false
	}
	return capability{name: name, result: sig.Results().At(0).Type()}, true
}

// constructor describes a reachable scalar constructor: the qualifier it must
// be referenced with ("" for none) and the import that has to be added for
// it, if any.
type constructor struct {
	qualifier string
	name      string
	addImport string
}

// expr builds a reference to the constructor placed at pos.
func (c constructor) expr(pos token.Pos) ast.Expr {
	name := &ast.Ident{NamePos: pos, Name: c.name}
	if c.qualifier == "" {
		return name
	}
	return &ast.SelectorExpr{X: &ast.Ident{NamePos: pos, Name: c.qualifier}, Sel: name}
}

// scalarConstructor finds a function called name that converts a number into
// a value of type want and is visible at pos. It searches the current
// package, then the file's imports, then the package declaring want.
func (r *registry) scalarConstructor(file *ast.File, pos token.Pos, name string, want types.Type) (constructor, bool) {
	if name == "" || want == nil {
		return constructor{}, false
	}

	if r.pkg != nil {
		obj := r.pkg.Scope().Lookup(name)
		if isScalarConstructor(obj, want) && r.visible(name, pos, obj) {
			return constructor{name: name}, true
		}
	}

	for _, spec := range file.Imports {
		pn := r.pkgName(spec)
		if pn == nil || pn.Name() == "_" {
			continue
		}
		obj := pn.Imported().Scope().Lookup(name)
		if obj == nil || !obj.Exported() || !isScalarConstructor(obj, want) {
			continue
		}
		if spec.Name != nil && spec.Name.Name == "." {
			if r.visible(name, pos, obj) {
				return constructor{name: name}, true
			}
			continue
		}
		if r.visible(pn.Name(), pos, pn) {
			return constructor{qualifier: pn.Name(), name: name}, true
		}
	}

	home := declaringPackage(want)
	if home == nil || r.pkg == nil || home == r.pkg || !canImport(r.pkg.Path(), home.Path()) {
		return constructor{}, false
	}
	obj := home.Scope().Lookup(name)
	if obj == nil || !obj.Exported() || !isScalarConstructor(obj, want) {
		return constructor{}, false
	}
	if !r.visible(home.Name(), pos, nil) {
		return constructor{}, false
	}
	return constructor{qualifier: home.Name(), name: name, addImport: home.Path()}, true
}

func (r *registry) pkgName(spec *ast.ImportSpec) *types.PkgName {
	if r.info == nil {
		return nil
	}
	var obj types.Object
	if spec.Name != nil {
		obj = r.info.Defs[spec.Name]
	} else {
		obj = r.info.Implicits[spec]
	}
	pn, _ := obj.(*types.PkgName)
	return pn
}

// visible reports whether name resolves to obj at pos. A nil obj asks
// whether name is unbound there.
func (r *registry) visible(name string, pos token.Pos, obj types.Object) bool {
	if r.pkg == nil || !pos.IsValid() {
		return true
	}
	scope := r.pkg.Scope().Innermost(pos)
	if scope == nil {
		return true
	}
	_, found := scope.LookupParent(name, pos)
	return found == obj
}

func isScalarConstructor(obj types.Object, want types.Type) bool {
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	if sig.Recv() != nil || sig.TypeParams().Len() > 0 || sig.Variadic() {
		return false
	}
	if sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}
	basic, ok := sig.Params().At(0).Type().Underlying().(*types.Basic)
	if !ok || basic.Info()&types.IsNumeric == 0 {
		return false
	}
	return types.Identical(sig.Results().At(0).Type(), want)
}

func declaringPackage(t types.Type) *types.Package {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}
	if n, ok := types.Unalias(t).(*types.Named); ok {
		return n.Obj().Pkg()
	}
	return nil
}

// canImport applies the internal-package visibility rule.
func canImport(importer, path string) bool {
	i := strings.LastIndex(path, "/internal/")
	switch {
	case i >= 0:
		return within(importer, path[:i])
	case strings.HasSuffix(path, "/internal"):
		return within(importer, strings.TrimSuffix(path, "/internal"))
	case path == "internal" || strings.HasPrefix(path, "internal/"):
		return false
	}
	return true
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}
