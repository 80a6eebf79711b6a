package lower

import (
	"fmt"
	"go/token"
	"sort"
)

// Rules configures which operators are lowered and to which methods.
type Rules struct {
	// Methods maps a binary operator to the method it is lowered to.
	// Only token.ADD, token.SUB and token.MUL are accepted.
	Methods map[token.Token]string

	// Scalar names the package-level function that wraps a numeric literal
	// into a 1×1 tensor, e.g. Scalar(2). Empty disables scalar wrapping.
	Scalar string
}

// DefaultRules returns the standard operator table:
// + → Add, - → Sub, * → Mul, with literals wrapped by Scalar.
func DefaultRules() Rules {
	return Rules{
		Methods: map[token.Token]string{
			token.ADD: "Add",
			token.SUB: "Sub",
			token.MUL: "Mul",
		},
		Scalar: "Scalar",
	}
}

// Validate checks that only supported operators are mapped and that every
// name is a valid Go identifier.
func (r Rules) Validate() error {
	ops := make([]token.Token, 0, len(r.Methods))
	for op := range r.Methods {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	for _, op := range ops {
		switch op {
		case token.ADD, token.SUB, token.MUL:
		default:
			return fmt.Errorf("lower: operator %q cannot be lowered", op)
		}
		if name := r.Methods[op]; !token.IsIdentifier(name) {
			return fmt.Errorf("lower: method %q for operator %q is not an identifier", name, op)
		}
	}
	if r.Scalar != "" && !token.IsIdentifier(r.Scalar) {
		return fmt.Errorf("lower: scalar constructor %q is not an identifier", r.Scalar)
	}
	return nil
}

// method returns the method name for op, or "" if op is not lowered.
func (r Rules) method(op token.Token) string {
	return r.Methods[op]
}
