package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// checker walks one AST, collecting findings into res.
type checker struct {
	v      *Validator
	res    *types.ValidationResult
	warned map[string]struct{}
	fixes  map[string]struct{}
}

func (c *checker) fail(kind types.ErrorKind, n *types.Node, hint, format string, args ...interface{}) {
	err := types.NewError(kind, fmt.Sprintf(format, args...), n.Pos)
	if hint != "" {
		err.WithHint(hint)
		c.fix(hint)
	}
	c.res.AddError(err)
}

func (c *checker) warn(msg string) {
	if _, ok := c.warned[msg]; ok {
		return
	}
	c.warned[msg] = struct{}{}
	c.res.Warnings = append(c.res.Warnings, msg)
}

func (c *checker) fix(msg string) {
	if _, ok := c.fixes[msg]; ok {
		return
	}
	c.fixes[msg] = struct{}{}
	c.res.SuggestedFixes = append(c.res.SuggestedFixes, msg)
}

// check reports problems in n and returns its static type.
func (c *checker) check(n *types.Node) types.ValueType {
	switch n.Type {
	case types.NodeNumber:
		return types.TypeNumber
	case types.NodeBoolean:
		return types.TypeBoolean
	case types.NodeString:
		c.fail(types.ErrType, n, `use the string as an accessor key, e.g. dimension("fluency")`,
			"string literal %s is only allowed as the argument of %s", n, accessorList())
		return types.TypeString
	case types.NodeVariable:
		c.checkVariable(n)
		return types.TypeNumber
	case types.NodeUnary:
		return c.checkUnary(n)
	case types.NodeBinary:
		return c.checkBinary(n)
	case types.NodeCall:
		return c.checkCall(n)
	default:
		c.fail(types.ErrRuntime, n, "", "unsupported node type %s", n.Type)
		return types.TypeAny
	}
}

func (c *checker) checkUnary(n *types.Node) types.ValueType {
	t := c.check(n.LHS)
	op, _ := functions.LookupUnary(n.Str)
	switch op.Kind {
	case functions.KindNegate:
		if !numeric(t) {
			c.fail(types.ErrType, n, "", "unary '-' expects a number, got %s", t)
		}
	case functions.KindNot:
		if t == types.TypeString {
			c.fail(types.ErrType, n, "", "unary '!' expects a number or boolean, got string")
		}
	}
	return op.Returns
}

func (c *checker) checkBinary(n *types.Node) types.ValueType {
	lt := c.check(n.LHS)
	rt := c.check(n.RHS)
	op, _ := functions.LookupBinary(n.Str)

	if op.ZeroDivisor && n.RHS.Type == types.NodeNumber && n.RHS.Num == 0 {
		c.warn(fmt.Sprintf("possible division by zero at %s: %s", n.Pos, n))
	}

	switch op.Kind {
	case functions.KindArithmetic, functions.KindOrdering:
		var hint string
		if op.Kind == functions.KindOrdering && isComparison(n.LHS) {
			l := n.LHS
			hint = fmt.Sprintf("comparisons do not chain; write and(%s %s %s, %s %s %s)",
				l.LHS, l.Str, l.RHS, l.RHS, op.Symbol, n.RHS)
		}
		if !numeric(lt) {
			c.fail(types.ErrType, n, hint, "operator '%s' expects numbers, got %s on the left", op.Symbol, lt)
		} else if !numeric(rt) {
			c.fail(types.ErrType, n, "", "operator '%s' expects numbers, got %s on the right", op.Symbol, rt)
		}
	case functions.KindEquality:
		if lt == types.TypeString || rt == types.TypeString {
			c.fail(types.ErrType, n, "", "operator '%s' cannot compare strings", op.Symbol)
		} else if lt != types.TypeAny && rt != types.TypeAny && lt != rt {
			c.fail(types.ErrType, n, "", "operator '%s' cannot compare %s with %s", op.Symbol, lt, rt)
		}
	}
	return op.Returns
}

func (c *checker) checkCall(n *types.Node) types.ValueType {
	def, ok := functions.Lookup(n.Str)
	if !ok {
		hint := ""
		if s, ok := functions.SuggestFunction(n.Str); ok {
			hint = fmt.Sprintf("did you mean '%s'?", s)
		}
		c.fail(types.ErrUnknownFunction, n, hint, "unknown function '%s'", n.Str)
		for _, a := range n.Args {
			c.check(a)
		}
		return types.TypeAny
	}

	if err := functions.CheckArity(def, len(n.Args)); err != nil {
		pos := n.Pos
		err.Position = &pos
		c.res.AddError(err)
		c.fix(err.Hint)
	}

	if def.StringArg {
		c.checkKeyArg(def, n)
		return def.Returns
	}

	argTypes := make([]types.ValueType, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.check(a)
		if def.ParamType(i) == types.TypeNumber && argTypes[i] == types.TypeBoolean {
			c.fail(types.ErrType, a, "", "argument %d of %s must be a number, got boolean", i+1, def.Name)
		}
	}

	// if yields the common type of its branches.
	if def.Name == "if" && len(argTypes) == 3 {
		if argTypes[1] == argTypes[2] {
			return argTypes[1]
		}
		return types.TypeAny
	}
	return def.Returns
}

// checkKeyArg validates the argument of a string-keyed accessor.
func (c *checker) checkKeyArg(def *functions.Def, n *types.Node) {
	for i, a := range n.Args {
		if a.Type != types.NodeString {
			c.fail(types.ErrType, a, fmt.Sprintf(`pass the id as a string literal, e.g. %s("id")`, def.Name),
				"argument %d of %s must be a string literal", i+1, def.Name)
			if a.Type != types.NodeVariable {
				c.check(a)
			}
			continue
		}

		ids, ok := c.v.keys[def.Name]
		if !ok || contains(ids, a.Str) {
			continue
		}
		c.warn(fmt.Sprintf("%s %q is not defined in the reference context", def.Name, a.Str))
		if s, ok := functions.Closest(a.Str, ids); ok {
			c.fix(fmt.Sprintf("did you mean %s(%q)?", def.Name, s))
		}
	}
}

// checkVariable reports free variables that the caller is unlikely to bind.
func (c *checker) checkVariable(n *types.Node) {
	name := n.Str
	if _, ok := c.v.known[name]; ok {
		return
	}

	if def, ok := functions.Lookup(name); ok && def.MaxArgs == 0 {
		c.warn(fmt.Sprintf("'%s' is a function, not a variable", name))
		c.fix(fmt.Sprintf("replace '%s' with %s()", name, name))
		return
	}

	conventional := namingPattern.MatchString(name)
	switch {
	case !conventional:
		c.warn(fmt.Sprintf("free variable '%s' does not follow the naming convention (lowerCamelCase)", name))
	case c.v.strict:
		c.warn(fmt.Sprintf("free variable '%s' is not a known constant or variable; it must be supplied in the context", name))
	default:
		// Outside strict mode only names resembling a built-in accessor are flagged.
		acc, ok := functions.Closest(name, zeroArgAccessors())
		if !ok {
			return
		}
		c.warn(fmt.Sprintf("free variable '%s' looks like a misspelt %s()", name, acc))
		c.fix(fmt.Sprintf("replace '%s' with %s()", name, acc))
		return
	}

	if repl, ok := c.suggestVariable(name); ok {
		c.fix(fmt.Sprintf("replace '%s' with %s", name, repl))
	}
}

// suggestVariable proposes a known name, accessor or accessor id similar to name.
func (c *checker) suggestVariable(name string) (string, bool) {
	replacement := make(map[string]string)
	var candidates []string
	add := func(candidate, repl string) {
		if _, dup := replacement[candidate]; dup {
			return
		}
		replacement[candidate] = repl
		candidates = append(candidates, candidate)
	}

	known := make([]string, 0, len(c.v.known))
	for k := range c.v.known {
		known = append(known, k)
	}
	sort.Strings(known)
	for _, k := range known {
		add(k, k)
	}
	for _, name := range zeroArgAccessors() {
		add(name, name+"()")
	}
	for _, accessor := range []string{"dimension", "errorType", "weight"} {
		for _, id := range c.v.keys[accessor] {
			add(id, fmt.Sprintf("%s(%q)", accessor, id))
		}
	}

	best, ok := functions.Closest(name, candidates)
	if !ok {
		return "", false
	}
	return replacement[best], true
}

// zeroArgAccessors lists the accessors callable without arguments.
func zeroArgAccessors() []string {
	var names []string
	for _, def := range functions.Accessors() {
		if def.MaxArgs == 0 {
			names = append(names, def.Name)
		}
	}
	return names
}

func numeric(t types.ValueType) bool {
	return t == types.TypeNumber || t == types.TypeAny
}

func isComparison(n *types.Node) bool {
	if n.Type != types.NodeBinary {
		return false
	}
	op, _ := functions.LookupBinary(n.Str)
	return op.Kind == functions.KindOrdering || op.Kind == functions.KindEquality
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func accessorList() string {
	var names []string
	for _, def := range functions.Accessors() {
		if def.StringArg {
			names = append(names, def.Name)
		}
	}
	return strings.Join(names, ", ")
}
