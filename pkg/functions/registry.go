// Package functions holds the built-in function and operator registry.
//
// The registry is a process-wide immutable table, initialised lazily on first
// use and read-only afterwards. It is the single source of truth for arity,
// argument types and result types: the validator consults it without values
// and the evaluator consults it to compute, so the two can never disagree.
//
// # Example
//
//	def, ok := functions.Lookup("round")
//	if ok && !def.AcceptsArgs(3) {
//	    fmt.Println("round expects", def.ArityString())
//	}
package functions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sandrolain/goformula/pkg/types"
)

// Category groups built-ins for documentation and autocomplete.
type Category string

// Function categories.
const (
	CategoryAccessor  Category = "accessor"  // reads a named value out of the context
	CategoryMath      Category = "math"      // pure numeric computation
	CategoryAggregate Category = "aggregate" // variadic numeric reductions
	CategoryLogical   Category = "logical"   // boolean combination
	CategoryControl   Category = "control"   // conditional evaluation
)

// Unlimited marks a variadic upper arity bound.
const Unlimited = -1

// Env is the evaluation environment handed to function implementations.
type Env interface {
	// Context returns the read-only context of the current evaluation.
	Context() *types.FormulaContext
	// Warn records a non-fatal warning on the current evaluation.
	Warn(message string)
}

// Impl is the implementation of an eagerly evaluated built-in.
// Errors should be *types.Error; the evaluator attaches the call position.
type Impl func(env Env, args []types.Value) (types.Value, error)

// Def describes a built-in function.
type Def struct {
	Name     string
	MinArgs  int
	MaxArgs  int // Unlimited for variadic
	Category Category

	// StringArg requires the single argument to be a string literal, so the
	// key is statically known for linting and autocomplete.
	StringArg bool

	// Lazy functions receive no Impl; the evaluator controls which
	// arguments are evaluated (if, and, or).
	Lazy bool

	// Params holds the static type of each parameter. For variadic
	// functions the last entry applies to all remaining arguments.
	Params  []types.ValueType
	Returns types.ValueType

	Signature   string
	Description string
	Impl        Impl
}

// AcceptsArgs reports whether n arguments satisfy the arity of d.
func (d *Def) AcceptsArgs(n int) bool {
	if n < d.MinArgs {
		return false
	}
	return d.MaxArgs == Unlimited || n <= d.MaxArgs
}

// ParamType returns the static type expected for argument i.
func (d *Def) ParamType(i int) types.ValueType {
	if len(d.Params) == 0 {
		return types.TypeAny
	}
	if i >= len(d.Params) {
		return d.Params[len(d.Params)-1]
	}
	return d.Params[i]
}

// ArityString describes the accepted argument count, e.g. "exactly 1 argument".
func (d *Def) ArityString() string {
	switch {
	case d.MaxArgs == Unlimited:
		return fmt.Sprintf("at least %d %s", d.MinArgs, plural(d.MinArgs))
	case d.MinArgs == d.MaxArgs:
		return fmt.Sprintf("exactly %d %s", d.MinArgs, plural(d.MinArgs))
	default:
		return fmt.Sprintf("between %d and %d arguments", d.MinArgs, d.MaxArgs)
	}
}

// CheckArity returns an ArityError when n arguments do not fit d.
func CheckArity(d *Def, n int) *types.Error {
	if d.AcceptsArgs(n) {
		return nil
	}
	return types.NewErrorf(types.ErrArity, "%s expects %s, got %d", d.Name, d.ArityString(), n).
		WithHint(fmt.Sprintf("call it as %s", d.Signature))
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

var (
	builtinFunctions     map[string]*Def
	builtinFunctionNames []string
	builtinFunctionsOnce sync.Once
)

var (
	tNum  = types.TypeNumber
	tAny  = types.TypeAny
	tStr  = types.TypeString
	tBool = types.TypeBoolean
)

// initBuiltinFunctions initializes the built-in function registry.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		defs := []*Def{
			// Domain accessors
			{Name: "dimension", MinArgs: 1, MaxArgs: 1, Category: CategoryAccessor, StringArg: true, Params: []types.ValueType{tStr}, Returns: tNum,
				Signature: `dimension("id") -> number`, Description: "Score of a quality dimension; 0 with a warning when absent.", Impl: fnDimension},
			{Name: "errorType", MinArgs: 1, MaxArgs: 1, Category: CategoryAccessor, StringArg: true, Params: []types.ValueType{tStr}, Returns: tNum,
				Signature: `errorType("id") -> number`, Description: "Number of errors of a category; 0 with a warning when absent.", Impl: fnErrorType},
			{Name: "weight", MinArgs: 1, MaxArgs: 1, Category: CategoryAccessor, StringArg: true, Params: []types.ValueType{tStr}, Returns: tNum,
				Signature: `weight("id") -> number`, Description: "Named weight; 0 with a warning when absent.", Impl: fnWeight},
			{Name: "totalErrors", MinArgs: 0, MaxArgs: 0, Category: CategoryAccessor, Returns: tNum,
				Signature: "totalErrors() -> number", Description: "Total number of errors found.", Impl: fnTotalErrors},
			{Name: "unitCount", MinArgs: 0, MaxArgs: 0, Category: CategoryAccessor, Returns: tNum,
				Signature: "unitCount() -> number", Description: "Number of assessed translation units.", Impl: fnUnitCount},
			{Name: "maxScore", MinArgs: 0, MaxArgs: 0, Category: CategoryAccessor, Returns: tNum,
				Signature: "maxScore() -> number", Description: "Maximum attainable score.", Impl: fnMaxScore},
			{Name: "errorRate", MinArgs: 0, MaxArgs: 0, Category: CategoryAccessor, Returns: tNum,
				Signature: "errorRate() -> number", Description: "Errors per unit as supplied by the caller.", Impl: fnErrorRate},
			{Name: "passingThreshold", MinArgs: 0, MaxArgs: 0, Category: CategoryAccessor, Returns: tNum,
				Signature: "passingThreshold() -> number", Description: "Score required to pass.", Impl: fnPassingThreshold},

			// Aggregates
			{Name: "min", MinArgs: 1, MaxArgs: Unlimited, Category: CategoryAggregate, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "min(a, ...) -> number", Description: "Smallest argument.", Impl: fnMin},
			{Name: "max", MinArgs: 1, MaxArgs: Unlimited, Category: CategoryAggregate, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "max(a, ...) -> number", Description: "Largest argument.", Impl: fnMax},
			{Name: "avg", MinArgs: 1, MaxArgs: Unlimited, Category: CategoryAggregate, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "avg(a, ...) -> number", Description: "Arithmetic mean of the arguments.", Impl: fnAvg},
			{Name: "sum", MinArgs: 1, MaxArgs: Unlimited, Category: CategoryAggregate, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "sum(a, ...) -> number", Description: "Sum of the arguments.", Impl: fnSum},
			{Name: "count", MinArgs: 1, MaxArgs: Unlimited, Category: CategoryAggregate, Params: []types.ValueType{tAny}, Returns: tNum,
				Signature: "count(a, ...) -> number", Description: "Number of arguments.", Impl: fnCount},

			// Math
			{Name: "round", MinArgs: 1, MaxArgs: 1, Category: CategoryMath, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "round(x) -> number", Description: "Nearest integer, ties away from zero.", Impl: fnRound},
			{Name: "abs", MinArgs: 1, MaxArgs: 1, Category: CategoryMath, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "abs(x) -> number", Description: "Absolute value.", Impl: fnAbs},
			{Name: "floor", MinArgs: 1, MaxArgs: 1, Category: CategoryMath, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "floor(x) -> number", Description: "Largest integer not greater than x.", Impl: fnFloor},
			{Name: "ceil", MinArgs: 1, MaxArgs: 1, Category: CategoryMath, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "ceil(x) -> number", Description: "Smallest integer not less than x.", Impl: fnCeil},
			{Name: "sqrt", MinArgs: 1, MaxArgs: 1, Category: CategoryMath, Params: []types.ValueType{tNum}, Returns: tNum,
				Signature: "sqrt(x) -> number", Description: "Square root; x must not be negative.", Impl: fnSqrt},
			{Name: "pow", MinArgs: 2, MaxArgs: 2, Category: CategoryMath, Params: []types.ValueType{tNum, tNum}, Returns: tNum,
				Signature: "pow(x, y) -> number", Description: "x raised to the power y, same as x ^ y.", Impl: fnPow},
			{Name: "clamp", MinArgs: 3, MaxArgs: 3, Category: CategoryMath, Params: []types.ValueType{tNum, tNum, tNum}, Returns: tNum,
				Signature: "clamp(x, lo, hi) -> number", Description: "x limited to the range [lo, hi].", Impl: fnClamp},

			// Logical
			{Name: "and", MinArgs: 2, MaxArgs: Unlimited, Category: CategoryLogical, Lazy: true, Params: []types.ValueType{tAny}, Returns: tBool,
				Signature: "and(a, b, ...) -> boolean", Description: "True when every argument is truthy; stops at the first falsy one."},
			{Name: "or", MinArgs: 2, MaxArgs: Unlimited, Category: CategoryLogical, Lazy: true, Params: []types.ValueType{tAny}, Returns: tBool,
				Signature: "or(a, b, ...) -> boolean", Description: "True when any argument is truthy; stops at the first truthy one."},
			{Name: "not", MinArgs: 1, MaxArgs: 1, Category: CategoryLogical, Params: []types.ValueType{tAny}, Returns: tBool,
				Signature: "not(a) -> boolean", Description: "Logical negation of a truthy value.", Impl: fnNot},

			// Control
			{Name: "if", MinArgs: 3, MaxArgs: 3, Category: CategoryControl, Lazy: true, Params: []types.ValueType{tAny, tAny, tAny}, Returns: tAny,
				Signature: "if(cond, whenTrue, whenFalse)", Description: "Evaluates only the branch selected by cond."},
		}

		builtinFunctions = make(map[string]*Def, len(defs))
		builtinFunctionNames = make([]string, 0, len(defs))
		for _, d := range defs {
			builtinFunctions[d.Name] = d
			builtinFunctionNames = append(builtinFunctionNames, d.Name)
		}
		sort.Strings(builtinFunctionNames)
	})
}

// Lookup retrieves a built-in function by name.
func Lookup(name string) (*Def, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// Names returns the names of all built-ins in sorted order.
func Names() []string {
	initBuiltinFunctions()
	out := make([]string, len(builtinFunctionNames))
	copy(out, builtinFunctionNames)
	return out
}

// All returns every built-in definition sorted by name.
func All() []*Def {
	initBuiltinFunctions()
	out := make([]*Def, 0, len(builtinFunctionNames))
	for _, name := range builtinFunctionNames {
		out = append(out, builtinFunctions[name])
	}
	return out
}

// Accessors returns the domain accessor definitions sorted by name.
func Accessors() []*Def {
	var out []*Def
	for _, d := range All() {
		if d.Category == CategoryAccessor {
			out = append(out, d)
		}
	}
	return out
}
