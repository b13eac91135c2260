package functions

import (
	"math"

	"github.com/sandrolain/goformula/pkg/types"
)

// OperatorKind classifies an operator by the operand types it accepts.
type OperatorKind uint8

// Operator kinds.
const (
	KindArithmetic OperatorKind = iota // number, number -> number
	KindOrdering                       // number, number -> boolean
	KindEquality                       // number, number or boolean, boolean -> boolean
	KindNegate                         // unary -, number -> number
	KindNot                            // unary !, any -> boolean
)

// Binding powers. Higher values bind more tightly.
const (
	PrecComparison     = 10
	PrecAdditive       = 20
	PrecMultiplicative = 30
	PrecPower          = 40
	PrecUnary          = 50
)

// Operator describes an infix or prefix operator.
type Operator struct {
	Symbol     string
	Precedence int
	RightAssoc bool
	Kind       OperatorKind
	Returns    types.ValueType

	// ZeroDivisor marks operators whose right operand must not be 0.
	ZeroDivisor bool

	// Arith computes arithmetic operators.
	Arith func(a, b float64) float64
	// Compare computes ordering and numeric equality operators.
	Compare func(a, b float64) bool
}

var binaryOperators = map[string]*Operator{
	"+": {Symbol: "+", Precedence: PrecAdditive, Kind: KindArithmetic, Returns: types.TypeNumber,
		Arith: func(a, b float64) float64 { return a + b }},
	"-": {Symbol: "-", Precedence: PrecAdditive, Kind: KindArithmetic, Returns: types.TypeNumber,
		Arith: func(a, b float64) float64 { return a - b }},
	"*": {Symbol: "*", Precedence: PrecMultiplicative, Kind: KindArithmetic, Returns: types.TypeNumber,
		Arith: func(a, b float64) float64 { return a * b }},
	"/": {Symbol: "/", Precedence: PrecMultiplicative, Kind: KindArithmetic, Returns: types.TypeNumber, ZeroDivisor: true,
		Arith: func(a, b float64) float64 { return a / b }},
	"%": {Symbol: "%", Precedence: PrecMultiplicative, Kind: KindArithmetic, Returns: types.TypeNumber, ZeroDivisor: true,
		Arith: math.Mod},
	"^": {Symbol: "^", Precedence: PrecPower, RightAssoc: true, Kind: KindArithmetic, Returns: types.TypeNumber,
		Arith: math.Pow},

	">": {Symbol: ">", Precedence: PrecComparison, Kind: KindOrdering, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a > b }},
	"<": {Symbol: "<", Precedence: PrecComparison, Kind: KindOrdering, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a < b }},
	">=": {Symbol: ">=", Precedence: PrecComparison, Kind: KindOrdering, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a >= b }},
	"<=": {Symbol: "<=", Precedence: PrecComparison, Kind: KindOrdering, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a <= b }},
	"==": {Symbol: "==", Precedence: PrecComparison, Kind: KindEquality, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a == b }},
	"!=": {Symbol: "!=", Precedence: PrecComparison, Kind: KindEquality, Returns: types.TypeBoolean,
		Compare: func(a, b float64) bool { return a != b }},
}

var unaryOperators = map[string]*Operator{
	"-": {Symbol: "-", Precedence: PrecUnary, Kind: KindNegate, Returns: types.TypeNumber},
	"!": {Symbol: "!", Precedence: PrecUnary, Kind: KindNot, Returns: types.TypeBoolean},
}

// LookupBinary returns the infix operator for symbol.
func LookupBinary(symbol string) (*Operator, bool) {
	op, ok := binaryOperators[symbol]
	return op, ok
}

// LookupUnary returns the prefix operator for symbol.
func LookupUnary(symbol string) (*Operator, bool) {
	op, ok := unaryOperators[symbol]
	return op, ok
}

// BinaryPrecedence returns the binding power of an infix operator, or 0 when
// symbol is not one.
func BinaryPrecedence(symbol string) int {
	if op, ok := binaryOperators[symbol]; ok {
		return op.Precedence
	}
	return 0
}
