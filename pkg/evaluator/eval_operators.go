package evaluator

import (
	"fmt"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// evalUnary evaluates - and !.
func (e *Evaluator) evalUnary(s *evalState, node *types.Node) (types.Value, error) {
	v, err := e.evalNode(s, node.LHS)
	if err != nil {
		return types.Value{}, err
	}
	s.cur = node

	op, ok := functions.LookupUnary(node.Str)
	if !ok {
		return types.Value{}, types.NewError(types.ErrRuntime, fmt.Sprintf("unknown unary operator: %s", node.Str), node.Pos)
	}

	switch op.Kind {
	case functions.KindNegate:
		if v.Type != types.TypeNumber {
			return types.Value{}, types.NewError(types.ErrType,
				fmt.Sprintf("unary '-' expects a number, got %s", v.Type), node.Pos)
		}
		return types.Number(-v.Num), nil
	default:
		return types.Boolean(!v.Truthy()), nil
	}
}

// evalBinary evaluates an infix operator. Both operands are always evaluated.
func (e *Evaluator) evalBinary(s *evalState, node *types.Node) (types.Value, error) {
	left, err := e.evalNode(s, node.LHS)
	if err != nil {
		return types.Value{}, err
	}
	right, err := e.evalNode(s, node.RHS)
	if err != nil {
		return types.Value{}, err
	}
	s.cur = node

	op, ok := functions.LookupBinary(node.Str)
	if !ok {
		return types.Value{}, types.NewError(types.ErrRuntime, fmt.Sprintf("unknown operator: %s", node.Str), node.Pos)
	}

	if op.Kind == functions.KindEquality && left.Type == types.TypeBoolean && right.Type == types.TypeBoolean {
		equal := left.Bool == right.Bool
		if op.Symbol == "!=" {
			equal = !equal
		}
		return types.Boolean(equal), nil
	}

	if left.Type != types.TypeNumber || right.Type != types.TypeNumber {
		return types.Value{}, types.NewError(types.ErrType,
			fmt.Sprintf("operator '%s' expects numbers, got %s and %s", op.Symbol, left.Type, right.Type), node.Pos)
	}

	if op.Compare != nil {
		return types.Boolean(op.Compare(left.Num, right.Num)), nil
	}

	if op.ZeroDivisor && right.Num == 0 {
		return types.Value{}, types.NewError(types.ErrDivisionByZero,
			fmt.Sprintf("division by zero in %s", node), node.Pos).WithToken(op.Symbol)
	}

	v := types.Number(op.Arith(left.Num, right.Num))
	if err := checkFinite(v, node); err != nil {
		return types.Value{}, err
	}
	return v, nil
}
