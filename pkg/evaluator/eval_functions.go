package evaluator

import (
	"fmt"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// evalCall evaluates a call to a built-in.
func (e *Evaluator) evalCall(s *evalState, node *types.Node) (types.Value, error) {
	def, ok := functions.Lookup(node.Str)
	if !ok {
		err := types.NewError(types.ErrUnknownFunction, fmt.Sprintf("unknown function '%s'", node.Str), node.Pos).
			WithToken(node.Str)
		if best, ok := functions.SuggestFunction(node.Str); ok {
			err.WithHint(fmt.Sprintf("did you mean '%s'?", best))
		}
		return types.Value{}, err
	}

	if err := functions.CheckArity(def, len(node.Args)); err != nil {
		pos := node.Pos
		err.Position = &pos
		return types.Value{}, err
	}

	if def.Lazy {
		switch def.Name {
		case "if":
			return e.evalIf(s, node)
		case "and":
			return e.evalAnd(s, node)
		case "or":
			return e.evalOr(s, node)
		default:
			return types.Value{}, types.NewError(types.ErrRuntime, fmt.Sprintf("no lazy implementation for %s", def.Name), node.Pos)
		}
	}

	args := make([]types.Value, len(node.Args))
	for i, arg := range node.Args {
		if def.StringArg {
			if arg.Type != types.NodeString {
				return types.Value{}, types.NewError(types.ErrType,
					fmt.Sprintf("argument %d of %s must be a string literal", i+1, def.Name), arg.Pos)
			}
			args[i] = types.String(arg.Str)
			continue
		}
		v, err := e.evalNode(s, arg)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v
	}
	s.cur = node

	v, err := def.Impl(s, args)
	if err != nil {
		fe := types.AsError(err)
		if fe.Position == nil {
			pos := node.Pos
			fe.Position = &pos
		}
		return types.Value{}, fe
	}
	if err := checkFinite(v, node); err != nil {
		return types.Value{}, err
	}
	return v, nil
}

// evalIf evaluates the condition, then only the selected branch.
func (e *Evaluator) evalIf(s *evalState, node *types.Node) (types.Value, error) {
	cond, err := e.evalNode(s, node.Args[0])
	if err != nil {
		return types.Value{}, err
	}
	if cond.Truthy() {
		return e.evalNode(s, node.Args[1])
	}
	return e.evalNode(s, node.Args[2])
}

// evalAnd stops at the first falsy argument.
func (e *Evaluator) evalAnd(s *evalState, node *types.Node) (types.Value, error) {
	for _, arg := range node.Args {
		v, err := e.evalNode(s, arg)
		if err != nil {
			return types.Value{}, err
		}
		if !v.Truthy() {
			return types.Boolean(false), nil
		}
	}
	return types.Boolean(true), nil
}

// evalOr stops at the first truthy argument.
func (e *Evaluator) evalOr(s *evalState, node *types.Node) (types.Value, error) {
	for _, arg := range node.Args {
		v, err := e.evalNode(s, arg)
		if err != nil {
			return types.Value{}, err
		}
		if v.Truthy() {
			return types.Boolean(true), nil
		}
	}
	return types.Boolean(false), nil
}
