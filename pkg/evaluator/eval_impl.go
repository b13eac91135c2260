package evaluator

import (
	"fmt"
	"math"
	"sort"

	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// evalState holds the per-call state of one evaluation. It implements
// functions.Env.
type evalState struct {
	ctx      *types.FormulaContext
	warnings []string
	seen     map[string]struct{}
	cur      *types.Node // node being evaluated, for panic positions
}

func (s *evalState) Context() *types.FormulaContext {
	return s.ctx
}

// Warn records a warning once, in first-seen order.
func (s *evalState) Warn(message string) {
	if _, ok := s.seen[message]; ok {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[message] = struct{}{}
	s.warnings = append(s.warnings, message)
}

// Eval evaluates prog against ctx and returns the value with the warnings
// recorded on the way. A panic anywhere in the walk is recovered into a
// RuntimeError positioned at the node being evaluated.
func (e *Evaluator) Eval(prog *types.Program, ctx *types.FormulaContext) (v types.Value, warnings []string, err error) {
	s := &evalState{ctx: ctx}

	defer func() {
		if r := recover(); r != nil {
			pos := prog.Root().Pos
			if s.cur != nil {
				pos = s.cur.Pos
			}
			v = types.Value{}
			err = types.NewError(types.ErrRuntime, fmt.Sprintf("internal error: %v", r), pos)
			e.logger.Error().Str("formula", prog.Source()).Str("pos", pos.String()).Interface("panic", r).Msg("evaluation panicked")
		}
		warnings = s.warnings
	}()

	v, err = e.evalNode(s, prog.Root())
	if err != nil {
		return types.Value{}, s.warnings, err
	}
	if err := checkFinite(v, prog.Root()); err != nil {
		return types.Value{}, s.warnings, err
	}
	return v, s.warnings, nil
}

// evalNode evaluates an AST node.
func (e *Evaluator) evalNode(s *evalState, node *types.Node) (types.Value, error) {
	s.cur = node

	if e.opts.Debug {
		e.logger.Debug().
			Str("type", string(node.Type)).
			Str("pos", node.Pos.String()).
			Str("value", node.Str).
			Msg("evaluating node")
	}

	switch node.Type {
	case types.NodeNumber:
		return types.Number(node.Num), nil
	case types.NodeBoolean:
		return types.Boolean(node.Bool), nil
	case types.NodeString:
		return types.Value{}, types.NewError(types.ErrType,
			fmt.Sprintf("string literal %s is only allowed as an accessor key", node), node.Pos)
	case types.NodeVariable:
		return e.evalVariable(s, node)
	case types.NodeUnary:
		return e.evalUnary(s, node)
	case types.NodeBinary:
		return e.evalBinary(s, node)
	case types.NodeCall:
		return e.evalCall(s, node)
	default:
		return types.Value{}, types.NewError(types.ErrRuntime, fmt.Sprintf("unsupported node type: %s", node.Type), node.Pos)
	}
}

// evalVariable resolves a bare identifier: variables, then constants.
func (e *Evaluator) evalVariable(s *evalState, node *types.Node) (types.Value, error) {
	if v, ok := s.ctx.Lookup(node.Str); ok {
		return types.Number(v), nil
	}

	err := types.NewError(types.ErrUnknownIdentifier, fmt.Sprintf("unknown identifier '%s'", node.Str), node.Pos).
		WithToken(node.Str)
	if def, ok := functions.Lookup(node.Str); ok && def.MaxArgs == 0 {
		return types.Value{}, err.WithHint(fmt.Sprintf("did you mean %s()?", node.Str))
	}
	if s.ctx != nil {
		names := make([]string, 0, len(s.ctx.Variables)+len(s.ctx.Constants))
		for k := range s.ctx.Variables {
			names = append(names, k)
		}
		for k := range s.ctx.Constants {
			names = append(names, k)
		}
		sort.Strings(names)
		if best, ok := functions.Closest(node.Str, names); ok {
			err.WithHint(fmt.Sprintf("did you mean '%s'?", best))
		}
	}
	return types.Value{}, err
}

// checkFinite rejects NaN and infinite numbers.
func checkFinite(v types.Value, node *types.Node) error {
	if v.Type == types.TypeNumber && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0)) {
		return types.NewError(types.ErrRuntime, "result is not a finite number", node.Pos)
	}
	return nil
}
