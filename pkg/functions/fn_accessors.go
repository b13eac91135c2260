package functions

import (
	"fmt"

	"github.com/sandrolain/goformula/pkg/types"
)

// Domain accessors read named values out of the context. A missing key is
// not an error: the value defaults to 0 and a warning is recorded.

func fnDimension(env Env, args []types.Value) (types.Value, error) {
	return keyed(env, args, "dimension", (*types.FormulaContext).Dimension)
}

func fnErrorType(env Env, args []types.Value) (types.Value, error) {
	return keyed(env, args, "error type", (*types.FormulaContext).ErrorType)
}

func fnWeight(env Env, args []types.Value) (types.Value, error) {
	return keyed(env, args, "weight", (*types.FormulaContext).Weight)
}

func keyed(env Env, args []types.Value, what string, get func(*types.FormulaContext, string) (float64, bool)) (types.Value, error) {
	if len(args) != 1 || args[0].Type != types.TypeString {
		return types.Value{}, types.NewErrorf(types.ErrType, "%s id must be a string literal", what)
	}
	id := args[0].Str
	v, ok := get(env.Context(), id)
	if !ok {
		env.Warn(MissingKeyWarning(what, id))
		return types.Number(0), nil
	}
	return types.Number(v), nil
}

// MissingKeyWarning formats the warning recorded when an accessor key is absent.
func MissingKeyWarning(what, id string) string {
	return fmt.Sprintf("%s not found, defaulted to 0: %q", what, id)
}

func fnTotalErrors(env Env, _ []types.Value) (types.Value, error) {
	if c := env.Context(); c != nil {
		return types.Number(c.TotalErrors), nil
	}
	return types.Number(0), nil
}

func fnUnitCount(env Env, _ []types.Value) (types.Value, error) {
	if c := env.Context(); c != nil {
		return types.Number(c.UnitCount), nil
	}
	return types.Number(0), nil
}

func fnMaxScore(env Env, _ []types.Value) (types.Value, error) {
	if c := env.Context(); c != nil {
		return types.Number(c.MaxScore), nil
	}
	return types.Number(0), nil
}

func fnErrorRate(env Env, _ []types.Value) (types.Value, error) {
	if c := env.Context(); c != nil {
		return types.Number(c.ErrorRate), nil
	}
	return types.Number(0), nil
}

func fnPassingThreshold(env Env, _ []types.Value) (types.Value, error) {
	if c := env.Context(); c != nil {
		return types.Number(c.PassingThreshold), nil
	}
	return types.Number(0), nil
}
