package functions

import (
	"math"

	"github.com/sandrolain/goformula/pkg/types"
)

// numbers converts every argument to float64, failing with a TypeError on
// the first non-numeric one.
func numbers(name string, args []types.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		if a.Type != types.TypeNumber {
			return nil, types.NewErrorf(types.ErrType, "argument %d of %s must be a number, got %s", i+1, name, a.Type)
		}
		out[i] = a.Num
	}
	return out, nil
}

func unary(name string, args []types.Value, fn func(float64) float64) (types.Value, error) {
	nums, err := numbers(name, args)
	if err != nil {
		return types.Value{}, err
	}
	return types.Number(fn(nums[0])), nil
}

// Aggregate functions

func fnMin(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("min", args)
	if err != nil {
		return types.Value{}, err
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Min(m, n)
	}
	return types.Number(m), nil
}

func fnMax(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("max", args)
	if err != nil {
		return types.Value{}, err
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Max(m, n)
	}
	return types.Number(m), nil
}

func fnSum(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("sum", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.Number(sum(nums)), nil
}

func fnAvg(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("avg", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.Number(sum(nums) / float64(len(nums))), nil
}

func fnCount(_ Env, args []types.Value) (types.Value, error) {
	return types.Number(float64(len(args))), nil
}

func sum(nums []float64) float64 {
	var total float64
	for _, n := range nums {
		total += n
	}
	return total
}

// Numeric functions

func fnRound(_ Env, args []types.Value) (types.Value, error) {
	// math.Round rounds half away from zero.
	return unary("round", args, math.Round)
}

func fnAbs(_ Env, args []types.Value) (types.Value, error) {
	return unary("abs", args, math.Abs)
}

func fnFloor(_ Env, args []types.Value) (types.Value, error) {
	return unary("floor", args, math.Floor)
}

func fnCeil(_ Env, args []types.Value) (types.Value, error) {
	return unary("ceil", args, math.Ceil)
}

func fnSqrt(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("sqrt", args)
	if err != nil {
		return types.Value{}, err
	}
	if nums[0] < 0 {
		return types.Value{}, types.NewErrorf(types.ErrRuntime, "sqrt of negative number %g", nums[0])
	}
	return types.Number(math.Sqrt(nums[0])), nil
}

func fnPow(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("pow", args)
	if err != nil {
		return types.Value{}, err
	}
	return types.Number(math.Pow(nums[0], nums[1])), nil
}

func fnClamp(_ Env, args []types.Value) (types.Value, error) {
	nums, err := numbers("clamp", args)
	if err != nil {
		return types.Value{}, err
	}
	x, lo, hi := nums[0], nums[1], nums[2]
	if lo > hi {
		return types.Value{}, types.NewErrorf(types.ErrRuntime, "clamp bounds out of order: %g > %g", lo, hi)
	}
	return types.Number(math.Max(lo, math.Min(x, hi))), nil
}

// Logical functions

func fnNot(_ Env, args []types.Value) (types.Value, error) {
	return types.Boolean(!args[0].Truthy()), nil
}
