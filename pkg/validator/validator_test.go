package validator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/types"
	"github.com/sandrolain/goformula/pkg/validator"
)

func kinds(res *types.ValidationResult) []types.ErrorKind {
	out := make([]types.ErrorKind, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, e.Kind)
	}
	return out
}

func requireValid(t *testing.T, v *validator.Validator, expr string) *types.ValidationResult {
	t.Helper()
	res := v.Validate(expr)
	require.True(t, res.IsValid, "expected %q to be valid, got %v", expr, res.Errors)
	assert.Empty(t, res.Errors)
	return res
}

func requireInvalid(t *testing.T, v *validator.Validator, expr string, kind types.ErrorKind) *types.ValidationResult {
	t.Helper()
	res := v.Validate(expr)
	require.False(t, res.IsValid, "expected %q to be invalid", expr)
	assert.Contains(t, kinds(res), kind, "errors of %q", expr)
	return res
}

func TestValidateValid(t *testing.T) {
	v := validator.New()
	for _, expr := range []string{
		`dimension("fluency") * 0.4 + dimension("adequacy") * 0.6`,
		`if(totalErrors() > 10, 0, dimension("overall"))`,
		`max(0, 100 - errorType("major") * 5 - errorType("minor"))`,
		`and(unitCount() > 0, or(totalErrors() == 0, errorRate() < 0.05))`,
		`true == false`,
		`!1`,
		`not(0) != true`,
		`round(avg(1, 2, 3)) ^ 2 % 7`,
		`clamp(pow(2, 3), 0, 5) + sqrt(16) + floor(1.5) + ceil(1.5) + count(1, true)`,
		`if(x > 1, 1, false)`,
	} {
		t.Run(expr, func(t *testing.T) {
			res := requireValid(t, v, expr)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestValidateArity(t *testing.T) {
	res := requireInvalid(t, validator.New(), "round(1,2,3)", types.ErrArity)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "round expects exactly 1 argument, got 3", res.Errors[0].Message)
	assert.Equal(t, 1, res.Errors[0].Position.Column)
	assert.Contains(t, res.SuggestedFixes, "call it as round(x) -> number")

	requireInvalid(t, validator.New(), "if(true, 1)", types.ErrArity)
	requireInvalid(t, validator.New(), "and(true)", types.ErrArity)
	requireInvalid(t, validator.New(), "totalErrors(1)", types.ErrArity)
	requireInvalid(t, validator.New(), "min()", types.ErrArity)
}

func TestValidateUnknownFunction(t *testing.T) {
	res := requireInvalid(t, validator.New(), "1 + rond(2.5)", types.ErrUnknownFunction)
	assert.Equal(t, "unknown function 'rond'", res.Errors[0].Message)
	assert.Equal(t, 5, res.Errors[0].Position.Column)
	assert.Equal(t, []string{"did you mean 'round'?"}, res.SuggestedFixes)

	// Arguments of unknown functions are still checked
	res = requireInvalid(t, validator.New(), "foo(rond(1))", types.ErrUnknownFunction)
	assert.Len(t, res.Errors, 2)

	res = requireInvalid(t, validator.New(), "frobnicate()", types.ErrUnknownFunction)
	assert.Empty(t, res.SuggestedFixes)
}

func TestValidateStringArguments(t *testing.T) {
	res := requireInvalid(t, validator.New(), "dimension(x)", types.ErrType)
	assert.Equal(t, "argument 1 of dimension must be a string literal", res.Errors[0].Message)
	assert.Empty(t, res.Warnings, "a misplaced key is not also a free variable")

	requireInvalid(t, validator.New(), `weight(1 + 2)`, types.ErrType)

	res = requireInvalid(t, validator.New(), `"fluency" + 1`, types.ErrType)
	assert.Contains(t, res.Errors[0].Message, "only allowed as the argument of dimension, errorType, weight")

	requireInvalid(t, validator.New(), `round("1")`, types.ErrType)
}

func TestValidateTypes(t *testing.T) {
	tests := []struct {
		expr string
		msg  string
	}{
		{"true == 1", "operator '==' cannot compare boolean with number"},
		{"-true", "unary '-' expects a number, got boolean"},
		{"true + 1", "operator '+' expects numbers, got boolean on the left"},
		{"1 * (2 > 1)", "operator '*' expects numbers, got boolean on the right"},
		{"sum(1, true)", "argument 2 of sum must be a number, got boolean"},
		{"round(x > 1)", "argument 1 of round must be a number, got boolean"},
		{"max(if(a, true, false), 1)", "argument 1 of max must be a number, got boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := requireInvalid(t, validator.New(), tt.expr, types.ErrType)
			assert.Equal(t, tt.msg, res.Errors[0].Message)
		})
	}
}

func TestValidateChainedComparison(t *testing.T) {
	res := requireInvalid(t, validator.New(), "a < b < c", types.ErrType)
	assert.Equal(t, "operator '<' expects numbers, got boolean on the left", res.Errors[0].Message)
	assert.Equal(t, []string{"comparisons do not chain; write and(a < b, b < c)"}, res.SuggestedFixes)
}

func TestValidateDivisionByZero(t *testing.T) {
	v := validator.New()

	res := requireValid(t, v, "x / 0")
	assert.Equal(t, []string{"possible division by zero at 1:3: (x / 0)"}, res.Warnings)

	res = requireValid(t, v, "x % 0.0")
	assert.Len(t, res.Warnings, 1)

	res = requireValid(t, v, "if(true, 1, 1/0)")
	assert.Len(t, res.Warnings, 1)

	res = requireValid(t, v, "x / (1 - 1)")
	assert.Empty(t, res.Warnings, "only literal zero divisors are flagged")
}

func TestValidateFreeVariables(t *testing.T) {
	t.Run("conventional names pass without reference", func(t *testing.T) {
		res := requireValid(t, validator.New(), "bonus * 2 + penalty")
		assert.Empty(t, res.Warnings)
		assert.Equal(t, []string{"bonus", "penalty"}, res.Variables)
	})

	t.Run("unconventional name", func(t *testing.T) {
		res := requireValid(t, validator.New(), "Fluency_Score + 1")
		assert.Equal(t, []string{"free variable 'Fluency_Score' does not follow the naming convention (lowerCamelCase)"}, res.Warnings)
	})

	t.Run("unknown name with suggestion", func(t *testing.T) {
		v := validator.New(validator.WithKnownNames("bonus"))
		res := requireValid(t, v, "bonnus + bonus + bonnus")
		assert.Equal(t, []string{"free variable 'bonnus' is not a known constant or variable; it must be supplied in the context"}, res.Warnings)
		assert.Equal(t, []string{"replace 'bonnus' with bonus"}, res.SuggestedFixes)
	})

	t.Run("function used as variable", func(t *testing.T) {
		res := requireValid(t, validator.New(), "totalErrors + 1")
		assert.Equal(t, []string{"'totalErrors' is a function, not a variable"}, res.Warnings)
		assert.Equal(t, []string{"replace 'totalErrors' with totalErrors()"}, res.SuggestedFixes)
	})

	t.Run("misspelt accessor without reference", func(t *testing.T) {
		tests := []struct {
			expr string
			name string
			want string
		}{
			{"totalError * 2", "totalError", "totalErrors"},
			{"maxScor + 1", "maxScor", "maxScore"},
			{"unitcount", "unitcount", "unitCount"},
			{"100 - erorRate", "erorRate", "errorRate"},
		}
		for _, tt := range tests {
			t.Run(tt.expr, func(t *testing.T) {
				res := requireValid(t, validator.New(), tt.expr)
				assert.Equal(t, []string{fmt.Sprintf("free variable '%s' looks like a misspelt %s()", tt.name, tt.want)}, res.Warnings)
				assert.Equal(t, []string{fmt.Sprintf("replace '%s' with %s()", tt.name, tt.want)}, res.SuggestedFixes)
			})
		}
	})

	t.Run("accessor id suggestion", func(t *testing.T) {
		ref := &types.FormulaContext{
			Dimensions: map[string]float64{"fluency": 80},
			Constants:  map[string]float64{"bonus": 5},
		}
		res := requireValid(t, validator.New(validator.WithContext(ref)), "fluencyy + bonus")
		assert.Len(t, res.Warnings, 1)
		assert.Equal(t, []string{`replace 'fluencyy' with dimension("fluency")`}, res.SuggestedFixes)
	})
}

func TestValidateReferenceKeys(t *testing.T) {
	ref := &types.FormulaContext{
		Dimensions: map[string]float64{"fluency": 80, "adequacy": 90},
	}
	v := validator.New(validator.WithContext(ref))

	res := requireValid(t, v, `dimension("fluncy") + dimension("adequacy") + errorType("anything")`)
	assert.Equal(t, []string{`dimension "fluncy" is not defined in the reference context`}, res.Warnings)
	assert.Equal(t, []string{`did you mean dimension("fluency")?`}, res.SuggestedFixes)
}

func TestValidateSyntaxErrors(t *testing.T) {
	res := requireInvalid(t, validator.New(), "1 +", types.ErrSyntax)
	assert.Equal(t, []string{"the formula ends where an operand is expected"}, res.SuggestedFixes)

	res = requireInvalid(t, validator.New(), "a = 1", types.ErrSyntax)
	assert.Equal(t, []string{"did you mean '=='?"}, res.SuggestedFixes)
	assert.Empty(t, res.Variables)

	res = requireInvalid(t, validator.New(), "x + (", types.ErrSyntax)
	assert.Equal(t, []string{"x"}, res.Variables, "names are still extracted when parsing fails")
}

func TestValidateComplexity(t *testing.T) {
	requireInvalid(t, validator.New(validator.WithMaxNodes(3)), "1 + 2 + 3", types.ErrComplexityExceeded)
	requireInvalid(t, validator.New(validator.WithMaxDepth(2)), "((1))", types.ErrComplexityExceeded)
}

func TestValidateResultShape(t *testing.T) {
	res := requireValid(t, validator.New(), `x + dimension("a") + y`)
	assert.Equal(t, []string{"x", "y"}, res.Variables)
	assert.Equal(t, []string{"dimension"}, res.Functions)
	assert.GreaterOrEqual(t, res.ParseTimeMs, 0.0)
	assert.NotNil(t, res.Warnings)
	assert.NotNil(t, res.SuggestedFixes)
}
