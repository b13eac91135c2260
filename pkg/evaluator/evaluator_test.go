package evaluator_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/types"
)

func testContext() *types.FormulaContext {
	return &types.FormulaContext{
		Dimensions:       map[string]float64{"fluency": 85, "adequacy": 90, "overall": 70},
		ErrorTypes:       map[string]float64{"major": 2, "minor": 5},
		Weights:          map[string]float64{"fluency": 0.4, "adequacy": 0.6},
		TotalErrors:      7,
		UnitCount:        100,
		ErrorRate:        0.07,
		MaxScore:         100,
		PassingThreshold: 75,
		Constants:        map[string]float64{"bonus": 5, "penalty": 2},
		Variables:        map[string]float64{"penalty": 3, "x": 10},
	}
}

func evalOK(t *testing.T, ev *evaluator.Evaluator, expr string, ctx *types.FormulaContext) *types.ExecutionResult {
	t.Helper()
	res := ev.Evaluate(expr, ctx)
	require.True(t, res.IsValid, "evaluate %q: %v", expr, res.Errors)
	require.Empty(t, res.Errors)
	return res
}

func evalErr(t *testing.T, ev *evaluator.Evaluator, expr string, ctx *types.FormulaContext, kind types.ErrorKind) *types.Error {
	t.Helper()
	res := ev.Evaluate(expr, ctx)
	require.False(t, res.IsValid, "expected %q to fail, got %v", expr, res.Result)
	assert.Nil(t, res.Result)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, kind, res.Errors[0].Kind, "error of %q: %v", expr, res.Errors[0])
	return res.Errors[0]
}

func TestEvaluateNumbers(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()

	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"2 ^ 3 ^ 2", 512},
		{"-2 ^ 2", 4},
		{"2 ^ -1", 0.5},
		{"1 - 2 - 3", -4},
		{"7 / 2", 3.5},
		{"10 % 3", 1},
		{"-7 % 3", -1},
		{".5 + 1e1", 10.5},
		{`dimension("fluency") * weight("fluency") + dimension("adequacy") * weight("adequacy")`, 88},
		{`if(totalErrors() > 10, 0, dimension("overall"))`, 70},
		{`max(0, maxScore() - errorType("major") * 5 - errorType("minor"))`, 85},
		{"penalty", 3},
		{"bonus + x", 15},
		{"round(2.5)", 3},
		{"round(-2.5)", -3},
		{"round(2.4)", 2},
		{"abs(-3)", 3},
		{"avg(1, 2, 3, 4)", 2.5},
		{"sum(1, 2, 3)", 6},
		{"min(4, 2, 8)", 2},
		{"max(4, 2, 8)", 8},
		{"count(1, true, 3)", 3},
		{"errorRate() * 100", 7},
		{"passingThreshold() - unitCount()", -25},
		{"clamp(dimension(\"fluency\") + 30, 0, maxScore())", 100},
		{"pow(2, 10) + sqrt(9) + floor(1.9) + ceil(1.1)", 1030},
		{"if(1, 2, 3)", 2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := evalOK(t, ev, tt.expr, ctx)
			got, ok := res.Number()
			require.True(t, ok, "result %v is not a number", res.Result)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestEvaluateBooleans(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()

	tests := []struct {
		expr string
		want bool
	}{
		{"1 < 2", true},
		{"2 >= 3", false},
		{"2 <= 2", true},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true == true", true},
		{"true != false", true},
		{"!0", true},
		{"!5", false},
		{"!true == false", true},
		{"not(1 > 2)", true},
		{"and(1, 2 > 1)", true},
		{"and(1, 0)", false},
		{"or(0, false)", false},
		{"or(0, 3)", true},
		{`dimension("fluency") >= passingThreshold()`, true},
		{"if(x > 5, true, false)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := evalOK(t, ev, tt.expr, ctx)
			got, ok := res.Boolean()
			require.True(t, ok, "result %v is not a boolean", res.Result)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()

	tests := []struct {
		expr string
		want interface{}
	}{
		{"if(true, 1, 1/0)", 1.0},
		{"if(false, 1/0, 2)", 2.0},
		{"if(0, undefinedVar, 3)", 3.0},
		{"and(false, 1/0)", false},
		{"or(true, undefinedVar)", true},
		{"and(1, or(1, 1/0), 2)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := evalOK(t, ev, tt.expr, ctx)
			assert.Equal(t, tt.want, res.Result)
		})
	}

	// The taken branch still fails
	evalErr(t, ev, "if(true, 1/0, 1)", ctx, types.ErrDivisionByZero)
	// Syntax errors anywhere fail the whole call
	evalErr(t, ev, "if(true, 1, (1 +)", ctx, types.ErrSyntax)
}

func TestEvaluateMissingKeys(t *testing.T) {
	ev := evaluator.New()
	ctx := &types.FormulaContext{}

	res := evalOK(t, ev, `dimension("fluency")`, ctx)
	assert.Equal(t, 0.0, res.Result)
	assert.Equal(t, []string{`dimension not found, defaulted to 0: "fluency"`}, res.Warnings)

	res = evalOK(t, ev, `dimension("a") + dimension("a") + weight("w") + errorType("e")`, ctx)
	assert.Equal(t, []string{
		`dimension not found, defaulted to 0: "a"`,
		`weight not found, defaulted to 0: "w"`,
		`error type not found, defaulted to 0: "e"`,
	}, res.Warnings)

	// Warnings survive a later fatal error
	res = ev.Evaluate(`dimension("a") + missing`, ctx)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Warnings, 1)
}

func TestEvaluateNilContext(t *testing.T) {
	ev := evaluator.New()

	res := evalOK(t, ev, "1 + 1", nil)
	assert.Equal(t, 2.0, res.Result)

	res = evalOK(t, ev, `dimension("x") + totalErrors()`, nil)
	assert.Equal(t, 0.0, res.Result)
	assert.Len(t, res.Warnings, 1)

	evalErr(t, ev, "x", nil, types.ErrUnknownIdentifier)
}

func TestEvaluateErrors(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()

	tests := []struct {
		expr string
		kind types.ErrorKind
		col  int
		msg  string
	}{
		{"undefinedVar + 1", types.ErrUnknownIdentifier, 1, "unknown identifier 'undefinedVar'"},
		{"1 / 0", types.ErrDivisionByZero, 3, "division by zero in (1 / 0)"},
		{"5 % (2 - 2)", types.ErrDivisionByZero, 3, ""},
		{"x / (x - 10)", types.ErrDivisionByZero, 3, ""},
		{"round(1, 2, 3)", types.ErrArity, 1, "round expects exactly 1 argument, got 3"},
		{"rond(1)", types.ErrUnknownFunction, 1, "unknown function 'rond'"},
		{"true + 1", types.ErrType, 6, "operator '+' expects numbers, got boolean and number"},
		{"1 < true", types.ErrType, 3, ""},
		{"true == 1", types.ErrType, 6, ""},
		{"-true", types.ErrType, 1, "unary '-' expects a number, got boolean"},
		{"sum(1, true)", types.ErrType, 1, "argument 2 of sum must be a number, got boolean"},
		{"dimension(x)", types.ErrType, 11, "argument 1 of dimension must be a string literal"},
		{`"a"`, types.ErrType, 1, `string literal "a" is only allowed as an accessor key`},
		{"sqrt(-1)", types.ErrRuntime, 1, "sqrt of negative number -1"},
		{"2 ^ 5000", types.ErrRuntime, 3, "result is not a finite number"},
		{"1 +", types.ErrSyntax, 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := evalErr(t, ev, tt.expr, ctx, tt.kind)
			require.NotNil(t, err.Position)
			assert.Equal(t, tt.col, err.Position.Column)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, err.Message)
			}
		})
	}
}

func TestEvaluateHints(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()

	err := evalErr(t, ev, "totalErrors + 1", ctx, types.ErrUnknownIdentifier)
	assert.Equal(t, "did you mean totalErrors()?", err.Hint)

	err = evalErr(t, ev, "penalti", ctx, types.ErrUnknownIdentifier)
	assert.Equal(t, "did you mean 'penalty'?", err.Hint)

	err = evalErr(t, ev, "rond(1)", ctx, types.ErrUnknownFunction)
	assert.Equal(t, "did you mean 'round'?", err.Hint)
}

func TestEvaluateComplexity(t *testing.T) {
	long := "1" + strings.Repeat(" + 1", 300)
	evalErr(t, evaluator.New(), long, nil, types.ErrComplexityExceeded)

	res := evalOK(t, evaluator.New(evaluator.WithMaxNodes(1000)), long, nil)
	assert.Equal(t, 301.0, res.Result)

	deep := strings.Repeat("(", 1000) + "1" + strings.Repeat(")", 1000)
	evalErr(t, evaluator.New(), deep, nil, types.ErrComplexityExceeded)
	evalErr(t, evaluator.New(evaluator.WithMaxDepth(3)), "((((1))))", nil, types.ErrComplexityExceeded)
}

func TestEvaluateDeterministic(t *testing.T) {
	ev := evaluator.New()
	ctx := testContext()
	const expr = `if(errorType("major") > 1, dimension("fluency") * 0.5 + dimension("missing"), 0)`

	first := ev.Evaluate(expr, ctx)
	for i := 0; i < 10; i++ {
		again := ev.Evaluate(expr, ctx)
		assert.Equal(t, first.Result, again.Result)
		assert.Equal(t, first.IsValid, again.IsValid)
		assert.Equal(t, first.Warnings, again.Warnings)
		assert.Equal(t, first.Errors, again.Errors)
	}
}

func TestEvaluateDoesNotMutateContext(t *testing.T) {
	ctx := testContext()
	evaluator.New().Evaluate(`dimension("nope") + weight("nope") + x + bonus`, ctx)
	assert.Equal(t, testContext(), ctx)
}

func TestEvaluateCaching(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true), evaluator.WithCacheSize(8))
	require.NotNil(t, ev.Cache())
	assert.Equal(t, 8, ev.Cache().Capacity())

	for i := 0; i < 3; i++ {
		evalOK(t, ev, "x * 2", testContext())
	}
	st := ev.Cache().Stats()
	assert.Equal(t, 1, st.Len)
	assert.Equal(t, uint64(2), st.Hits)

	ev.Evaluate("x *", nil)
	assert.Equal(t, 1, ev.Cache().Len(), "parse failures are not cached")

	assert.Nil(t, evaluator.New().Cache())
}

func TestEvaluateErrorPositionIsCopied(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true))

	err := evalErr(t, ev, "1 + round(1, 2)", nil, types.ErrArity)
	require.NotNil(t, err.Position)
	assert.Equal(t, 5, err.Position.Column)
	err.Position.Column = 99

	err = evalErr(t, ev, "1 + round(1, 2)", nil, types.ErrArity)
	assert.Equal(t, 5, err.Position.Column, "cached program must not share positions with returned errors")

	prog, cerr := ev.Compile("round(1, 2)")
	require.NoError(t, cerr)
	res := ev.EvalProgram(prog, nil)
	require.Len(t, res.Errors, 1)
	res.Errors[0].Position.Line = 42
	assert.Equal(t, 1, prog.Root().Pos.Line)
}

func TestEvalProgram(t *testing.T) {
	ev := evaluator.New()
	prog, err := ev.Compile(`dimension("fluency") / 100`)
	require.NoError(t, err)

	for _, score := range []float64{50, 80} {
		ctx := &types.FormulaContext{Dimensions: map[string]float64{"fluency": score}}
		res := ev.EvalProgram(prog, ctx)
		require.True(t, res.IsValid)
		assert.Equal(t, score/100, res.Result)
		assert.GreaterOrEqual(t, res.ExecutionTimeMs, 0.0)
	}

	res := ev.EvalProgram(nil, nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, types.ErrRuntime, res.Errors[0].Kind)
}

func TestEvaluateRecoversPanics(t *testing.T) {
	// A binary node without operands cannot come out of the parser.
	root := types.NewNode(types.NodeBinary, types.Position{Line: 1, Column: 5})
	root.Str = "+"
	prog := types.NewProgram(root, "broken", 1)

	res := evaluator.New().EvalProgram(prog, nil)
	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, types.ErrRuntime, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "internal error")
	assert.Equal(t, 5, res.Errors[0].Position.Column)
}

func TestEvaluateDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	ev := evaluator.New(evaluator.WithLogger(zerolog.New(&buf)), evaluator.WithDebug(true))
	evalOK(t, ev, "1 + 2", nil)

	out := buf.String()
	assert.Contains(t, out, `"message":"evaluating node"`)
	assert.Contains(t, out, `"message":"formula evaluated"`)
	assert.Equal(t, 4, strings.Count(out, "\n"))

	buf.Reset()
	evalOK(t, evaluator.New(evaluator.WithLogger(zerolog.New(&buf))), "1 + 2", nil)
	assert.Empty(t, buf.String())
}

func TestEvaluateConcurrent(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true))
	ctx := testContext()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				res := ev.Evaluate(fmt.Sprintf(`dimension("fluency") + %d`, i%10), ctx)
				assert.True(t, res.IsValid)
				assert.Equal(t, 85.0+float64(i%10), res.Result)
			}
		}(g)
	}
	wg.Wait()
}
