package evaluator_test

import (
	"testing"

	"github.com/sandrolain/goformula/pkg/evaluator"
)

func FuzzEvaluate(f *testing.F) {
	seeds := []string{
		`dimension("fluency") * 0.4 + dimension("adequacy") * 0.6`,
		`if(totalErrors() > 10, 0, dimension("overall"))`,
		`if(true, 1, 1/0)`,
		`and(x, or(penalty, not(bonus)))`,
		`2 ^ 5000`,
		`sqrt(-1)`,
		`1 % 0`,
		`round(1, 2, 3)`,
		`undefinedVar + 1`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	ev := evaluator.New()
	ctx := testContext()
	f.Fuzz(func(t *testing.T, input string) {
		res := ev.Evaluate(input, ctx)
		if res.IsValid {
			switch res.Result.(type) {
			case float64, bool:
			default:
				t.Fatalf("valid result of %q has type %T", input, res.Result)
			}
			if len(res.Errors) != 0 {
				t.Fatalf("valid result of %q carries errors: %v", input, res.Errors)
			}
			return
		}
		if res.Result != nil || len(res.Errors) == 0 {
			t.Fatalf("invalid result of %q: result=%v errors=%v", input, res.Result, res.Errors)
		}
	})
}
