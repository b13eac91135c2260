package parser_test

import (
	"testing"

	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

func FuzzParse(f *testing.F) {
	seeds := []string{
		`dimension("fluency") * 0.4 + dimension("adequacy") * 0.6`,
		`if(totalErrors() > 10, 0, dimension("overall"))`,
		`2 ^ 3 ^ 2`,
		`-2 ^ -2`,
		`and(a, or(b, not(c)))`,
		`round(1, 2, 3)`,
		`"unterminated`,
		`((((`,
		`))))`,
		`1e`,
		`.5 % 0`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		prog, err := parser.Parse(input)
		if err != nil {
			if _, ok := err.(*types.Error); !ok {
				t.Fatalf("non-formula error for %q: %T %v", input, err, err)
			}
			return
		}
		if prog.NodeCount() > parser.DefaultMaxNodes {
			t.Fatalf("node budget exceeded for %q: %d", input, prog.NodeCount())
		}
		if got := types.Count(prog.Root()); got != prog.NodeCount() {
			t.Fatalf("node count mismatch for %q: %d != %d", input, got, prog.NodeCount())
		}
	})
}
