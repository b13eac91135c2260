package introspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandrolain/goformula/pkg/introspect"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		vars  []string
		fns   []string
	}{
		{"mixed", `x + dimension("a") + y`, []string{"x", "y"}, []string{"dimension"}},
		{"deduplicated", `x * x + max(x, y, max(y))`, []string{"x", "y"}, []string{"max"}},
		{"source order", `if(b > a, round(c), abs(a))`, []string{"b", "a", "c"}, []string{"if", "round", "abs"}},
		{"booleans excluded", `and(true, flag, false)`, []string{"flag"}, []string{"and"}},
		{"space before paren", `round (x)`, []string{"x"}, []string{"round"}},
		{"string args ignored", `dimension("fluency")`, []string{}, []string{"dimension"}},
		{"unparseable but tokenizes", `x + + (y`, []string{"x", "y"}, []string{}},
		{"does not tokenize", `x = y`, []string{}, []string{}},
		{"empty", ``, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.vars, introspect.ExtractVariables(tt.input))
			assert.Equal(t, tt.fns, introspect.ExtractFunctions(tt.input))
		})
	}
}

func TestExtractNeverNil(t *testing.T) {
	vars, fns := introspect.Extract(`"unterminated`)
	assert.NotNil(t, vars)
	assert.NotNil(t, fns)
}
