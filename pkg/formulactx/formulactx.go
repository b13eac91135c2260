// Package formulactx builds, loads and checks FormulaContext values.
//
// # Example
//
//	ctx := formulactx.New().
//	    Dimension("fluency", 85).
//	    ErrorType("major", 2).
//	    UnitCount(100).
//	    Derive().
//	    Build()
package formulactx

import (
	"maps"

	"github.com/sandrolain/goformula/pkg/types"
)

// CreateTestContext returns a context with representative defaults for
// exploratory testing.
func CreateTestContext() *types.FormulaContext {
	return New().
		Dimension("fluency", 85).
		Dimension("adequacy", 90).
		Dimension("style", 75).
		ErrorType("grammar", 2).
		ErrorType("terminology", 1).
		ErrorType("style", 1).
		Weight("fluency", 0.4).
		Weight("adequacy", 0.4).
		Weight("style", 0.2).
		UnitCount(100).
		MaxScore(100).
		PassingThreshold(70).
		Derive().
		Build()
}

// Clone returns a deep copy of c. Clone(nil) returns nil.
func Clone(c *types.FormulaContext) *types.FormulaContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Dimensions = maps.Clone(c.Dimensions)
	out.ErrorTypes = maps.Clone(c.ErrorTypes)
	out.Weights = maps.Clone(c.Weights)
	out.Constants = maps.Clone(c.Constants)
	out.Variables = maps.Clone(c.Variables)
	return &out
}

// Builder assembles a FormulaContext fluently.
type Builder struct {
	ctx types.FormulaContext
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// From returns a Builder initialised with a copy of c.
func From(c *types.FormulaContext) *Builder {
	b := New()
	if c != nil {
		b.ctx = *Clone(c)
	}
	return b
}

func set(m *map[string]float64, k string, v float64) {
	if *m == nil {
		*m = make(map[string]float64)
	}
	(*m)[k] = v
}

// Dimension sets the score of a dimension.
func (b *Builder) Dimension(id string, score float64) *Builder {
	set(&b.ctx.Dimensions, id, score)
	return b
}

// ErrorType sets the error count of a category.
func (b *Builder) ErrorType(id string, count float64) *Builder {
	set(&b.ctx.ErrorTypes, id, count)
	return b
}

// Weight sets a named weight.
func (b *Builder) Weight(id string, w float64) *Builder {
	set(&b.ctx.Weights, id, w)
	return b
}

// Constant binds a constant.
func (b *Builder) Constant(name string, v float64) *Builder {
	set(&b.ctx.Constants, name, v)
	return b
}

// Variable binds a variable. Variables shadow constants of the same name.
func (b *Builder) Variable(name string, v float64) *Builder {
	set(&b.ctx.Variables, name, v)
	return b
}

func (b *Builder) TotalErrors(n float64) *Builder {
	b.ctx.TotalErrors = n
	return b
}

func (b *Builder) UnitCount(n float64) *Builder {
	b.ctx.UnitCount = n
	return b
}

func (b *Builder) ErrorRate(r float64) *Builder {
	b.ctx.ErrorRate = r
	return b
}

func (b *Builder) MaxScore(n float64) *Builder {
	b.ctx.MaxScore = n
	return b
}

func (b *Builder) PassingThreshold(n float64) *Builder {
	b.ctx.PassingThreshold = n
	return b
}

// Derive sets TotalErrors to the sum of the error type counts and ErrorRate
// to errors per unit. ErrorRate is left unchanged when UnitCount is 0.
func (b *Builder) Derive() *Builder {
	var total float64
	for _, n := range b.ctx.ErrorTypes {
		total += n
	}
	b.ctx.TotalErrors = total
	if b.ctx.UnitCount > 0 {
		b.ctx.ErrorRate = total / b.ctx.UnitCount
	}
	return b
}

// Build returns a copy of the assembled context. The Builder can be reused.
func (b *Builder) Build() *types.FormulaContext {
	return Clone(&b.ctx)
}
