package types

// FormulaContext is the read-only snapshot of values a formula is evaluated
// against. It is supplied by the caller for each evaluation and is never
// modified by the engine.
type FormulaContext struct {
	// Dimension id -> score, error category -> count, named weights.
	Dimensions map[string]float64 `json:"dimensions,omitempty" yaml:"dimensions,omitempty" validate:"dive,keys,required,endkeys"`
	ErrorTypes map[string]float64 `json:"errorTypes,omitempty" yaml:"errorTypes,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
	Weights    map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" validate:"dive,keys,required,endkeys"`

	TotalErrors      float64 `json:"totalErrors" yaml:"totalErrors" validate:"gte=0"`
	UnitCount        float64 `json:"unitCount" yaml:"unitCount" validate:"gte=0"`
	ErrorRate        float64 `json:"errorRate" yaml:"errorRate" validate:"gte=0"`
	MaxScore         float64 `json:"maxScore" yaml:"maxScore" validate:"gte=0"`
	PassingThreshold float64 `json:"passingThreshold" yaml:"passingThreshold" validate:"gte=0"`

	// Free-form bindings for bare identifiers. Variables win over Constants.
	Constants map[string]float64 `json:"constants,omitempty" yaml:"constants,omitempty" validate:"dive,keys,required,endkeys"`
	Variables map[string]float64 `json:"variables,omitempty" yaml:"variables,omitempty" validate:"dive,keys,required,endkeys"`
}

// Dimension returns the score of a dimension and whether it was present.
func (c *FormulaContext) Dimension(id string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.Dimensions[id]
	return v, ok
}

// ErrorType returns the count of an error category and whether it was present.
func (c *FormulaContext) ErrorType(id string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.ErrorTypes[id]
	return v, ok
}

// Weight returns a named weight and whether it was present.
func (c *FormulaContext) Weight(id string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.Weights[id]
	return v, ok
}

// Lookup resolves a bare identifier: Variables first, then Constants.
func (c *FormulaContext) Lookup(name string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	if v, ok := c.Variables[name]; ok {
		return v, true
	}
	v, ok := c.Constants[name]
	return v, ok
}
