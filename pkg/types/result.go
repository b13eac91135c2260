package types

// ValidationResult is returned by static validation of a formula.
type ValidationResult struct {
	IsValid        bool     `json:"isValid"`
	Errors         []*Error `json:"errors"`
	Warnings       []string `json:"warnings"`
	SuggestedFixes []string `json:"suggestedFixes"`
	ParseTimeMs    float64  `json:"parseTimeMs"`

	// Free names referenced by the formula, in source order.
	Variables []string `json:"variables"`
	Functions []string `json:"functions"`
}

// NewValidationResult returns an empty, valid result with non-nil slices.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:        true,
		Errors:         []*Error{},
		Warnings:       []string{},
		SuggestedFixes: []string{},
		Variables:      []string{},
		Functions:      []string{},
	}
}

// AddError records a fatal error and marks the result invalid.
func (r *ValidationResult) AddError(err *Error) {
	r.IsValid = false
	r.Errors = append(r.Errors, err)
}

// ExecutionResult is returned by evaluating a formula against a context.
// Result is a float64, a bool, or nil when evaluation failed.
type ExecutionResult struct {
	Result          interface{} `json:"result"`
	IsValid         bool        `json:"isValid"`
	Errors          []*Error    `json:"errors"`
	Warnings        []string    `json:"warnings"`
	ExecutionTimeMs float64     `json:"executionTimeMs"`
}

// NewExecutionResult returns an empty result with non-nil slices.
func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{
		Errors:   []*Error{},
		Warnings: []string{},
	}
}

// Fail records a fatal error, clears the result and marks it invalid.
func (r *ExecutionResult) Fail(err *Error) {
	r.Result = nil
	r.IsValid = false
	r.Errors = append(r.Errors, err)
}

// Number returns the result as a float64, if it is one.
func (r *ExecutionResult) Number() (float64, bool) {
	f, ok := r.Result.(float64)
	return f, ok
}

// Boolean returns the result as a bool, if it is one.
func (r *ExecutionResult) Boolean() (bool, bool) {
	b, ok := r.Result.(bool)
	return b, ok
}
