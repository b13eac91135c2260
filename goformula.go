// Package goformula evaluates scoring formulas for translation quality
// assessment.
//
// A formula is a small arithmetic and logical expression over the values of
// an assessment: dimension scores, error counts per category, weights and a
// handful of scalar totals. Formulas are validated statically before they are
// saved and evaluated against a FormulaContext when a score is computed.
//
// # Quick Start
//
//	// Static validation, no context required
//	res := goformula.ValidateFormula(`round(dimension("fluency") * weight("fluency"))`)
//
//	// Evaluation against a context
//	out := goformula.Evaluate(`100 - totalErrors() * 5`, goformula.CreateTestContext())
//	if out.IsValid {
//	    fmt.Println(out.Result)
//	}
//
//	// Configured engine, safe for concurrent use
//	eng := goformula.New(goformula.WithCaching(true), goformula.WithMaxNodes(200))
//	out = eng.Evaluate(expr, ctx)
//
// # Errors
//
// Neither validation nor evaluation returns a Go error or panics. Failures
// are reported in the Errors field of the result as *Error values carrying a
// Kind and, when known, a source Position and a Hint.
//
// # More Information
//
//   - Parser: github.com/sandrolain/goformula/pkg/parser
//   - Validator: github.com/sandrolain/goformula/pkg/validator
//   - Evaluator: github.com/sandrolain/goformula/pkg/evaluator
//   - Functions: github.com/sandrolain/goformula/pkg/functions
//   - Types: github.com/sandrolain/goformula/pkg/types
package goformula

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandrolain/goformula/pkg/cache"
	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/formulactx"
	"github.com/sandrolain/goformula/pkg/introspect"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
	"github.com/sandrolain/goformula/pkg/validator"
)

// Re-exported types.
type (
	FormulaContext   = types.FormulaContext
	ValidationResult = types.ValidationResult
	ExecutionResult  = types.ExecutionResult
	Error            = types.Error
	ErrorKind        = types.ErrorKind
	Position         = types.Position
	Program          = types.Program
)

// Version returns the current version of GoFormula.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures an Engine.
type Options struct {
	MaxNodes   int
	MaxDepth   int
	Caching    bool
	CacheSize  int
	KnownNames []string
	Debug      bool
	Logger     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Options)

// WithMaxNodes bounds the number of AST nodes of a formula. 0 disables the bound.
func WithMaxNodes(n int) Option {
	return func(o *Options) { o.MaxNodes = n }
}

// WithMaxDepth bounds the nesting depth of a formula. 0 disables the bound.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithCaching enables the parsed program cache.
func WithCaching(enabled bool) Option {
	return func(o *Options) { o.Caching = enabled }
}

// WithCacheSize sets the capacity of the program cache and enables it.
func WithCacheSize(size int) Option {
	return func(o *Options) {
		o.CacheSize = size
		o.Caching = true
	}
}

// WithKnownNames declares the constants and variables callers bind, so the
// validator can warn about any other free variable.
func WithKnownNames(names ...string) Option {
	return func(o *Options) { o.KnownNames = append(o.KnownNames, names...) }
}

// WithLogger sets the logger used by the validator and the evaluator.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithDebug enables debug logging.
func WithDebug(enabled bool) Option {
	return func(o *Options) { o.Debug = enabled }
}

// Engine validates and evaluates formulas. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	opts      Options
	validator *validator.Validator
	evaluator *evaluator.Evaluator
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	options := Options{
		MaxNodes:  parser.DefaultMaxNodes,
		MaxDepth:  parser.DefaultMaxDepth,
		CacheSize: cache.DefaultCapacity,
		Logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Engine{
		opts: options,
		validator: validator.New(
			validator.WithMaxNodes(options.MaxNodes),
			validator.WithMaxDepth(options.MaxDepth),
			validator.WithKnownNames(options.KnownNames...),
			validator.WithLogger(options.Logger),
			validator.WithDebug(options.Debug),
		),
		evaluator: evaluator.New(
			evaluator.WithMaxNodes(options.MaxNodes),
			evaluator.WithMaxDepth(options.MaxDepth),
			evaluator.WithCaching(options.Caching),
			evaluator.WithCacheSize(options.CacheSize),
			evaluator.WithLogger(options.Logger),
			evaluator.WithDebug(options.Debug),
		),
	}
}

// Options returns a copy of the engine configuration.
func (e *Engine) Options() Options {
	out := e.opts
	out.KnownNames = append([]string(nil), e.opts.KnownNames...)
	return out
}

// Validate checks expression statically.
func (e *Engine) Validate(expression string) *ValidationResult {
	return e.validator.Validate(expression)
}

// ValidateAgainst checks expression using ref as the reference for known
// names and accessor ids, in addition to the engine's known names.
func (e *Engine) ValidateAgainst(expression string, ref *FormulaContext) *ValidationResult {
	return validator.New(
		validator.WithMaxNodes(e.opts.MaxNodes),
		validator.WithMaxDepth(e.opts.MaxDepth),
		validator.WithKnownNames(e.opts.KnownNames...),
		validator.WithContext(ref),
		validator.WithLogger(e.opts.Logger),
		validator.WithDebug(e.opts.Debug),
	).Validate(expression)
}

// Evaluate evaluates expression against ctx. A nil ctx behaves as an empty one.
func (e *Engine) Evaluate(expression string, ctx *FormulaContext) *ExecutionResult {
	return e.evaluator.Evaluate(expression, ctx)
}

// EvaluateContext runs Evaluate in a separate goroutine and returns
// ctx.Err() if ctx is done first. The evaluation itself is not interrupted.
func (e *Engine) EvaluateContext(ctx context.Context, expression string, fctx *FormulaContext) (*ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan *ExecutionResult, 1)
	go func() {
		done <- e.evaluator.Evaluate(expression, fctx)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Compile parses expression for repeated evaluation with EvalProgram.
func (e *Engine) Compile(expression string) (*Program, error) {
	return e.evaluator.Compile(expression)
}

// EvalProgram evaluates a compiled program.
func (e *Engine) EvalProgram(prog *Program, ctx *FormulaContext) *ExecutionResult {
	return e.evaluator.EvalProgram(prog, ctx)
}

// CacheStats reports program cache statistics. ok is false when caching is
// disabled.
func (e *Engine) CacheStats() (stats cache.Stats, ok bool) {
	c := e.evaluator.Cache()
	if c == nil {
		return cache.Stats{}, false
	}
	return c.Stats(), true
}

var defaultEngine = New()

// ValidateFormula checks expression statically with default options.
func ValidateFormula(expression string) *ValidationResult {
	return defaultEngine.Validate(expression)
}

// Validate is an alias of ValidateFormula.
func Validate(expression string) *ValidationResult {
	return ValidateFormula(expression)
}

// Evaluate evaluates expression against ctx with default options.
func Evaluate(expression string, ctx *FormulaContext) *ExecutionResult {
	return defaultEngine.Evaluate(expression, ctx)
}

// ExecuteFormula is an alias of Evaluate.
func ExecuteFormula(expression string, ctx *FormulaContext) *ExecutionResult {
	return Evaluate(expression, ctx)
}

// EvaluateContext is Engine.EvaluateContext with default options.
func EvaluateContext(ctx context.Context, expression string, fctx *FormulaContext) (*ExecutionResult, error) {
	return defaultEngine.EvaluateContext(ctx, expression, fctx)
}

// ExtractVariables returns the unique bare variable names of expression in
// source order. Function names and boolean literals are excluded.
func ExtractVariables(expression string) []string {
	return introspect.ExtractVariables(expression)
}

// ExtractFunctions returns the unique called function names of expression
// in source order.
func ExtractFunctions(expression string) []string {
	return introspect.ExtractFunctions(expression)
}

// CreateTestContext returns a context with representative values.
func CreateTestContext() *FormulaContext {
	return formulactx.CreateTestContext()
}

// Compile parses expression with default options.
func Compile(expression string) (*Program, error) {
	return defaultEngine.Compile(expression)
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(expression string) *Program {
	prog, err := Compile(expression)
	if err != nil {
		panic(fmt.Sprintf("goformula: Compile(%q): %v", expression, err))
	}
	return prog
}
