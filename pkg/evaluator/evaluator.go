// Package evaluator evaluates parsed formulas against a FormulaContext.
//
// The evaluator walks the AST bottom-up. The branches of if and the
// arguments of and/or are evaluated lazily, so an error in an untaken branch
// does not fail the evaluation. Every failure, including a recovered panic,
// is returned as a positioned *types.Error; non-fatal findings such as
// missing context keys are collected as warnings.
//
// # Example
//
//	ev := evaluator.New(evaluator.WithCaching(true))
//	res := ev.Evaluate(`dimension("fluency") * 0.4`, ctx)
//	if !res.IsValid {
//	    log.Fatal(res.Errors[0])
//	}
//
// # Concurrency
//
// An Evaluator is immutable after construction. All evaluation state is
// local to a call, so one Evaluator can serve many goroutines.
package evaluator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sandrolain/goformula/pkg/cache"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

// Evaluator evaluates formulas against contexts.
type Evaluator struct {
	opts   EvalOptions
	logger zerolog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of parsed programs keyed by source text.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// MaxNodes and MaxDepth bound the parsed AST.
	MaxNodes int
	MaxDepth int
	// Debug enables per-node debug logging.
	Debug bool
	// Logger for structured logging.
	Logger zerolog.Logger
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:   false, // Disabled by default
		CacheSize: cache.DefaultCapacity,
		MaxNodes:  parser.DefaultMaxNodes,
		MaxDepth:  parser.DefaultMaxDepth,
		Logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
}

// WithCaching enables or disables caching of parsed programs.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached programs.
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache supplies a program cache, which may be shared between evaluators
// configured with the same complexity bounds.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithMaxNodes sets the maximum number of AST nodes.
func WithMaxNodes(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxNodes = n
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = n
	}
}

// WithDebug enables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = l
	}
}

// Cache returns the program cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Compile tokenizes and parses expression, consulting the cache when enabled.
func (e *Evaluator) Compile(expression string) (*types.Program, error) {
	parse := func() (*types.Program, error) {
		return parser.Parse(expression,
			parser.WithMaxNodes(e.opts.MaxNodes),
			parser.WithMaxDepth(e.opts.MaxDepth))
	}
	if e.cache != nil {
		return e.cache.GetOrParse(expression, parse)
	}
	return parse()
}

// Evaluate parses expression and evaluates it against ctx. A nil ctx behaves
// as an empty context.
func (e *Evaluator) Evaluate(expression string, ctx *types.FormulaContext) *types.ExecutionResult {
	prog, err := e.Compile(expression)
	if err != nil {
		res := types.NewExecutionResult()
		res.Fail(types.AsError(err))
		return res
	}
	return e.EvalProgram(prog, ctx)
}

// EvalProgram evaluates a parsed program against ctx. ExecutionTimeMs covers
// only the evaluation walk.
func (e *Evaluator) EvalProgram(prog *types.Program, ctx *types.FormulaContext) *types.ExecutionResult {
	res := types.NewExecutionResult()
	if prog == nil || prog.Root() == nil {
		res.Fail(types.NewErrorf(types.ErrRuntime, "invalid program"))
		return res
	}

	start := time.Now()
	v, warnings, err := e.Eval(prog, ctx)
	res.ExecutionTimeMs = float64(time.Since(start).Microseconds()) / 1000
	res.Warnings = append(res.Warnings, warnings...)

	if err != nil {
		res.Fail(types.AsError(err))
	} else {
		res.Result = v.Interface()
		res.IsValid = true
	}

	if e.opts.Debug {
		e.logger.Debug().
			Str("formula", prog.Source()).
			Bool("valid", res.IsValid).
			Interface("result", res.Result).
			Int("warnings", len(res.Warnings)).
			Float64("ms", res.ExecutionTimeMs).
			Msg("formula evaluated")
	}
	return res
}
