// Package validator statically checks formulas without evaluating them.
//
// Validation tokenizes and parses the formula, then walks the AST once,
// resolving calls against the function registry and inferring the static
// type of every subexpression. Fatal findings become errors; hints about free
// variables and literal zero divisors become warnings and suggested fixes.
//
// # Example
//
//	v := validator.New(validator.WithContext(ref))
//	res := v.Validate(`dimension("fluency") / 0`)
//	fmt.Println(res.IsValid, res.Warnings)
package validator

import (
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandrolain/goformula/pkg/introspect"
	"github.com/sandrolain/goformula/pkg/parser"
	"github.com/sandrolain/goformula/pkg/types"
)

// namingPattern is the conventional shape of a variable name.
var namingPattern = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)

// Validator performs static checks. It is immutable after construction and
// safe for concurrent use.
type Validator struct {
	opts   Options
	logger zerolog.Logger

	known map[string]struct{}
	// strict reports free variables that are not known names.
	strict bool
	// keys holds the known ids per string-keyed accessor name.
	keys map[string][]string
}

// Options configures validator behavior.
type Options struct {
	// MaxNodes and MaxDepth bound the parsed AST.
	MaxNodes int
	MaxDepth int
	// KnownNames lists constants and variables callers will bind.
	KnownNames []string
	// Reference, when set, supplies known names and accessor ids.
	Reference *types.FormulaContext
	// Logger for structured logging.
	Logger zerolog.Logger
	// Debug enables debug logging.
	Debug bool
}

// Option configures a Validator.
type Option func(*Options)

// WithMaxNodes sets the maximum number of AST nodes.
func WithMaxNodes(n int) Option {
	return func(o *Options) { o.MaxNodes = n }
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithKnownNames declares constants and variables the caller will bind.
// Free variables not in the set produce a warning.
func WithKnownNames(names ...string) Option {
	return func(o *Options) { o.KnownNames = append(o.KnownNames, names...) }
}

// WithContext uses ctx as a reference for known names and accessor ids.
func WithContext(ctx *types.FormulaContext) Option {
	return func(o *Options) { o.Reference = ctx }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithDebug enables debug logging.
func WithDebug(enabled bool) Option {
	return func(o *Options) { o.Debug = enabled }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	options := Options{
		MaxNodes: parser.DefaultMaxNodes,
		MaxDepth: parser.DefaultMaxDepth,
		Logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	v := &Validator{
		opts:   options,
		logger: options.Logger,
		known:  make(map[string]struct{}),
		keys:   make(map[string][]string),
	}
	v.strict = len(options.KnownNames) > 0 || options.Reference != nil
	for _, name := range options.KnownNames {
		v.known[name] = struct{}{}
	}
	if ref := options.Reference; ref != nil {
		for name := range ref.Constants {
			v.known[name] = struct{}{}
		}
		for name := range ref.Variables {
			v.known[name] = struct{}{}
		}
		if ref.Dimensions != nil {
			v.keys["dimension"] = sortedKeys(ref.Dimensions)
		}
		if ref.ErrorTypes != nil {
			v.keys["errorType"] = sortedKeys(ref.ErrorTypes)
		}
		if ref.Weights != nil {
			v.keys["weight"] = sortedKeys(ref.Weights)
		}
	}
	return v
}

// Validate checks expression and never panics.
func (v *Validator) Validate(expression string) *types.ValidationResult {
	start := time.Now()
	res := types.NewValidationResult()
	defer func() {
		res.ParseTimeMs = float64(time.Since(start).Microseconds()) / 1000
		if v.opts.Debug {
			v.logger.Debug().
				Bool("valid", res.IsValid).
				Int("errors", len(res.Errors)).
				Int("warnings", len(res.Warnings)).
				Float64("ms", res.ParseTimeMs).
				Msg("formula validated")
		}
	}()

	tokens, err := parser.Tokenize(expression)
	if err != nil {
		addFatal(res, err)
		return res
	}
	res.Variables, res.Functions = introspect.FromTokens(tokens)

	prog, err := parser.ParseTokens(expression, tokens,
		parser.WithMaxNodes(v.opts.MaxNodes),
		parser.WithMaxDepth(v.opts.MaxDepth))
	if err != nil {
		addFatal(res, err)
		return res
	}

	c := &checker{v: v, res: res, warned: make(map[string]struct{}), fixes: make(map[string]struct{})}
	c.check(prog.Root())
	return res
}

// addFatal records a tokenize or parse failure.
func addFatal(res *types.ValidationResult, err error) {
	fe := types.AsError(err)
	res.AddError(fe)
	if fe.Hint != "" {
		res.SuggestedFixes = append(res.SuggestedFixes, fe.Hint)
	}
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
