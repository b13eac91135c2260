// Package wasiproto defines the single-shot JSON protocol spoken by the WASI
// build of the engine: one Request on stdin, one Response on stdout.
//
//	stdin:  {"op": "evaluate", "formula": "maxScore() - totalErrors()", "testContext": true}
//	stdout: {"execution": {"result": 96, "isValid": true, ...}}
//	        {"error": "<message>"}    on a malformed request (exit code 1)
//
// Formula errors are not protocol errors: they are reported inside the
// validation or execution result and the exit code is 0.
package wasiproto

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/formulactx"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

// Op selects the operation of a Request.
type Op string

// Operations.
const (
	OpValidate    Op = "validate"
	OpEvaluate    Op = "evaluate"
	OpExtract     Op = "extract"
	OpFunctions   Op = "functions"
	OpTestContext Op = "test-context"
	OpVersion     Op = "version"
)

// Request is read from stdin. Op defaults to OpEvaluate.
type Request struct {
	Op          Op                    `json:"op,omitempty"`
	Formula     string                `json:"formula,omitempty"`
	Context     *types.FormulaContext `json:"context,omitempty"`
	TestContext bool                  `json:"testContext,omitempty"`
	// Query filters OpFunctions by fuzzy name match.
	Query string `json:"query,omitempty"`
}

// Response is written to stdout.
type Response struct {
	Validation *types.ValidationResult `json:"validation,omitempty"`
	Execution  *types.ExecutionResult  `json:"execution,omitempty"`
	Variables  []string                `json:"variables,omitempty"`
	Functions  []string                `json:"functions,omitempty"`
	Context    *types.FormulaContext   `json:"context,omitempty"`
	Version    string                  `json:"version,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Handle executes req on eng.
func Handle(eng *goformula.Engine, req Request) (*Response, error) {
	fctx := req.Context
	if fctx != nil {
		if err := formulactx.Validate(fctx); err != nil {
			return nil, err
		}
	}
	if req.TestContext {
		if fctx != nil {
			return nil, fmt.Errorf("context and testContext are mutually exclusive")
		}
		fctx = goformula.CreateTestContext()
	}

	switch req.Op {
	case OpValidate:
		if fctx != nil {
			return &Response{Validation: eng.ValidateAgainst(req.Formula, fctx)}, nil
		}
		return &Response{Validation: eng.Validate(req.Formula)}, nil
	case OpEvaluate, "":
		return &Response{Execution: eng.Evaluate(req.Formula, fctx)}, nil
	case OpExtract:
		return &Response{
			Variables: goformula.ExtractVariables(req.Formula),
			Functions: goformula.ExtractFunctions(req.Formula),
		}, nil
	case OpFunctions:
		defs := functions.Search(req.Query)
		names := make([]string, 0, len(defs))
		for _, d := range defs {
			names = append(names, d.Name)
		}
		return &Response{Functions: names}, nil
	case OpTestContext:
		return &Response{Context: goformula.CreateTestContext()}, nil
	case OpVersion:
		return &Response{Version: goformula.Version()}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", req.Op)
	}
}

// DecodeContext parses a context passed as a JSON string by the JavaScript
// host. An empty string, "null" or "undefined" means no context.
func DecodeContext(raw string) (*types.FormulaContext, error) {
	switch strings.TrimSpace(raw) {
	case "", "null", "undefined":
		return nil, nil
	}
	fctx, err := formulactx.Decode(strings.NewReader(raw), formulactx.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}
	return fctx, nil
}

// Serve reads one Request from r, handles it and writes the Response to w.
// It returns the process exit code: 0 on success, 1 on a protocol error.
func Serve(eng *goformula.Engine, r io.Reader, w io.Writer) int {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return write(w, &Response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	resp, err := Handle(eng, req)
	if err != nil {
		return write(w, &Response{Error: err.Error()}, 1)
	}
	return write(w, resp, 0)
}

func write(w io.Writer, resp *Response, code int) int {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return 1
	}
	return code
}
