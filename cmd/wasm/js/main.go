//go:build js && wasm

// Command goformula-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `goformula` object with the following API. Contexts
// and results are exchanged as JSON strings.
//
//	goformula.version()                        → string
//	goformula.validate(formula[, contextJSON]) → validationResultJSON
//	goformula.evaluate(formula, contextJSON)   → executionResultJSON
//	goformula.extractVariables(formula)        → string[]
//	goformula.extractFunctions(formula)        → string[]
//	goformula.testContext()                    → contextJSON
//
// Formula errors are returned inside the result. Malformed arguments make
// the call return a JS Error object instead of a result, so callers check
// `res instanceof Error`. The Go runtime keeps running either way.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o goformula.wasm ./cmd/wasm/js/
//
// Usage in browser:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go()
//	  WebAssembly.instantiateStreaming(fetch('goformula.wasm'), go.importObject)
//	    .then(r => { go.run(r.instance)
//	      const res = JSON.parse(goformula.evaluate('maxScore()', goformula.testContext()))
//	      console.log(res.result) // 100
//	    })
//	</script>
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/wasiproto"
)

var engine = goformula.New(goformula.WithCaching(true))

// jsError builds a JS Error value to be returned to the caller.
func jsError(msg string) js.Value {
	return js.Global().Get("Error").New(msg)
}

// jsFunc wraps fn so that errors and panics come back to JS as Error values.
// A panic escaping a js.FuncOf callback would terminate the Go program.
func jsFunc(name string, fn func(args []js.Value) (interface{}, error)) js.Func {
	return js.FuncOf(func(_ js.Value, args []js.Value) (out interface{}) {
		defer func() {
			if r := recover(); r != nil {
				out = jsError(fmt.Sprintf("goformula.%s: %v", name, r))
			}
		}()
		v, err := fn(args)
		if err != nil {
			return jsError(fmt.Sprintf("goformula.%s: %v", name, err))
		}
		return v
	})
}

func formulaArg(args []js.Value) (string, error) {
	if len(args) < 1 {
		return "", errors.New("formula argument is required")
	}
	if args[0].Type() != js.TypeString {
		return "", errors.New("formula must be a string")
	}
	return args[0].String(), nil
}

func contextArg(args []js.Value) (*goformula.FormulaContext, error) {
	if len(args) < 2 {
		return nil, nil
	}
	switch args[1].Type() {
	case js.TypeString:
		return wasiproto.DecodeContext(args[1].String())
	case js.TypeNull, js.TypeUndefined:
		return nil, nil
	default:
		return nil, errors.New("context must be a JSON string")
	}
}

// handle runs one protocol request built from the JS arguments.
func handle(op wasiproto.Op, args []js.Value) (*wasiproto.Response, error) {
	formula, err := formulaArg(args)
	if err != nil {
		return nil, err
	}
	fctx, err := contextArg(args)
	if err != nil {
		return nil, err
	}
	return wasiproto.Handle(engine, wasiproto.Request{Op: op, Formula: formula, Context: fctx})
}

func marshal(v interface{}) (interface{}, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return string(out), nil
}

func toJSArray(names []string) interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func main() {
	api := map[string]interface{}{
		"validate": jsFunc("validate", func(args []js.Value) (interface{}, error) {
			resp, err := handle(wasiproto.OpValidate, args)
			if err != nil {
				return nil, err
			}
			return marshal(resp.Validation)
		}),
		"evaluate": jsFunc("evaluate", func(args []js.Value) (interface{}, error) {
			resp, err := handle(wasiproto.OpEvaluate, args)
			if err != nil {
				return nil, err
			}
			return marshal(resp.Execution)
		}),
		"extractVariables": jsFunc("extractVariables", func(args []js.Value) (interface{}, error) {
			formula, err := formulaArg(args)
			if err != nil {
				return nil, err
			}
			return toJSArray(goformula.ExtractVariables(formula)), nil
		}),
		"extractFunctions": jsFunc("extractFunctions", func(args []js.Value) (interface{}, error) {
			formula, err := formulaArg(args)
			if err != nil {
				return nil, err
			}
			return toJSArray(goformula.ExtractFunctions(formula)), nil
		}),
		"testContext": jsFunc("testContext", func([]js.Value) (interface{}, error) {
			return marshal(goformula.CreateTestContext())
		}),
		"version": jsFunc("version", func([]js.Value) (interface{}, error) {
			return goformula.Version(), nil
		}),
	}
	js.Global().Set("goformula", js.ValueOf(api))

	// Block forever, the JS event loop owns execution from here.
	select {}
}
