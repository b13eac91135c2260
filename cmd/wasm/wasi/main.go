//go:build wasip1

// Command goformula-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON request on stdin, single JSON response on stdout.
// See package wasiproto for the message shapes.
//
//	stdin:  {"op": "evaluate", "formula": "<formula>", "context": {...}}
//	stdout: {"execution": {"result": 42, "isValid": true, ...}}
//	        {"error": "<message>"}    on a malformed request (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goformula.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"formula":"maxScore() - totalErrors()","testContext":true}' | wasmtime goformula.wasm
//
// From Go, package wasirunner hosts the module under wazero.
package main

import (
	"os"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/wasiproto"
)

func main() {
	os.Exit(wasiproto.Serve(goformula.New(), os.Stdin, os.Stdout))
}
