// Package wasirunner executes the WASI build of the engine under wazero.
//
// The module is compiled once by New and instantiated per request, so a
// Runner can serve concurrent calls. Each instantiation reads one
// wasiproto.Request on stdin and writes one wasiproto.Response on stdout.
//
// Build the module with:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goformula.wasm ./cmd/wasm/wasi/
package wasirunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/goformula/pkg/wasiproto"
)

// Runner manages the WASM runtime and the compiled engine module.
type Runner struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// New creates a runtime and compiles wasm.
func New(ctx context.Context, wasm []byte) (*Runner, error) {
	rt := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithCloseOnContextDone(true),
	)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}

	return &Runner{
		runtime:  rt,
		compiled: compiled,
	}, nil
}

// Load reads and compiles the module at path.
func Load(ctx context.Context, path string) (*Runner, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return New(ctx, wasm)
}

// Run sends req to a fresh module instance. A protocol error reported by the
// module is returned as an error together with the decoded Response.
func (r *Runner) Run(ctx context.Context, req wasiproto.Request) (*wasiproto.Response, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName(""). // anonymous, allows concurrent instantiation
		WithArgs("goformula").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	exitCode := 0
	mod, err := r.runtime.InstantiateModule(ctx, r.compiled, cfg)
	if mod != nil {
		_ = mod.Close(ctx)
	}
	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run module: %w", err)
		}
		exitCode = int(exitErr.ExitCode())
	}

	var resp wasiproto.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response (exit code %d): %w: %s", exitCode, err, strings.TrimSpace(stderr.String()))
	}
	if exitCode != 0 {
		return &resp, fmt.Errorf("module exited with code %d: %s", exitCode, resp.Error)
	}
	return &resp, nil
}

// Close releases the runtime and the compiled module.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
