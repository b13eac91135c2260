package wasiproto_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/types"
	"github.com/sandrolain/goformula/pkg/wasiproto"
)

func serve(t *testing.T, in string) (int, wasiproto.Response) {
	t.Helper()
	var out bytes.Buffer
	code := wasiproto.Serve(goformula.New(), strings.NewReader(in), &out)
	var resp wasiproto.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	return code, resp
}

func TestServeEvaluate(t *testing.T) {
	code, resp := serve(t, `{"formula": "maxScore() - totalErrors()", "testContext": true}`)
	assert.Equal(t, 0, code)
	require.NotNil(t, resp.Execution)
	assert.True(t, resp.Execution.IsValid)
	assert.Equal(t, 96.0, resp.Execution.Result)

	code, resp = serve(t, `{"op": "evaluate", "formula": "1 / 0"}`)
	assert.Equal(t, 0, code, "formula errors are not protocol errors")
	require.NotNil(t, resp.Execution)
	assert.False(t, resp.Execution.IsValid)
	require.Len(t, resp.Execution.Errors, 1)
	assert.Equal(t, types.ErrDivisionByZero, resp.Execution.Errors[0].Kind)
}

func TestServeOps(t *testing.T) {
	_, resp := serve(t, `{"op": "validate", "formula": "roud(1)"}`)
	require.NotNil(t, resp.Validation)
	assert.False(t, resp.Validation.IsValid)
	assert.Contains(t, resp.Validation.SuggestedFixes, "did you mean 'round'?")

	_, resp = serve(t, `{"op": "extract", "formula": "a + max(b, 1)"}`)
	assert.Equal(t, []string{"a", "b"}, resp.Variables)
	assert.Equal(t, []string{"max"}, resp.Functions)

	_, resp = serve(t, `{"op": "functions", "query": "errorTy"}`)
	assert.Equal(t, []string{"errorType"}, resp.Functions)

	_, resp = serve(t, `{"op": "test-context"}`)
	assert.Equal(t, goformula.CreateTestContext(), resp.Context)

	_, resp = serve(t, `{"op": "version"}`)
	assert.Equal(t, goformula.Version(), resp.Version)
}

func TestServeProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"malformed", `{"formula": `, "invalid request JSON"},
		{"unknown field", `{"query2": "x"}`, "invalid request JSON"},
		{"unknown op", `{"op": "compile"}`, `unknown op "compile"`},
		{"bad context", `{"context": {"maxScore": -1}}`, "maxScore"},
		{"both contexts", `{"context": {}, "testContext": true}`, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serve(t, tt.in)
			assert.Equal(t, 1, code)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestDecodeContext(t *testing.T) {
	for _, raw := range []string{"", "null", "undefined", "  "} {
		fctx, err := wasiproto.DecodeContext(raw)
		require.NoError(t, err, "%q", raw)
		assert.Nil(t, fctx)
	}

	fctx, err := wasiproto.DecodeContext(`{"unitCount": 4}`)
	require.NoError(t, err)
	assert.Equal(t, 4.0, fctx.UnitCount)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"malformed", `{bad json`, "invalid context"},
		{"unknown field", `{"unitcount": 4}`, `unknown field "unitcount"`},
		{"negative count", `{"unitCount": -4}`, "unitCount must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasiproto.DecodeContext(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleAfterBadContext(t *testing.T) {
	eng := goformula.New()

	_, err := wasiproto.DecodeContext(`{bad json`)
	require.Error(t, err)

	resp, err := wasiproto.Handle(eng, wasiproto.Request{Op: wasiproto.OpEvaluate, Formula: "1+1"})
	require.NoError(t, err)
	assert.True(t, resp.Execution.IsValid)
	assert.Equal(t, 2.0, resp.Execution.Result)
}
