package formulactx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goformula/pkg/types"
)

// Format is the encoding of a context document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension. Unknown
// extensions are read as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and checks a context document.
func LoadFile(path string) (*types.FormulaContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}
	ctx, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ctx, nil
}

// Decode reads a context document. Unknown fields are rejected so that a
// misspelled key does not silently evaluate to 0.
func Decode(r io.Reader, format Format) (*types.FormulaContext, error) {
	var ctx types.FormulaContext

	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read json context: %w", err)
		}
		if err := checkJSONKeys(data); err != nil {
			return nil, fmt.Errorf("decode json context: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ctx); err != nil {
			return nil, fmt.Errorf("decode json context: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&ctx); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml context: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported context format %q", format)
	}

	if err := Validate(&ctx); err != nil {
		return nil, err
	}
	return &ctx, nil
}

// jsonFields holds the exact top-level keys of a JSON context document.
var jsonFields = func() map[string]struct{} {
	t := reflect.TypeOf(types.FormulaContext{})
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name != "" && name != "-" {
			out[name] = struct{}{}
		}
	}
	return out
}()

// checkJSONKeys rejects top-level keys that encoding/json would only match
// case-insensitively, keeping JSON as strict as YAML.
func checkJSONKeys(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := jsonFields[k]; !ok {
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that counts are non-negative and keys are non-empty.
func Validate(ctx *types.FormulaContext) error {
	if ctx == nil {
		return nil
	}
	err := validate.Struct(ctx)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid context: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", e.Namespace(), e.Param()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s has an empty key", strings.SplitN(e.Namespace(), "[", 2)[0]))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", e.Namespace(), e.Tag()))
		}
	}
	return fmt.Errorf("invalid context: %s", strings.Join(msgs, "; "))
}
