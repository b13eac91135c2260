package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sandrolain/goformula/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeErrors prints each error followed by the offending source line and a
// caret under the reported column.
func writeErrors(w io.Writer, source string, errs []*types.Error) {
	for _, e := range errs {
		fmt.Fprintf(w, "error: %s\n", e)
		if e.Position != nil {
			if line, ok := sourceLine(source, e.Position.Line); ok {
				fmt.Fprintf(w, "  %s\n  %s^\n", line, caretPadding(line, e.Position.Column))
			}
		}
		if e.Hint != "" {
			fmt.Fprintf(w, "  hint: %s\n", e.Hint)
		}
	}
}

func writeList(w io.Writer, label string, items []string) {
	for _, s := range items {
		fmt.Fprintf(w, "%s: %s\n", label, s)
	}
}

func sourceLine(source string, n int) (string, bool) {
	lines := strings.Split(source, "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// caretPadding returns the indentation that puts a caret under the 1-based
// rune column of line. Tabs are kept so the caret lines up with the source.
func caretPadding(line string, column int) string {
	var sb strings.Builder
	for i, r := range []rune(line) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case float64:
		return types.Number(x).String()
	case bool:
		return types.Boolean(x).String()
	default:
		return fmt.Sprint(x)
	}
}
