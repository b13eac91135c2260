// Package introspect extracts the free names of a formula for editor hints.
//
// Extraction works on the token stream, so it succeeds on formulas that
// tokenize but do not parse, which is the common state of a formula being
// typed in an editor.
package introspect

import (
	"github.com/sandrolain/goformula/pkg/parser"
)

// ExtractVariables returns the unique bare variable names of expression in
// source order. Function names and the literals true and false are excluded.
// The result is empty, never nil, when the expression does not tokenize.
func ExtractVariables(expression string) []string {
	vars, _ := Extract(expression)
	return vars
}

// ExtractFunctions returns the unique called function names of expression in
// source order.
func ExtractFunctions(expression string) []string {
	_, fns := Extract(expression)
	return fns
}

// Extract returns both the variable and function names of expression.
func Extract(expression string) (variables, functions []string) {
	tokens, err := parser.Tokenize(expression)
	if err != nil {
		return []string{}, []string{}
	}
	return FromTokens(tokens)
}

// FromTokens collects names from a token stream. An identifier immediately
// followed by '(' is a function call; any other identifier is a variable.
func FromTokens(tokens []parser.Token) (variables, functions []string) {
	variables, functions = []string{}, []string{}
	seenVar := make(map[string]struct{})
	seenFn := make(map[string]struct{})

	for i, t := range tokens {
		if t.Type != parser.TokenIdentifier {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1].Type == parser.TokenLParen {
			if _, ok := seenFn[t.Text]; !ok {
				seenFn[t.Text] = struct{}{}
				functions = append(functions, t.Text)
			}
			continue
		}
		if t.Text == "true" || t.Text == "false" {
			continue
		}
		if _, ok := seenVar[t.Text]; !ok {
			seenVar[t.Text] = struct{}{}
			variables = append(variables, t.Text)
		}
	}
	return variables, functions
}
