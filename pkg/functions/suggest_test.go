package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
		ok         bool
	}{
		{"rond", []string{"round", "abs"}, "round", true},
		{"Dimension", []string{"dimension"}, "dimension", true},
		{"dimensoin", []string{"dimension", "weight"}, "dimension", true},
		{"completelyOff", []string{"round", "abs"}, "", false},
		{"round", []string{"round"}, "", false},
		{"x", nil, "", false},
		{"x", []string{"if"}, "", false},
		{"X", []string{"x"}, "x", true},
		{"fo", []string{"or"}, "", false},
		{"nto", []string{"not", "if"}, "", false},
		{"nt", []string{"not"}, "", false},
		{"mx", []string{"max"}, "", false},
		{"abz", []string{"abs"}, "abs", true},
		{"roud", []string{"round"}, "round", true},
		{"bonsu", []string{"bonus"}, "bonus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(tt.name, tt.candidates)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestFunction(t *testing.T) {
	got, ok := SuggestFunction("totalErors")
	assert.True(t, ok)
	assert.Equal(t, "totalErrors", got)

	_, ok = SuggestFunction("frobnicate")
	assert.False(t, ok)

	// Very short names are too ambiguous to guess at.
	_, ok = SuggestFunction("x")
	assert.False(t, ok)
	_, ok = SuggestFunction("fi")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	assert.Len(t, Search(""), len(Names()))

	got := Search("dim")
	if assert.NotEmpty(t, got) {
		assert.Equal(t, "dimension", got[0].Name)
	}
	assert.Empty(t, Search("zzzz"))
}
