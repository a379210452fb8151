package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionHelpers(t *testing.T) {
	opts := map[string]any{
		"yaml_int":  3,
		"toml_int":  int64(4),
		"json_num":  5.0,
		"env_int":   "6",
		"env_bool":  "true",
		"bad_int":   "six",
		"policy":    "upper",
		"words":     []any{"a", "b"},
		"env_words": "a, b,,c",
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"yaml int", GetIntOption(opts, "yaml_int", 0), 3},
		{"toml int", GetIntOption(opts, "toml_int", 0), 4},
		{"json number", GetIntOption(opts, "json_num", 0), 5},
		{"env int", GetIntOption(opts, "env_int", 0), 6},
		{"unparsable int", GetIntOption(opts, "bad_int", 7), 7},
		{"missing int", GetIntOption(opts, "nope", 8), 8},
		{"env bool", GetBoolOption(opts, "env_bool", false), true},
		{"string", GetStringOption(opts, "policy", "consistent"), "upper"},
		{"missing string", GetStringOption(opts, "nope", "consistent"), "consistent"},
		{"list", GetStringSliceOption(opts, "words", nil), []string{"a", "b"}},
		{"comma list", GetStringSliceOption(opts, "env_words", nil), []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"LT01", "AL01"}, SplitList(" LT01 ,AL01, "))
	assert.Nil(t, SplitList(""))
}
