package lint

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Rule options arrive typed from YAML, as int64 from TOML and as strings from
// the environment. They are decoded weakly, the way the config loader
// decodes every other key.

// GetOption returns opts[key] converted to T, or defaultVal when the key is
// missing or cannot be converted.
func GetOption[T any](opts map[string]any, key string, defaultVal T) T {
	v, ok := opts[key]
	if !ok || v == nil {
		return defaultVal
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       splitListHook,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil || dec.Decode(v) != nil {
		return defaultVal
	}
	return out
}

// splitListHook turns "a, b" into a two element list.
func splitListHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	return SplitList(s), nil
}

func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	return GetOption(opts, key, defaultVal)
}

func GetStringOption(opts map[string]any, key string, defaultVal string) string {
	return GetOption(opts, key, defaultVal)
}

func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	return GetOption(opts, key, defaultVal)
}

// GetStringSliceOption accepts a list or a comma separated string.
func GetStringSliceOption(opts map[string]any, key string, defaultVal []string) []string {
	return GetOption(opts, key, defaultVal)
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
