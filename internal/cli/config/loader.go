package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables read by LoadConfig.
// A double underscore separates nested keys: SQLGRAIN_PARSER__STRICT_BRACKETS.
const EnvPrefix = "SQLGRAIN_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// ConfigFileNames are searched in order in every directory.
var ConfigFileNames = []string{".sqlgrain.yaml", ".sqlgrain.yml", ".sqlgrain.toml"}

func defaults() map[string]any {
	return map[string]any{
		"dialect":                    DefaultDialect,
		"templater":                  DefaultTemplater,
		"runaway_limit":              10,
		"max_line_length":            80,
		"processes":                  0,
		"output":                     DefaultOutput,
		"log_level":                  DefaultLogLevel,
		"nocolor":                    false,
		"verbose":                    false,
		"cache":                      false,
		"cache_path":                 DefaultCachePath,
		"indentation.tab_space_size": 4,
		"indentation.indent_unit":    "space",
	}
}

// configIn returns the config file in dir, or "".
func configIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// FindConfigFile searches upward from startDir for a config file.
// Returns "" if not found within maxUpwardSearchLevels.
func FindConfigFile(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if found := configIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// LoadConfig loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults. An empty cfgFile triggers the upward search from
// the working directory.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	if cfgFile == "" {
		cfgFile = FindConfigFile(cwd)
	}
	projectRoot := cwd
	if cfgFile != "" {
		if err := loadFile(k, cfgFile); err != nil {
			return nil, err
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Environment: SQLGRAIN_EXCLUDE_RULES -> exclude_rules
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Rules = trimAll(cfg.Rules)
	cfg.ExcludeRules = trimAll(cfg.ExcludeRules)
	cfg.RuleOptions = flattenRuleOptions(k.Get("rule_options"))
	cfg.ConfigFile = cfgFile
	cfg.ProjectRoot = projectRoot
	if cfg.CachePath != "" && !filepath.IsAbs(cfg.CachePath) {
		cfg.CachePath = filepath.Join(projectRoot, cfg.CachePath)
	}
	cfg.MacroPaths = trimAll(cfg.MacroPaths)
	for i, p := range cfg.MacroPaths {
		if !filepath.IsAbs(p) {
			cfg.MacroPaths[i] = filepath.Join(projectRoot, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var m map[string]any
		if _, err := toml.DecodeFile(path, &m); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// flattenRuleOptions turns the rule_options tree into options keyed by rule
// reference. Rule names contain dots, so the koanf delimiter splits them
// into nested maps; a map holding any non-map value is an options map.
func flattenRuleOptions(v any) map[string]map[string]any {
	out := make(map[string]map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		leaf := make(map[string]any)
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if sub, ok := m[key].(map[string]any); ok {
				name := key
				if prefix != "" {
					name = prefix + "." + key
				}
				walk(name, sub)
				continue
			}
			leaf[key] = m[key]
		}
		if prefix != "" && len(leaf) > 0 {
			out[prefix] = leaf
		}
	}
	if m, ok := v.(map[string]any); ok {
		walk("", m)
	}
	return out
}

func trimAll(refs []string) []string {
	var out []string
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
