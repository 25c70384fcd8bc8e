package linter

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

var (
	// ErrUnknownStrictness is returned for a documentation strictness other
	// than lenient or strict
	ErrUnknownStrictness = errors.New("unknown documentation strictness")
	// ErrUnknownRule is returned when config names a rule or rule set that
	// is not registered
	ErrUnknownRule = errors.New("unknown rule")
)

// Strictness controls how demanding the documentation heuristics are
type Strictness string

const (
	StrictnessLenient Strictness = "lenient"
	StrictnessStrict  Strictness = "strict"
)

// ParseStrictness converts a name into a Strictness
func ParseStrictness(name string) (Strictness, error) {
	switch s := Strictness(strings.ToLower(strings.TrimSpace(name))); s {
	case StrictnessLenient, StrictnessStrict:
		return s, nil
	case "":
		return StrictnessLenient, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrictness, name)
	}
}

// Config represents the checker configuration
type Config struct {
	Version        string              `yaml:"version" toml:"version"`
	Lint           LintRules           `yaml:"lint" toml:"lint"`
	Documentation  DocumentationConfig `yaml:"documentation" toml:"documentation"`
	FailOnWarnings bool                `yaml:"fail_on_warnings" toml:"fail_on_warnings"`
}

// LintRules contains rule configuration
type LintRules struct {
	Use      []string             `yaml:"use" toml:"use"` // rule sets (categories); empty means all
	Rules    map[string]bool      `yaml:"rules" toml:"rules"`
	Ignore   []string             `yaml:"ignore" toml:"ignore"`
	Files    map[string]FileRules `yaml:"files" toml:"files"`
	Severity map[string]string    `yaml:"severity" toml:"severity"` // rule -> severity
}

// FileRules contains per-file rule overrides
type FileRules struct {
	Rules map[string]bool `yaml:"rules" toml:"rules"`
}

// DocumentationConfig configures the documentation heuristics
type DocumentationConfig struct {
	Strictness Strictness `yaml:"strictness" toml:"strictness"`
}

// DefaultConfig returns default checker configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "v1",
		Lint: LintRules{
			Use:      []string{},
			Rules:    make(map[string]bool),
			Ignore:   []string{"vendor/**", "third_party/**"},
			Files:    make(map[string]FileRules),
			Severity: make(map[string]string),
		},
		Documentation: DocumentationConfig{
			Strictness: StrictnessLenient,
		},
	}
}

// Validate checks values that cannot be verified by the decoder
func (c *Config) Validate() error {
	if _, err := ParseStrictness(string(c.Documentation.Strictness)); err != nil {
		return err
	}
	for rule, sev := range c.Lint.Severity {
		if _, err := diag.ParseSeverity(sev); err != nil {
			return fmt.Errorf("severity override for %s: %w", rule, err)
		}
	}
	return nil
}

// Strict reports whether strict documentation heuristics are enabled
func (c *Config) Strict() bool {
	return c.Documentation.Strictness == StrictnessStrict
}

// IsIgnored reports whether a file path matches one of the ignore patterns
func (c *Config) IsIgnored(filePath string) bool {
	for _, pattern := range c.Lint.Ignore {
		if matchPath(pattern, filePath) {
			return true
		}
	}
	return false
}

// RuleEnabledForFile applies per-file overrides; ok is false when no
// override mentions the rule
func (c *Config) RuleEnabledForFile(rule, filePath string) (enabled bool, ok bool) {
	for pattern, fr := range c.Lint.Files {
		if !matchPath(pattern, filePath) {
			continue
		}
		if v, found := fr.Rules[rule]; found {
			return v, true
		}
	}
	return false, false
}

// matchPath matches slash-separated glob patterns; a trailing /** matches
// everything below a directory
func matchPath(pattern, filePath string) bool {
	filePath = filepath.ToSlash(filePath)
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return filePath == prefix || strings.HasPrefix(filePath, prefix+"/") || strings.Contains(filePath, "/"+prefix+"/")
	}
	if ok, _ := path.Match(pattern, filePath); ok {
		return true
	}
	ok, _ := path.Match(pattern, path.Base(filePath))
	return ok
}

// LoadConfig loads configuration from a YAML or TOML file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// ConfigNames are the file names LoadConfigFromDir looks for, in order
var ConfigNames = []string{
	"protocheck.yaml",
	"protocheck.yml",
	".protocheck.yaml",
	".protocheck.yml",
	"protocheck.toml",
	".protocheck.toml",
}

// LoadConfigFromDir searches for config file in directory
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range ConfigNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadConfig(p)
		}
	}

	// Return default if no config found
	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, configPath string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(configPath)) == ".toml" {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(config)
		data = []byte(sb.String())
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
