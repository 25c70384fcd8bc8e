package linter

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

// Rule interface that all lint rules must implement. Check must be pure:
// it reads the context and returns diagnostics without side effects, and
// never depends on the output of another rule.
type Rule interface {
	Name() string
	Kind() diag.Kind
	Category() Category
	Severity() diag.Severity
	Description() string
	Check(ctx *LintContext) []diag.Diagnostic
}

// RuleRegistry manages available lint rules in registration order
type RuleRegistry struct {
	rules []Rule
	index map[string]int
}

// NewRuleRegistry creates a new, empty rule registry
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		index: make(map[string]int),
	}
}

// Register adds a rule to the registry. Registering a name twice
// replaces the earlier rule in place.
func (r *RuleRegistry) Register(rule Rule) {
	if i, ok := r.index[rule.Name()]; ok {
		r.rules[i] = rule
		return
	}
	r.index[rule.Name()] = len(r.rules)
	r.rules = append(r.rules, rule)
}

// GetRule retrieves a rule by name
func (r *RuleRegistry) GetRule(name string) (Rule, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// GetAllRules returns all registered rules in registration order
func (r *RuleRegistry) GetAllRules() []Rule {
	rules := make([]Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// GetRulesByCategory returns rules in a specific category
func (r *RuleRegistry) GetRulesByCategory(category Category) []Rule {
	rules := make([]Rule, 0)
	for _, rule := range r.rules {
		if rule.Category() == category {
			rules = append(rules, rule)
		}
	}
	return rules
}

// GetEnabledRules returns rules enabled by config. Entries in
// config.Lint.Use select rules by category, rule name or diagnostic kind;
// an empty list (or "all") selects everything. config.Lint.Rules then
// switches individual rules on or off by name.
func (r *RuleRegistry) GetEnabledRules(config *Config) ([]Rule, error) {
	enabled := make(map[string]bool, len(r.rules))

	selectAll := len(config.Lint.Use) == 0
	for _, entry := range config.Lint.Use {
		if strings.EqualFold(entry, "all") || strings.EqualFold(entry, "default") {
			selectAll = true
			continue
		}
		matched := false
		for _, rule := range r.rules {
			if matchesSelector(rule, entry) {
				enabled[rule.Name()] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w or rule set %q", ErrUnknownRule, entry)
		}
	}
	if selectAll {
		for _, rule := range r.rules {
			enabled[rule.Name()] = true
		}
	}

	for name, on := range config.Lint.Rules {
		if _, ok := r.index[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
		}
		enabled[name] = on
	}

	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if enabled[rule.Name()] {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func matchesSelector(rule Rule, selector string) bool {
	return strings.EqualFold(selector, string(rule.Category())) ||
		strings.EqualFold(selector, rule.Name()) ||
		strings.EqualFold(selector, string(rule.Kind()))
}
