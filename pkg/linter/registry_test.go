package linter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

// Mock rule for testing
type mockRule struct {
	name        string
	kind        diag.Kind
	category    Category
	severity    diag.Severity
	description string
	diagnostics []diag.Diagnostic
}

func (m *mockRule) Name() string            { return m.name }
func (m *mockRule) Kind() diag.Kind         { return m.kind }
func (m *mockRule) Category() Category      { return m.category }
func (m *mockRule) Severity() diag.Severity { return m.severity }
func (m *mockRule) Description() string     { return m.description }

func (m *mockRule) Check(ctx *LintContext) []diag.Diagnostic {
	return m.diagnostics
}

func testRegistry() *RuleRegistry {
	registry := NewRuleRegistry()
	registry.Register(&mockRule{name: "message-naming", kind: diag.KindNamingConvention, category: CategoryNaming, severity: diag.SeverityError})
	registry.Register(&mockRule{name: "field-naming", kind: diag.KindNamingConvention, category: CategoryNaming, severity: diag.SeverityError})
	registry.Register(&mockRule{name: "documentation", kind: diag.KindMissingDocumentation, category: CategoryDocumentation, severity: diag.SeverityWarning})
	registry.Register(&mockRule{name: "type-mapping", kind: diag.KindTypeMapping, category: CategoryTypeMapping, severity: diag.SeverityWarning})
	return registry
}

func ruleNames(rules []Rule) []string {
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name())
	}
	return names
}

func TestNewRuleRegistry(t *testing.T) {
	registry := NewRuleRegistry()

	assert.NotNil(t, registry)
	assert.Empty(t, registry.GetAllRules())
}

func TestRuleRegistry_Register(t *testing.T) {
	registry := testRegistry()

	assert.Equal(t, []string{"message-naming", "field-naming", "documentation", "type-mapping"}, ruleNames(registry.GetAllRules()))

	rule, ok := registry.GetRule("documentation")
	require.True(t, ok)
	assert.Equal(t, CategoryDocumentation, rule.Category())

	_, ok = registry.GetRule("non-existent")
	assert.False(t, ok)
}

func TestRuleRegistry_RegisterReplacesInPlace(t *testing.T) {
	registry := testRegistry()
	registry.Register(&mockRule{name: "field-naming", category: CategoryNaming, severity: diag.SeverityWarning, description: "replacement"})

	rules := registry.GetAllRules()
	require.Len(t, rules, 4)
	assert.Equal(t, "field-naming", rules[1].Name())
	assert.Equal(t, "replacement", rules[1].Description())
}

func TestRuleRegistry_GetRulesByCategory(t *testing.T) {
	registry := testRegistry()

	assert.Equal(t, []string{"message-naming", "field-naming"}, ruleNames(registry.GetRulesByCategory(CategoryNaming)))
	assert.Empty(t, registry.GetRulesByCategory(CategoryReferences))
}

func TestRuleRegistry_GetEnabledRules(t *testing.T) {
	tests := []struct {
		name     string
		use      []string
		rules    map[string]bool
		expected []string
		err      error
	}{
		{
			name:     "empty selects all",
			expected: []string{"message-naming", "field-naming", "documentation", "type-mapping"},
		},
		{
			name:     "all keyword",
			use:      []string{"all"},
			expected: []string{"message-naming", "field-naming", "documentation", "type-mapping"},
		},
		{
			name:     "by category",
			use:      []string{"naming"},
			expected: []string{"message-naming", "field-naming"},
		},
		{
			name:     "by rule name and kind",
			use:      []string{"documentation", "TypeMapping"},
			expected: []string{"documentation", "type-mapping"},
		},
		{
			name:     "rule override disables",
			rules:    map[string]bool{"documentation": false},
			expected: []string{"message-naming", "field-naming", "type-mapping"},
		},
		{
			name:     "rule override enables outside selection",
			use:      []string{"naming"},
			rules:    map[string]bool{"type-mapping": true},
			expected: []string{"message-naming", "field-naming", "type-mapping"},
		},
		{
			name: "unknown rule set",
			use:  []string{"google"},
			err:  ErrUnknownRule,
		},
		{
			name:  "unknown rule override",
			rules: map[string]bool{"no-such-rule": true},
			err:   ErrUnknownRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Lint.Use = tt.use
			if tt.rules != nil {
				config.Lint.Rules = tt.rules
			}

			enabled, err := testRegistry().GetEnabledRules(config)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ruleNames(enabled))
		})
	}
}
