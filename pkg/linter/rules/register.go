package rules

import "github.com/platinummonkey/protocheck/pkg/linter"

// Registry interface for registering rules
type Registry interface {
	Register(rule linter.Rule)
}

// DefaultRules returns every built-in rule in evaluation order
func DefaultRules() []linter.Rule {
	return []linter.Rule{
		// Naming rules
		NewPackageNamingRule(),
		NewMessageNamingRule(),
		NewFieldNamingRule(),
		NewEnumNamingRule(),
		NewEnumValueNamingRule(),
		NewServiceNamingRule(),

		// Documentation
		NewDocumentationRule(),

		// Presence
		NewPresenceOnRepeatedRule(),
		NewSuspiciousOptionalRule(),

		// Type mapping
		NewTypeMappingRule(),

		// Validation placement
		NewValidationPlacementRule(),

		// References
		NewReferenceRule(),
		NewUnusedImportRule(),
	}
}

// RegisterDefaultRules registers all built-in lint rules
func RegisterDefaultRules(registry Registry) {
	for _, rule := range DefaultRules() {
		registry.Register(rule)
	}
}
