// Package linter runs convention rules over a built schema set.
//
// # Overview
//
// The engine holds an ordered registry of rules. Each rule is a pure
// function over one file of the immutable schema model together with
// the presence classifications and validation outcomes computed for
// that file. Rules never see each other's output.
//
// # Rule Categories
//
// Naming: package, message, field, enum, enum value, service and RPC casing
// Documentation: doc comment coverage and RPC doc content
// Presence: optional on collections and suspicious optional markers
// Type Mapping: time and binary data declared as plain scalars
// Validation Placement: validation rules that run at the wrong time
// References: type names that resolve to nothing and unused imports
//
// # Configuration
//
// Rules are selected with lint.use (categories, rule names or diagnostic
// kinds) and switched individually with lint.rules. Per-file overrides,
// severity overrides and ignore globs are also supported:
//
//	version: v1
//	lint:
//	  use: [naming, presence, validation_placement]
//	  rules:
//	    suspicious-optional: false
//	  ignore:
//	    - vendor/**
//	  severity:
//	    type-mapping: info
//	documentation:
//	  strictness: strict
//
// # Usage Example
//
//	engine := linter.NewEngine(config, linter.WithWorkers(4))
//	rules.RegisterDefaultRules(engine.Registry())
//
//	results, err := engine.LintSet(ctx, schema.Build(files))
//	if err != nil {
//		return err
//	}
//	summary := linter.GenerateSummary(results)
//	fmt.Printf("%d errors, %d warnings\n", summary.Errors, summary.Warnings)
//
// # Suppression
//
// A leading comment of the form
//
//	// @protocheck:ignore:SuspiciousOptionalUsage,naming
//
// suppresses matching diagnostics on the declaration and everything
// nested in it. Names match a diagnostic kind, a rule name or a category.
//
// # Related Packages
//
//   - pkg/linter/rules: Built-in rules
//   - pkg/schema: Schema model and cross-file resolution
//   - pkg/presence: Presence classification
//   - pkg/validation: Validation rule interpretation
package linter
