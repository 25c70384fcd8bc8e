package rules

import (
	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// ValidationPlacementRule reports the findings of the validation
// interpreter: ambiguous zero-value validation, unreachable constraints
// and contradictory settings
type ValidationPlacementRule struct {
	BaseRule
}

// NewValidationPlacementRule creates a new validation placement rule
func NewValidationPlacementRule() *ValidationPlacementRule {
	return &ValidationPlacementRule{
		BaseRule: BaseRule{
			RuleName:        "validation-placement",
			RuleKind:        diag.KindAmbiguousZeroValidation,
			RuleCategory:    linter.CategoryValidation,
			RuleSeverity:    diag.SeverityWarning,
			RuleDescription: "Validation rules must run when they are meant to",
		},
	}
}

// Check turns interpreter findings into diagnostics, keeping the kind and
// severity each finding was given
func (r *ValidationPlacementRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		for _, field := range msg.Fields {
			for _, outcome := range ctx.Validation[field] {
				for _, finding := range outcome.Findings {
					pos := outcome.Rule.Pos
					if !pos.IsValid() {
						pos = field.Pos
					}
					d := r.diagnostic(ctx, joinPath(path, field.Name), pos, field.Order, finding.Message)
					d.Kind = finding.Kind
					d.Severity = finding.Severity
					diagnostics = append(diagnostics, d)
				}
			}
		}
	})
	return diagnostics
}
