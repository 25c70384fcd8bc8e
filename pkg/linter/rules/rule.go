package rules

import (
	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
)

// BaseRule provides common functionality for rules
type BaseRule struct {
	RuleName        string
	RuleKind        diag.Kind
	RuleCategory    linter.Category
	RuleSeverity    diag.Severity
	RuleDescription string
}

func (r *BaseRule) Name() string              { return r.RuleName }
func (r *BaseRule) Kind() diag.Kind           { return r.RuleKind }
func (r *BaseRule) Category() linter.Category { return r.RuleCategory }
func (r *BaseRule) Severity() diag.Severity   { return r.RuleSeverity }
func (r *BaseRule) Description() string       { return r.RuleDescription }

// diagnostic builds a diagnostic carrying the rule's identity
func (r *BaseRule) diagnostic(ctx *linter.LintContext, path string, pos diag.Position, order int, message string) diag.Diagnostic {
	return diag.Diagnostic{
		File:     ctx.FilePath(),
		Path:     path,
		Severity: r.RuleSeverity,
		Kind:     r.RuleKind,
		Rule:     r.RuleName,
		Message:  message,
		Position: pos,
		Order:    order,
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
