package rules

import (
	"fmt"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
)

// ReferenceRule reports type references that name nothing in the checked
// files. They are errors unless the file imports files that were not
// provided, in which case the name may live there.
type ReferenceRule struct {
	BaseRule
}

// NewReferenceRule creates a new reference rule
func NewReferenceRule() *ReferenceRule {
	return &ReferenceRule{
		BaseRule: BaseRule{
			RuleName:        "references",
			RuleKind:        diag.KindUnresolvedReference,
			RuleCategory:    linter.CategoryReferences,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Type references must resolve",
		},
	}
}

// Check reports unresolved references for the file
func (r *ReferenceRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	if ctx.Set == nil {
		return nil
	}
	diagnostics := make([]diag.Diagnostic, 0)
	for _, ref := range ctx.Set.Unresolved(ctx.FilePath()) {
		d := r.diagnostic(ctx, ref.Path, ref.Pos, ref.Order, fmt.Sprintf("Type '%s' is not defined", ref.Name))
		if ref.External {
			d.Severity = diag.SeverityWarning
			d.Message += " in the checked files; it may come from an import that was not provided"
		}
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

// UnusedImportRule reports imports that nothing in the file needs
type UnusedImportRule struct {
	BaseRule
}

// NewUnusedImportRule creates a new unused import rule
func NewUnusedImportRule() *UnusedImportRule {
	return &UnusedImportRule{
		BaseRule: BaseRule{
			RuleName:        "unused-imports",
			RuleKind:        diag.KindUnusedImport,
			RuleCategory:    linter.CategoryReferences,
			RuleSeverity:    diag.SeverityWarning,
			RuleDescription: "Imports must be used by a type reference or validation annotation",
		},
	}
}

// Check reports each unused import once
func (r *UnusedImportRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	if ctx.Set == nil {
		return nil
	}
	diagnostics := make([]diag.Diagnostic, 0)
	for _, imp := range ctx.Set.UnusedImports(ctx.File) {
		d := r.diagnostic(ctx, "", diag.Position{}, 0, fmt.Sprintf("Import '%s' is not used", imp))
		d.SuggestedFix = &diag.Fix{
			Description: "Remove the import",
			OldText:     fmt.Sprintf("import %q;", imp),
		}
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}
