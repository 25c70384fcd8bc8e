package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

var (
	snakeCasePattern      = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	upperSnakeCasePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	pascalCasePattern     = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	packagePattern        = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)
)

// PackageNamingRule checks that packages are lowercase dotted names
type PackageNamingRule struct {
	BaseRule
}

// NewPackageNamingRule creates a new package naming rule
func NewPackageNamingRule() *PackageNamingRule {
	return &PackageNamingRule{
		BaseRule: BaseRule{
			RuleName:        "package-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Package names must be lowercase with dots",
		},
	}
}

// Check validates the file's package, if it declares one
func (r *PackageNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	pkg := ctx.File.Package
	if pkg == "" || packagePattern.MatchString(pkg) {
		return nil
	}
	parts := strings.Split(pkg, ".")
	for i, part := range parts {
		parts[i] = toSnakeCase(part)
	}
	return []diag.Diagnostic{
		r.rename(ctx, "", ctx.File.PackagePos, 0, "Package", pkg, strings.Join(parts, "."), "lowercase with dots"),
	}
}

// MessageNamingRule checks that message names follow PascalCase
type MessageNamingRule struct {
	BaseRule
}

// NewMessageNamingRule creates a new message naming rule
func NewMessageNamingRule() *MessageNamingRule {
	return &MessageNamingRule{
		BaseRule: BaseRule{
			RuleName:        "message-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Message names must use PascalCase",
		},
	}
}

// Check validates message names, including nested messages
func (r *MessageNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		if !isPascalCase(msg.Name) {
			diagnostics = append(diagnostics, r.rename(ctx, path, msg.Pos, msg.Order, "Message", msg.Name, toPascalCase(msg.Name), "PascalCase"))
		}
	})
	return diagnostics
}

// FieldNamingRule checks that field names follow snake_case
type FieldNamingRule struct {
	BaseRule
}

// NewFieldNamingRule creates a new field naming rule
func NewFieldNamingRule() *FieldNamingRule {
	return &FieldNamingRule{
		BaseRule: BaseRule{
			RuleName:        "field-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Field names must use snake_case",
		},
	}
}

// Check validates field names
func (r *FieldNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		for _, field := range msg.Fields {
			if !isSnakeCase(field.Name) {
				diagnostics = append(diagnostics, r.rename(ctx, joinPath(path, field.Name), field.Pos, field.Order, "Field", field.Name, toSnakeCase(field.Name), "snake_case"))
			}
		}
	})
	return diagnostics
}

// EnumNamingRule checks that enum names follow PascalCase
type EnumNamingRule struct {
	BaseRule
}

// NewEnumNamingRule creates a new enum naming rule
func NewEnumNamingRule() *EnumNamingRule {
	return &EnumNamingRule{
		BaseRule: BaseRule{
			RuleName:        "enum-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Enum names must use PascalCase",
		},
	}
}

// Check validates enum names, top level and nested
func (r *EnumNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkEnums(func(path string, enum *schema.Enum) {
		if !isPascalCase(enum.Name) {
			diagnostics = append(diagnostics, r.rename(ctx, path, enum.Pos, enum.Order, "Enum", enum.Name, toPascalCase(enum.Name), "PascalCase"))
		}
	})
	return diagnostics
}

// EnumValueNamingRule checks that enum values follow UPPER_SNAKE_CASE
type EnumValueNamingRule struct {
	BaseRule
}

// NewEnumValueNamingRule creates a new enum value naming rule
func NewEnumValueNamingRule() *EnumValueNamingRule {
	return &EnumValueNamingRule{
		BaseRule: BaseRule{
			RuleName:        "enum-value-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Enum values must use UPPER_SNAKE_CASE",
		},
	}
}

// Check validates enum value names
func (r *EnumValueNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkEnums(func(path string, enum *schema.Enum) {
		for _, v := range enum.Values {
			if !isUpperSnakeCase(v.Name) {
				diagnostics = append(diagnostics, r.rename(ctx, joinPath(path, v.Name), v.Pos, v.Order, "Enum value", v.Name, toUpperSnakeCase(v.Name), "UPPER_SNAKE_CASE"))
			}
		}
	})
	return diagnostics
}

// ServiceNamingRule checks that service and RPC names follow PascalCase
type ServiceNamingRule struct {
	BaseRule
}

// NewServiceNamingRule creates a new service naming rule
func NewServiceNamingRule() *ServiceNamingRule {
	return &ServiceNamingRule{
		BaseRule: BaseRule{
			RuleName:        "service-naming",
			RuleKind:        diag.KindNamingConvention,
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Service and RPC names must use PascalCase",
		},
	}
}

// Check validates service and method names
func (r *ServiceNamingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	for _, svc := range ctx.File.Services {
		if !isPascalCase(svc.Name) {
			diagnostics = append(diagnostics, r.rename(ctx, svc.Name, svc.Pos, svc.Order, "Service", svc.Name, toPascalCase(svc.Name), "PascalCase"))
		}
		for _, rpc := range svc.RPCs {
			if !isPascalCase(rpc.Name) {
				diagnostics = append(diagnostics, r.rename(ctx, joinPath(svc.Name, rpc.Name), rpc.Pos, rpc.Order, "RPC", rpc.Name, toPascalCase(rpc.Name), "PascalCase"))
			}
		}
	}
	return diagnostics
}

// rename builds a naming diagnostic with a suggested replacement
func (r *BaseRule) rename(ctx *linter.LintContext, path string, pos diag.Position, order int, what, name, suggestion, style string) diag.Diagnostic {
	d := r.diagnostic(ctx, path, pos, order, fmt.Sprintf("%s name '%s' should be %s", what, name, style))
	d.SuggestedFix = &diag.Fix{
		Description: "Convert to " + style,
		OldText:     name,
		NewText:     suggestion,
	}
	return d
}

// isPascalCase checks if a string is in PascalCase
func isPascalCase(s string) bool {
	return pascalCasePattern.MatchString(s)
}

// toPascalCase converts a string to PascalCase
func toPascalCase(s string) string {
	var result strings.Builder
	upperNext := true
	for _, r := range s {
		if r == '_' || r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			result.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// isSnakeCase checks if a string is in snake_case
func isSnakeCase(s string) bool {
	if !snakeCasePattern.MatchString(s) {
		return false
	}

	// Should not have consecutive underscores
	if strings.Contains(s, "__") {
		return false
	}

	// Should not end with underscore
	return !strings.HasSuffix(s, "_")
}

// toSnakeCase converts a string to snake_case
func toSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && !unicode.IsUpper(runes[i-1]) {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
			continue
		}
		result.WriteRune(r)
	}
	return strings.Trim(strings.ReplaceAll(result.String(), "__", "_"), "_")
}

// isUpperSnakeCase checks if a string is in UPPER_SNAKE_CASE
func isUpperSnakeCase(s string) bool {
	if !upperSnakeCasePattern.MatchString(s) {
		return false
	}

	// Should not have consecutive underscores
	if strings.Contains(s, "__") {
		return false
	}

	// Should not end with underscore
	return !strings.HasSuffix(s, "_")
}

// toUpperSnakeCase converts a string to UPPER_SNAKE_CASE
func toUpperSnakeCase(s string) string {
	if isUpperSnakeCase(s) {
		return s
	}
	return strings.ToUpper(toSnakeCase(s))
}
