package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/schema"
	"github.com/platinummonkey/protocheck/pkg/validation"
)

var (
	requiredHint = regexp.MustCompile(`(?i)\b(required|mandatory|must be (set|provided|specified))\b`)
	unsetHint    = regexp.MustCompile(`(?i)\b((if|when) (unset|not set|absent|omitted|missing|not provided|not specified|known|present|provided|specified)|unset means|absence|leaves? (it )?unchanged|left unchanged|keep (the )?(current|existing) value)\b`)
)

// PresenceOnRepeatedRule rejects the optional marker on repeated and map
// fields, which can never track presence
type PresenceOnRepeatedRule struct {
	BaseRule
}

// NewPresenceOnRepeatedRule creates a new presence-on-repeated rule
func NewPresenceOnRepeatedRule() *PresenceOnRepeatedRule {
	return &PresenceOnRepeatedRule{
		BaseRule: BaseRule{
			RuleName:        "presence-on-repeated",
			RuleKind:        diag.KindInvalidPresenceOnRepeated,
			RuleCategory:    linter.CategoryPresence,
			RuleSeverity:    diag.SeverityError,
			RuleDescription: "Repeated and map fields cannot be optional",
		},
	}
}

// Check reports one diagnostic per misused field
func (r *PresenceOnRepeatedRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		for _, field := range msg.Fields {
			if !ctx.Presence[field].Misuse {
				continue
			}
			diagnostics = append(diagnostics, r.diagnostic(ctx, joinPath(path, field.Name), field.Pos, field.Order,
				fmt.Sprintf("Field '%s' is %s and cannot be optional; collections never track presence", field.Name, field.Cardinality)))
		}
	})
	return diagnostics
}

// SuspiciousOptionalRule warns about optional on counters, flags and
// enums where nothing depends on telling unset apart from zero
type SuspiciousOptionalRule struct {
	BaseRule
}

// NewSuspiciousOptionalRule creates a new suspicious optional rule
func NewSuspiciousOptionalRule() *SuspiciousOptionalRule {
	return &SuspiciousOptionalRule{
		BaseRule: BaseRule{
			RuleName:        "suspicious-optional",
			RuleKind:        diag.KindSuspiciousOptionalUsage,
			RuleCategory:    linter.CategoryPresence,
			RuleSeverity:    diag.SeverityWarning,
			RuleDescription: "optional should only mark fields whose unset state means something",
		},
	}
}

// Check flags deliberate optional markers on integer, bool and enum fields
func (r *SuspiciousOptionalRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		for _, field := range msg.Fields {
			if field.Presence != schema.PresenceOptional || field.ImpliedPresence || field.IsRepeatedOrMap() {
				continue
			}
			if !isCounterLike(ctx, field) || !suspiciousOptional(ctx, msg, field) {
				continue
			}
			diagnostics = append(diagnostics, r.diagnostic(ctx, joinPath(path, field.Name), field.Pos, field.Order,
				fmt.Sprintf("Field '%s' is optional %s but nothing depends on its presence; "+
					"use optional only when unset must be distinguishable from zero", field.Name, typeName(field))))
		}
	})
	return diagnostics
}

// suspiciousOptional is the heuristic behind SuspiciousOptionalUsage.
// A doc comment that calls the field required always fires. Otherwise the
// marker is legitimate when a validation rule depends on presence, when
// the message is a partial update, or when the doc explains what unset
// means.
func suspiciousOptional(ctx *linter.LintContext, msg *schema.Message, field *schema.Field) bool {
	doc := field.Doc + "\n" + field.TrailingDoc
	if requiredHint.MatchString(doc) {
		return true
	}
	if validation.DependsOnPresence(ctx.Validation[field], ctx.Presence[field]) {
		return false
	}
	if isPartialUpdate(msg) {
		return false
	}
	return !unsetHint.MatchString(doc)
}

// isPartialUpdate recognizes update requests where optional means
// "leave unchanged"
func isPartialUpdate(msg *schema.Message) bool {
	if strings.HasPrefix(msg.Name, "Update") || strings.HasPrefix(msg.Name, "Patch") {
		return true
	}
	for _, field := range msg.Fields {
		if field.Name == "update_mask" || field.Name == "field_mask" ||
			strings.TrimPrefix(field.Type.Name, ".") == "google.protobuf.FieldMask" {
			return true
		}
	}
	return false
}

func isCounterLike(ctx *linter.LintContext, field *schema.Field) bool {
	if field.Type.IsScalar() {
		return schema.IsInteger(field.Type.Scalar) || schema.ScalarName(field.Type.Scalar) == "bool"
	}
	return ctx.Set != nil && ctx.Set.IsEnum(&field.Type)
}

func typeName(field *schema.Field) string {
	if field.Type.IsScalar() {
		return schema.ScalarName(field.Type.Scalar)
	}
	return field.Type.Name
}
