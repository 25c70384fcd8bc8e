package rules

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// typeHint maps a naming pattern to the type such fields should use
type typeHint struct {
	suffixes []string
	names    []string
	// applies reports whether the declared scalar is the wrong choice
	applies  func(schema.ScalarType) bool
	expected string
}

var typeHints = []typeHint{
	{
		suffixes: []string{"_at", "_time", "_timestamp", "_date", "_ts"},
		names:    []string{"timestamp", "time", "created", "updated", "deleted", "expires", "expiry"},
		applies:  isIntegerOrString,
		expected: "google.protobuf.Timestamp",
	},
	{
		suffixes: []string{"_duration", "_timeout", "_ttl", "_interval"},
		names:    []string{"duration", "timeout", "ttl", "interval"},
		applies:  schema.IsInteger,
		expected: "google.protobuf.Duration",
	},
	{
		suffixes: []string{"_bytes", "_data", "_blob", "_payload", "_hash", "_signature", "_digest"},
		names:    []string{"payload", "blob", "hash", "signature", "digest", "raw"},
		applies:  func(t schema.ScalarType) bool { return schema.ScalarName(t) == "string" },
		expected: "bytes",
	},
}

// TypeMappingRule warns when a field name suggests a structured type but
// the field is declared as a plain scalar
type TypeMappingRule struct {
	BaseRule
}

// NewTypeMappingRule creates a new type mapping rule
func NewTypeMappingRule() *TypeMappingRule {
	return &TypeMappingRule{
		BaseRule: BaseRule{
			RuleName:        "type-mapping",
			RuleKind:        diag.KindTypeMapping,
			RuleCategory:    linter.CategoryTypeMapping,
			RuleSeverity:    diag.SeverityWarning,
			RuleDescription: "Time and binary data should use their structured types",
		},
	}
}

// Check validates field types against their names
func (r *TypeMappingRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		for _, field := range msg.Fields {
			expected, ok := expectedType(field)
			if !ok {
				continue
			}
			d := r.diagnostic(ctx, joinPath(path, field.Name), field.Pos, field.Order,
				fmt.Sprintf("Field '%s' looks like it holds %s but is declared as %s",
					field.Name, expected, schema.ScalarName(field.Type.Scalar)))
			d.SuggestedFix = &diag.Fix{
				Description: "Use " + expected,
				OldText:     schema.ScalarName(field.Type.Scalar),
				NewText:     expected,
			}
			diagnostics = append(diagnostics, d)
		}
	})
	return diagnostics
}

// expectedType is the naming heuristic behind TypeMapping
func expectedType(field *schema.Field) (string, bool) {
	if !field.Type.IsScalar() || field.Cardinality == schema.CardinalityMap {
		return "", false
	}
	name := strings.ToLower(field.Name)
	for _, hint := range typeHints {
		if !hint.applies(field.Type.Scalar) {
			continue
		}
		if matchesName(name, hint.names, hint.suffixes) {
			return hint.expected, true
		}
	}
	return "", false
}

func matchesName(name string, names, suffixes []string) bool {
	for _, n := range names {
		if name == n {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func isIntegerOrString(t schema.ScalarType) bool {
	return schema.IsInteger(t) || schema.ScalarName(t) == "string"
}
