package validation

import (
	"fmt"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/presence"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// Behavior is the effective runtime behavior of a validation rule
type Behavior int

const (
	AlwaysValidated Behavior = iota
	ValidatedUnlessZero
	NeverValidated
)

func (b Behavior) String() string {
	switch b {
	case AlwaysValidated:
		return "AlwaysValidated"
	case ValidatedUnlessZero:
		return "ValidatedUnlessZero"
	case NeverValidated:
		return "NeverValidated"
	default:
		return "Unknown"
	}
}

// Finding is an issue with how a rule is configured
type Finding struct {
	Kind     diag.Kind
	Severity diag.Severity
	Message  string
}

// Outcome is the interpretation of one rule on one field
type Outcome struct {
	Rule     *schema.ValidationRule
	Behavior Behavior
	Findings []Finding
}

// Interpret resolves every validation rule on field
func Interpret(field *schema.Field, class presence.Classification) []Outcome {
	if len(field.Rules) == 0 {
		return nil
	}
	outcomes := make([]Outcome, 0, len(field.Rules))
	for _, rule := range field.Rules {
		outcomes = append(outcomes, InterpretRule(field, rule, class))
	}
	return outcomes
}

// InterpretRule resolves a single rule. The ignore mode is consulted
// before presence.
func InterpretRule(field *schema.Field, rule *schema.ValidationRule, class presence.Classification) Outcome {
	out := Outcome{Rule: rule}

	switch rule.Ignore {
	case schema.IgnoreAlways:
		out.Behavior = NeverValidated
		if rule.HasConstraints() {
			out.Findings = append(out.Findings, Finding{
				Kind:     diag.KindUnreachableValidation,
				Severity: diag.SeverityWarning,
				Message: fmt.Sprintf("field '%s' has %s constraints that can never run because ignore is IGNORE_ALWAYS",
					field.Name, rule.Source),
			})
		}
	case schema.IgnoreIfZeroValue:
		out.Behavior = ValidatedUnlessZero
		if rule.Required {
			out.Findings = append(out.Findings, Finding{
				Kind:     diag.KindContradictoryValidation,
				Severity: diag.SeverityError,
				Message: fmt.Sprintf("field '%s' is both required and ignored when zero; a required field can never be skipped",
					field.Name),
			})
		}
	default:
		out.Behavior = AlwaysValidated
		if !class.Tracked {
			// collections cannot be optional
			fix := "set ignore to IGNORE_IF_ZERO_VALUE or mark the field optional"
			if class.Source == presence.SourceCollection {
				fix = "set ignore to IGNORE_IF_ZERO_VALUE"
			}
			out.Findings = append(out.Findings, Finding{
				Kind:     diag.KindAmbiguousZeroValidation,
				Severity: diag.SeverityWarning,
				Message: fmt.Sprintf("field '%s' does not track presence, so its %s rule also runs when the field is unset; %s",
					field.Name, rule.Source, fix),
			})
		}
	}

	return out
}

// InterpretFile resolves the rules of every field in file using the
// presence classifications computed for it
func InterpretFile(file *schema.File, classes map[*schema.Field]presence.Classification) map[*schema.Field][]Outcome {
	out := make(map[*schema.Field][]Outcome)
	file.WalkMessages(func(_ string, m *schema.Message) {
		for _, field := range m.Fields {
			if outcomes := Interpret(field, classes[field]); len(outcomes) > 0 {
				out[field] = outcomes
			}
		}
	})
	return out
}

// DependsOnPresence reports whether any rule on the field behaves
// differently depending on whether the field was set. Only rules with an
// unspecified ignore mode on a presence-tracking field do.
func DependsOnPresence(outcomes []Outcome, class presence.Classification) bool {
	if !class.Tracked {
		return false
	}
	for _, o := range outcomes {
		if o.Rule.Ignore == schema.IgnoreUnspecified && o.Rule.HasConstraints() {
			return true
		}
	}
	return false
}
