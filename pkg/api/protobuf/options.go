package protobuf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/protocompile/ast"

	"github.com/platinummonkey/protocheck/pkg/schema"
)

const (
	protovalidateOption = "(buf.validate.field)"
	pgvOption           = "(validate.rules)"
	presenceFeature     = "features.field_presence"
)

// optionName joins the parts of an option name, e.g.
// "(buf.validate.field).string.min_len"
func optionName(opt *ast.OptionNode) []string {
	parts := make([]string, 0, len(opt.Name.Parts))
	for _, part := range opt.Name.Parts {
		parts = append(parts, part.Value())
	}
	return parts
}

// featurePresence reads `features.field_presence` from a file or message
// option. LEGACY_REQUIRED still tracks presence.
func featurePresence(opt *ast.OptionNode) (schema.PresenceModifier, bool) {
	if strings.Join(optionName(opt), ".") != presenceFeature {
		return schema.PresenceNone, false
	}
	switch literal(opt.Val) {
	case "EXPLICIT", "LEGACY_REQUIRED":
		return schema.PresenceOptional, true
	case "IMPLICIT":
		return schema.PresenceNone, true
	default:
		return schema.PresenceNone, false
	}
}

// fieldOptions applies compact field options: presence features and
// validation annotations. Settings that cannot be read are recorded as
// malformed and skipped.
func (b *builder) fieldOptions(field *schema.Field, opts *ast.CompactOptionsNode) {
	if opts == nil {
		return
	}

	rules := make(map[schema.RuleSource]*schema.ValidationRule)
	var order []schema.RuleSource

	for _, opt := range opts.Options {
		name := optionName(opt)
		if len(name) == 0 {
			continue
		}

		if strings.Join(name, ".") == presenceFeature {
			switch literal(opt.Val) {
			case "EXPLICIT":
				field.Presence = schema.PresenceOptional
				field.ImpliedPresence = false
			case "IMPLICIT":
				field.Presence = schema.PresenceNone
				field.ImpliedPresence = false
			case "LEGACY_REQUIRED":
				field.Required = true
				field.Presence = schema.PresenceNone
			}
			continue
		}

		var source schema.RuleSource
		switch name[0] {
		case protovalidateOption:
			source = schema.SourceProtovalidate
		case pgvOption:
			source = schema.SourcePGV
		default:
			continue
		}

		rule, ok := rules[source]
		if !ok {
			rule = &schema.ValidationRule{Source: source, Pos: b.pos(opt)}
			rules[source] = rule
			order = append(order, source)
		}

		var settings []setting
		flatten(name[1:], opt.Val, &settings)
		for _, s := range settings {
			if err := applySetting(rule, s); err != nil {
				b.malformed(opt, fmt.Sprintf("field '%s': %v", field.Name, err))
			}
		}
	}

	for _, source := range order {
		field.Rules = append(field.Rules, rules[source])
	}
}

// setting is one leaf of a validation option, e.g. {"string","min_len"} = "1"
type setting struct {
	path  []string
	value string
}

// flatten expands message literals into dotted leaf settings
func flatten(prefix []string, val ast.ValueNode, out *[]setting) {
	if fields, ok := val.Value().([]*ast.MessageFieldNode); ok {
		if len(fields) == 0 {
			*out = append(*out, setting{path: prefix, value: "{}"})
			return
		}
		for _, f := range fields {
			path := make([]string, len(prefix), len(prefix)+1)
			copy(path, prefix)
			flatten(append(path, f.Name.Value()), f.Val, out)
		}
		return
	}
	*out = append(*out, setting{path: prefix, value: literal(val)})
}

func applySetting(rule *schema.ValidationRule, s setting) error {
	key := strings.Join(s.path, ".")

	if rule.Source == schema.SourcePGV {
		switch {
		case key == "message.required":
			rule.Required = isTrue(s.value)
			return nil
		case key == "message.skip":
			if isTrue(s.value) {
				rule.Ignore = schema.IgnoreAlways
			}
			return nil
		case strings.HasSuffix(key, ".ignore_empty"):
			if isTrue(s.value) {
				rule.Ignore = schema.IgnoreIfZeroValue
			}
			return nil
		}
		rule.Constraints = append(rule.Constraints, schema.Constraint{Path: key, Value: s.value})
		return nil
	}

	switch key {
	case "required":
		rule.Required = isTrue(s.value)
	case "ignore":
		mode, ok := schema.ParseIgnoreMode(s.value)
		if !ok {
			return fmt.Errorf("unknown ignore mode %q", s.value)
		}
		rule.Ignore = mode
	case "ignore_empty":
		// pre-1.0 protovalidate
		if isTrue(s.value) {
			rule.Ignore = schema.IgnoreIfZeroValue
		}
	case "skipped":
		if isTrue(s.value) {
			rule.Ignore = schema.IgnoreAlways
		}
	default:
		rule.Constraints = append(rule.Constraints, schema.Constraint{Path: key, Value: s.value})
	}
	return nil
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// literal renders a scalar option value as text
func literal(val ast.ValueNode) string {
	switch v := val.Value().(type) {
	case string:
		return v
	case ast.Identifier:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []ast.ValueNode:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, literal(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []*ast.MessageFieldNode:
		return "{...}"
	default:
		return fmt.Sprint(v)
	}
}
