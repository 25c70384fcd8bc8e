package schema

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Syntax is the language level a file was written in
type Syntax int

const (
	SyntaxProto2 Syntax = iota
	SyntaxProto3
	SyntaxEditions
)

func (s Syntax) String() string {
	switch s {
	case SyntaxProto2:
		return "proto2"
	case SyntaxProto3:
		return "proto3"
	case SyntaxEditions:
		return "editions"
	default:
		return "unknown"
	}
}

// Cardinality describes how many values a field holds
type Cardinality int

const (
	CardinalitySingular Cardinality = iota
	CardinalityRepeated
	CardinalityMap
)

func (c Cardinality) String() string {
	switch c {
	case CardinalitySingular:
		return "singular"
	case CardinalityRepeated:
		return "repeated"
	case CardinalityMap:
		return "map"
	default:
		return "unknown"
	}
}

// PresenceModifier is the explicit presence marker written on a field
type PresenceModifier int

const (
	PresenceNone PresenceModifier = iota
	PresenceOptional
)

func (p PresenceModifier) String() string {
	if p == PresenceOptional {
		return "optional"
	}
	return "none"
}

// ScalarType is the wire-level scalar kind of a field
type ScalarType = descriptorpb.FieldDescriptorProto_Type

var scalarTypes = map[string]ScalarType{
	"double":   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"float":    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"int64":    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"uint64":   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"int32":    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"fixed64":  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	"fixed32":  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	"bool":     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"string":   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"bytes":    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	"uint32":   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"sfixed32": descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	"sfixed64": descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	"sint32":   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	"sint64":   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
}

// LookupScalar returns the scalar kind for a type keyword such as "int32"
func LookupScalar(name string) (ScalarType, bool) {
	t, ok := scalarTypes[name]
	return t, ok
}

// Scalar builds a TypeRef for a scalar keyword. Unknown keywords are
// treated as named references.
func Scalar(name string) TypeRef {
	if t, ok := LookupScalar(name); ok {
		return TypeRef{Scalar: t}
	}
	return TypeRef{Name: name}
}

// Named builds a TypeRef for a message or enum reference
func Named(name string) TypeRef {
	return TypeRef{Name: name}
}

// IsInteger reports whether the scalar is one of the integer kinds
func IsInteger(t ScalarType) bool {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return true
	}
	return false
}

// ScalarName returns the proto keyword for a scalar kind, e.g. "int32"
func ScalarName(t ScalarType) string {
	return strings.ToLower(strings.TrimPrefix(t.String(), "TYPE_"))
}

// RuleSource identifies which annotation family a validation rule came from
type RuleSource int

const (
	// SourceProtovalidate is (buf.validate.field)
	SourceProtovalidate RuleSource = iota
	// SourcePGV is the legacy protoc-gen-validate (validate.rules)
	SourcePGV
)

func (s RuleSource) String() string {
	if s == SourcePGV {
		return "pgv"
	}
	return "protovalidate"
}

// IgnoreMode controls when a validation rule is skipped
type IgnoreMode int

const (
	IgnoreUnspecified IgnoreMode = iota
	IgnoreIfZeroValue
	IgnoreAlways
)

func (m IgnoreMode) String() string {
	switch m {
	case IgnoreUnspecified:
		return "IGNORE_UNSPECIFIED"
	case IgnoreIfZeroValue:
		return "IGNORE_IF_ZERO_VALUE"
	case IgnoreAlways:
		return "IGNORE_ALWAYS"
	default:
		return "IGNORE_UNKNOWN"
	}
}

// ParseIgnoreMode maps an ignore enum name, including the legacy
// aliases, to an IgnoreMode.
func ParseIgnoreMode(name string) (IgnoreMode, bool) {
	switch strings.TrimPrefix(strings.ToUpper(name), "IGNORE_") {
	case "UNSPECIFIED", "":
		return IgnoreUnspecified, true
	case "IF_ZERO_VALUE", "IF_UNPOPULATED", "IF_DEFAULT_VALUE", "EMPTY":
		return IgnoreIfZeroValue, true
	case "ALWAYS":
		return IgnoreAlways, true
	default:
		return IgnoreUnspecified, false
	}
}
