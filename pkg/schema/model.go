package schema

import (
	"fmt"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

// Position is an alias so callers don't need to import diag for positions
type Position = diag.Position

// File represents a single parsed schema file
type File struct {
	Path       string
	Package    string
	PackagePos Position
	Syntax     Syntax
	Edition    string // only set when Syntax is SyntaxEditions
	Imports    []string
	// PublicImports is the subset of Imports re-exported with `import public`
	PublicImports []string
	Messages      []*Message
	Enums         []*Enum
	Services      []*Service
	// Malformed lists directives and validation options that could not
	// be read; the declarations carrying them are still modeled
	Malformed []Malformed
}

// Malformed is an annotation that could not be understood
type Malformed struct {
	Pos    Position
	Reason string
}

// Message represents a protobuf message with its fields and nested types
type Message struct {
	Name     string
	FullName string // package.Message or package.Outer.Inner
	Fields   []*Field
	Messages []*Message
	Enums    []*Enum
	Reserved Reserved
	Doc      string
	Suppress []string
	Pos      Position
	Order    int
}

// Reserved holds the numbers and names a message or enum has retired
type Reserved struct {
	Ranges []ReservedRange
	Names  []string
}

// ReservedRange is an inclusive range of reserved numbers
type ReservedRange struct {
	Start int32
	End   int32
}

// Number returns the range holding n, if any
func (r Reserved) Number(n int32) (ReservedRange, bool) {
	for _, rng := range r.Ranges {
		if n >= rng.Start && n <= rng.End {
			return rng, true
		}
	}
	return ReservedRange{}, false
}

// Name reports whether name is reserved
func (r Reserved) Name(name string) bool {
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (r ReservedRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d to %d", r.Start, r.End)
}

// Field represents a message field
type Field struct {
	Name        string
	Number      int32
	Type        TypeRef
	MapKey      *TypeRef // only set for map fields
	Cardinality Cardinality
	Presence    PresenceModifier
	// ImpliedPresence is set when Presence comes from syntax defaults
	// (proto2 labels, editions features) rather than a deliberate marker.
	ImpliedPresence bool
	Required        bool   // proto2 required label
	Oneof           string // oneof name if part of a oneof
	Rules           []*ValidationRule
	Doc             string
	TrailingDoc     string
	Suppress        []string
	Pos             Position
	Order           int
}

// IsRepeatedOrMap reports whether the field holds a collection
func (f *Field) IsRepeatedOrMap() bool {
	return f.Cardinality == CardinalityRepeated || f.Cardinality == CardinalityMap
}

// TypeRef is either a scalar kind or a reference to a named message or enum
type TypeRef struct {
	Scalar ScalarType
	Name   string // unresolved name as written, e.g. ".pkg.Foo" or "Foo.Bar"
	Pos    Position
}

// IsScalar reports whether the reference names a scalar kind
func (t TypeRef) IsScalar() bool {
	return t.Name == "" && t.Scalar != 0
}

func (t TypeRef) String() string {
	if t.IsScalar() {
		return t.Scalar.String()
	}
	return t.Name
}

// ValidationRule is one validation annotation attached to a field
type ValidationRule struct {
	Source      RuleSource
	Ignore      IgnoreMode
	Required    bool
	Constraints []Constraint
	Pos         Position
}

// HasConstraints reports whether the rule carries anything that could fail
func (r *ValidationRule) HasConstraints() bool {
	return r.Required || len(r.Constraints) > 0
}

// Constraint is a single type-specific validation constraint,
// for example Path "string.pattern" with Value "^[a-z]+$".
type Constraint struct {
	Path  string
	Value string
}

// Enum represents an enum declaration
type Enum struct {
	Name     string
	FullName string
	Values   []*EnumValue
	Reserved Reserved
	Doc      string
	Suppress []string
	Pos      Position
	Order    int
}

// EnumValue represents a single enum constant
type EnumValue struct {
	Name     string
	Number   int32
	Doc      string
	Suppress []string
	Pos      Position
	Order    int
}

// Service represents a service definition
type Service struct {
	Name     string
	FullName string
	RPCs     []*RPC
	Doc      string
	Suppress []string
	Pos      Position
	Order    int
}

// RPC represents a service method
type RPC struct {
	Name            string
	Request         TypeRef
	Response        TypeRef
	ClientStreaming bool
	ServerStreaming bool
	Doc             string
	Suppress        []string
	Pos             Position
	Order           int
}
