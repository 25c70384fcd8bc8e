// Package presence decides whether a field can tell "never set" apart
// from "set to its zero value".
//
// Classification is pure and total. Singular scalar and enum fields track
// presence exactly when they carry the optional marker. Singular message
// fields and oneof members always track it. Repeated and map fields never
// do; an optional marker on them is reported as misuse.
package presence

import (
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// Source explains why a field does or does not track presence
type Source int

const (
	// SourceImplicit is a singular scalar with no marker
	SourceImplicit Source = iota
	// SourceExplicit is a field carrying the optional marker
	SourceExplicit
	// SourceMessage is a singular message-typed field
	SourceMessage
	// SourceOneof is a member of a oneof
	SourceOneof
	// SourceRequired is a proto2 required field
	SourceRequired
	// SourceCollection is a repeated or map field
	SourceCollection
)

func (s Source) String() string {
	switch s {
	case SourceImplicit:
		return "implicit"
	case SourceExplicit:
		return "explicit"
	case SourceMessage:
		return "message"
	case SourceOneof:
		return "oneof"
	case SourceRequired:
		return "required"
	case SourceCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Classification is the effective presence of one field
type Classification struct {
	// Tracked is true when unset is distinguishable from zero
	Tracked bool
	Source  Source
	// Misuse is set for an optional marker on a repeated or map field
	Misuse bool
}

// Classifier classifies fields against a built schema set. The set is
// used to tell message references apart from enum references; a nil set
// treats every named type as a scalar-like value.
type Classifier struct {
	set *schema.Set
}

// NewClassifier creates a classifier for fields in set
func NewClassifier(set *schema.Set) *Classifier {
	return &Classifier{set: set}
}

// Classify returns the effective presence of field
func (c *Classifier) Classify(file *schema.File, field *schema.Field) Classification {
	if field.IsRepeatedOrMap() {
		return Classification{
			Tracked: false,
			Source:  SourceCollection,
			Misuse:  field.Presence == schema.PresenceOptional,
		}
	}

	switch {
	case field.Presence == schema.PresenceOptional:
		return Classification{Tracked: true, Source: SourceExplicit}
	case field.Oneof != "":
		return Classification{Tracked: true, Source: SourceOneof}
	case c.isMessage(field):
		return Classification{Tracked: true, Source: SourceMessage}
	case field.Required:
		return Classification{Tracked: true, Source: SourceRequired}
	default:
		return Classification{Tracked: false, Source: SourceImplicit}
	}
}

// ClassifyFile classifies every field declared in file
func (c *Classifier) ClassifyFile(file *schema.File) map[*schema.Field]Classification {
	out := make(map[*schema.Field]Classification)
	file.WalkMessages(func(_ string, m *schema.Message) {
		for _, field := range m.Fields {
			out[field] = c.Classify(file, field)
		}
	})
	return out
}

func (c *Classifier) isMessage(field *schema.Field) bool {
	if field.Type.IsScalar() || c.set == nil {
		return false
	}
	return c.set.IsMessage(&field.Type)
}
