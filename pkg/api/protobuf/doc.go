// Package protobuf turns .proto source into the schema model.
//
// Parsing is delegated to protocompile's syntax-only parser; this package
// walks the resulting AST and records what the checker needs: declared
// names, field cardinality and presence markers, doc comments, validation
// annotations and inline directives.
//
// # Presence
//
// proto3 `optional` sets an explicit presence marker. proto2 `optional`
// labels and the editions `features.field_presence` feature are mapped to
// the same marker, with ImpliedPresence set when the marker comes from a
// syntax default rather than a deliberate choice.
//
// # Validation annotations
//
// Both protovalidate `(buf.validate.field)` and legacy protoc-gen-validate
// `(validate.rules)` options are flattened into schema.ValidationRule
// values. Legacy ignore spellings (IGNORE_IF_UNPOPULATED,
// IGNORE_IF_DEFAULT_VALUE, ignore_empty) map to IgnoreIfZeroValue.
//
// # Directives
//
// Leading comments may carry directives of the form
//
//	// @protocheck:ignore:SuspiciousOptionalUsage,field-naming
//
// which suppress the named diagnostic kinds or rules on that declaration
// and everything nested in it.
//
// A directive with an unknown option or no value, and a validation option
// with an unknown ignore mode, do not fail the parse. They are recorded in
// File.Malformed and the declaration is modeled without them.
package protobuf
