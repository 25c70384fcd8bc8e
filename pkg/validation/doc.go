// Package validation interprets validation annotations against field
// presence.
//
// Every schema.ValidationRule attached to a field resolves to one of three
// effective behaviors:
//
//	IGNORE_ALWAYS         -> NeverValidated
//	IGNORE_IF_ZERO_VALUE  -> ValidatedUnlessZero
//	IGNORE_UNSPECIFIED    -> AlwaysValidated
//
// The ignore mode is checked first, so ALWAYS and IF_ZERO_VALUE do not
// depend on presence. An UNSPECIFIED rule on a field that does not track
// presence is still AlwaysValidated, but carries an AmbiguousZeroValidation
// finding: the validator cannot tell a field left off the wire from one
// set to its zero value.
//
// Interpretation never fails. Redundant or contradictory annotations are
// reported as findings on the outcome, never as errors.
package validation
