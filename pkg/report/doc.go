// Package report aggregates diagnostics into an ordered, deterministic
// result with an overall outcome and renders it for humans, machines and
// CI systems.
//
// Diagnostics are sorted by file, then declaration order within the file,
// then position, then severity (errors first), then kind and message, so
// the same input always yields the same output no matter how many
// workers produced it.
//
// # Outcomes
//
//   - Clean: no diagnostics at all (infos are not counted)
//   - Warnings: warnings but no errors
//   - Failed: at least one error, or a warning with FailOnWarnings set
//
// # Formats
//
//	text   - one line per diagnostic plus a summary table
//	json   - the full Result
//	github - GitHub Actions workflow annotations
package report
