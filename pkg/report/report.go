package report

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

// Outcome is the overall verdict of a run
type Outcome string

const (
	OutcomeClean    Outcome = "clean"
	OutcomeWarnings Outcome = "warnings"
	OutcomeFailed   Outcome = "failed"
)

// Options controls how the outcome is derived
type Options struct {
	FailOnWarnings bool
}

// FileReport summarizes one file
type FileReport struct {
	Path        string  `json:"path"`
	Outcome     Outcome `json:"outcome"`
	Errors      int     `json:"errors"`
	Warnings    int     `json:"warnings"`
	Infos       int     `json:"infos"`
	Failed      bool    `json:"failed,omitempty"`
	Skipped     bool    `json:"skipped,omitempty"`
	Suppressed  int     `json:"suppressed,omitempty"`
	Diagnostics int     `json:"diagnostics"`
}

// Result is the aggregated, ordered output of a run
type Result struct {
	RunID       string            `json:"run_id"`
	Outcome     Outcome           `json:"outcome"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Files       []FileReport      `json:"files"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
	Infos       int               `json:"infos"`
	Suppressed  int               `json:"suppressed"`
}

// FileStatus carries per-file facts that are not visible from the
// diagnostics alone
type FileStatus struct {
	Path       string
	Failed     bool
	Skipped    bool
	Suppressed int
}

// Aggregate sorts diagnostics and derives the outcome. files lists every
// checked file so that clean files still get a FileReport; files that
// only appear in diagnostics are added automatically.
func Aggregate(diagnostics []diag.Diagnostic, files []FileStatus, opts Options) *Result {
	sorted := make([]diag.Diagnostic, len(diagnostics))
	copy(sorted, diagnostics)
	Sort(sorted)

	result := &Result{
		RunID:       uuid.NewString(),
		Diagnostics: sorted,
	}

	byPath := make(map[string]*FileReport, len(files))
	order := make([]string, 0, len(files))
	fileReport := func(path string) *FileReport {
		if fr, ok := byPath[path]; ok {
			return fr
		}
		fr := &FileReport{Path: path}
		byPath[path] = fr
		order = append(order, path)
		return fr
	}

	for _, fs := range files {
		fr := fileReport(fs.Path)
		fr.Failed = fr.Failed || fs.Failed
		fr.Skipped = fr.Skipped || fs.Skipped
		fr.Suppressed += fs.Suppressed
		result.Suppressed += fs.Suppressed
	}

	for _, d := range sorted {
		fr := fileReport(d.File)
		fr.Diagnostics++
		switch d.Severity {
		case diag.SeverityError:
			fr.Errors++
			result.Errors++
		case diag.SeverityWarning:
			fr.Warnings++
			result.Warnings++
		default:
			fr.Infos++
			result.Infos++
		}
	}

	slices.Sort(order)
	result.Files = make([]FileReport, 0, len(order))
	for _, path := range order {
		fr := byPath[path]
		fr.Outcome = outcome(fr.Errors, fr.Warnings, fr.Failed, opts)
		result.Files = append(result.Files, *fr)
	}

	failed := false
	for _, fr := range result.Files {
		failed = failed || fr.Failed
	}
	result.Outcome = outcome(result.Errors, result.Warnings, failed, opts)
	return result
}

func outcome(errors, warnings int, failed bool, opts Options) Outcome {
	switch {
	case errors > 0 || failed:
		return OutcomeFailed
	case warnings > 0 && opts.FailOnWarnings:
		return OutcomeFailed
	case warnings > 0:
		return OutcomeWarnings
	default:
		return OutcomeClean
	}
}

// Sort orders diagnostics deterministically in place
func Sort(diagnostics []diag.Diagnostic) {
	slices.SortStableFunc(diagnostics, Compare)
}

// Compare orders two diagnostics by file, declaration order, severity
// (highest first), kind and message. Position and rule only break ties.
func Compare(a, b diag.Diagnostic) int {
	if c := cmp.Compare(a.File, b.File); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position.Line, b.Position.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position.Column, b.Position.Column); c != 0 {
		return c
	}
	return cmp.Compare(a.Rule, b.Rule)
}

// Failed reports whether the run should exit non-zero
func (r *Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}
