package linter

import (
	"context"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/presence"
	"github.com/platinummonkey/protocheck/pkg/schema"
	"github.com/platinummonkey/protocheck/pkg/validation"
)

// Category groups related rules; categories double as rule-set names
type Category string

const (
	CategoryNaming        Category = "naming"
	CategoryDocumentation Category = "documentation"
	CategoryPresence      Category = "presence"
	CategoryTypeMapping   Category = "type_mapping"
	CategoryValidation    Category = "validation_placement"
	CategoryReferences    Category = "references"
)

// LintContext is the immutable input every rule receives for one file
type LintContext struct {
	File       *schema.File
	Set        *schema.Set
	Config     *Config
	Presence   map[*schema.Field]presence.Classification
	Validation map[*schema.Field][]validation.Outcome
}

// FilePath returns the path of the file being checked
func (c *LintContext) FilePath() string {
	return c.File.Path
}

// LintResult contains the result of linting a single file
type LintResult struct {
	FilePath    string
	Diagnostics []diag.Diagnostic
	// Failed is set when the file had structural errors and no
	// convention rules ran
	Failed bool
	// Skipped is set when the file matched an ignore pattern
	Skipped    bool
	Suppressed int
}

// Summary counts diagnostics across results
type Summary struct {
	TotalFiles       int
	FailedFiles      int
	TotalDiagnostics int
	Errors           int
	Warnings         int
	Infos            int
	Suppressed       int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-file debug output
func WithLogger(logger *logrus.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkers bounds how many files are linted concurrently
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// Engine orchestrates the linting process
type Engine struct {
	config   *Config
	registry *RuleRegistry
	logger   *logrus.Logger
	workers  int
}

// NewEngine creates a new lint engine with an empty registry
func NewEngine(config *Config, opts ...EngineOption) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:   config,
		registry: NewRuleRegistry(),
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logrus.New()
	}
	return e
}

// Registry returns the rule registry so callers can register rules
func (e *Engine) Registry() *RuleRegistry {
	return e.registry
}

// Config returns the engine configuration
func (e *Engine) Config() *Config {
	return e.config
}

// Lint runs all enabled rules against one file of a built set
func (e *Engine) Lint(set *schema.Set, file *schema.File) (LintResult, error) {
	result := LintResult{
		FilePath:    file.Path,
		Diagnostics: make([]diag.Diagnostic, 0),
	}

	if e.config.IsIgnored(file.Path) {
		result.Skipped = true
		return result, nil
	}

	for _, m := range file.Malformed {
		result.Diagnostics = append(result.Diagnostics, MalformedDiagnostic(file.Path, m))
	}

	// A file that cannot be modeled gets its structural errors only
	if set.Failed(file.Path) {
		result.Failed = true
		for _, serr := range set.StructuralErrors(file.Path) {
			result.Diagnostics = append(result.Diagnostics, StructuralDiagnostic(serr))
		}
		return result, nil
	}

	rules, err := e.registry.GetEnabledRules(e.config)
	if err != nil {
		return result, err
	}

	classes := presence.NewClassifier(set).ClassifyFile(file)
	ctx := &LintContext{
		File:       file,
		Set:        set,
		Config:     e.config,
		Presence:   classes,
		Validation: validation.InterpretFile(file, classes),
	}

	suppressions := file.Suppressions()
	for _, rule := range rules {
		if on, ok := e.config.RuleEnabledForFile(rule.Name(), file.Path); ok && !on {
			continue
		}
		override, hasOverride := e.config.Lint.Severity[rule.Name()]
		for _, d := range rule.Check(ctx) {
			d.File = file.Path
			if d.Rule == "" {
				d.Rule = rule.Name()
			}
			if hasOverride {
				if sev, err := diag.ParseSeverity(override); err == nil {
					d.Severity = sev
				}
			}
			if isSuppressed(suppressions, d, rule) {
				result.Suppressed++
				continue
			}
			result.Diagnostics = append(result.Diagnostics, d)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"file":        file.Path,
		"rules":       len(rules),
		"diagnostics": len(result.Diagnostics),
		"suppressed":  result.Suppressed,
	}).Debug("linted file")

	return result, nil
}

// LintSet lints every file of the set concurrently. Results are returned
// in the set's file order. The context deadline is honored between files.
func (e *Engine) LintSet(ctx context.Context, set *schema.Set) ([]LintResult, error) {
	files := set.Files()
	results := make([]LintResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := e.Lint(set, file)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup cancels gctx on success too, so check the parent
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// GenerateSummary creates a summary of lint results
func GenerateSummary(results []LintResult) Summary {
	summary := Summary{
		TotalFiles: len(results),
	}

	for _, result := range results {
		if result.Failed {
			summary.FailedFiles++
		}
		summary.Suppressed += result.Suppressed
		summary.TotalDiagnostics += len(result.Diagnostics)
		for _, d := range result.Diagnostics {
			switch d.Severity {
			case diag.SeverityError:
				summary.Errors++
			case diag.SeverityWarning:
				summary.Warnings++
			case diag.SeverityInfo:
				summary.Infos++
			}
		}
	}

	return summary
}

// StructuralDiagnostic converts a structural error into an error diagnostic
func StructuralDiagnostic(err *schema.StructuralError) diag.Diagnostic {
	return diag.Diagnostic{
		File:     err.File,
		Path:     err.Path,
		Severity: diag.SeverityError,
		Kind:     diag.KindStructuralError,
		Rule:     "structure",
		Message:  err.Reason,
		Position: err.Pos,
		Order:    err.Order,
	}
}

// MalformedDiagnostic converts an unreadable annotation into a warning
func MalformedDiagnostic(file string, m schema.Malformed) diag.Diagnostic {
	return diag.Diagnostic{
		File:     file,
		Severity: diag.SeverityWarning,
		Kind:     diag.KindMalformedAnnotation,
		Rule:     "annotations",
		Message:  m.Reason,
		Position: m.Pos,
	}
}

// isSuppressed checks the directives on the diagnostic's declaration and
// every enclosing declaration
func isSuppressed(suppressions map[string][]string, d diag.Diagnostic, rule Rule) bool {
	if len(suppressions) == 0 {
		return false
	}
	for declPath, names := range suppressions {
		if d.Path != declPath && !strings.HasPrefix(d.Path, declPath+".") {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(name, string(d.Kind)) ||
				strings.EqualFold(name, d.Rule) ||
				strings.EqualFold(name, string(rule.Category())) {
				return true
			}
		}
	}
	return false
}
