package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protocheck/pkg/api/protobuf"
	"github.com/platinummonkey/protocheck/pkg/cache"
	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/linter/rules"
	"github.com/platinummonkey/protocheck/pkg/observability"
	"github.com/platinummonkey/protocheck/pkg/report"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// ErrNoSources is returned when a check is started without any input
var ErrNoSources = errors.New("no sources to check")

// Source is one schema file held in memory
type Source struct {
	Path    string
	Content []byte
}

// Option configures a Checker
type Option func(*Checker)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithMetrics records run, file and diagnostic metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Checker) {
		c.metrics = metrics
	}
}

// WithCache reuses parsed files across runs
func WithCache(parseCache *cache.ParseCache) Option {
	return func(c *Checker) {
		c.cache = parseCache
	}
}

// WithWorkers bounds how many files are parsed and linted concurrently
func WithWorkers(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFailOnWarnings turns warnings into a failed outcome
func WithFailOnWarnings(fail bool) Option {
	return func(c *Checker) {
		c.config.FailOnWarnings = fail
	}
}

// WithRuleSet restricts the run to the named rule sets; empty means all
func WithRuleSet(sets ...string) Option {
	return func(c *Checker) {
		c.config.Lint.Use = append([]string(nil), sets...)
	}
}

// WithDocStrictness selects the documentation heuristics
func WithDocStrictness(strictness linter.Strictness) Option {
	return func(c *Checker) {
		c.config.Documentation.Strictness = strictness
	}
}

// Checker runs the full pipeline: parse, build, classify, lint, report.
// A Checker is safe for concurrent use.
type Checker struct {
	config  *linter.Config
	engine  *linter.Engine
	logger  *logrus.Logger
	metrics *observability.Metrics
	cache   *cache.ParseCache
	workers int
}

// New creates a checker for the given configuration. cfg is not
// modified; options apply to a copy.
func New(cfg *linter.Config, opts ...Option) (*Checker, error) {
	if cfg == nil {
		cfg = linter.DefaultConfig()
	}
	copied := *cfg

	c := &Checker{
		config:  &copied,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = observability.NewNopLogger()
	}

	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	c.engine = linter.NewEngine(c.config, linter.WithLogger(c.logger), linter.WithWorkers(c.workers))
	rules.RegisterDefaultRules(c.engine.Registry())

	// surface unknown rule names now rather than on the first run
	if _, err := c.engine.Registry().GetEnabledRules(c.config); err != nil {
		return nil, err
	}

	return c, nil
}

// Config returns the effective configuration
func (c *Checker) Config() *linter.Config {
	return c.config
}

// Rules returns every registered rule in evaluation order
func (c *Checker) Rules() []linter.Rule {
	return c.engine.Registry().GetAllRules()
}

// CheckFiles reads and checks files from disk
func (c *Checker) CheckFiles(ctx context.Context, paths []string) (*report.Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, Source{Path: path, Content: content})
	}
	return c.Check(ctx, sources)
}

// Check parses and checks in-memory sources. Files that fail to parse
// produce a ParseError diagnostic and are marked failed; the rest of the
// set is still checked.
func (c *Checker) Check(ctx context.Context, sources []Source) (result *report.Result, err error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	ctx, span := observability.StartSpan(ctx, "protocheck.check", attribute.Int("sources", len(sources)))
	defer func() { observability.EndSpan(span, err) }()

	c.logger.WithField("sources", len(sources)).Debug("check started")

	start := time.Now()
	files, parseDiags, err := c.parseAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	parsed := make([]*schema.File, 0, len(files))
	failed := make([]string, 0, len(parseDiags))
	for i, f := range files {
		if f == nil {
			failed = append(failed, sources[i].Path)
			continue
		}
		parsed = append(parsed, f)
	}

	return c.run(ctx, start, parsed, parseDiags, failed)
}

// CheckSchemas checks files that were already parsed
func (c *Checker) CheckSchemas(ctx context.Context, files []*schema.File) (result *report.Result, err error) {
	if len(files) == 0 {
		return nil, ErrNoSources
	}

	ctx, span := observability.StartSpan(ctx, "protocheck.check_schemas", attribute.Int("files", len(files)))
	defer func() { observability.EndSpan(span, err) }()

	return c.run(ctx, time.Now(), files, nil, nil)
}

// parseAll parses sources concurrently. files[i] is nil when sources[i]
// failed to parse; its diagnostic is in parseDiags.
func (c *Checker) parseAll(ctx context.Context, sources []Source) ([]*schema.File, []diag.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("check aborted before parsing: %w", err)
	}

	files := make([]*schema.File, len(sources))
	diags := make([]*diag.Diagnostic, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, d, err := c.parse(src)
			if err != nil {
				return err
			}
			files[i], diags[i] = f, d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parsing sources: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("parsing sources: %w", err)
	}

	var parseDiags []diag.Diagnostic
	for _, d := range diags {
		if d != nil {
			parseDiags = append(parseDiags, *d)
		}
	}
	return files, parseDiags, nil
}

// parse returns either a file or a parse diagnostic. Only non-parse
// failures are returned as errors.
func (c *Checker) parse(src Source) (*schema.File, *diag.Diagnostic, error) {
	var key string
	if c.cache != nil {
		key = cache.Key(src.Path, src.Content)
		if f, ok := c.cache.Get(key); ok {
			c.metrics.CacheHit()
			return f, nil, nil
		}
		c.metrics.CacheMiss()
	}

	start := time.Now()
	f, err := protobuf.Parse(src.Path, src.Content)
	c.metrics.ObserveParse(time.Since(start))

	if err != nil {
		var perr *protobuf.ParseError
		if !errors.As(err, &perr) {
			return nil, nil, fmt.Errorf("parsing %s: %w", src.Path, err)
		}
		c.logger.WithFields(logrus.Fields{
			"file":  src.Path,
			"error": perr.Msg,
		}).Warn("failed to parse file")
		return nil, &diag.Diagnostic{
			File:     src.Path,
			Severity: diag.SeverityError,
			Kind:     diag.KindParseError,
			Rule:     "parse",
			Message:  perr.Msg,
			Position: perr.Pos,
		}, nil
	}

	if c.cache != nil {
		c.cache.Add(key, f)
	}
	c.logger.WithField("file", src.Path).Debug("parsed file")
	return f, nil, nil
}

// run builds the schema set, lints it and aggregates the report
func (c *Checker) run(ctx context.Context, start time.Time, files []*schema.File, parseDiags []diag.Diagnostic, parseFailed []string) (*report.Result, error) {
	set := schema.Build(files)

	results, err := c.engine.LintSet(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("linting files: %w", err)
	}

	diagnostics := append([]diag.Diagnostic(nil), parseDiags...)
	for _, serr := range set.Rejected() {
		diagnostics = append(diagnostics, linter.StructuralDiagnostic(serr))
	}
	statuses := make([]report.FileStatus, 0, len(results)+len(parseFailed))
	for _, path := range parseFailed {
		statuses = append(statuses, report.FileStatus{Path: path, Failed: true})
		c.metrics.ObserveFile("parse_error")
	}
	for _, r := range results {
		diagnostics = append(diagnostics, r.Diagnostics...)
		statuses = append(statuses, report.FileStatus{
			Path:       r.FilePath,
			Failed:     r.Failed,
			Skipped:    r.Skipped,
			Suppressed: r.Suppressed,
		})
		c.metrics.ObserveFile(fileStatus(r))
	}

	result := report.Aggregate(diagnostics, statuses, report.Options{FailOnWarnings: c.config.FailOnWarnings})

	for _, d := range result.Diagnostics {
		c.metrics.ObserveDiagnostic(string(d.Kind), d.Severity.String())
	}
	duration := time.Since(start)
	c.metrics.ObserveRun(string(result.Outcome), duration)

	observability.WithTraceContext(ctx, c.logger.WithFields(logrus.Fields{
		"run_id":      result.RunID,
		"files":       len(statuses),
		"diagnostics": len(result.Diagnostics),
		"outcome":     result.Outcome,
		"duration":    duration,
	})).Info("check finished")

	return result, nil
}

func fileStatus(r linter.LintResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Failed:
		return "failed"
	default:
		return "ok"
	}
}
