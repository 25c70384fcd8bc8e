package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/platinummonkey/protocheck/pkg/api/protobuf"
	"github.com/platinummonkey/protocheck/pkg/cache"
	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/observability"
	"github.com/platinummonkey/protocheck/pkg/report"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// Caches in this package are built with a zero TTL so no sweeper
// goroutine outlives a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newChecker(t *testing.T, opts ...Option) *Checker {
	t.Helper()
	c, err := New(nil, opts...)
	require.NoError(t, err)
	return c
}

func check(t *testing.T, c *Checker, sources ...Source) *report.Result {
	t.Helper()
	result, err := c.Check(context.Background(), sources)
	require.NoError(t, err)
	return result
}

func src(path, content string) Source {
	return Source{Path: path, Content: []byte(content)}
}

type finding struct {
	Path string
	Kind diag.Kind
}

func findings(result *report.Result) []finding {
	out := make([]finding, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		out = append(out, finding{Path: d.Path, Kind: d.Kind})
	}
	return out
}

func TestScenarioUndocumentedOptionalCounter(t *testing.T) {
	result := check(t, newChecker(t), src("retry.proto", `syntax = "proto3";

package acme.v1;

message RetryPolicy {
  optional int32 retry_count = 1;
}
`))

	assert.Equal(t, []finding{
		{Path: "RetryPolicy", Kind: diag.KindMissingDocumentation},
		{Path: "RetryPolicy.retry_count", Kind: diag.KindMissingDocumentation},
		{Path: "RetryPolicy.retry_count", Kind: diag.KindSuspiciousOptionalUsage},
	}, findings(result))
	assert.Equal(t, report.OutcomeWarnings, result.Outcome)
	assert.False(t, result.Failed())
}

func TestScenarioValidatedUnlessZero(t *testing.T) {
	result := check(t, newChecker(t), src("key.proto", `syntax = "proto3";

package acme.v1;

// SigningKey identifies the key a payload was signed with.
message SigningKey {
  // Key id of the signer, empty when unsigned.
  string signed_by_kid = 1 [
    (buf.validate.field).ignore = IGNORE_IF_ZERO_VALUE,
    (buf.validate.field).string.pattern = "^[a-z0-9-]+$"
  ];
}
`))

	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, report.OutcomeClean, result.Outcome)
}

func TestScenarioOptionalWithoutRule(t *testing.T) {
	result := check(t, newChecker(t), src("profile.proto", `syntax = "proto3";

package acme.v1;

// Profile is the public part of an account.
message Profile {
  // Name shown to other users; unset means use the handle.
  optional string display_name = 1;
}
`))

	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, report.OutcomeClean, result.Outcome)
}

func TestScenarioDuplicateMessage(t *testing.T) {
	result := check(t, newChecker(t), src("account.proto", `syntax = "proto3";

package acme.v1;

message Account {}
message Account {
  string BadName = 1;
}
`))

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, diag.KindStructuralError, d.Kind)
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, "Account", d.Path)

	assert.Equal(t, report.OutcomeFailed, result.Outcome)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Failed)
}

func TestRepeatedPathChecksFirstCopy(t *testing.T) {
	profile := `syntax = "proto3";

package acme.v1;

// Profile is the public part of an account.
message Profile {
  // Name shown to other users; unset means use the handle.
  optional string display_name = 1;
  string note = 2;
}
`
	result := check(t, newChecker(t), src("a.proto", profile), src("a.proto", profile))

	// the rejected copy is reported once and the first copy is still linted
	assert.Equal(t, []finding{
		{Path: "", Kind: diag.KindStructuralError},
		{Path: "Profile.note", Kind: diag.KindMissingDocumentation},
	}, findings(result))
	assert.Equal(t, report.OutcomeFailed, result.Outcome)

	require.Len(t, result.Files, 1)
	assert.Equal(t, 1, result.Files[0].Errors)
	assert.Equal(t, 1, result.Files[0].Warnings)
	assert.False(t, result.Files[0].Failed)
}

func TestParseErrorDoesNotStopOtherFiles(t *testing.T) {
	result := check(t, newChecker(t),
		src("broken.proto", `syntax = "proto3"; message M { string x = 1 }`),
		src("ok.proto", `syntax = "proto3";

message lower_case {}
`),
	)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "broken.proto", result.Files[0].Path)
	assert.True(t, result.Files[0].Failed)
	assert.Equal(t, 1, result.Files[0].Errors)

	kinds := map[diag.Kind]bool{}
	for _, d := range result.Diagnostics {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds[diag.KindParseError])
	assert.True(t, kinds[diag.KindNamingConvention], "ok.proto is still checked")
	assert.Equal(t, report.OutcomeFailed, result.Outcome)
}

func TestCrossFileReferences(t *testing.T) {
	c := newChecker(t, WithRuleSet("references"))
	result := check(t, c,
		src("acme/v1/user.proto", `syntax = "proto3";
package acme.v1;
import "acme/v1/address.proto";
message User { Address home = 1; Missing other = 2; }
`),
		src("acme/v1/address.proto", `syntax = "proto3";
package acme.v1;
message Address { string city = 1; }
`),
	)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, diag.KindUnresolvedReference, result.Diagnostics[0].Kind)
	assert.Equal(t, "acme/v1/user.proto", result.Diagnostics[0].File)
	assert.Equal(t, "User.other", result.Diagnostics[0].Path)
}

const mixedProto = `syntax = "proto3";

package acme.v1;

message order_item {
  optional int32 retry_count = 1;
  repeated string Tags = 2;
  int64 created_at = 3;
  string name = 4 [(buf.validate.field).string.min_len = 1];
}

enum color {
  RED = 0;
}

service widgets {
  rpc get(order_item) returns (order_item);
}
`

func TestIdempotentAcrossWorkerCounts(t *testing.T) {
	sources := []Source{
		src("a.proto", mixedProto),
		src("b.proto", `syntax = "proto3"; package acme.v2; message Thing { string Bad = 1; }`),
		src("c.proto", `syntax = "proto3"; package acme.v3; message X {} message X {}`),
		src("d.proto", `syntax = "proto3"; message`),
	}

	ignoreRunID := cmpopts.IgnoreFields(report.Result{}, "RunID")

	baseline := check(t, newChecker(t, WithWorkers(1)), sources...)
	require.NotEmpty(t, baseline.Diagnostics)

	for _, workers := range []int{2, 4, 16} {
		got := check(t, newChecker(t, WithWorkers(workers)), sources...)
		if diff := cmp.Diff(baseline, got, ignoreRunID); diff != "" {
			t.Errorf("workers=%d result mismatch (-want +got):\n%s", workers, diff)
		}
	}

	reversed := []Source{sources[3], sources[2], sources[1], sources[0]}
	got := check(t, newChecker(t, WithWorkers(3)), reversed...)
	if diff := cmp.Diff(baseline.Diagnostics, got.Diagnostics); diff != "" {
		t.Errorf("input order changed diagnostics (-want +got):\n%s", diff)
	}

	again := check(t, newChecker(t, WithWorkers(1)), sources...)
	assert.NotEqual(t, baseline.RunID, again.RunID)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		source  string
		outcome report.Outcome
		kinds   []diag.Kind
	}{
		{
			name: "warnings by default",
			source: `syntax = "proto3";
// Thing.
message Thing {
  // When it was created.
  int64 created_at = 1;
}`,
			outcome: report.OutcomeWarnings,
			kinds:   []diag.Kind{diag.KindTypeMapping},
		},
		{
			name:    "fail on warnings",
			opts:    []Option{WithFailOnWarnings(true)},
			source:  `syntax = "proto3"; message thing {}`,
			outcome: report.OutcomeFailed,
		},
		{
			name:    "rule set limits rules",
			opts:    []Option{WithRuleSet("naming")},
			source:  `syntax = "proto3"; message thing { int32 Count = 1; }`,
			outcome: report.OutcomeWarnings,
			kinds:   []diag.Kind{diag.KindNamingConvention, diag.KindNamingConvention},
		},
		{
			name: "lenient documentation accepts trailing comments",
			opts: []Option{WithRuleSet("documentation")},
			source: `syntax = "proto3";
// Thing.
message Thing {
  string name = 1; // Display name.
  // Free-form labels.
  repeated string tags = 2;
}`,
			outcome: report.OutcomeClean,
		},
		{
			name: "strict documentation",
			opts: []Option{WithRuleSet("documentation"), WithDocStrictness(linter.StrictnessStrict)},
			source: `syntax = "proto3";
// Thing.
message Thing {
  string name = 1; // Display name.
  // Free-form labels.
  repeated string tags = 2;
}`,
			outcome: report.OutcomeWarnings,
			kinds:   []diag.Kind{diag.KindMissingDocumentation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := check(t, newChecker(t, tt.opts...), src("t.proto", tt.source))
			assert.Equal(t, tt.outcome, result.Outcome)
			if tt.kinds != nil {
				var kinds []diag.Kind
				for _, d := range result.Diagnostics {
					kinds = append(kinds, d.Kind)
				}
				assert.Equal(t, tt.kinds, kinds)
			}
		})
	}
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(nil, WithRuleSet("no-such-set"))
	assert.ErrorIs(t, err, linter.ErrUnknownRule)

	_, err = New(nil, WithDocStrictness("pedantic"))
	assert.ErrorIs(t, err, linter.ErrUnknownStrictness)
}

func TestNewDoesNotModifyConfig(t *testing.T) {
	cfg := linter.DefaultConfig()
	_, err := New(cfg, WithFailOnWarnings(true), WithRuleSet("naming"))
	require.NoError(t, err)

	assert.False(t, cfg.FailOnWarnings)
	assert.Empty(t, cfg.Lint.Use)
}

func TestNoSources(t *testing.T) {
	c := newChecker(t)

	_, err := c.Check(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
	_, err = c.CheckFiles(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
	_, err = c.CheckSchemas(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestDeadline(t *testing.T) {
	c := newChecker(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := c.Check(ctx, []Source{src("a.proto", mixedProto)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f, perr := protobuf.Parse("a.proto", []byte(mixedProto))
	require.NoError(t, perr)
	_, err = c.CheckSchemas(ctx, []*schema.File{f})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thing.proto")
	require.NoError(t, os.WriteFile(path, []byte(`syntax = "proto3"; message thing {}`), 0644))

	c := newChecker(t, WithRuleSet("naming"))
	result, err := c.CheckFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, path, result.Diagnostics[0].File)

	_, err = c.CheckFiles(context.Background(), []string{filepath.Join(dir, "missing.proto")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCacheAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	parseCache := cache.NewParseCache(&cache.Config{MaxEntries: 8})

	c := newChecker(t, WithCache(parseCache), WithMetrics(metrics), WithRuleSet("naming"))
	source := src("thing.proto", `syntax = "proto3"; message thing {}`)

	first := check(t, c, source)
	second := check(t, c, source)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)

	stats := parseCache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("warnings")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DiagnosticsTotal.WithLabelValues("NamingConvention", "warning")))
}

func TestIgnoredFilesAreSkipped(t *testing.T) {
	result := check(t, newChecker(t),
		src("vendor/x/thing.proto", `syntax = "proto3"; message thing {}`),
	)

	assert.Empty(t, result.Diagnostics)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Skipped)
	assert.Equal(t, report.OutcomeClean, result.Outcome)
}
