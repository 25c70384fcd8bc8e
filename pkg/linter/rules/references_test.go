package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

func TestReferenceRule(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		paths    []string
		severity diag.Severity
	}{
		{
			name: "undefined type",
			source: `syntax = "proto3";
message M {
  Missing x = 1;
}`,
			paths:    []string{"M.x"},
			severity: diag.SeverityError,
		},
		{
			name: "undefined type with unprovided import",
			source: `syntax = "proto3";
import "acme/common.proto";
message M {
  acme.common.Money price = 1;
}`,
			paths:    []string{"M.price"},
			severity: diag.SeverityWarning,
		},
		{
			name: "well-known type",
			source: `syntax = "proto3";
import "google/protobuf/timestamp.proto";
message M {
  google.protobuf.Timestamp ts = 1;
}`,
		},
		{
			name: "undefined rpc input",
			source: `syntax = "proto3";
message Reply {}
service Svc {
  rpc Do(Request) returns (Reply);
}`,
			paths:    []string{"Svc.Do"},
			severity: diag.SeverityError,
		},
	}

	rule := NewReferenceRule()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := rule.Check(lintContext(t, tt.source, nil))
			if len(tt.paths) == 0 {
				assert.Empty(t, diagnostics)
				return
			}
			require.Len(t, diagnostics, len(tt.paths))
			assert.Equal(t, tt.paths, paths(diagnostics))
			for _, d := range diagnostics {
				assert.Equal(t, diag.KindUnresolvedReference, d.Kind)
				assert.Equal(t, tt.severity, d.Severity)
			}
		})
	}
}

func TestUnusedImportRule(t *testing.T) {
	tests := []struct {
		name   string
		source string
		unused []string
	}{
		{
			name: "well-known import in use",
			source: `syntax = "proto3";
import "google/protobuf/timestamp.proto";
message M {
  google.protobuf.Timestamp ts = 1;
}`,
		},
		{
			name: "well-known import used by an rpc",
			source: `syntax = "proto3";
import "google/protobuf/empty.proto";
service Svc {
  rpc Ping(google.protobuf.Empty) returns (google.protobuf.Empty);
}`,
		},
		{
			name: "well-known import not used",
			source: `syntax = "proto3";
import "google/protobuf/timestamp.proto";
import "google/protobuf/duration.proto";
message M {
  google.protobuf.Duration ttl = 1;
}`,
			unused: []string{"google/protobuf/timestamp.proto"},
		},
		{
			name: "protovalidate import used by an annotation",
			source: `syntax = "proto3";
import "buf/validate/validate.proto";
message M {
  string id = 1 [(buf.validate.field).string.min_len = 1];
}`,
		},
		{
			name: "protovalidate import without annotations",
			source: `syntax = "proto3";
import "buf/validate/validate.proto";
message M {
  string id = 1;
}`,
			unused: []string{"buf/validate/validate.proto"},
		},
		{
			name: "pgv import used by an annotation",
			source: `syntax = "proto3";
import "validate/validate.proto";
message M {
  string id = 1 [(validate.rules).string.min_len = 1];
}`,
		},
		{
			name: "imports outside the checked files are not judged",
			source: `syntax = "proto3";
import "acme/common.proto";
import "google/protobuf/descriptor.proto";
message M {
  string id = 1;
}`,
		},
		{
			name: "public imports are re-exports",
			source: `syntax = "proto3";
import public "google/protobuf/timestamp.proto";
message M {
  string id = 1;
}`,
		},
	}

	rule := NewUnusedImportRule()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := rule.Check(lintContext(t, tt.source, nil))
			require.Len(t, diagnostics, len(tt.unused))
			for i, d := range diagnostics {
				assert.Equal(t, diag.KindUnusedImport, d.Kind)
				assert.Equal(t, diag.SeverityWarning, d.Severity)
				assert.Contains(t, d.Message, tt.unused[i])
				require.NotNil(t, d.SuggestedFix)
				assert.Equal(t, `import "`+tt.unused[i]+`";`, d.SuggestedFix.OldText)
			}
		})
	}
}

func TestDefaultRulesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range DefaultRules() {
		require.False(t, seen[rule.Name()], "duplicate rule %s", rule.Name())
		seen[rule.Name()] = true
		assert.NotEmpty(t, rule.Description())
	}
	assert.Len(t, seen, 13)
}
