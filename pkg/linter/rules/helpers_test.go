package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/api/protobuf"
	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/presence"
	"github.com/platinummonkey/protocheck/pkg/schema"
	"github.com/platinummonkey/protocheck/pkg/validation"
)

// lintContext parses source and prepares the context the engine would
// hand to each rule
func lintContext(t *testing.T, source string, config *linter.Config) *linter.LintContext {
	t.Helper()

	f, err := protobuf.Parse("test.proto", []byte(source))
	require.NoError(t, err)

	set := schema.Build([]*schema.File{f})
	require.False(t, set.Failed(f.Path), "test schema has structural errors: %v", set.StructuralErrors(f.Path))

	if config == nil {
		config = linter.DefaultConfig()
	}
	classes := presence.NewClassifier(set).ClassifyFile(f)
	return &linter.LintContext{
		File:       f,
		Set:        set,
		Config:     config,
		Presence:   classes,
		Validation: validation.InterpretFile(f, classes),
	}
}

func kinds(diagnostics []diag.Diagnostic) []diag.Kind {
	out := make([]diag.Kind, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, d.Kind)
	}
	return out
}

func paths(diagnostics []diag.Diagnostic) []string {
	out := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, d.Path)
	}
	return out
}
