package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/report"
)

const cleanProto = `syntax = "proto3";

package acme.v1;

// Widget is a thing.
message Widget {
  // Display name of the widget.
  string name = 1;
}
`

const warningProto = `syntax = "proto3";

package acme.v1;

message Widget {}
`

const errorProto = `syntax = "proto3";

package acme.v1;

// Gadget holds a widget.
message Gadget {
  // The widget.
  Missing widget = 1;
}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		args    []string
		wantErr error
		outcome string
	}{
		{
			name:    "clean",
			files:   map[string]string{"widget.proto": cleanProto},
			outcome: "Outcome: clean",
		},
		{
			name:    "warnings pass",
			files:   map[string]string{"widget.proto": warningProto},
			outcome: "Outcome: warnings",
		},
		{
			name:    "warnings fail when asked",
			files:   map[string]string{"widget.proto": warningProto},
			args:    []string{"--fail-on-warnings"},
			wantErr: ErrCheckFailed,
			outcome: "Outcome: failed",
		},
		{
			name:    "errors fail",
			files:   map[string]string{"widget.proto": cleanProto, "gadget.proto": errorProto},
			wantErr: ErrCheckFailed,
			outcome: "Outcome: failed",
		},
		{
			name:    "rule sets narrow the run",
			files:   map[string]string{"widget.proto": warningProto},
			args:    []string{"--rules", "references"},
			outcome: "Outcome: clean",
		},
		{
			name: "project config disables rules",
			files: map[string]string{
				"widget.proto": warningProto,
				"protocheck.yaml": `lint:
  rules:
    documentation: false
`,
			},
			outcome: "Outcome: clean",
		},
		{
			name:    "vendor directories are not checked",
			files:   map[string]string{"widget.proto": cleanProto, "vendor/x/bad.proto": errorProto},
			outcome: "Outcome: clean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)

			out, err := execute(t, append([]string{"check", dir}, tt.args...)...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.outcome)
		})
	}
}

func TestCheckCommandJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"widget.proto": warningProto})

	out, err := execute(t, "check", dir, "--format", "json")
	require.NoError(t, err)

	var result report.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, report.OutcomeWarnings, result.Outcome)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, filepath.Join(dir, "widget.proto"), result.Diagnostics[0].File)
}

func TestCheckCommandErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"widget.proto": cleanProto})

	_, err := execute(t, "check", dir, "--format", "xml")
	assert.ErrorIs(t, err, report.ErrUnknownFormat)

	_, err = execute(t, "check", dir, "--rules", "bogus")
	assert.ErrorIs(t, err, linter.ErrUnknownRule)

	_, err = execute(t, "check", dir, "--strictness", "pedantic")
	assert.ErrorIs(t, err, linter.ErrUnknownStrictness)

	_, err = execute(t, "check", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "check", dir, "--log-level", "chatty")
	assert.Error(t, err)
}

func TestCheckCommandNoFiles(t *testing.T) {
	out, err := execute(t, "check", t.TempDir())
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, out, "Available rules (13)")
	for _, name := range []string{"message-naming", "documentation", "type-mapping", "validation-placement", "references"} {
		assert.Contains(t, out, name)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "protocheck.yaml")

	cfg, err := linter.LoadConfig(filepath.Join(dir, "protocheck.yaml"))
	require.NoError(t, err)
	assert.Equal(t, linter.DefaultConfig().Lint.Ignore, cfg.Lint.Ignore)

	_, err = execute(t, "init", dir)
	assert.Error(t, err, "refuses to overwrite")

	_, err = execute(t, "init", dir, "--force")
	assert.NoError(t, err)

	_, err = execute(t, "init", dir, "--toml")
	require.NoError(t, err)
	_, err = linter.LoadConfig(filepath.Join(dir, "protocheck.toml"))
	assert.NoError(t, err)
}

func TestFindProtoFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.proto":               "",
		"nested/b.proto":        "",
		"nested/readme.md":      "",
		".git/c.proto":          "",
		"vendor/d.proto":        "",
		"third_party/e.proto":   "",
		"nested/deeper/f.proto": "",
	})

	files, err := findProtoFiles([]string{dir, filepath.Join(dir, "a.proto")})
	require.NoError(t, err)

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a.proto", "nested/b.proto", "nested/deeper/f.proto"}, rel)
}

func TestConfigDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.proto": ""})

	assert.Equal(t, ".", configDir(nil))
	assert.Equal(t, dir, configDir([]string{dir}))
	assert.Equal(t, dir, configDir([]string{filepath.Join(dir, "a.proto")}))
}
