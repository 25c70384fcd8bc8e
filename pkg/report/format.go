package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/platinummonkey/protocheck/pkg/diag"
)

// ErrUnknownFormat is returned for an output format other than text,
// json or github
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a Result is rendered
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// Formats lists the supported output formats
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatGitHub}
}

// ParseFormat converts a format name into a Format
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatJSON, FormatGitHub:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
}

// WriteOptions tunes rendering
type WriteOptions struct {
	// Verbose adds suggested fixes to text output
	Verbose bool
}

// Write renders result to w in the given format
func Write(w io.Writer, result *Result, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatGitHub:
		return writeGitHub(w, result)
	case FormatText, "":
		return writeText(w, result, opts)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, result *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *Result, opts WriteOptions) error {
	for _, d := range result.Diagnostics {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
		if opts.Verbose && d.SuggestedFix != nil {
			fmt.Fprintf(w, "    fix: %s (%s -> %s)\n", d.SuggestedFix.Description, d.SuggestedFix.OldText, d.SuggestedFix.NewText)
		}
	}
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}

	table := tablewriter.NewWriter(w)
	table.Header("File", "Outcome", "Errors", "Warnings", "Infos")
	for _, fr := range result.Files {
		outcome := string(fr.Outcome)
		if fr.Skipped {
			outcome = "skipped"
		}
		if err := table.Append([]string{
			fr.Path,
			outcome,
			strconv.Itoa(fr.Errors),
			strconv.Itoa(fr.Warnings),
			strconv.Itoa(fr.Infos),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nOutcome: %s (%d errors, %d warnings, %d infos, %d suppressed)\n",
		result.Outcome, result.Errors, result.Warnings, result.Infos, result.Suppressed)
	return err
}

// writeGitHub emits workflow commands:
// ::error file={name},line={line},col={col},title={rule}::{message}
func writeGitHub(w io.Writer, result *Result) error {
	for _, d := range result.Diagnostics {
		level := "error"
		switch d.Severity {
		case diag.SeverityWarning:
			level = "warning"
		case diag.SeverityInfo:
			level = "notice"
		}

		props := []string{"file=" + escapeProperty(d.File)}
		if d.Position.IsValid() {
			props = append(props,
				"line="+strconv.Itoa(d.Position.Line),
				"col="+strconv.Itoa(d.Position.Column))
		}
		props = append(props, "title="+escapeProperty(string(d.Kind)))

		if _, err := fmt.Fprintf(w, "::%s %s::[%s] %s\n", level, strings.Join(props, ","), d.Rule, escapeData(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }
