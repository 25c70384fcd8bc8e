package diag

import (
	"fmt"
	"strings"
)

// Severity indicates how serious a diagnostic is
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name into a Severity
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", name)
	}
}

// Kind classifies what a diagnostic is about
type Kind string

const (
	KindNamingConvention          Kind = "NamingConvention"
	KindMissingDocumentation      Kind = "MissingDocumentation"
	KindInvalidPresenceOnRepeated Kind = "InvalidPresenceOnRepeated"
	KindSuspiciousOptionalUsage   Kind = "SuspiciousOptionalUsage"
	KindTypeMapping               Kind = "TypeMapping"
	KindAmbiguousZeroValidation   Kind = "AmbiguousZeroValidation"
	KindUnreachableValidation     Kind = "UnreachableValidation"
	KindContradictoryValidation   Kind = "ContradictoryValidation"
	KindUnresolvedReference       Kind = "UnresolvedReference"
	KindUnusedImport              Kind = "UnusedImport"
	KindMalformedAnnotation       Kind = "MalformedAnnotation"
	KindStructuralError           Kind = "StructuralError"
	KindParseError                Kind = "ParseError"
)

// Kinds lists every diagnostic kind in a stable order
func Kinds() []Kind {
	return []Kind{
		KindNamingConvention,
		KindMissingDocumentation,
		KindInvalidPresenceOnRepeated,
		KindSuspiciousOptionalUsage,
		KindTypeMapping,
		KindAmbiguousZeroValidation,
		KindUnreachableValidation,
		KindContradictoryValidation,
		KindUnresolvedReference,
		KindUnusedImport,
		KindMalformedAnnotation,
		KindStructuralError,
		KindParseError,
	}
}

// Position is a 1-based line and column in a source file.
// The zero value means the position is unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the position points into a file
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Fix is a suggested replacement for the offending text
type Fix struct {
	Description string `json:"description"`
	OldText     string `json:"old_text"`
	NewText     string `json:"new_text"`
}

// Diagnostic is a single finding about a schema element
type Diagnostic struct {
	File     string   `json:"file"`
	Path     string   `json:"path,omitempty"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Position Position `json:"position"`
	// Order is the declaration index of the element within its file.
	Order        int  `json:"-"`
	SuggestedFix *Fix `json:"suggested_fix,omitempty"`
}

// String renders the diagnostic in file:line:col form
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s [%s/%s] %s", d.File, d.Position, d.Severity, d.Kind, d.Rule, d.Message)
}
