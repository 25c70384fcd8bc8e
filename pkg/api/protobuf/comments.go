package protobuf

import (
	"errors"
	"strings"

	"github.com/bufbuild/protocompile/ast"
)

// DirectivePrefix starts an inline checker directive inside a comment
const DirectivePrefix = "@protocheck:"

// Directive is a parsed `// @protocheck:option:value` comment
type Directive struct {
	Option string
	Value  string
}

// IsDirective checks if comment text is a checker directive
func IsDirective(text string) bool {
	return strings.HasPrefix(text, DirectivePrefix)
}

// ExtractDirective parses comment text of the form @protocheck:option:value
func ExtractDirective(text string) (*Directive, error) {
	if !IsDirective(text) {
		return nil, errors.New("not a protocheck directive")
	}

	parts := strings.SplitN(strings.TrimPrefix(text, DirectivePrefix), ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("invalid protocheck directive format, expected @protocheck:option:value")
	}

	return &Directive{
		Option: strings.TrimSpace(parts[0]),
		Value:  strings.TrimSpace(parts[1]),
	}, nil
}

// comments returns the leading doc text, the trailing comment text and
// any suppressions declared in the leading comments of a node. A
// directive that cannot be read is recorded as malformed and dropped.
func (b *builder) comments(n ast.Node) (doc, trailing string, suppress []string) {
	info := b.node.NodeInfo(n)

	var docLines []string
	leading := info.LeadingComments()
	for i := 0; i < leading.Len(); i++ {
		for _, line := range commentLines(leading.Index(i).RawText()) {
			if !IsDirective(line) {
				docLines = append(docLines, line)
				continue
			}
			d, err := ExtractDirective(line)
			if err == nil && d.Option != "ignore" {
				err = errors.New("unknown protocheck directive " + d.Option)
			}
			if err != nil {
				b.malformed(n, err.Error())
				continue
			}
			for _, name := range strings.Split(d.Value, ",") {
				if name = strings.TrimSpace(name); name != "" {
					suppress = append(suppress, name)
				}
			}
		}
	}

	var trailingLines []string
	trail := info.TrailingComments()
	for i := 0; i < trail.Len(); i++ {
		trailingLines = append(trailingLines, commentLines(trail.Index(i).RawText())...)
	}

	return strings.TrimSpace(strings.Join(docLines, "\n")),
		strings.TrimSpace(strings.Join(trailingLines, "\n")),
		suppress
}

// commentLines strips comment markers from raw comment text
func commentLines(raw string) []string {
	if strings.HasPrefix(raw, "//") {
		return []string{strings.TrimSpace(strings.TrimPrefix(raw, "//"))}
	}

	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		out = append(out, line)
	}
	return out
}
