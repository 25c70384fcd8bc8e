package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

var (
	authKeywords  = regexp.MustCompile(`(?i)\b(auth\w*|permissions?|tokens?|api[ _-]?keys?|credentials?|public|anonymous|unauthenticated|scopes?|roles?)\b`)
	errorKeywords = regexp.MustCompile(`(?i)\b(errors?|fails?|failures?|not[ _]found|invalid[ _]argument|invalid|already[ _]exists|permission[ _]denied|denied|unavailable|unauthenticated|status codes?)\b`)

	strictAuthLine  = regexp.MustCompile(`(?im)^\s*(authentication|auth)\s*:`)
	strictErrorLine = regexp.MustCompile(`(?im)^\s*errors?\s*:`)
)

// DocumentationRule requires doc comments on messages, fields and RPCs,
// and checks that RPC docs describe behavior, authentication and errors.
// Strict mode also requires docs on enums and services and ignores
// trailing field comments.
type DocumentationRule struct {
	BaseRule
}

// NewDocumentationRule creates a new documentation rule
func NewDocumentationRule() *DocumentationRule {
	return &DocumentationRule{
		BaseRule: BaseRule{
			RuleName:        "documentation",
			RuleKind:        diag.KindMissingDocumentation,
			RuleCategory:    linter.CategoryDocumentation,
			RuleSeverity:    diag.SeverityWarning,
			RuleDescription: "Messages, fields and RPCs must be documented",
		},
	}
}

// Check validates documentation coverage
func (r *DocumentationRule) Check(ctx *linter.LintContext) []diag.Diagnostic {
	diagnostics := make([]diag.Diagnostic, 0)
	strict := ctx.Config != nil && ctx.Config.Strict()

	ctx.File.WalkMessages(func(path string, msg *schema.Message) {
		if msg.Doc == "" {
			diagnostics = append(diagnostics, r.diagnostic(ctx, path, msg.Pos, msg.Order,
				fmt.Sprintf("Message '%s' is missing a doc comment", msg.Name)))
		}
		for _, field := range msg.Fields {
			if field.Doc != "" || (!strict && field.TrailingDoc != "") {
				continue
			}
			diagnostics = append(diagnostics, r.diagnostic(ctx, joinPath(path, field.Name), field.Pos, field.Order,
				fmt.Sprintf("Field '%s' is missing a doc comment", field.Name)))
		}
	})

	if strict {
		ctx.File.WalkEnums(func(path string, enum *schema.Enum) {
			if enum.Doc == "" {
				diagnostics = append(diagnostics, r.diagnostic(ctx, path, enum.Pos, enum.Order,
					fmt.Sprintf("Enum '%s' is missing a doc comment", enum.Name)))
			}
		})
	}

	for _, svc := range ctx.File.Services {
		if strict && svc.Doc == "" {
			diagnostics = append(diagnostics, r.diagnostic(ctx, svc.Name, svc.Pos, svc.Order,
				fmt.Sprintf("Service '%s' is missing a doc comment", svc.Name)))
		}
		for _, rpc := range svc.RPCs {
			path := joinPath(svc.Name, rpc.Name)
			if rpc.Doc == "" {
				diagnostics = append(diagnostics, r.diagnostic(ctx, path, rpc.Pos, rpc.Order,
					fmt.Sprintf("RPC '%s' is missing a doc comment", rpc.Name)))
				continue
			}
			if gaps := rpcDocGaps(rpc.Doc, strict); len(gaps) > 0 {
				diagnostics = append(diagnostics, r.diagnostic(ctx, path, rpc.Pos, rpc.Order,
					fmt.Sprintf("RPC '%s' documentation does not describe %s", rpc.Name, strings.Join(gaps, " or "))))
			}
		}
	}

	return diagnostics
}

// rpcDocGaps lists what an RPC doc comment fails to mention. Lenient mode
// looks for keywords anywhere; strict mode wants labelled sections such
// as "Authentication:" and "Errors:" and a behavior sentence of at least
// four words.
func rpcDocGaps(doc string, strict bool) []string {
	var gaps []string

	minWords := 3
	if strict {
		minWords = 4
	}
	if len(strings.Fields(firstSentence(doc))) < minWords {
		gaps = append(gaps, "its behavior")
	}

	if strict {
		if !strictAuthLine.MatchString(doc) {
			gaps = append(gaps, "authentication")
		}
		if !strictErrorLine.MatchString(doc) {
			gaps = append(gaps, "error conditions")
		}
		return gaps
	}

	if !authKeywords.MatchString(doc) {
		gaps = append(gaps, "authentication")
	}
	if !errorKeywords.MatchString(doc) {
		gaps = append(gaps, "error conditions")
	}
	return gaps
}

func firstSentence(doc string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(doc), "\n")
	if i := strings.Index(line, ". "); i >= 0 {
		return line[:i]
	}
	return line
}
