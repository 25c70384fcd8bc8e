package protobuf

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/bufbuild/protocompile/ast"
	"github.com/bufbuild/protocompile/parser"
	"github.com/bufbuild/protocompile/reporter"

	"github.com/platinummonkey/protocheck/pkg/diag"
	"github.com/platinummonkey/protocheck/pkg/schema"
)

// ParseError is returned when a file is not syntactically valid
type ParseError struct {
	File string
	Pos  diag.Position
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads and parses a proto file from disk
func ParseFile(path string) (*schema.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, content)
}

// Parse parses proto source into a schema file. Only syntax is checked
// here; names are resolved later by schema.Build. Directives and
// validation options that cannot be understood are recorded in
// File.Malformed rather than failing the parse.
func Parse(path string, content []byte) (*schema.File, error) {
	handler := reporter.NewHandler(nil)
	node, err := parser.Parse(path, bytes.NewReader(content), handler)
	if err != nil {
		return nil, newParseError(path, err)
	}

	b := &builder{path: path, node: node}
	file := b.build()
	file.AssignOrder()
	return file, nil
}

func newParseError(path string, err error) *ParseError {
	perr := &ParseError{File: path, Msg: err.Error(), Err: err}
	var withPos reporter.ErrorWithPos
	if errors.As(err, &withPos) {
		pos := withPos.GetPosition()
		perr.Pos = diag.Position{Line: pos.Line, Column: pos.Col}
		if inner := withPos.Unwrap(); inner != nil {
			perr.Msg = inner.Error()
		}
	}
	return perr
}

// builder converts a protocompile AST into the schema model
type builder struct {
	path string
	node *ast.FileNode
	file *schema.File
	// presence applied to singular fields with no label, from syntax
	// defaults and file-level features
	defaultPresence schema.PresenceModifier
}

func (b *builder) build() *schema.File {
	b.file = &schema.File{Path: b.path}

	switch {
	case b.node.Edition != nil:
		b.file.Syntax = schema.SyntaxEditions
		b.file.Edition = b.node.Edition.Edition.AsString()
		b.defaultPresence = schema.PresenceOptional
	case b.node.Syntax != nil && b.node.Syntax.Syntax.AsString() == "proto3":
		b.file.Syntax = schema.SyntaxProto3
	default:
		b.file.Syntax = schema.SyntaxProto2
	}

	// File options may appear after declarations, so features are read first
	for _, decl := range b.node.Decls {
		if opt, ok := decl.(*ast.OptionNode); ok {
			if p, ok := featurePresence(opt); ok {
				b.defaultPresence = p
			}
		}
	}

	for _, decl := range b.node.Decls {
		switch d := decl.(type) {
		case *ast.PackageNode:
			b.file.Package = string(d.Name.AsIdentifier())
			b.file.PackagePos = b.pos(d)
		case *ast.ImportNode:
			b.file.Imports = append(b.file.Imports, d.Name.AsString())
			if d.Public != nil {
				b.file.PublicImports = append(b.file.PublicImports, d.Name.AsString())
			}
		case *ast.MessageNode:
			b.file.Messages = append(b.file.Messages, b.message(b.file.Package, d, d.Name.Val, &d.MessageBody, b.defaultPresence))
		case *ast.EnumNode:
			b.file.Enums = append(b.file.Enums, b.enum(b.file.Package, d))
		case *ast.ServiceNode:
			b.file.Services = append(b.file.Services, b.service(d))
		}
	}

	return b.file
}

// malformed records an annotation that could not be understood; the
// declaration carrying it is still modeled
func (b *builder) malformed(n ast.Node, reason string) {
	b.file.Malformed = append(b.file.Malformed, schema.Malformed{Pos: b.pos(n), Reason: reason})
}

func (b *builder) message(scope string, n ast.Node, name string, body *ast.MessageBody, presence schema.PresenceModifier) *schema.Message {
	msg := &schema.Message{
		Name:     name,
		FullName: join(scope, name),
		Pos:      b.pos(n),
	}
	msg.Doc, _, msg.Suppress = b.comments(n)

	for _, decl := range body.Decls {
		if opt, ok := decl.(*ast.OptionNode); ok {
			if p, ok := featurePresence(opt); ok {
				presence = p
			}
		}
	}

	for _, decl := range body.Decls {
		switch d := decl.(type) {
		case *ast.FieldNode:
			msg.Fields = append(msg.Fields, b.field(d, "", presence))
		case *ast.MapFieldNode:
			msg.Fields = append(msg.Fields, b.mapField(d))
		case *ast.GroupNode:
			field, nested := b.group(msg.FullName, d, "", presence)
			msg.Fields = append(msg.Fields, field)
			msg.Messages = append(msg.Messages, nested)
		case *ast.OneofNode:
			for _, el := range d.Decls {
				switch o := el.(type) {
				case *ast.FieldNode:
					msg.Fields = append(msg.Fields, b.field(o, d.Name.Val, presence))
				case *ast.GroupNode:
					field, nested := b.group(msg.FullName, o, d.Name.Val, presence)
					msg.Fields = append(msg.Fields, field)
					msg.Messages = append(msg.Messages, nested)
				}
			}
		case *ast.MessageNode:
			msg.Messages = append(msg.Messages, b.message(msg.FullName, d, d.Name.Val, &d.MessageBody, presence))
		case *ast.EnumNode:
			msg.Enums = append(msg.Enums, b.enum(msg.FullName, d))
		case *ast.ReservedNode:
			reserved(&msg.Reserved, d, 1, schema.MaxFieldNumber)
		}
	}

	return msg
}

func (b *builder) field(n *ast.FieldNode, oneof string, presence schema.PresenceModifier) *schema.Field {
	field := &schema.Field{
		Name:  n.Name.Val,
		Type:  b.typeRef(n.FldType),
		Oneof: oneof,
		Pos:   b.pos(n),
	}
	if n.Tag != nil {
		field.Number = int32(n.Tag.Val)
	}

	switch {
	case n.Label.Repeated:
		field.Cardinality = schema.CardinalityRepeated
	case n.Label.Required:
		field.Required = true
	case n.Label.KeywordNode != nil && n.Label.Val == "optional":
		field.Presence = schema.PresenceOptional
		// proto2 has no other way to write a singular field
		field.ImpliedPresence = b.file.Syntax == schema.SyntaxProto2
	case oneof == "":
		field.Presence = presence
		field.ImpliedPresence = presence == schema.PresenceOptional
	}

	b.fieldOptions(field, n.Options)
	field.Doc, field.TrailingDoc, field.Suppress = b.comments(n)
	return field
}

func (b *builder) mapField(n *ast.MapFieldNode) *schema.Field {
	key := schema.Scalar(n.MapType.KeyType.Val)
	key.Pos = b.pos(n.MapType.KeyType)
	field := &schema.Field{
		Name:        n.Name.Val,
		Type:        b.typeRef(n.MapType.ValueType),
		MapKey:      &key,
		Cardinality: schema.CardinalityMap,
		Pos:         b.pos(n),
	}
	if n.Tag != nil {
		field.Number = int32(n.Tag.Val)
	}
	b.fieldOptions(field, n.Options)
	field.Doc, field.TrailingDoc, field.Suppress = b.comments(n)
	return field
}

// group turns a proto2 group into a field plus the nested message it declares
func (b *builder) group(scope string, n *ast.GroupNode, oneof string, presence schema.PresenceModifier) (*schema.Field, *schema.Message) {
	nested := b.message(scope, n, n.Name.Val, &n.MessageBody, presence)
	// the group's comment documents the message; the field shares it
	field := &schema.Field{
		Name:     strings.ToLower(n.Name.Val),
		Type:     schema.Named(n.Name.Val),
		Oneof:    oneof,
		Doc:      nested.Doc,
		Suppress: nested.Suppress,
		Pos:      b.pos(n),
	}
	field.Type.Pos = field.Pos
	if n.Tag != nil {
		field.Number = int32(n.Tag.Val)
	}
	switch {
	case n.Label.Repeated:
		field.Cardinality = schema.CardinalityRepeated
	case n.Label.Required:
		field.Required = true
	case oneof == "":
		field.Presence = schema.PresenceOptional
		field.ImpliedPresence = true
	}
	b.fieldOptions(field, n.Options)
	return field, nested
}

func (b *builder) enum(scope string, n *ast.EnumNode) *schema.Enum {
	enum := &schema.Enum{
		Name:     n.Name.Val,
		FullName: join(scope, n.Name.Val),
		Pos:      b.pos(n),
	}
	enum.Doc, _, enum.Suppress = b.comments(n)

	for _, decl := range n.Decls {
		if r, ok := decl.(*ast.ReservedNode); ok {
			reserved(&enum.Reserved, r, math.MinInt32, math.MaxInt32)
			continue
		}
		v, ok := decl.(*ast.EnumValueNode)
		if !ok {
			continue
		}
		value := &schema.EnumValue{
			Name: v.Name.Val,
			Pos:  b.pos(v),
		}
		if num, ok := v.Number.AsInt64(); ok {
			value.Number = int32(num)
		}
		value.Doc, _, value.Suppress = b.comments(v)
		enum.Values = append(enum.Values, value)
	}
	return enum
}

func (b *builder) service(n *ast.ServiceNode) *schema.Service {
	svc := &schema.Service{
		Name:     n.Name.Val,
		FullName: join(b.file.Package, n.Name.Val),
		Pos:      b.pos(n),
	}
	svc.Doc, _, svc.Suppress = b.comments(n)

	for _, decl := range n.Decls {
		r, ok := decl.(*ast.RPCNode)
		if !ok {
			continue
		}
		rpc := &schema.RPC{
			Name:            r.Name.Val,
			Request:         b.typeRef(r.Input.MessageType),
			Response:        b.typeRef(r.Output.MessageType),
			ClientStreaming: r.Input.Stream != nil,
			ServerStreaming: r.Output.Stream != nil,
			Pos:             b.pos(r),
		}
		rpc.Doc, _, rpc.Suppress = b.comments(r)
		svc.RPCs = append(svc.RPCs, rpc)
	}
	return svc
}

// reserved records a `reserved` statement; editions spell names as
// identifiers instead of strings
func reserved(into *schema.Reserved, n *ast.ReservedNode, lo, hi int32) {
	for _, r := range n.Ranges {
		start, ok := r.StartValueAsInt32(lo, hi)
		if !ok {
			continue
		}
		end, ok := r.EndValueAsInt32(lo, hi)
		if !ok {
			continue
		}
		into.Ranges = append(into.Ranges, schema.ReservedRange{Start: start, End: end})
	}
	for _, name := range n.Names {
		into.Names = append(into.Names, name.AsString())
	}
	for _, ident := range n.Identifiers {
		into.Names = append(into.Names, ident.Val)
	}
}

func (b *builder) typeRef(n ast.IdentValueNode) schema.TypeRef {
	ref := schema.Scalar(string(n.AsIdentifier()))
	if !ref.IsScalar() {
		ref.Pos = b.pos(n)
	}
	return ref
}

func (b *builder) pos(n ast.Node) diag.Position {
	start := b.node.NodeInfo(n).Start()
	return diag.Position{Line: start.Line, Column: start.Col}
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}
