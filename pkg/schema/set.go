package schema

import (
	"fmt"
	"slices"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	// Register the well-known types so references to them resolve.
	_ "google.golang.org/protobuf/types/known/anypb"
	_ "google.golang.org/protobuf/types/known/apipb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/fieldmaskpb"
	_ "google.golang.org/protobuf/types/known/sourcecontextpb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
	_ "google.golang.org/protobuf/types/known/typepb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// MaxFieldNumber is the largest field number the wire format allows
	MaxFieldNumber = 536870911

	// field numbers set aside for the protobuf implementation
	firstImplReserved = 19000
	lastImplReserved  = 19999
)

// DeclKind is the kind of a named declaration
type DeclKind int

const (
	DeclMessage DeclKind = iota
	DeclEnum
	DeclService
)

func (k DeclKind) String() string {
	switch k {
	case DeclMessage:
		return "message"
	case DeclEnum:
		return "enum"
	case DeclService:
		return "service"
	default:
		return "unknown"
	}
}

// Decl is an entry in the set-wide name index
type Decl struct {
	FullName string
	Kind     DeclKind
	File     *File // nil for well-known types
	Message  *Message
	Enum     *Enum
	Service  *Service
}

// StructuralError is a construct that cannot be modeled, such as a
// duplicate declaration. It is fatal for the file it belongs to.
type StructuralError struct {
	File   string
	Path   string
	Pos    Position
	Order  int
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Reason)
}

// UnresolvedRef is a type reference that names nothing in the set
type UnresolvedRef struct {
	File  string
	Path  string // declaration holding the reference
	Name  string
	Pos   Position
	Order int
	// External is true when the file imports files that were not
	// provided, so the name may be declared there.
	External bool
}

// Set is an immutable, cross-referenced view over a group of files
type Set struct {
	files      []*File
	byPath     map[string]*File
	index      map[string]*Decl
	resolved   map[*TypeRef]*Decl
	structural map[string][]*StructuralError
	unresolved map[string][]UnresolvedRef
	// rejected holds inputs dropped because their path was already taken
	rejected []*StructuralError
}

// Build indexes every declaration in files and then resolves every type
// reference. Files are never modified; resolutions are kept in the Set.
// When a path is provided more than once the first copy is kept and the
// later copies are reported by Rejected.
func Build(files []*File) *Set {
	s := &Set{
		files:      make([]*File, 0, len(files)),
		byPath:     make(map[string]*File, len(files)),
		index:      make(map[string]*Decl),
		resolved:   make(map[*TypeRef]*Decl),
		structural: make(map[string][]*StructuralError),
		unresolved: make(map[string][]UnresolvedRef),
	}

	// Phase one: the name index
	for _, f := range files {
		if _, dup := s.byPath[f.Path]; dup {
			s.rejected = append(s.rejected, &StructuralError{
				File:   f.Path,
				Reason: "file provided more than once",
			})
			continue
		}
		s.files = append(s.files, f)
		s.byPath[f.Path] = f
		s.indexFile(f)
	}

	// Phase two: resolve references in files that built cleanly
	for _, f := range s.files {
		if s.Failed(f.Path) {
			continue
		}
		s.resolveFile(f)
	}

	return s
}

// Files returns the files in input order, without rejected copies
func (s *Set) Files() []*File {
	return s.files
}

// Rejected returns one error per input dropped for reusing a path
func (s *Set) Rejected() []*StructuralError {
	return s.rejected
}

// File looks up a file by path
func (s *Set) File(path string) (*File, bool) {
	f, ok := s.byPath[path]
	return f, ok
}

// Lookup finds a declaration by fully-qualified name, without a leading dot
func (s *Set) Lookup(fullName string) (*Decl, bool) {
	if d, ok := s.index[fullName]; ok {
		return d, true
	}
	return wellKnown(fullName)
}

// Resolve returns the declaration a reference points at
func (s *Set) Resolve(ref *TypeRef) (*Decl, bool) {
	if ref == nil {
		return nil, false
	}
	d, ok := s.resolved[ref]
	return d, ok
}

// IsMessage reports whether ref resolved to a message
func (s *Set) IsMessage(ref *TypeRef) bool {
	d, ok := s.Resolve(ref)
	return ok && d.Kind == DeclMessage
}

// IsEnum reports whether ref resolved to an enum
func (s *Set) IsEnum(ref *TypeRef) bool {
	d, ok := s.Resolve(ref)
	return ok && d.Kind == DeclEnum
}

// StructuralErrors returns the structural errors found in a file
func (s *Set) StructuralErrors(path string) []*StructuralError {
	return s.structural[path]
}

// Failed reports whether a file has a structural error
func (s *Set) Failed(path string) bool {
	return len(s.structural[path]) > 0
}

// Unresolved returns the references in a file that named nothing
func (s *Set) Unresolved(path string) []UnresolvedRef {
	return s.unresolved[path]
}

// validationImports are the option files that validation annotations need
var validationImports = map[string]RuleSource{
	"buf/validate/validate.proto": SourceProtovalidate,
	"validate/validate.proto":     SourcePGV,
}

// UnusedImports lists the non-public imports of f that no type reference
// or validation annotation in f needs. Imports the set cannot see into
// are never reported.
func (s *Set) UnusedImports(f *File) []string {
	used := make(map[string]bool)
	sources := make(map[RuleSource]bool)
	mark := func(ref *TypeRef) {
		d, ok := s.Resolve(ref)
		if !ok {
			return
		}
		if d.File != nil {
			used[d.File.Path] = true
			return
		}
		if desc, err := protoregistry.GlobalFiles.FindDescriptorByName(protoreflect.FullName(d.FullName)); err == nil {
			used[desc.ParentFile().Path()] = true
		}
	}

	f.WalkMessages(func(_ string, m *Message) {
		for _, field := range m.Fields {
			mark(&field.Type)
			for _, rule := range field.Rules {
				sources[rule.Source] = true
			}
		}
	})
	for _, svc := range f.Services {
		for _, rpc := range svc.RPCs {
			mark(&rpc.Request)
			mark(&rpc.Response)
		}
	}

	var unused []string
	for _, imp := range f.Imports {
		if slices.Contains(f.PublicImports, imp) {
			continue
		}
		if source, ok := validationImports[imp]; ok {
			if !sources[source] {
				unused = append(unused, imp)
			}
			continue
		}
		target, ok := s.importTarget(imp)
		if !ok || used[target] {
			continue
		}
		unused = append(unused, imp)
	}
	return unused
}

// importTarget maps an import to the path its declarations are recorded
// under. Well-known files other than descriptor.proto are known without
// being provided; descriptor.proto is mostly imported for custom options,
// which are not modeled.
func (s *Set) importTarget(imp string) (string, bool) {
	if f, ok := s.byPath[imp]; ok {
		return f.Path, true
	}
	for path := range s.byPath {
		if strings.HasSuffix(path, "/"+imp) {
			return path, true
		}
	}
	if imp == "google/protobuf/descriptor.proto" {
		return "", false
	}
	if _, err := protoregistry.GlobalFiles.FindFileByPath(imp); err == nil {
		return imp, true
	}
	return "", false
}

func (s *Set) fail(f *File, path string, pos Position, order int, format string, args ...any) {
	s.structural[f.Path] = append(s.structural[f.Path], &StructuralError{
		File:   f.Path,
		Path:   path,
		Pos:    pos,
		Order:  order,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (s *Set) declare(f *File, path string, pos Position, order int, d *Decl) {
	if prev, ok := s.index[d.FullName]; ok {
		if prev.File == f {
			s.fail(f, path, pos, order, "duplicate name %q", d.FullName)
		} else {
			s.fail(f, path, pos, order, "duplicate name %q, already declared in %s", d.FullName, prev.File.Path)
		}
		return
	}
	s.index[d.FullName] = d
}

func (s *Set) indexFile(f *File) {
	f.WalkMessages(func(path string, m *Message) {
		s.declare(f, path, m.Pos, m.Order, &Decl{FullName: f.FullName(path), Kind: DeclMessage, File: f, Message: m})
		s.checkFields(f, path, m)
	})
	f.WalkEnums(func(path string, e *Enum) {
		s.declare(f, path, e.Pos, e.Order, &Decl{FullName: f.FullName(path), Kind: DeclEnum, File: f, Enum: e})
		s.checkEnumValues(f, path, e)
	})
	for _, svc := range f.Services {
		s.declare(f, svc.Name, svc.Pos, svc.Order, &Decl{FullName: f.FullName(svc.Name), Kind: DeclService, File: f, Service: svc})
		seen := make(map[string]bool, len(svc.RPCs))
		for _, rpc := range svc.RPCs {
			if seen[rpc.Name] {
				s.fail(f, joinPath(svc.Name, rpc.Name), rpc.Pos, rpc.Order, "duplicate rpc %q in %s", rpc.Name, svc.Name)
			}
			seen[rpc.Name] = true
		}
	}
}

func (s *Set) checkFields(f *File, path string, m *Message) {
	names := make(map[string]bool, len(m.Fields))
	numbers := make(map[int32]string, len(m.Fields))
	for _, field := range m.Fields {
		fieldPath := joinPath(path, field.Name)
		if names[field.Name] {
			s.fail(f, fieldPath, field.Pos, field.Order, "duplicate field name %q in %s", field.Name, m.Name)
		}
		names[field.Name] = true
		if m.Reserved.Name(field.Name) {
			s.fail(f, fieldPath, field.Pos, field.Order, "field name %q is reserved in %s", field.Name, m.Name)
		}

		switch {
		case field.Number < 1 || field.Number > MaxFieldNumber:
			s.fail(f, fieldPath, field.Pos, field.Order, "field number %d of %q is out of range 1 to %d", field.Number, field.Name, MaxFieldNumber)
			continue
		case field.Number >= firstImplReserved && field.Number <= lastImplReserved:
			s.fail(f, fieldPath, field.Pos, field.Order, "field number %d of %q is reserved for the protobuf implementation (%d to %d)",
				field.Number, field.Name, firstImplReserved, lastImplReserved)
		}
		if rng, ok := m.Reserved.Number(field.Number); ok {
			s.fail(f, fieldPath, field.Pos, field.Order, "field number %d of %q is reserved (%s) in %s", field.Number, field.Name, rng, m.Name)
		}
		if other, ok := numbers[field.Number]; ok {
			s.fail(f, fieldPath, field.Pos, field.Order, "field number %d of %q already used by %q", field.Number, field.Name, other)
		}
		numbers[field.Number] = field.Name
	}
}

func (s *Set) checkEnumValues(f *File, path string, e *Enum) {
	if f.Syntax == SyntaxProto3 && len(e.Values) > 0 && e.Values[0].Number != 0 {
		v := e.Values[0]
		s.fail(f, joinPath(path, v.Name), v.Pos, v.Order, "first value of enum %s must be zero in proto3", e.Name)
	}
	seen := make(map[string]bool, len(e.Values))
	for _, v := range e.Values {
		valuePath := joinPath(path, v.Name)
		if seen[v.Name] {
			s.fail(f, valuePath, v.Pos, v.Order, "duplicate enum value %q in %s", v.Name, e.Name)
		}
		seen[v.Name] = true
		if e.Reserved.Name(v.Name) {
			s.fail(f, valuePath, v.Pos, v.Order, "enum value name %q is reserved in %s", v.Name, e.Name)
		}
		if rng, ok := e.Reserved.Number(v.Number); ok {
			s.fail(f, valuePath, v.Pos, v.Order, "enum value number %d of %q is reserved (%s) in %s", v.Number, v.Name, rng, e.Name)
		}
	}
}

func (s *Set) resolveFile(f *File) {
	external := s.hasExternalImports(f)
	resolve := func(scope, path string, order int, ref *TypeRef, pos Position) {
		if ref.IsScalar() || ref.Name == "" {
			return
		}
		if d, ok := s.lookupScoped(scope, ref.Name); ok {
			s.resolved[ref] = d
			return
		}
		if ref.Pos.IsValid() {
			pos = ref.Pos
		}
		s.unresolved[f.Path] = append(s.unresolved[f.Path], UnresolvedRef{
			File:     f.Path,
			Path:     path,
			Name:     ref.Name,
			Pos:      pos,
			Order:    order,
			External: external,
		})
	}

	f.WalkMessages(func(path string, m *Message) {
		scope := f.FullName(path)
		for _, field := range m.Fields {
			fieldPath := joinPath(path, field.Name)
			resolve(scope, fieldPath, field.Order, &field.Type, field.Pos)
			if field.MapKey != nil {
				resolve(scope, fieldPath, field.Order, field.MapKey, field.Pos)
			}
		}
	})
	for _, svc := range f.Services {
		scope := f.FullName(svc.Name)
		for _, rpc := range svc.RPCs {
			rpcPath := joinPath(svc.Name, rpc.Name)
			resolve(scope, rpcPath, rpc.Order, &rpc.Request, rpc.Pos)
			resolve(scope, rpcPath, rpc.Order, &rpc.Response, rpc.Pos)
		}
	}
}

// lookupScoped follows protobuf scoping: a leading dot means fully
// qualified, otherwise the innermost enclosing scope wins.
func (s *Set) lookupScoped(scope, name string) (*Decl, bool) {
	if strings.HasPrefix(name, ".") {
		return s.Lookup(name[1:])
	}
	for {
		if d, ok := s.Lookup(joinPath(scope, name)); ok {
			return d, true
		}
		if scope == "" {
			return nil, false
		}
		scope = parentScope(scope)
	}
}

func (s *Set) hasExternalImports(f *File) bool {
	for _, imp := range f.Imports {
		if strings.HasPrefix(imp, "google/protobuf/") {
			continue
		}
		if !s.provides(imp) {
			return true
		}
	}
	return false
}

func (s *Set) provides(importPath string) bool {
	if _, ok := s.byPath[importPath]; ok {
		return true
	}
	for path := range s.byPath {
		if strings.HasSuffix(path, "/"+importPath) {
			return true
		}
	}
	return false
}

func wellKnown(fullName string) (*Decl, bool) {
	if !strings.HasPrefix(fullName, "google.protobuf.") {
		return nil, false
	}
	desc, err := protoregistry.GlobalFiles.FindDescriptorByName(protoreflect.FullName(fullName))
	if err != nil {
		return nil, false
	}
	switch desc.(type) {
	case protoreflect.MessageDescriptor:
		return &Decl{FullName: fullName, Kind: DeclMessage}, true
	case protoreflect.EnumDescriptor:
		return &Decl{FullName: fullName, Kind: DeclEnum}, true
	default:
		return nil, false
	}
}
