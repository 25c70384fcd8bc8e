package schema

import "strings"

// AssignOrder numbers every declaration in the file, parents before
// children. Parsers call it once before the file is shared; diagnostics
// are sorted by this order.
func (f *File) AssignOrder() {
	n := 0
	next := func() int {
		n++
		return n
	}

	var message func(m *Message)
	var enum func(e *Enum)
	enum = func(e *Enum) {
		e.Order = next()
		for _, v := range e.Values {
			v.Order = next()
		}
	}
	message = func(m *Message) {
		m.Order = next()
		for _, field := range m.Fields {
			field.Order = next()
		}
		for _, nested := range m.Messages {
			message(nested)
		}
		for _, e := range m.Enums {
			enum(e)
		}
	}

	for _, m := range f.Messages {
		message(m)
	}
	for _, e := range f.Enums {
		enum(e)
	}
	for _, svc := range f.Services {
		svc.Order = next()
		for _, rpc := range svc.RPCs {
			rpc.Order = next()
		}
	}
}

// WalkMessages calls fn for every message in the file, depth first.
// path is the dotted name relative to the package.
func (f *File) WalkMessages(fn func(path string, m *Message)) {
	var walk func(prefix string, msgs []*Message)
	walk = func(prefix string, msgs []*Message) {
		for _, m := range msgs {
			path := joinPath(prefix, m.Name)
			fn(path, m)
			walk(path, m.Messages)
		}
	}
	walk("", f.Messages)
}

// WalkEnums calls fn for every enum in the file, top level and nested
func (f *File) WalkEnums(fn func(path string, e *Enum)) {
	for _, e := range f.Enums {
		fn(e.Name, e)
	}
	f.WalkMessages(func(path string, m *Message) {
		for _, e := range m.Enums {
			fn(joinPath(path, e.Name), e)
		}
	})
}

// Suppressions maps declaration paths to the suppression directives
// written on them.
func (f *File) Suppressions() map[string][]string {
	out := make(map[string][]string)
	add := func(path string, names []string) {
		if len(names) > 0 {
			out[path] = append(out[path], names...)
		}
	}
	f.WalkMessages(func(path string, m *Message) {
		add(path, m.Suppress)
		for _, field := range m.Fields {
			add(joinPath(path, field.Name), field.Suppress)
		}
	})
	f.WalkEnums(func(path string, e *Enum) {
		add(path, e.Suppress)
		for _, v := range e.Values {
			add(joinPath(path, v.Name), v.Suppress)
		}
	})
	for _, svc := range f.Services {
		add(svc.Name, svc.Suppress)
		for _, rpc := range svc.RPCs {
			add(joinPath(svc.Name, rpc.Name), rpc.Suppress)
		}
	}
	return out
}

// FullName qualifies a relative declaration path with the file package
func (f *File) FullName(path string) string {
	return joinPath(f.Package, path)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// parentScope strips the last component from a dotted name
func parentScope(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
