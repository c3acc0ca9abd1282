package schema

import (
	"github.com/andaru/xmlcodec/token"
)

// Kind is the shape of a field's value.
type Kind int

const (
	// KindScalar is a primitive value carried as element text or an
	// attribute value.
	KindScalar Kind = iota
	// KindStruct is a nested structure of named fields.
	KindStruct
	// KindList is an ordered collection.
	KindList
	// KindMap is a keyed collection of entry elements.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Container reports whether k nests further elements.
func (k Kind) Container() bool { return k != KindScalar }

const defaultElementName = "member"

// DefaultEntryNames are the map entry element names used when a field
// carries no WithEntryNames option.
var DefaultEntryNames = EntryNames{Entry: "entry", Key: "key", Value: "value"}

// EntryNames holds the three element names a map entry is built from.
// Flattened maps have no entry wrapper; Entry is ignored for them.
type EntryNames struct {
	Entry string
	Value string
	Key   string
}

// Field describes one member of an Object.
type Field struct {
	index      int
	kind       Kind
	name       token.Name
	attribute  token.Name
	bound      bool
	flattened  bool
	element    string
	entryNames EntryNames
}

// FieldOption is a Field construction option function.
type FieldOption func(*Field)

// BoundToAttribute binds the field to the named attribute of its
// enclosing element instead of a child element's text.
func BoundToAttribute(name token.Name) FieldOption {
	return func(f *Field) { f.attribute, f.bound = name, true }
}

// Flattened removes the wrapper element from a list or map field; the
// member or entry elements repeat directly, named after the field.
func Flattened() FieldOption {
	return func(f *Field) { f.flattened = true }
}

// WithElementName sets the local name of a list's member elements.
func WithElementName(local string) FieldOption {
	return func(f *Field) { f.element = local }
}

// WithEntryNames sets the entry, key and value element names of a map
// field.
func WithEntryNames(entry, key, value string) FieldOption {
	return func(f *Field) { f.entryNames = EntryNames{Entry: entry, Key: key, Value: value} }
}

// NewField returns a field descriptor. index is the position reported
// by the decoder's field resolution; name is the serialized element
// name, or with BoundToAttribute the name of the element the attribute
// appears on.
func NewField(index int, kind Kind, name token.Name, opts ...FieldOption) *Field {
	f := &Field{index: index, kind: kind, name: name, entryNames: DefaultEntryNames}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Index returns the field's position in its Object.
func (f *Field) Index() int { return f.index }

// Kind returns the shape of the field's value.
func (f *Field) Kind() Kind { return f.kind }

// Name returns the field's serialized name.
func (f *Field) Name() token.Name { return f.name }

// Attribute returns the attribute the field is bound to, if any.
func (f *Field) Attribute() (token.Name, bool) { return f.attribute, f.bound }

// IsFlattened reports whether the field's collection has no wrapper
// element.
func (f *Field) IsFlattened() bool { return f.flattened }

// EntryNames returns the map entry element names in effect.
func (f *Field) EntryNames() EntryNames { return f.entryNames }

// MemberName returns the name of the repeating element of a collection:
// the member element of a list, or the entry element of a map. For
// wrapped collections the name comes from WithElementName, the entry
// names, or their defaults; flattened collections repeat the field's
// own name unless WithElementName overrides it.
func (f *Field) MemberName() token.Name {
	switch f.kind {
	case KindList:
		if f.element != "" {
			return token.Name{Local: f.element}
		}
		if f.flattened {
			return f.name
		}
		return token.Name{Local: defaultElementName}
	case KindMap:
		if f.flattened {
			return f.name
		}
		return token.Name{Local: f.entryNames.Entry}
	}
	return f.name
}

// Matches reports whether an element of name n carries this field's
// value. A flattened collection matches its member elements, since no
// wrapper element ever appears for it; every other field matches its
// serialized name.
func (f *Field) Matches(n token.Name) bool {
	if f.flattened && (f.kind == KindList || f.kind == KindMap) {
		return f.MemberName().Match(n)
	}
	return f.name.Match(n)
}

// Object describes a structure as an ordered list of fields.
type Object struct {
	name   token.Name
	fields []*Field
}

// NewObject returns an object descriptor for an element named name
// containing fields.
func NewObject(name token.Name, fields ...*Field) *Object {
	return &Object{name: name, fields: fields}
}

// Name returns the object's serialized element name.
func (o *Object) Name() token.Name { return o.name }

// Fields returns the object's fields in index order. The slice is
// shared; callers must not modify it.
func (o *Object) Fields() []*Field { return o.fields }

// Field returns the field with the given index, or nil.
func (o *Object) Field(index int) *Field {
	for _, f := range o.fields {
		if f.index == index {
			return f
		}
	}
	return nil
}
