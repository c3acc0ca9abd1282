package encode

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/token"
)

// Serializer produces one XML document into an in-memory buffer,
// driven by the same schema descriptors the decode package consumes.
type Serializer struct {
	buf bytes.Buffer
	w   *Writer
}

// NewSerializer returns a Serializer, configured with any writer
// options provided.
func NewSerializer(opts ...WriterOption) *Serializer {
	s := &Serializer{}
	s.w = NewWriter(&s.buf, opts...)
	return s
}

// Struct begins the document with obj's element and returns a
// serializer for its fields.
func (s *Serializer) Struct(obj *schema.Object) (*StructSerializer, error) {
	if err := s.w.StartElement(obj.Name()); err != nil {
		return nil, err
	}
	return &StructSerializer{w: s.w, name: obj.Name()}, nil
}

// List begins the document with the list field's wrapper element and
// returns a serializer for its members. A flattened field has no
// wrapper; its members become the document's top-level elements.
func (s *Serializer) List(f *schema.Field) (*ListSerializer, error) {
	return newListSerializer(s.w, f)
}

// Map begins the document with the map field's wrapper element and
// returns a serializer for its entries. A flattened field has no
// wrapper; its entries become the document's top-level elements.
func (s *Serializer) Map(f *schema.Field) (*MapSerializer, error) {
	return newMapSerializer(s.w, f)
}

// Bytes returns the serialized document. It fails when an element is
// still open or any write failed.
func (s *Serializer) Bytes() ([]byte, error) {
	if err := s.w.Err(); err != nil {
		return nil, err
	}
	if d := s.w.Depth(); d > 0 {
		return nil, errors.Errorf("document has %d unclosed elements", d)
	}
	return s.buf.Bytes(), nil
}

// String returns the serialized document as a string.
func (s *Serializer) String() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StructSerializer writes the fields of one structure element.
//
// Fields bound to an attribute of a child element must be written
// before other fields sharing that element, so the attribute lands on
// the start tag while it is still open; the element is closed by the
// first write for a different element, or by End.
type StructSerializer struct {
	w    *Writer
	name token.Name

	// child is the element left open so attribute-bound fields can
	// land on its start tag
	child *token.Name
}

// closeChild finishes a child element left open for attribute writes.
func (s *StructSerializer) closeChild() error {
	if s.child == nil {
		return nil
	}
	n := *s.child
	s.child = nil
	return s.w.EndElement(n)
}

func (s *StructSerializer) scalar(f *schema.Field, v string) error {
	if attr, bound := f.Attribute(); bound {
		if s.child == nil || !s.child.Match(f.Name()) {
			if err := s.closeChild(); err != nil {
				return err
			}
			if err := s.w.StartElement(f.Name()); err != nil {
				return err
			}
			n := f.Name()
			s.child = &n
		}
		return s.w.Attribute(attr, v)
	}
	if s.child != nil && s.child.Match(f.Name()) {
		// the field's element is already open with its attributes
		s.child = nil
		if err := s.w.Text(v); err != nil {
			return err
		}
		return s.w.EndElement(f.Name())
	}
	if err := s.closeChild(); err != nil {
		return err
	}
	if err := s.w.StartElement(f.Name()); err != nil {
		return err
	}
	if err := s.w.Text(v); err != nil {
		return err
	}
	return s.w.EndElement(f.Name())
}

// StringField writes f as a string. The empty string produces a
// self-closing element, which reads back as the empty string.
func (s *StructSerializer) StringField(f *schema.Field, v string) error {
	return s.scalar(f, v)
}

// BoolField writes f as a bool.
func (s *StructSerializer) BoolField(f *schema.Field, v bool) error {
	return s.scalar(f, strconv.FormatBool(v))
}

// Int32Field writes f as an int32.
func (s *StructSerializer) Int32Field(f *schema.Field, v int32) error {
	return s.scalar(f, strconv.FormatInt(int64(v), 10))
}

// Int64Field writes f as an int64.
func (s *StructSerializer) Int64Field(f *schema.Field, v int64) error {
	return s.scalar(f, strconv.FormatInt(v, 10))
}

// Float32Field writes f as a float32.
func (s *StructSerializer) Float32Field(f *schema.Field, v float32) error {
	return s.scalar(f, strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Float64Field writes f as a float64.
func (s *StructSerializer) Float64Field(f *schema.Field, v float64) error {
	return s.scalar(f, strconv.FormatFloat(v, 'g', -1, 64))
}

// StructField writes a nested structure under f's element, returning a
// serializer for its fields. The returned serializer must be completed
// with End before this one is used again.
func (s *StructSerializer) StructField(f *schema.Field) (*StructSerializer, error) {
	if err := s.closeChild(); err != nil {
		return nil, err
	}
	if err := s.w.StartElement(f.Name()); err != nil {
		return nil, err
	}
	return &StructSerializer{w: s.w, name: f.Name()}, nil
}

// ListField writes a list under f, returning a serializer for its
// members.
func (s *StructSerializer) ListField(f *schema.Field) (*ListSerializer, error) {
	if err := s.closeChild(); err != nil {
		return nil, err
	}
	return newListSerializer(s.w, f)
}

// MapField writes a map under f, returning a serializer for its
// entries.
func (s *StructSerializer) MapField(f *schema.Field) (*MapSerializer, error) {
	if err := s.closeChild(); err != nil {
		return nil, err
	}
	return newMapSerializer(s.w, f)
}

// End finishes the structure's element.
func (s *StructSerializer) End() error {
	if err := s.closeChild(); err != nil {
		return err
	}
	return s.w.EndElement(s.name)
}

// ListSerializer writes the members of one list value.
type ListSerializer struct {
	w       *Writer
	member  token.Name
	wrapper *token.Name // element to close on End, nil for flattened lists
}

func newListSerializer(w *Writer, f *schema.Field) (*ListSerializer, error) {
	l := &ListSerializer{w: w, member: f.MemberName()}
	if !f.IsFlattened() {
		if err := w.StartElement(f.Name()); err != nil {
			return nil, err
		}
		n := f.Name()
		l.wrapper = &n
	}
	return l, nil
}

func (l *ListSerializer) scalar(v string) error {
	if err := l.w.StartElement(l.member); err != nil {
		return err
	}
	if err := l.w.Text(v); err != nil {
		return err
	}
	return l.w.EndElement(l.member)
}

// String writes the next member as a string.
func (l *ListSerializer) String(v string) error { return l.scalar(v) }

// Bool writes the next member as a bool.
func (l *ListSerializer) Bool(v bool) error { return l.scalar(strconv.FormatBool(v)) }

// Int32 writes the next member as an int32.
func (l *ListSerializer) Int32(v int32) error { return l.scalar(strconv.FormatInt(int64(v), 10)) }

// Int64 writes the next member as an int64.
func (l *ListSerializer) Int64(v int64) error { return l.scalar(strconv.FormatInt(v, 10)) }

// Float32 writes the next member as a float32.
func (l *ListSerializer) Float32(v float32) error {
	return l.scalar(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Float64 writes the next member as a float64.
func (l *ListSerializer) Float64(v float64) error {
	return l.scalar(strconv.FormatFloat(v, 'g', -1, 64))
}

// Null writes a member with no value.
func (l *ListSerializer) Null() error {
	if err := l.w.StartElement(l.member); err != nil {
		return err
	}
	return l.w.EndElement(l.member)
}

// Struct writes the next member as a structure, the member element
// serving as its opening tag.
func (l *ListSerializer) Struct() (*StructSerializer, error) {
	if err := l.w.StartElement(l.member); err != nil {
		return nil, err
	}
	return &StructSerializer{w: l.w, name: l.member}, nil
}

// List writes the next member as a nested list, the member element
// serving as its wrapper.
func (l *ListSerializer) List(f *schema.Field) (*ListSerializer, error) {
	if err := l.w.StartElement(l.member); err != nil {
		return nil, err
	}
	n := l.member
	return &ListSerializer{w: l.w, member: f.MemberName(), wrapper: &n}, nil
}

// Map writes the next member as a nested map, the member element
// serving as its wrapper.
func (l *ListSerializer) Map(f *schema.Field) (*MapSerializer, error) {
	if err := l.w.StartElement(l.member); err != nil {
		return nil, err
	}
	n := l.member
	return &MapSerializer{w: l.w, entry: f.MemberName(), names: f.EntryNames(), wrapper: &n}, nil
}

// End finishes the list, closing its wrapper element when present.
func (l *ListSerializer) End() error {
	if l.wrapper == nil {
		return l.w.Err()
	}
	return l.w.EndElement(*l.wrapper)
}

// MapSerializer writes the entries of one map value.
//
// Callers alternate Entry with one value call. An entry stays open
// until the next Entry or End call, matching how the decoder drains
// entry closes.
type MapSerializer struct {
	w       *Writer
	entry   token.Name
	names   schema.EntryNames
	wrapper *token.Name // element to close on End, nil for flattened maps
	inEntry bool
}

func newMapSerializer(w *Writer, f *schema.Field) (*MapSerializer, error) {
	m := &MapSerializer{w: w, entry: f.MemberName(), names: f.EntryNames()}
	if !f.IsFlattened() {
		if err := w.StartElement(f.Name()); err != nil {
			return nil, err
		}
		n := f.Name()
		m.wrapper = &n
	}
	return m, nil
}

// Entry begins the next entry and writes its key element.
func (m *MapSerializer) Entry(key string) error {
	if err := m.closeEntry(); err != nil {
		return err
	}
	if err := m.w.StartElement(m.entry); err != nil {
		return err
	}
	m.inEntry = true
	k := token.QName(m.names.Key)
	if err := m.w.StartElement(k); err != nil {
		return err
	}
	if err := m.w.Text(key); err != nil {
		return err
	}
	return m.w.EndElement(k)
}

func (m *MapSerializer) closeEntry() error {
	if !m.inEntry {
		return nil
	}
	m.inEntry = false
	return m.w.EndElement(m.entry)
}

// value opens the current entry's value element. Writing a value with
// no entry open is an error, mirroring the decoder's key-first rule.
func (m *MapSerializer) value() (token.Name, error) {
	val := token.QName(m.names.Value)
	if !m.inEntry {
		return val, m.w.fail(errors.New("map value written with no entry open; call Entry first"))
	}
	return val, m.w.StartElement(val)
}

func (m *MapSerializer) scalar(v string) error {
	val, err := m.value()
	if err != nil {
		return err
	}
	if err := m.w.Text(v); err != nil {
		return err
	}
	return m.w.EndElement(val)
}

// String writes the current entry's value as a string.
func (m *MapSerializer) String(v string) error { return m.scalar(v) }

// Bool writes the current entry's value as a bool.
func (m *MapSerializer) Bool(v bool) error { return m.scalar(strconv.FormatBool(v)) }

// Int32 writes the current entry's value as an int32.
func (m *MapSerializer) Int32(v int32) error { return m.scalar(strconv.FormatInt(int64(v), 10)) }

// Int64 writes the current entry's value as an int64.
func (m *MapSerializer) Int64(v int64) error { return m.scalar(strconv.FormatInt(v, 10)) }

// Float32 writes the current entry's value as a float32.
func (m *MapSerializer) Float32(v float32) error {
	return m.scalar(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Float64 writes the current entry's value as a float64.
func (m *MapSerializer) Float64(v float64) error {
	return m.scalar(strconv.FormatFloat(v, 'g', -1, 64))
}

// Null writes the current entry's value as an empty value element,
// which reads back as an absent value.
func (m *MapSerializer) Null() error {
	val, err := m.value()
	if err != nil {
		return err
	}
	return m.w.EndElement(val)
}

// Struct writes the current entry's value as a structure, the value
// element serving as its opening tag.
func (m *MapSerializer) Struct() (*StructSerializer, error) {
	val, err := m.value()
	if err != nil {
		return nil, err
	}
	return &StructSerializer{w: m.w, name: val}, nil
}

// List writes the current entry's value as a list, the value element
// serving as its wrapper.
func (m *MapSerializer) List(f *schema.Field) (*ListSerializer, error) {
	val, err := m.value()
	if err != nil {
		return nil, err
	}
	return &ListSerializer{w: m.w, member: f.MemberName(), wrapper: &val}, nil
}

// Map writes the current entry's value as a nested map, the value
// element serving as its wrapper.
func (m *MapSerializer) Map(f *schema.Field) (*MapSerializer, error) {
	val, err := m.value()
	if err != nil {
		return nil, err
	}
	return &MapSerializer{w: m.w, entry: f.MemberName(), names: f.EntryNames(), wrapper: &val}, nil
}

// End finishes the map, completing an open entry and closing the
// wrapper element when present.
func (m *MapSerializer) End() error {
	if err := m.closeEntry(); err != nil {
		return err
	}
	if m.wrapper == nil {
		return m.w.Err()
	}
	return m.w.EndElement(*m.wrapper)
}
