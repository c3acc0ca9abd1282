package decode

import (
	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/stream"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// MapDecoder iterates the entries of a map value.
//
// Callers alternate HasNext with Key, NextHasValue and one decode call
// per entry. Entries read key first; a wrapped map nests each pair in
// an entry element, a flattened map repeats the field's element per
// entry with key and value directly inside.
type MapDecoder struct {
	cur   stream.Cursor
	field *schema.Field
	entry token.Name
	names schema.EntryNames

	// inEntry is set while an entry element's opening tag has been
	// consumed but its closing tag has not
	inEntry bool
}

func newMapDecoder(cur stream.Cursor, f *schema.Field, inEntry bool) *MapDecoder {
	return &MapDecoder{cur: cur, field: f, entry: f.MemberName(), names: f.EntryNames(), inEntry: inEntry}
}

// HasNext reports whether another entry follows. Reaching the end of a
// wrapped map consumes the wrapper's closing tag; a flattened map
// leaves the enclosing structure's tokens untouched. Finishing the
// previous entry's close is a side effect of the check.
func (m *MapDecoder) HasNext() (bool, error) {
	for {
		tok, err := m.cur.Peek()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case token.EndOfDocument:
			return false, nil
		case token.ElementClose:
			if m.cur.Depth() < m.cur.StartDepth() {
				if m.field.IsFlattened() {
					return false, nil
				}
				_, err := m.cur.Next()
				return false, err
			}
			// the previous entry's closing tag
			if _, err := m.cur.Next(); err != nil {
				return false, err
			}
			m.inEntry = false
		case token.ElementOpen:
			if m.cur.Depth() >= m.cur.StartDepth() {
				// inside an entry already; its key or value comes next
				return true, nil
			}
			if t.Name.Match(m.entry) {
				return true, nil
			}
			if m.field.IsFlattened() {
				// a sibling belonging to the enclosing structure
				return false, nil
			}
			// unknown element inside the wrapper
			if err := m.cur.SkipSubtree(); err != nil {
				return false, err
			}
		case token.Text:
			// stray text between entries
			if _, err := m.cur.Next(); err != nil {
				return false, err
			}
		}
	}
}

// Key enters the next entry if needed and decodes its key element,
// which must come before the value.
func (m *MapDecoder) Key() (string, error) {
	if !m.inEntry {
		tok, err := m.cur.Next()
		if err != nil {
			return "", err
		}
		open, ok := tok.(token.ElementOpen)
		if !ok || !open.Name.Match(m.entry) {
			return "", errors.WithStack(xmlerr.UnexpectedToken(
				xmlerr.WithMessagef("expected a %s entry element, got %s", m.entry, tok)))
		}
		m.inEntry = true
	}
	tok, err := m.cur.Next()
	if err != nil {
		return "", err
	}
	open, ok := tok.(token.ElementOpen)
	if !ok || !token.QName(m.names.Key).Match(open.Name) {
		return "", errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessagef("expected a %s key element, got %s", m.names.Key, tok)))
	}
	return elementText(m.cur)
}

// NextHasValue reports whether the current entry holds a value,
// without consuming anything. Both a missing value element and an
// empty one read as absent.
func (m *MapDecoder) NextHasValue() (bool, error) {
	tok, err := m.cur.PeekAt(1)
	if err != nil {
		return false, err
	}
	switch tok.(type) {
	case token.ElementClose, token.EndOfDocument:
		return false, nil
	}
	tok, err = m.cur.PeekAt(2)
	if err != nil {
		return false, err
	}
	switch tok.(type) {
	case token.ElementClose, token.EndOfDocument:
		return false, nil
	}
	return true, nil
}

// Null discards the current entry's value slot, if a value element is
// present.
func (m *MapDecoder) Null() error { return m.cur.SkipSubtree() }

// enterValue consumes the current entry's value element opening tag.
func (m *MapDecoder) enterValue() (token.ElementOpen, error) {
	tok, err := m.cur.Next()
	if err != nil {
		return token.ElementOpen{}, err
	}
	open, ok := tok.(token.ElementOpen)
	if !ok || !token.QName(m.names.Value).Match(open.Name) {
		return token.ElementOpen{}, errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessagef("expected a %s value element, got %s", m.names.Value, tok)))
	}
	return open, nil
}

func (m *MapDecoder) value() (string, error) {
	if _, err := m.enterValue(); err != nil {
		return "", err
	}
	return elementText(m.cur)
}

// String decodes the current entry's value as a string.
func (m *MapDecoder) String() (string, error) { return m.value() }

// Bool decodes the current entry's value as a bool.
func (m *MapDecoder) Bool() (bool, error) {
	s, err := m.value()
	if err != nil {
		return false, err
	}
	return parseBool(s)
}

// Int32 decodes the current entry's value as an int32.
func (m *MapDecoder) Int32() (int32, error) {
	s, err := m.value()
	if err != nil {
		return 0, err
	}
	return parseInt32(s)
}

// Int64 decodes the current entry's value as an int64.
func (m *MapDecoder) Int64() (int64, error) {
	s, err := m.value()
	if err != nil {
		return 0, err
	}
	return parseInt64(s)
}

// Float32 decodes the current entry's value as a float32.
func (m *MapDecoder) Float32() (float32, error) {
	s, err := m.value()
	if err != nil {
		return 0, err
	}
	return parseFloat32(s)
}

// Float64 decodes the current entry's value as a float64.
func (m *MapDecoder) Float64() (float64, error) {
	s, err := m.value()
	if err != nil {
		return 0, err
	}
	return parseFloat64(s)
}

// Struct returns a decoder for the current entry's structure value,
// the value element serving as its opening tag.
func (m *MapDecoder) Struct(obj *schema.Object) (*StructDecoder, error) {
	open, err := m.enterValue()
	if err != nil {
		return nil, err
	}
	return newStructDecoder(m.cur.Subtree(stream.AtCurrentElement), obj, open), nil
}

// List returns a decoder for the current entry's list value, the value
// element serving as its wrapper.
func (m *MapDecoder) List(f *schema.Field) (*ListDecoder, error) {
	if _, err := m.enterValue(); err != nil {
		return nil, err
	}
	return newListDecoder(m.cur.Subtree(stream.AtFirstChild), f, nil), nil
}

// Map returns a decoder for the current entry's map value, the value
// element serving as its wrapper.
func (m *MapDecoder) Map(f *schema.Field) (*MapDecoder, error) {
	if _, err := m.enterValue(); err != nil {
		return nil, err
	}
	return newMapDecoder(m.cur.Subtree(stream.AtFirstChild), f, false), nil
}
