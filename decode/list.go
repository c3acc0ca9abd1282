package decode

import (
	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/stream"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// ListDecoder iterates the members of a list value.
//
// Callers alternate HasNext with one decode call per member. For a
// flattened field the first member's opening tag was consumed during
// field resolution; the decoder accounts for that itself.
type ListDecoder struct {
	cur    stream.Cursor
	field  *schema.Field
	member token.Name

	// entered is set while a member's opening tag has been consumed but
	// its value has not
	entered bool
	open    token.ElementOpen
}

func newListDecoder(cur stream.Cursor, f *schema.Field, open *token.ElementOpen) *ListDecoder {
	l := &ListDecoder{cur: cur, field: f, member: f.MemberName()}
	if open != nil {
		l.entered, l.open = true, *open
	}
	return l
}

// HasNext reports whether another member follows. Reaching the end of
// a wrapped list consumes the wrapper's closing tag; a flattened list
// leaves the enclosing structure's tokens untouched.
func (l *ListDecoder) HasNext() (bool, error) {
	if l.entered {
		return true, nil
	}
	for {
		tok, err := l.cur.Peek()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case token.EndOfDocument:
			return false, nil
		case token.ElementClose:
			if l.cur.Depth() < l.cur.StartDepth() {
				if l.field.IsFlattened() {
					return false, nil
				}
				_, err := l.cur.Next()
				return false, err
			}
			// trailing close inside the subtree
			if _, err := l.cur.Next(); err != nil {
				return false, err
			}
		case token.ElementOpen:
			if t.Name.Match(l.member) {
				return true, nil
			}
			if l.field.IsFlattened() {
				// a sibling belonging to the enclosing structure
				return false, nil
			}
			// unknown element inside the wrapper
			if err := l.cur.SkipSubtree(); err != nil {
				return false, err
			}
		case token.Text:
			// stray text between members
			if _, err := l.cur.Next(); err != nil {
				return false, err
			}
		}
	}
}

// NextHasValue reports whether the next member holds a value, without
// consuming anything. An empty member element encodes an absent value.
func (l *ListDecoder) NextHasValue() (bool, error) {
	probe := 1
	if !l.entered {
		probe = 2 // look through the member's opening tag
	}
	tok, err := l.cur.PeekAt(probe)
	if err != nil {
		return false, err
	}
	switch tok.(type) {
	case token.ElementClose, token.EndOfDocument:
		return false, nil
	}
	return true, nil
}

// Null discards the next member and whatever value it holds.
func (l *ListDecoder) Null() error {
	if l.entered {
		l.entered = false
		return drainElement(l.cur)
	}
	return l.cur.SkipSubtree()
}

// enter consumes the next member's opening tag, or claims the one
// already consumed during field resolution.
func (l *ListDecoder) enter() (token.ElementOpen, error) {
	if l.entered {
		l.entered = false
		return l.open, nil
	}
	tok, err := l.cur.Next()
	if err != nil {
		return token.ElementOpen{}, err
	}
	open, ok := tok.(token.ElementOpen)
	if !ok {
		return token.ElementOpen{}, errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessagef("expected a %s member element, got %s", l.member, tok)))
	}
	return open, nil
}

func (l *ListDecoder) value() (string, error) {
	if _, err := l.enter(); err != nil {
		return "", err
	}
	return elementText(l.cur)
}

// String decodes the next member as a string.
func (l *ListDecoder) String() (string, error) { return l.value() }

// Bool decodes the next member as a bool.
func (l *ListDecoder) Bool() (bool, error) {
	s, err := l.value()
	if err != nil {
		return false, err
	}
	return parseBool(s)
}

// Int32 decodes the next member as an int32.
func (l *ListDecoder) Int32() (int32, error) {
	s, err := l.value()
	if err != nil {
		return 0, err
	}
	return parseInt32(s)
}

// Int64 decodes the next member as an int64.
func (l *ListDecoder) Int64() (int64, error) {
	s, err := l.value()
	if err != nil {
		return 0, err
	}
	return parseInt64(s)
}

// Float32 decodes the next member as a float32.
func (l *ListDecoder) Float32() (float32, error) {
	s, err := l.value()
	if err != nil {
		return 0, err
	}
	return parseFloat32(s)
}

// Float64 decodes the next member as a float64.
func (l *ListDecoder) Float64() (float64, error) {
	s, err := l.value()
	if err != nil {
		return 0, err
	}
	return parseFloat64(s)
}

// Struct returns a decoder for the next member's structure value.
func (l *ListDecoder) Struct(obj *schema.Object) (*StructDecoder, error) {
	open, err := l.enter()
	if err != nil {
		return nil, err
	}
	return newStructDecoder(l.cur.Subtree(stream.AtCurrentElement), obj, open), nil
}

// List returns a decoder for the next member's list value, the member
// element serving as its wrapper.
func (l *ListDecoder) List(f *schema.Field) (*ListDecoder, error) {
	if _, err := l.enter(); err != nil {
		return nil, err
	}
	return newListDecoder(l.cur.Subtree(stream.AtFirstChild), f, nil), nil
}

// Map returns a decoder for the next member's map value, the member
// element serving as its wrapper.
func (l *ListDecoder) Map(f *schema.Field) (*MapDecoder, error) {
	if _, err := l.enter(); err != nil {
		return nil, err
	}
	return newMapDecoder(l.cur.Subtree(stream.AtFirstChild), f, false), nil
}
