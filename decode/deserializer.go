package decode

import (
	"io"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/lexer"
	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/stream"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// Deserializer decodes a single XML document.
type Deserializer struct {
	cur stream.Cursor
}

// NewDeserializer returns a Deserializer reading the document in data.
// The buffer is borrowed, not copied; it must not be modified until
// decoding is complete.
func NewDeserializer(data []byte) *Deserializer {
	return &Deserializer{cur: stream.NewCursor(lexer.New(data))}
}

// NewDeserializerReader reads the remainder of r into memory and
// returns a Deserializer over it.
func NewDeserializerReader(r io.Reader) (*Deserializer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewDeserializer(data), nil
}

// DeserializeStruct consumes the document's root element, which must
// match the descriptor's name, and returns a decoder for its fields.
func (d *Deserializer) DeserializeStruct(obj *schema.Object) (*StructDecoder, error) {
	open, err := d.root(obj.Name())
	if err != nil {
		return nil, err
	}
	return newStructDecoder(d.cur.Subtree(stream.AtCurrentElement), obj, open), nil
}

// DeserializeList returns a decoder for a document whose root is the
// list field's wrapper element. A flattened field's members are
// themselves roots; nothing is consumed for them here.
func (d *Deserializer) DeserializeList(f *schema.Field) (*ListDecoder, error) {
	if !f.IsFlattened() {
		if _, err := d.root(f.Name()); err != nil {
			return nil, err
		}
	}
	return newListDecoder(d.cur.Subtree(stream.AtFirstChild), f, nil), nil
}

// DeserializeMap returns a decoder for a document whose root is the
// map field's wrapper element. A flattened field's entries are
// themselves roots; nothing is consumed for them here.
func (d *Deserializer) DeserializeMap(f *schema.Field) (*MapDecoder, error) {
	if !f.IsFlattened() {
		if _, err := d.root(f.Name()); err != nil {
			return nil, err
		}
	}
	return newMapDecoder(d.cur.Subtree(stream.AtFirstChild), f, false), nil
}

func (d *Deserializer) root(want token.Name) (token.ElementOpen, error) {
	tok, err := d.cur.Next()
	if err != nil {
		return token.ElementOpen{}, err
	}
	open, ok := tok.(token.ElementOpen)
	if !ok {
		return token.ElementOpen{}, errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessagef("expected the document root element, got %s", tok)))
	}
	if !open.Name.Match(want) {
		return token.ElementOpen{}, errors.WithStack(xmlerr.SchemaMismatch(
			xmlerr.WithMessagef("root element %s does not match %s", open.Name, want)))
	}
	return open, nil
}
