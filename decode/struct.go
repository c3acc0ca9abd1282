package decode

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/stream"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// fieldLocation maps a pending schema field onto the element most
// recently examined: either its text content or one of its attributes.
type fieldLocation struct {
	index int
	attr  token.Name
	bound bool // attribute location when true
}

// resolveState tracks a StructDecoder between calls. The explicit
// states keep nested decodes from leaving stale field locations
// behind: only the NextField after a nested decode discards them.
type resolveState int

const (
	// stateIdle means the next call must scan the document.
	stateIdle resolveState = iota
	// stateLocationsPending means fields remain to be decoded from the
	// element most recently matched.
	stateLocationsPending
	// stateAwaitingNested means a nested decoder was handed out; the
	// locations gathered before it describe parts of the document the
	// nested decode has consumed.
	stateAwaitingNested
	// stateDone means the structure's closing tag has been consumed.
	stateDone
)

// StructDecoder resolves a structure's fields against the document.
//
// Callers alternate NextField with the typed decode call for the
// returned index. When a field's value is itself a structure, list or
// map, the corresponding method returns a child decoder which must be
// driven to completion before this decoder is used again.
type StructDecoder struct {
	cur  stream.Cursor
	obj  *schema.Object
	open token.ElementOpen // the structure's own opening tag
	last token.ElementOpen // opening tag most recently matched to fields

	state   resolveState
	pending []fieldLocation
}

func newStructDecoder(cur stream.Cursor, obj *schema.Object, open token.ElementOpen) *StructDecoder {
	return &StructDecoder{cur: cur, obj: obj, open: open, last: open}
}

// NextField returns the index of the schema field the next piece of the
// document maps to. It returns ok false once the structure's closing
// tag has been consumed; the decoder is exhausted from then on.
// Elements matching no field, and elements matched only by scalar
// fields they cannot satisfy, are skipped entirely.
func (d *StructDecoder) NextField() (index int, ok bool, err error) {
	switch d.state {
	case stateAwaitingNested:
		d.pending = nil
		d.state = stateIdle
	case stateLocationsPending:
		return d.pending[0].index, true, nil
	case stateDone:
		return 0, false, nil
	}
	for {
		tok, err := d.cur.Next()
		if err != nil {
			return 0, false, err
		}
		switch t := tok.(type) {
		case token.EndOfDocument:
			d.state = stateDone
			return 0, false, nil
		case token.ElementClose:
			if d.cur.Depth() < d.cur.StartDepth() && t.Name.Match(d.open.Name) {
				d.state = stateDone
				return 0, false, nil
			}
			// trailing close of a child element; keep scanning
		case token.Text:
			// stray text between fields
		case token.ElementOpen:
			d.last = t
			locs, err := d.locations(t)
			if err != nil {
				return 0, false, err
			}
			if len(locs) == 0 {
				if err := drainElement(d.cur); err != nil {
					return 0, false, err
				}
				continue
			}
			d.pending = locs
			d.state = stateLocationsPending
			return locs[0].index, true, nil
		}
	}
}

// locations derives the pending field locations for an element whose
// opening tag was just consumed. Attribute locations sort before text
// locations: reading text advances past the element, while attributes
// read off the captured opening tag.
func (d *StructDecoder) locations(open token.ElementOpen) ([]fieldLocation, error) {
	next, err := d.cur.Peek()
	if err != nil {
		return nil, err
	}
	var locs []fieldLocation
	for _, f := range d.obj.Fields() {
		if !f.Matches(open.Name) {
			continue
		}
		if attr, bound := f.Attribute(); bound {
			if v, ok := open.Attr(attr); ok && strings.TrimSpace(v) != "" {
				locs = append(locs, fieldLocation{index: f.Index(), attr: attr, bound: true})
			}
			continue
		}
		if _, children := next.(token.ElementOpen); children && !f.Kind().Container() {
			// a scalar cannot hold child elements
			continue
		}
		locs = append(locs, fieldLocation{index: f.Index()})
	}
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].bound && !locs[j].bound })
	return locs, nil
}

// SkipValue discards the value of the field last returned by
// NextField. Skipping an attribute-bound field drops only its
// location, leaving other fields on the same element readable.
// Skipping a text-bound field consumes the remainder of its element,
// discarding any other fields located on it.
func (d *StructDecoder) SkipValue() error {
	if d.state != stateLocationsPending {
		return d.cur.SkipSubtree()
	}
	if d.pending[0].bound {
		d.pending = d.pending[1:]
		if len(d.pending) == 0 {
			d.state = stateIdle
		}
		return nil
	}
	d.pending = nil
	d.state = stateIdle
	return drainElement(d.cur)
}

// value resolves the first pending location to its raw string.
func (d *StructDecoder) value() (string, error) {
	if d.state != stateLocationsPending {
		return "", errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessage("no field is pending; call NextField first")))
	}
	loc := d.pending[0]
	if loc.bound {
		d.pending = d.pending[1:]
		if len(d.pending) == 0 {
			d.state = stateIdle
		}
		v, ok := d.last.Attr(loc.attr)
		if !ok {
			return "", errors.WithStack(xmlerr.UnexpectedToken(
				xmlerr.WithMessagef("attribute %s not present on %s", loc.attr, d.last.Name)))
		}
		return v, nil
	}
	// reading the text consumes the element, so remaining locations on
	// it are spent too
	d.pending = nil
	d.state = stateIdle
	return elementText(d.cur)
}

// String decodes the pending field as a string.
func (d *StructDecoder) String() (string, error) { return d.value() }

// Bool decodes the pending field as a bool.
func (d *StructDecoder) Bool() (bool, error) {
	s, err := d.value()
	if err != nil {
		return false, err
	}
	return parseBool(s)
}

// Int32 decodes the pending field as an int32.
func (d *StructDecoder) Int32() (int32, error) {
	s, err := d.value()
	if err != nil {
		return 0, err
	}
	return parseInt32(s)
}

// Int64 decodes the pending field as an int64.
func (d *StructDecoder) Int64() (int64, error) {
	s, err := d.value()
	if err != nil {
		return 0, err
	}
	return parseInt64(s)
}

// Float32 decodes the pending field as a float32.
func (d *StructDecoder) Float32() (float32, error) {
	s, err := d.value()
	if err != nil {
		return 0, err
	}
	return parseFloat32(s)
}

// Float64 decodes the pending field as a float64.
func (d *StructDecoder) Float64() (float64, error) {
	s, err := d.value()
	if err != nil {
		return 0, err
	}
	return parseFloat64(s)
}

// element claims the pending location for a nested container, whose
// opening tag is the one last matched.
func (d *StructDecoder) element() (token.ElementOpen, error) {
	if d.state != stateLocationsPending {
		return token.ElementOpen{}, errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessage("no field is pending; call NextField first")))
	}
	loc := d.pending[0]
	if loc.bound {
		return token.ElementOpen{}, errors.WithStack(xmlerr.UnexpectedToken(
			xmlerr.WithMessagef("field bound to attribute %s cannot hold a nested value", loc.attr)))
	}
	d.pending = d.pending[1:]
	d.state = stateAwaitingNested
	return d.last, nil
}

// Struct returns a decoder for the pending field's nested structure.
func (d *StructDecoder) Struct(obj *schema.Object) (*StructDecoder, error) {
	open, err := d.element()
	if err != nil {
		return nil, err
	}
	return newStructDecoder(d.cur.Subtree(stream.AtCurrentElement), obj, open), nil
}

// List returns a decoder for the pending field's list value.
func (d *StructDecoder) List(f *schema.Field) (*ListDecoder, error) {
	open, err := d.element()
	if err != nil {
		return nil, err
	}
	if f.IsFlattened() {
		// the element just matched is the first member itself
		return newListDecoder(d.cur.Subtree(stream.AtCurrentElement), f, &open), nil
	}
	return newListDecoder(d.cur.Subtree(stream.AtFirstChild), f, nil), nil
}

// Map returns a decoder for the pending field's map value.
func (d *StructDecoder) Map(f *schema.Field) (*MapDecoder, error) {
	if _, err := d.element(); err != nil {
		return nil, err
	}
	if f.IsFlattened() {
		// the element just matched is the first entry itself
		return newMapDecoder(d.cur.Subtree(stream.AtCurrentElement), f, true), nil
	}
	return newMapDecoder(d.cur.Subtree(stream.AtFirstChild), f, false), nil
}
