package encode

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/token"
)

// WriterOption is a constructor option function for the Writer type.
type WriterOption func(*Writer)

// WithDeclaration configures the writer to emit an XML declaration
// before the document's first element.
func WithDeclaration() WriterOption {
	return func(w *Writer) { w.declaration = true }
}

// WithIndent configures multi-line output. Each element level is
// indented by one copy of indent; elements holding text stay on one
// line so their content round-trips unchanged.
func WithIndent(indent string) WriterOption {
	return func(w *Writer) { w.indent = indent }
}

// escaper rewrites the five characters XML reserves into their
// predefined entities.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// frame is one open element on the writer's stack.
type frame struct {
	name     token.Name
	display  string            // name as written, prefix included
	declared map[string]string // prefix to namespace URI bindings made on this element
	open     bool              // start tag not yet finished with '>'
	hasText  bool
	children bool
}

// Writer emits XML one tag at a time onto an io.Writer.
//
// Errors are sticky: after any call fails, every later call returns
// the same error and writes nothing, so a caller may check the error
// once after a run of writes.
type Writer struct {
	out io.Writer
	err error

	frames      []frame
	indent      string
	declaration bool
	started     bool // any output produced yet
	nextPrefix  int
}

// NewWriter returns a Writer emitting to out, configured with any
// options provided.
func NewWriter(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{out: out}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Err returns the first error the writer encountered, or nil.
func (w *Writer) Err() error { return w.err }

// Depth returns the number of elements currently open.
func (w *Writer) Depth() int { return len(w.frames) }

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		w.err = errors.WithStack(err)
	}
}

// StartElement opens an element named n, finishing the enclosing
// element's start tag first if it is still open. When n carries a
// namespace with no binding in scope, a prefix is declared on the new
// element: the name's own prefix if it has one, an allocated n1, n2,
// ... prefix otherwise.
func (w *Writer) StartElement(n token.Name) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) > 0 {
		parent := &w.frames[len(w.frames)-1]
		if parent.hasText {
			return w.fail(errors.Errorf("cannot start %s inside %s: element already holds text", n, parent.name))
		}
		parent.children = true
		w.finishStartTag()
	}
	if w.declaration && !w.started {
		w.write(`<?xml version="1.0" encoding="UTF-8"?>`)
		w.started = true
	}
	w.breakLine()

	display, declare := w.resolve(n)
	w.write("<" + display)
	w.frames = append(w.frames, frame{name: n, display: display, open: true})
	if declare != "" {
		fr := &w.frames[len(w.frames)-1]
		fr.declared = map[string]string{declare: n.Space}
		w.write(" xmlns:" + declare + `="` + escaper.Replace(n.Space) + `"`)
	}
	w.started = true
	return w.err
}

// Attribute writes one attribute. It is only legal while the current
// element's start tag is open, before any text or child element.
func (w *Writer) Attribute(n token.Name, value string) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) == 0 || !w.frames[len(w.frames)-1].open {
		return w.fail(errors.Errorf("attribute %s written outside an open start tag", n))
	}
	display, declare := w.resolve(n)
	if declare != "" {
		fr := &w.frames[len(w.frames)-1]
		if fr.declared == nil {
			fr.declared = map[string]string{}
		}
		fr.declared[declare] = n.Space
		w.write(" xmlns:" + declare + `="` + escaper.Replace(n.Space) + `"`)
	}
	w.write(" " + display + `="` + escaper.Replace(value) + `"`)
	return w.err
}

// Text writes character data inside the current element, escaping
// reserved characters. Text and child elements are mutually exclusive
// within one element. Writing the empty string is a no-op, so an
// element given no other content still closes in self-closing form.
func (w *Writer) Text(s string) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) == 0 {
		return w.fail(errors.New("text written outside any element"))
	}
	fr := &w.frames[len(w.frames)-1]
	if fr.children {
		return w.fail(errors.Errorf("cannot write text inside %s: element already holds child elements", fr.name))
	}
	if s == "" {
		return nil
	}
	w.finishStartTag()
	fr.hasText = true
	w.write(escaper.Replace(s))
	return w.err
}

// EndElement closes the innermost open element, which must be named n.
// An element that received no text or child elements closes in
// self-closing form.
func (w *Writer) EndElement(n token.Name) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) == 0 {
		return w.fail(errors.Errorf("closing %s with no element open", n))
	}
	fr := w.frames[len(w.frames)-1]
	if !fr.name.Match(n) {
		return w.fail(errors.Errorf("closing %s while %s is open", n, fr.name))
	}
	w.frames = w.frames[:len(w.frames)-1]
	if fr.open {
		w.write("/>")
		return w.err
	}
	if fr.children {
		w.breakLine()
	}
	w.write("</" + fr.display + ">")
	return w.err
}

// finishStartTag emits the '>' ending the innermost start tag, if it
// is still open.
func (w *Writer) finishStartTag() {
	if len(w.frames) == 0 {
		return
	}
	fr := &w.frames[len(w.frames)-1]
	if fr.open {
		fr.open = false
		w.write(">")
	}
}

// breakLine starts a new output line at the current nesting depth when
// indentation is configured.
func (w *Writer) breakLine() {
	if w.indent == "" || !w.started {
		return
	}
	w.write("\n" + strings.Repeat(w.indent, len(w.frames)))
}

// resolve maps n to its display form, also reporting the prefix to
// declare when the name's namespace has no usable binding in scope.
func (w *Writer) resolve(n token.Name) (display, declare string) {
	if n.Space == "" {
		return n.Local, ""
	}
	if p, ok := w.prefixOf(n.Space); ok {
		return p + ":" + n.Local, ""
	}
	p := n.Prefix
	if p == "" {
		w.nextPrefix++
		p = "n" + strconv.Itoa(w.nextPrefix)
	}
	return p + ":" + n.Local, p
}

// prefixOf returns a prefix bound to the namespace URI space,
// preferring the innermost declaration.
func (w *Writer) prefixOf(space string) (string, bool) {
	for i := len(w.frames) - 1; i >= 0; i-- {
		for p, uri := range w.frames[i].declared {
			if uri == space {
				return p, true
			}
		}
	}
	return "", false
}
