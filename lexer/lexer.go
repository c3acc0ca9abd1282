package lexer

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// Lexer is a pull tokenizer over a single XML document held in memory.
//
// Lexer is not safe for concurrent use.
type Lexer struct {
	data []byte
	pos  int

	// depth is the element nesting depth after the last token returned
	// by Next. scanDepth is the depth at the scan head, which may be one
	// token ahead of depth while a Peek is outstanding.
	depth     int
	scanDepth int

	open    []token.Name // open element stack, innermost last
	scopes  scopes
	pending *token.ElementClose // synthesized close of a self-closing element
	memo    *lookahead
	err     error
}

type lookahead struct {
	tok   token.Token
	depth int
	err   error
}

// New returns a Lexer reading the XML document in data. The buffer is
// borrowed, not copied; it must not be modified while the Lexer is in
// use.
func New(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Next returns the next token. Once the document is exhausted it returns
// token.EndOfDocument forever; once a scan fails it returns the same
// error forever.
func (l *Lexer) Next() (token.Token, error) {
	if m := l.memo; m != nil {
		l.memo = nil
		l.depth = m.depth
		return m.tok, m.err
	}
	tok, err := l.produce()
	l.depth = l.scanDepth
	return tok, err
}

// Peek returns the token the next call to Next will return, without
// consuming it. Repeated calls to Peek return the same token. Peek does
// not change the value reported by Depth.
func (l *Lexer) Peek() (token.Token, error) {
	if l.memo == nil {
		tok, err := l.produce()
		l.memo = &lookahead{tok: tok, depth: l.scanDepth, err: err}
	}
	return l.memo.tok, l.memo.err
}

// Depth returns the element nesting depth after the last consumed token:
// the number of elements currently open. An element's open token raises
// the depth to the element's own depth; its close token lowers it again.
func (l *Lexer) Depth() int { return l.depth }

// Offset returns the byte position of the scan head. While a Peek is
// outstanding this includes the peeked token's input.
func (l *Lexer) Offset() int { return l.pos }

func (l *Lexer) produce() (token.Token, error) {
	if l.err != nil {
		return nil, l.err
	}
	if cl := l.pending; cl != nil {
		l.pending = nil
		l.popElement()
		return *cl, nil
	}

	// Character data accumulates across comments, processing
	// instructions and CDATA sections until the next tag. CDATA forces
	// emission even when the run is all whitespace.
	var text []byte
	var cdata bool

	emit := func() bool { return cdata || !isAllSpace(text) }

	for {
		if l.pos >= len(l.data) {
			if len(text) > 0 && emit() {
				return token.Text{Value: string(text)}, nil
			}
			l.scanDepth = 0
			return token.EndOfDocument{}, nil
		}
		if l.data[l.pos] != '<' {
			seg, err := l.scanText()
			if err != nil {
				return l.fail(err)
			}
			text = append(text, seg...)
			continue
		}
		switch {
		case l.lookingAt("<![CDATA["):
			seg, err := l.scanCDATA()
			if err != nil {
				return l.fail(err)
			}
			text = append(text, seg...)
			cdata = true
		case l.lookingAt("<!--"):
			if err := l.skipComment(); err != nil {
				return l.fail(err)
			}
		case l.lookingAt("<?"):
			if err := l.skipInstruction(); err != nil {
				return l.fail(err)
			}
		case l.lookingAt("<!"):
			if err := l.skipDeclaration(); err != nil {
				return l.fail(err)
			}
		default:
			// a real tag ends any pending text run
			if len(text) > 0 && emit() {
				return token.Text{Value: string(text)}, nil
			}
			if l.lookingAt("</") {
				return l.scanCloseTag()
			}
			return l.scanOpenTag()
		}
	}
}

func (l *Lexer) fail(err error) (token.Token, error) {
	l.err = err
	return nil, err
}

func (l *Lexer) lookingAt(prefix string) bool {
	return bytes.HasPrefix(l.data[l.pos:], []byte(prefix))
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.data) && isSpaceByte(l.data[l.pos]) {
		l.pos++
	}
}

// scanText consumes character data up to the next '<' or the end of
// input, resolving references. The returned slice views the input when
// no reference appears.
func (l *Lexer) scanText() ([]byte, error) {
	start := l.pos
	end := bytes.IndexByte(l.data[start:], '<')
	if end == -1 {
		end = len(l.data)
	} else {
		end += start
	}
	seg := l.data[start:end]
	l.pos = end
	if bytes.IndexByte(seg, '&') == -1 {
		return seg, nil
	}
	return unescape(seg, start)
}

func (l *Lexer) scanCDATA() ([]byte, error) {
	start := l.pos
	l.pos += len("<![CDATA[")
	end := bytes.Index(l.data[l.pos:], []byte("]]>"))
	if end == -1 {
		return nil, errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("unterminated CDATA section"),
			xmlerr.WithOffset(start)))
	}
	seg := l.data[l.pos : l.pos+end]
	l.pos += end + len("]]>")
	return seg, nil
}

func (l *Lexer) skipComment() error {
	start := l.pos
	l.pos += len("<!--")
	end := bytes.Index(l.data[l.pos:], []byte("-->"))
	if end == -1 {
		return errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("unterminated comment"),
			xmlerr.WithOffset(start)))
	}
	l.pos += end + len("-->")
	return nil
}

func (l *Lexer) skipInstruction() error {
	start := l.pos
	l.pos += len("<?")
	end := bytes.Index(l.data[l.pos:], []byte("?>"))
	if end == -1 {
		return errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("unterminated processing instruction"),
			xmlerr.WithOffset(start)))
	}
	l.pos += end + len("?>")
	return nil
}

// skipDeclaration consumes a markup declaration such as <!DOCTYPE ...>,
// honouring quoting and an internal subset in square brackets. The
// declaration is discarded; DTD processing is out of scope.
func (l *Lexer) skipDeclaration() error {
	start := l.pos
	l.pos += len("<!")
	var nest = 1
	var bracket int
	var quote byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			bracket++
		case c == ']':
			bracket--
		case c == '<':
			if bracket == 0 {
				nest++
			}
		case c == '>':
			if bracket == 0 {
				if nest--; nest == 0 {
					l.pos++
					return nil
				}
			}
		}
		l.pos++
	}
	return errors.WithStack(xmlerr.MalformedDocument(
		xmlerr.WithMessage("unterminated markup declaration"),
		xmlerr.WithOffset(start)))
}

func (l *Lexer) scanCloseTag() (token.Token, error) {
	start := l.pos
	l.pos += len("</")
	raw, err := l.scanName()
	if err != nil {
		return l.fail(err)
	}
	l.skipSpace()
	if l.pos >= len(l.data) || l.data[l.pos] != '>' {
		return l.fail(errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("missing '>' in close tag"),
			xmlerr.WithOffset(start))))
	}
	l.pos++
	if len(l.open) == 0 {
		return l.fail(errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessagef("close tag </%s> without open tag", raw),
			xmlerr.WithOffset(start))))
	}
	top := l.open[len(l.open)-1]
	if prefix, local := splitName(raw); prefix != top.Prefix || local != top.Local {
		return l.fail(errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessagef("close tag </%s> does not match open tag <%s>", raw, top),
			xmlerr.WithOffset(start))))
	}
	l.popElement()
	return token.ElementClose{Name: top}, nil
}

func (l *Lexer) scanOpenTag() (token.Token, error) {
	start := l.pos
	l.pos++ // '<'
	raw, err := l.scanName()
	if err != nil {
		return l.fail(err)
	}

	var attrs []rawAttr
	var decls map[string]string
	var selfClosing bool
scan:
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return l.fail(errors.WithStack(xmlerr.MalformedDocument(
				xmlerr.WithMessagef("missing '>' in tag <%s", raw),
				xmlerr.WithOffset(start))))
		}
		switch l.data[l.pos] {
		case '>':
			l.pos++
			break scan
		case '/':
			if l.pos+1 >= len(l.data) || l.data[l.pos+1] != '>' {
				return l.fail(errors.WithStack(xmlerr.MalformedDocument(
					xmlerr.WithMessagef("expected '/>' in tag <%s", raw),
					xmlerr.WithOffset(l.pos))))
			}
			l.pos += 2
			selfClosing = true
			break scan
		default:
			aname, aval, err := l.scanAttribute()
			if err != nil {
				return l.fail(err)
			}
			prefix, local := splitName(aname)
			switch {
			case prefix == "" && local == "xmlns":
				// default namespace declaration
				if decls == nil {
					decls = map[string]string{}
				}
				decls[""] = aval
			case prefix == "xmlns":
				if decls == nil {
					decls = map[string]string{}
				}
				decls[local] = aval
			default:
				attrs = append(attrs, rawAttr{name: aname, value: aval})
			}
		}
	}

	l.scopes.push(decls)
	name, err := l.resolveName(raw, true, start)
	if err != nil {
		return l.fail(err)
	}
	open := token.ElementOpen{Name: name, SelfClosing: selfClosing}
	for _, ra := range attrs {
		an, err := l.resolveName(ra.name, false, start)
		if err != nil {
			return l.fail(err)
		}
		open.Attrs = append(open.Attrs, token.Attr{Name: an, Value: ra.value})
	}
	l.open = append(l.open, name)
	l.scanDepth++
	if selfClosing {
		cl := open.End()
		l.pending = &cl
	}
	return open, nil
}

type rawAttr struct{ name, value string }

func (l *Lexer) scanAttribute() (name, value string, err error) {
	if name, err = l.scanName(); err != nil {
		return
	}
	l.skipSpace()
	if l.pos >= len(l.data) || l.data[l.pos] != '=' {
		err = errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessagef("expected '=' after attribute name %q", name),
			xmlerr.WithOffset(l.pos)))
		return
	}
	l.pos++
	l.skipSpace()
	value, err = l.scanQuoted()
	return
}

func (l *Lexer) scanQuoted() (string, error) {
	if l.pos >= len(l.data) || (l.data[l.pos] != '"' && l.data[l.pos] != '\'') {
		return "", errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("attribute value must be quoted"),
			xmlerr.WithOffset(l.pos)))
	}
	q := l.data[l.pos]
	start := l.pos + 1
	end := bytes.IndexByte(l.data[start:], q)
	if end == -1 {
		return "", errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("unterminated attribute value"),
			xmlerr.WithOffset(l.pos)))
	}
	seg := l.data[start : start+end]
	l.pos = start + end + 1
	if bytes.IndexByte(seg, '&') == -1 {
		return string(seg), nil
	}
	u, err := unescape(seg, start)
	return string(u), err
}

func (l *Lexer) scanName() (string, error) {
	start := l.pos
	for l.pos < len(l.data) && isNameByte(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return "", errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessage("expected a name"),
			xmlerr.WithOffset(start)))
	}
	return string(l.data[start:l.pos]), nil
}

// resolveName resolves raw against the in-scope prefix bindings. Elements
// without a prefix take the default namespace; attributes without a
// prefix take none.
func (l *Lexer) resolveName(raw string, element bool, offset int) (token.Name, error) {
	prefix, local := splitName(raw)
	if prefix == "" {
		n := token.Name{Local: local}
		if element {
			if uri, ok := l.scopes.lookup(""); ok {
				n.Space = uri
			}
		}
		return n, nil
	}
	uri, ok := l.scopes.lookup(prefix)
	if !ok {
		return token.Name{}, errors.WithStack(xmlerr.MalformedDocument(
			xmlerr.WithMessagef("undeclared namespace prefix %q in %q", prefix, raw),
			xmlerr.WithOffset(offset)))
	}
	return token.Name{Local: local, Space: uri, Prefix: prefix}, nil
}

func (l *Lexer) popElement() {
	l.open = l.open[:len(l.open)-1]
	l.scopes.pop()
	l.scanDepth--
}

func splitName(raw string) (prefix, local string) {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return "", raw
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '/', '>', '<', '=', '"', '\'':
		return false
	}
	return true
}

func isAllSpace(b []byte) bool {
	for _, c := range b {
		if !isSpaceByte(c) {
			return false
		}
	}
	return true
}
