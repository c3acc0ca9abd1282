package stream

import (
	"fmt"

	"github.com/andaru/xmlcodec/lexer"
	"github.com/andaru/xmlcodec/token"
)

// maxLookahead is the deepest position PeekAt accepts. Two tokens of
// lookahead are required to check map entries for values; one extra is
// kept for headroom.
const maxLookahead = 3

// SubtreeMode selects the start depth of a cursor returned by Subtree.
type SubtreeMode int

const (
	// AtCurrentElement roots the subtree at the element already open at
	// the cursor's position. Used for flattened collections, whose
	// members are siblings with no wrapper element.
	AtCurrentElement SubtreeMode = iota
	// AtFirstChild roots the subtree one level below the cursor's
	// position. Used for wrapped collections after their wrapper's open
	// token has been consumed.
	AtFirstChild
)

type entry struct {
	tok   token.Token
	depth int // nesting depth after tok is consumed
}

// source is the single read head shared by a cursor and every subtree
// cursor derived from it.
type source struct {
	lex   *lexer.Lexer
	ahead []entry
	depth int
}

// fill extends the lookahead queue to at least n entries. Lexer errors
// are sticky, so a failed fill is simply reported; nothing is queued
// for the failing position.
func (s *source) fill(n int) error {
	for len(s.ahead) < n {
		tok, err := s.lex.Next()
		if err != nil {
			return err
		}
		s.ahead = append(s.ahead, entry{tok: tok, depth: s.lex.Depth()})
	}
	return nil
}

func (s *source) next() (token.Token, error) {
	if len(s.ahead) == 0 {
		if err := s.fill(1); err != nil {
			return nil, err
		}
	}
	e := s.ahead[0]
	s.ahead = s.ahead[1:]
	s.depth = e.depth
	return e.tok, nil
}

func (s *source) peekAt(n int) (token.Token, error) {
	if err := s.fill(n); err != nil {
		return nil, err
	}
	return s.ahead[n-1].tok, nil
}

// Cursor is a depth-scoped view onto a token stream.
//
// The zero Cursor is not usable; obtain one from NewCursor or Subtree.
// Cursors are not safe for concurrent use.
type Cursor struct {
	src   *source
	start int
}

// NewCursor returns a root cursor over l, with a start depth of zero.
func NewCursor(l *lexer.Lexer) Cursor {
	return Cursor{src: &source{lex: l}}
}

// Next consumes and returns the next token.
func (c Cursor) Next() (token.Token, error) { return c.src.next() }

// Peek returns the next token without consuming it.
func (c Cursor) Peek() (token.Token, error) { return c.src.peekAt(1) }

// PeekAt returns the nth upcoming token without consuming anything;
// PeekAt(1) is equivalent to Peek. n outside [1, 3] is a programmer
// error and panics.
func (c Cursor) PeekAt(n int) (token.Token, error) {
	if n < 1 || n > maxLookahead {
		panic(fmt.Sprintf("PeekAt(%d): lookahead position must be between 1 and %d", n, maxLookahead))
	}
	return c.src.peekAt(n)
}

// Depth returns the element nesting depth after the last consumed
// token. Peeked tokens do not count.
func (c Cursor) Depth() int { return c.src.depth }

// StartDepth returns the depth at which this cursor's element or
// subtree begins. Tokens at depths above StartDepth belong to the
// subtree; a close token arriving at StartDepth ends it.
func (c Cursor) StartDepth() int { return c.start }

// SkipSubtree discards the value at the cursor position. When the next
// token opens an element, the element and all of its descendants are
// consumed through the matching close; a text token is consumed alone.
// A close token or the end of the document is left in place, so depth
// is identical before and after the call.
func (c Cursor) SkipSubtree() error {
	tok, err := c.src.peekAt(1)
	if err != nil {
		return err
	}
	switch tok.(type) {
	case token.ElementClose, token.EndOfDocument:
		return nil
	case token.Text:
		_, err = c.src.next()
		return err
	}

	before := c.src.depth
	for {
		tok, err := c.src.next()
		if err != nil {
			return err
		}
		if _, done := tok.(token.EndOfDocument); done {
			return nil
		}
		if c.src.depth == before {
			return nil
		}
	}
}

// Subtree returns a cursor over a nested region of the document,
// sharing this cursor's read head. With AtCurrentElement the subtree
// starts at the cursor's current depth; with AtFirstChild it starts one
// level deeper.
func (c Cursor) Subtree(mode SubtreeMode) Cursor {
	start := c.src.depth
	if mode == AtFirstChild {
		start++
	}
	return Cursor{src: c.src, start: start}
}
