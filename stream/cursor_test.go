package stream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andaru/xmlcodec/lexer"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

func cursorFor(input string) Cursor {
	return NewCursor(lexer.New([]byte(input)))
}

func TestCursorNextPeek(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a><b>x</b></a>")

	p, err := c.Peek()
	a.NoError(err)
	a.Equal(token.ElementOpen{Name: token.QName("a")}, p)
	p2, err := c.PeekAt(2)
	a.NoError(err)
	a.Equal(token.ElementOpen{Name: token.QName("b")}, p2)
	p3, err := c.PeekAt(3)
	a.NoError(err)
	a.Equal(token.Text{Value: "x"}, p3)

	// peeking consumes nothing
	a.Equal(0, c.Depth())
	n, err := c.Next()
	a.NoError(err)
	a.Equal(p, n)
	a.Equal(1, c.Depth())

	// the queue shifts with consumption
	p, err = c.Peek()
	a.NoError(err)
	a.Equal(p2, p)
}

func TestCursorPeekAtBounds(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a/>")
	a.Panics(func() { _, _ = c.PeekAt(0) })
	a.Panics(func() { _, _ = c.PeekAt(maxLookahead + 1) })
}

func TestCursorPeekPastEnd(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a/>")
	for i := 0; i < 3; i++ { // open, close, end of document
		_, err := c.Next()
		a.NoError(err)
	}
	p, err := c.PeekAt(2)
	a.NoError(err)
	a.Equal(token.EndOfDocument{}, p)
}

func TestCursorSkipSubtree(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a><b><c>x</c></b><e>y</e></a>")

	_, err := c.Next() // <a>
	a.NoError(err)
	a.NoError(c.SkipSubtree()) // discards <b><c>x</c></b>
	a.Equal(1, c.Depth())

	n, err := c.Next()
	a.NoError(err)
	a.Equal(token.ElementOpen{Name: token.QName("e")}, n)

	// a text value is skipped alone
	a.NoError(c.SkipSubtree())
	n, err = c.Next()
	a.NoError(err)
	a.Equal(token.ElementClose{Name: token.QName("e")}, n)

	// at a close token the skip is a no-op
	a.NoError(c.SkipSubtree())
	n, err = c.Next()
	a.NoError(err)
	a.Equal(token.ElementClose{Name: token.QName("a")}, n)

	// and again at the end of the document
	a.NoError(c.SkipSubtree())
	n, err = c.Next()
	a.NoError(err)
	a.Equal(token.EndOfDocument{}, n)
}

// TestCursorSkipSubtreeDepthInvariant skips from every position in a
// document and requires the depth to be unchanged each time.
func TestCursorSkipSubtreeDepthInvariant(t *testing.T) {
	const doc = "<a><b><c>x</c><d/></b>y<e/></a>"
	const tokens = 13
	for k := 0; k <= tokens; k++ {
		t.Run(fmt.Sprintf("position-%d", k), func(t *testing.T) {
			a := assert.New(t)
			c := cursorFor(doc)
			for i := 0; i < k; i++ {
				_, err := c.Next()
				a.NoError(err)
			}
			before := c.Depth()
			a.NoError(c.SkipSubtree())
			a.Equal(before, c.Depth())
		})
	}
}

func TestCursorSubtree(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a><b>x</b></a>")
	a.Equal(0, c.StartDepth())

	_, err := c.Next() // <a>
	a.NoError(err)

	flat := c.Subtree(AtCurrentElement)
	a.Equal(1, flat.StartDepth())
	wrapped := c.Subtree(AtFirstChild)
	a.Equal(2, wrapped.StartDepth())

	// subtree cursors share the parent's read head
	n, err := wrapped.Next()
	a.NoError(err)
	a.Equal(token.ElementOpen{Name: token.QName("b")}, n)
	a.Equal(2, c.Depth())
	pp, err := c.Peek()
	a.NoError(err)
	ps, err := wrapped.Peek()
	a.NoError(err)
	a.Equal(pp, ps)
}

func TestCursorLexerError(t *testing.T) {
	a := assert.New(t)
	c := cursorFor("<a>&bad;</a>")

	// the first token is clean, the second is not
	_, err := c.PeekAt(1)
	a.NoError(err)
	_, err = c.PeekAt(2)
	a.Error(err)
	a.True(xmlerr.IsKind(err, xmlerr.KindMalformedDocument))

	// queued clean tokens still drain before the error repeats
	n, err := c.Next()
	a.NoError(err)
	a.Equal(token.ElementOpen{Name: token.QName("a")}, n)
	_, err = c.Next()
	a.Error(err)
	_, err = c.Next()
	a.Error(err)
}
