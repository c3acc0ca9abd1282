package encode

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/stretchr/testify/assert"

	"github.com/andaru/xmlcodec/token"
)

// The emitted documents are cross-checked with an independent XML
// parser, so the writer's namespace declarations and escaping are
// verified against something other than this module's own lexer.
var (
	xpPointX  = xpath.MustCompile(`/shape/point/x`)
	xpPointNS = xpath.MustCompile(`/shape/*[local-name()='point' and namespace-uri()='urn:example:geo']`)
	xpMembers = xpath.MustCompile(`/list/member`)
)

func TestWriterDocument(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	ck.NoError(w.StartElement(token.QName("shape")))
	ck.NoError(w.StartElement(token.QName("point")))
	ck.NoError(w.Attribute(token.QName("id"), "p1"))
	ck.NoError(w.StartElement(token.QName("x")))
	ck.NoError(w.Text("1"))
	ck.NoError(w.EndElement(token.QName("x")))
	ck.NoError(w.StartElement(token.QName("y")))
	ck.NoError(w.Text("2"))
	ck.NoError(w.EndElement(token.QName("y")))
	ck.NoError(w.EndElement(token.QName("point")))
	ck.NoError(w.EndElement(token.QName("shape")))
	ck.NoError(w.Err())
	ck.Equal(0, w.Depth())

	out := b.String()
	ck.Equal(`<shape><point id="p1"><x>1</x><y>2</y></point></shape>`, out)

	doc, err := xmlquery.Parse(strings.NewReader(out))
	ck.NoError(err)
	x := xmlquery.QuerySelector(doc, xpPointX)
	if ck.NotNil(x) {
		ck.Equal("1", x.InnerText())
	}
	point := xmlquery.FindOne(doc, "/shape/point")
	if ck.NotNil(point) {
		ck.Equal("p1", point.SelectAttr("id"))
	}
}

func TestWriterSelfClosing(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(w *Writer)
		want  string
	}{
		{
			name: "no content",
			build: func(w *Writer) {
				w.StartElement(token.QName("a"))
				w.EndElement(token.QName("a"))
			},
			want: `<a/>`,
		},
		{
			name: "attribute only",
			build: func(w *Writer) {
				w.StartElement(token.QName("a"))
				w.Attribute(token.QName("id"), "1")
				w.EndElement(token.QName("a"))
			},
			want: `<a id="1"/>`,
		},
		{
			name: "empty text stays self closing",
			build: func(w *Writer) {
				w.StartElement(token.QName("a"))
				w.Text("")
				w.EndElement(token.QName("a"))
			},
			want: `<a/>`,
		},
		{
			name: "empty child inside parent",
			build: func(w *Writer) {
				w.StartElement(token.QName("a"))
				w.StartElement(token.QName("b"))
				w.EndElement(token.QName("b"))
				w.EndElement(token.QName("a"))
			},
			want: `<a><b/></a>`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			var b strings.Builder
			w := NewWriter(&b)
			tc.build(w)
			ck.NoError(w.Err())
			ck.Equal(tc.want, b.String())
		})
	}
}

func TestWriterEscaping(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	ck.NoError(w.StartElement(token.QName("a")))
	ck.NoError(w.Attribute(token.QName("q"), `5 < 6 & "x"`))
	ck.NoError(w.Text(`1 & 2 <> 'three'`))
	ck.NoError(w.EndElement(token.QName("a")))

	out := b.String()
	ck.Equal(`<a q="5 &lt; 6 &amp; &quot;x&quot;">1 &amp; 2 &lt;&gt; &apos;three&apos;</a>`, out)

	// an independent parser restores the original values
	doc, err := xmlquery.Parse(strings.NewReader(out))
	ck.NoError(err)
	a := xmlquery.FindOne(doc, "/a")
	if ck.NotNil(a) {
		ck.Equal(`1 & 2 <> 'three'`, a.InnerText())
		ck.Equal(`5 < 6 & "x"`, a.SelectAttr("q"))
	}
}

func TestWriterNamespaces(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	geo := "urn:example:geo"
	ck.NoError(w.StartElement(token.QName("shape")))
	ck.NoError(w.StartElement(token.QName("point", geo)))
	ck.NoError(w.StartElement(token.QName("x", geo)))
	ck.NoError(w.Text("1"))
	ck.NoError(w.EndElement(token.QName("x", geo)))
	ck.NoError(w.EndElement(token.QName("point", geo)))
	ck.NoError(w.EndElement(token.QName("shape")))

	out := b.String()
	// the first namespaced element declares n1; the child reuses it
	ck.Equal(`<shape><n1:point xmlns:n1="urn:example:geo"><n1:x>1</n1:x></n1:point></shape>`, out)

	doc, err := xmlquery.Parse(strings.NewReader(out))
	ck.NoError(err)
	ck.NotNil(xmlquery.QuerySelector(doc, xpPointNS))
}

func TestWriterExplicitPrefix(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	n := token.Name{Local: "point", Space: "urn:example:geo", Prefix: "geo"}
	ck.NoError(w.StartElement(n))
	ck.NoError(w.Text("x"))
	ck.NoError(w.EndElement(n))

	ck.Equal(`<geo:point xmlns:geo="urn:example:geo">x</geo:point>`, b.String())
}

func TestWriterNamespacedAttribute(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	ck.NoError(w.StartElement(token.QName("a")))
	ck.NoError(w.Attribute(token.QName("id", "urn:example:meta"), "7"))
	ck.NoError(w.EndElement(token.QName("a")))

	ck.Equal(`<a xmlns:n1="urn:example:meta" n1:id="7"/>`, b.String())
}

func TestWriterDistinctNamespacePrefixes(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	ck.NoError(w.StartElement(token.QName("a", "urn:one")))
	ck.NoError(w.StartElement(token.QName("b", "urn:two")))
	ck.NoError(w.EndElement(token.QName("b", "urn:two")))
	ck.NoError(w.EndElement(token.QName("a", "urn:one")))

	ck.Equal(`<n1:a xmlns:n1="urn:one"><n2:b xmlns:n2="urn:two"/></n1:a>`, b.String())
}

func TestWriterDeclarationAndIndent(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b, WithDeclaration(), WithIndent("  "))

	ck.NoError(w.StartElement(token.QName("list")))
	ck.NoError(w.StartElement(token.QName("member")))
	ck.NoError(w.Text("x"))
	ck.NoError(w.EndElement(token.QName("member")))
	ck.NoError(w.StartElement(token.QName("member")))
	ck.NoError(w.EndElement(token.QName("member")))
	ck.NoError(w.EndElement(token.QName("list")))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<list>
  <member>x</member>
  <member/>
</list>`
	ck.Equal(want, b.String())

	doc, err := xmlquery.Parse(strings.NewReader(b.String()))
	ck.NoError(err)
	ck.Len(xmlquery.QuerySelectorAll(doc, xpMembers), 2)
}

func TestWriterMisuse(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(w *Writer) error
	}{
		{
			name: "text then child element",
			build: func(w *Writer) error {
				w.StartElement(token.QName("a"))
				w.Text("x")
				return w.StartElement(token.QName("b"))
			},
		},
		{
			name: "child element then text",
			build: func(w *Writer) error {
				w.StartElement(token.QName("a"))
				w.StartElement(token.QName("b"))
				w.EndElement(token.QName("b"))
				return w.Text("x")
			},
		},
		{
			name: "attribute after start tag closed",
			build: func(w *Writer) error {
				w.StartElement(token.QName("a"))
				w.Text("x")
				return w.Attribute(token.QName("id"), "1")
			},
		},
		{
			name: "attribute with no element",
			build: func(w *Writer) error {
				return w.Attribute(token.QName("id"), "1")
			},
		},
		{
			name: "mismatched end element",
			build: func(w *Writer) error {
				w.StartElement(token.QName("a"))
				return w.EndElement(token.QName("b"))
			},
		},
		{
			name: "end with no element open",
			build: func(w *Writer) error {
				return w.EndElement(token.QName("a"))
			},
		},
		{
			name: "text with no element",
			build: func(w *Writer) error {
				return w.Text("x")
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			var b strings.Builder
			w := NewWriter(&b)
			err := tc.build(w)
			ck.Error(err)
			// the error sticks: further writes fail identically
			ck.Equal(err, w.StartElement(token.QName("z")))
			ck.Equal(err, w.Err())
		})
	}
}

func TestWriterMultipleRoots(t *testing.T) {
	ck := assert.New(t)
	var b strings.Builder
	w := NewWriter(&b)

	for _, v := range []string{"1", "2"} {
		ck.NoError(w.StartElement(token.QName("item")))
		ck.NoError(w.Text(v))
		ck.NoError(w.EndElement(token.QName("item")))
	}
	ck.Equal(`<item>1</item><item>2</item>`, b.String())
}

func BenchmarkWriter(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var sb strings.Builder
		w := NewWriter(&sb)
		w.StartElement(token.QName("list"))
		for j := 0; j < 10; j++ {
			w.StartElement(token.QName("member"))
			w.Attribute(token.QName("id"), "x")
			w.Text("value")
			w.EndElement(token.QName("member"))
		}
		w.EndElement(token.QName("list"))
		if err := w.Err(); err != nil {
			b.Fatal(err)
		}
	}
}
