package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andaru/xmlcodec/schema"
	"github.com/andaru/xmlcodec/token"
)

// stringsOf drains l as a string list, using nil for absent members.
func stringsOf(t *testing.T, l *ListDecoder) []*string {
	t.Helper()
	var out []*string
	for {
		more, err := l.HasNext()
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		if !more {
			return out
		}
		has, err := l.NextHasValue()
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		if !has {
			assert.NoError(t, l.Null())
			out = append(out, nil)
			continue
		}
		v, err := l.String()
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		out = append(out, &v)
	}
}

func deref(vs []*string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *v)
	}
	return out
}

// listThrough resolves the single list field of obj and returns its
// decoder.
func listThrough(t *testing.T, doc string, obj *schema.Object, f *schema.Field) (*StructDecoder, *ListDecoder) {
	t.Helper()
	ck := assert.New(t)
	d, err := NewDeserializer([]byte(doc)).DeserializeStruct(obj)
	ck.NoError(err)
	idx, ok, err := d.NextField()
	ck.NoError(err)
	ck.True(ok)
	ck.Equal(f.Index(), idx)
	l, err := d.List(f)
	ck.NoError(err)
	return d, l
}

func TestListDecoderFlattenedWrappedEquivalence(t *testing.T) {
	for _, tc := range []struct {
		name  string
		doc   string
		field *schema.Field
	}{
		{
			name:  "wrapped",
			doc:   `<R><wrapper><member>x</member><member>y</member></wrapper></R>`,
			field: schema.NewField(0, schema.KindList, token.QName("wrapper")),
		},
		{
			name:  "flattened",
			doc:   `<R><list>x</list><list>y</list></R>`,
			field: schema.NewField(0, schema.KindList, token.QName("list"), schema.Flattened()),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			obj := schema.NewObject(token.QName("R"), tc.field)
			d, l := listThrough(t, tc.doc, obj, tc.field)
			ck.Equal([]string{"x", "y"}, deref(stringsOf(t, l)))

			_, ok, err := d.NextField()
			ck.NoError(err)
			ck.False(ok)
		})
	}
}

func TestListDecoderFlattenedStopsAtSibling(t *testing.T) {
	ck := assert.New(t)
	tag := schema.NewField(0, schema.KindList, token.QName("tag"), schema.Flattened())
	obj := schema.NewObject(token.QName("R"),
		tag,
		schema.NewField(1, schema.KindScalar, token.QName("other")),
	)
	doc := `<R><tag>x</tag><tag>y</tag><other>z</other></R>`

	d, l := listThrough(t, doc, obj, tag)
	ck.Equal([]string{"x", "y"}, deref(stringsOf(t, l)))

	idx, ok, err := d.NextField()
	ck.NoError(err)
	ck.True(ok)
	ck.Equal(1, idx)
	v, err := d.String()
	ck.NoError(err)
	ck.Equal("z", v)
}

func TestListDecoderElementNameOverride(t *testing.T) {
	ck := assert.New(t)
	vals := schema.NewField(0, schema.KindList, token.QName("vals"),
		schema.WithElementName("item"))
	obj := schema.NewObject(token.QName("R"), vals)
	doc := `<R><vals><item>1</item><item>2</item></vals></R>`

	_, l := listThrough(t, doc, obj, vals)
	ck.Equal([]string{"1", "2"}, deref(stringsOf(t, l)))
}

func TestListDecoderAbsentMembers(t *testing.T) {
	ck := assert.New(t)
	vals := schema.NewField(0, schema.KindList, token.QName("vals"))
	obj := schema.NewObject(token.QName("R"), vals)
	doc := `<R><vals><member>x</member><member/><member></member><member>y</member></vals></R>`

	_, l := listThrough(t, doc, obj, vals)
	ck.Equal([]string{"x", "<nil>", "<nil>", "y"}, deref(stringsOf(t, l)))
}

func TestListDecoderIntMembers(t *testing.T) {
	ck := assert.New(t)
	vals := schema.NewField(0, schema.KindList, token.QName("vals"))
	obj := schema.NewObject(token.QName("R"), vals)
	doc := `<R><vals><member>3</member><member>-14</member></vals></R>`

	_, l := listThrough(t, doc, obj, vals)
	var got []int32
	for {
		more, err := l.HasNext()
		ck.NoError(err)
		if !more {
			break
		}
		v, err := l.Int32()
		ck.NoError(err)
		got = append(got, v)
	}
	ck.Equal([]int32{3, -14}, got)
}

func TestListDecoderUnknownElementInWrapper(t *testing.T) {
	ck := assert.New(t)
	vals := schema.NewField(0, schema.KindList, token.QName("vals"))
	obj := schema.NewObject(token.QName("R"), vals)
	doc := `<R><vals><member>x</member><junk><deep>1</deep></junk><member>y</member></vals></R>`

	_, l := listThrough(t, doc, obj, vals)
	ck.Equal([]string{"x", "y"}, deref(stringsOf(t, l)))
}

func TestListDecoderStructMembers(t *testing.T) {
	ck := assert.New(t)
	point := schema.NewObject(token.QName("point"),
		schema.NewField(0, schema.KindScalar, token.QName("x")),
		schema.NewField(1, schema.KindScalar, token.QName("y")),
	)
	pts := schema.NewField(0, schema.KindList, token.QName("pts"),
		schema.WithElementName("point"))
	obj := schema.NewObject(token.QName("R"), pts)
	doc := `<R><pts><point><x>1</x><y>2</y></point><point><x>3</x><y>4</y></point></pts></R>`

	d, l := listThrough(t, doc, obj, pts)
	var got [][2]int32
	for {
		more, err := l.HasNext()
		ck.NoError(err)
		if !more {
			break
		}
		sd, err := l.Struct(point)
		ck.NoError(err)
		var p [2]int32
		drive(t, sd, func(idx int) error {
			v, err := sd.Int32()
			p[idx] = v
			return err
		})
		got = append(got, p)
	}
	ck.Equal([][2]int32{{1, 2}, {3, 4}}, got)

	_, ok, err := d.NextField()
	ck.NoError(err)
	ck.False(ok)
}

func TestListDecoderFlattenedStructMembers(t *testing.T) {
	ck := assert.New(t)
	point := schema.NewObject(token.QName("pt"),
		schema.NewField(0, schema.KindScalar, token.QName("x")),
	)
	pts := schema.NewField(0, schema.KindList, token.QName("pt"), schema.Flattened())
	obj := schema.NewObject(token.QName("R"), pts)
	doc := `<R><pt><x>1</x></pt><pt><x>2</x></pt></R>`

	_, l := listThrough(t, doc, obj, pts)
	var got []int32
	for {
		more, err := l.HasNext()
		ck.NoError(err)
		if !more {
			break
		}
		sd, err := l.Struct(point)
		ck.NoError(err)
		drive(t, sd, func(int) error {
			v, err := sd.Int32()
			got = append(got, v)
			return err
		})
	}
	ck.Equal([]int32{1, 2}, got)
}

func TestListDecoderNestedLists(t *testing.T) {
	ck := assert.New(t)
	inner := schema.NewField(0, schema.KindList, token.QName("row"))
	rows := schema.NewField(0, schema.KindList, token.QName("rows"),
		schema.WithElementName("row"))
	obj := schema.NewObject(token.QName("R"), rows)
	doc := `<R><rows><row><member>a</member><member>b</member></row><row><member>c</member></row></rows></R>`

	_, l := listThrough(t, doc, obj, rows)
	var got [][]string
	for {
		more, err := l.HasNext()
		ck.NoError(err)
		if !more {
			break
		}
		il, err := l.List(inner)
		ck.NoError(err)
		got = append(got, deref(stringsOf(t, il)))
	}
	ck.Equal([][]string{{"a", "b"}, {"c"}}, got)
}
