package decode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/stream"
	"github.com/andaru/xmlcodec/token"
	"github.com/andaru/xmlcodec/xmlerr"
)

// elementText consumes the text content and closing tag of an element
// whose opening tag has already been consumed. An immediately closed
// element reads as the empty string, making <a/> and <a></a>
// indistinguishable here.
func elementText(cur stream.Cursor) (string, error) {
	tok, err := cur.Next()
	if err != nil {
		return "", err
	}
	switch t := tok.(type) {
	case token.Text:
		cl, err := cur.Next()
		if err != nil {
			return "", err
		}
		if _, ok := cl.(token.ElementClose); !ok {
			return "", errors.WithStack(xmlerr.UnexpectedToken(
				xmlerr.WithMessagef("expected a close tag after text, got %s", cl)))
		}
		return t.Value, nil
	case token.ElementClose:
		return "", nil
	case token.EndOfDocument:
		// truncated document
		return "", nil
	}
	return "", errors.WithStack(xmlerr.UnexpectedToken(
		xmlerr.WithMessagef("expected text content, got %s", tok)))
}

// drainElement consumes the remainder of the element the cursor is
// positioned inside, through its closing tag.
func drainElement(cur stream.Cursor) error {
	target := cur.Depth() - 1
	for cur.Depth() > target {
		tok, err := cur.Next()
		if err != nil {
			return err
		}
		if _, done := tok.(token.EndOfDocument); done {
			return nil
		}
	}
	return nil
}

// Numeric and boolean transforms tolerate surrounding whitespace, as
// produced by indented documents. Failures carry the field value error
// kind with the offending text.

func parseBool(s string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, errors.WithStack(xmlerr.FieldValue(
			xmlerr.WithMessagef("cannot decode %q as bool", s),
			xmlerr.WithCause(err)))
	}
	return v, nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.WithStack(xmlerr.FieldValue(
			xmlerr.WithMessagef("cannot decode %q as int32", s),
			xmlerr.WithCause(err)))
	}
	return int32(v), nil
}

func parseInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.WithStack(xmlerr.FieldValue(
			xmlerr.WithMessagef("cannot decode %q as int64", s),
			xmlerr.WithCause(err)))
	}
	return v, nil
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, errors.WithStack(xmlerr.FieldValue(
			xmlerr.WithMessagef("cannot decode %q as float32", s),
			xmlerr.WithCause(err)))
	}
	return float32(v), nil
}

func parseFloat64(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.WithStack(xmlerr.FieldValue(
			xmlerr.WithMessagef("cannot decode %q as float64", s),
			xmlerr.WithCause(err)))
	}
	return v, nil
}
