package lexer

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/andaru/xmlcodec/xmlerr"
)

// maximumEntityLength bounds the search for the terminating ';' of a
// reference. The longest standard form is "&#x10FFFF;".
const maximumEntityLength = 12

// unescape resolves entity and character references in b. base is the
// input offset of b[0], used for error positions. The returned slice is
// freshly allocated; callers check for '&' first to keep the common path
// allocation free.
func unescape(b []byte, base int) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		if b[i] != '&' {
			out = append(out, b[i])
			i++
			continue
		}
		semi := bytes.IndexByte(b[i:], ';')
		if semi < 1 || semi > maximumEntityLength {
			return nil, errors.WithStack(xmlerr.MalformedDocument(
				xmlerr.WithMessage("unterminated entity reference"),
				xmlerr.WithOffset(base+i)))
		}
		s, err := resolveReference(b[i+1 : i+semi])
		if err != nil {
			return nil, errors.WithStack(xmlerr.MalformedDocument(
				xmlerr.WithMessagef("%s %q", err, b[i:i+semi+1]),
				xmlerr.WithOffset(base+i)))
		}
		out = append(out, s...)
		i += semi + 1
	}
	return out, nil
}

// resolveReference decodes the body of a reference, excluding the
// leading '&' and trailing ';'.
func resolveReference(name []byte) (string, error) {
	switch string(name) {
	case "amp":
		return "&", nil
	case "lt":
		return "<", nil
	case "gt":
		return ">", nil
	case "quot":
		return `"`, nil
	case "apos":
		return "'", nil
	}
	if len(name) == 0 || name[0] != '#' {
		return "", errors.New("unknown entity reference")
	}
	digits, radix := name[1:], 10
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		digits, radix = digits[1:], 16
	}
	if len(digits) == 0 {
		return "", errors.New("empty character reference")
	}
	v, err := strconv.ParseUint(string(digits), radix, 32)
	if err != nil || v > utf8.MaxRune {
		return "", errors.New("invalid character reference")
	}
	return string(rune(v)), nil
}
