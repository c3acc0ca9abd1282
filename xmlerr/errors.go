package xmlerr

import (
	"bytes"
	"errors"
	"fmt"
)

// Kind classifies decode errors.
type Kind int

const (
	// KindMalformedDocument is a lexical or structural XML error:
	// unterminated tag, mismatched close, bad escape, undeclared
	// namespace prefix. Fatal to the current decode.
	KindMalformedDocument Kind = iota
	// KindUnexpectedToken indicates the decoder met a token it cannot
	// handle in its current state, such as an element open where a field
	// with no container kind expected text. Fatal.
	KindUnexpectedToken
	// KindFieldValue indicates a primitive transform failed, such as
	// non-numeric text for an integer field. Fatal, scoped to the field,
	// propagated as a failure of the whole structure.
	KindFieldValue
	// KindSchemaMismatch indicates the top-level element name did not
	// match the descriptor's serialized name. Fatal at the first call.
	KindSchemaMismatch
)

func (k Kind) String() string {
	switch k {
	case KindMalformedDocument:
		return "malformed-document"
	case KindUnexpectedToken:
		return "unexpected-token"
	case KindFieldValue:
		return "field-value"
	case KindSchemaMismatch:
		return "schema-mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "malformed-document":
		*k = KindMalformedDocument
	case "unexpected-token":
		*k = KindUnexpectedToken
	case "field-value":
		*k = KindFieldValue
	case "schema-mismatch":
		*k = KindSchemaMismatch
	default:
		return errors.New("unknown value")
	}
	return nil
}

// Error represents an XML codec error.
type Error struct {
	Kind    Kind
	Message string
	// Offset is the byte position in the input the error refers to,
	// or -1 when no position applies.
	Offset int
	cause  error
}

func (e Error) Error() string {
	msg := "xml: " + e.Kind.String()
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Offset < 0 {
		return msg
	}
	return fmt.Sprintf("%s at input offset %d", msg, e.Offset)
}

// Unwrap returns the underlying cause, if one was attached.
func (e *Error) Unwrap() error { return e.cause }

func MalformedDocument(opts ...Option) *Error {
	e := &Error{Kind: KindMalformedDocument, Offset: -1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func UnexpectedToken(opts ...Option) *Error {
	e := &Error{Kind: KindUnexpectedToken, Offset: -1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func FieldValue(opts ...Option) *Error {
	e := &Error{Kind: KindFieldValue, Offset: -1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func SchemaMismatch(opts ...Option) *Error {
	e := &Error{Kind: KindSchemaMismatch, Offset: -1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AsError unpacks err as an *Error, looking through wrapping applied by
// this module or by github.com/pkg/errors.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == k
	}
	return false
}
