package xmlerr

import "fmt"

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }

func WithMessagef(format string, args ...interface{}) Option {
	return func(e *Error) { e.Message = fmt.Sprintf(format, args...) }
}

func WithOffset(offset int) Option { return func(e *Error) { e.Offset = offset } }

func WithCause(err error) Option { return func(e *Error) { e.cause = err } }
