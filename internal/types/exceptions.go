package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	MismatchedParenthesesTag    ErrorTag = "MismatchedParentheses"
	ConsecutiveOperatorsTag     ErrorTag = "ConsecutiveOperators"
	InvalidExpressionTag        ErrorTag = "InvalidExpression"
	InvalidRadixDigitTag        ErrorTag = "InvalidRadixDigit"
	DivideByZeroTag             ErrorTag = "DivideByZero"
	IntegerOverflowTag          ErrorTag = "IntegerOverflow"
	StackUnderflowTag           ErrorTag = "StackUnderflow"
	MalformedPostfixSequenceTag ErrorTag = "MalformedPostfixSequence"
	InternalErrorTag            ErrorTag = "InternalError"
)

// IsInternal reports whether the tag indicates a broken pipeline invariant
// rather than bad user input.
func (t ErrorTag) IsInternal() bool {
	switch t {
	case StackUnderflowTag, MalformedPostfixSequenceTag, InternalErrorTag:
		return true
	default:
		return false
	}
}

type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func NewError(tag ErrorTag, format string, args ...any) *Error {
	return &Error{
		Tag: tag,
		Err: fmt.Errorf(format, args...),
	}
}

// WithPosition records the 1-based position of the failure within source.
func (e *Error) WithPosition(source string, pos int) *Error {
	e.Extra = lo.Assign(e.Extra, map[string]any{
		"expression": source,
		"position":   pos,
	})
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	tags := []any{e.Tag}
	for err := errors.Unwrap(error(e)); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags":    tags,
		"message": e.Error(),
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

// TagOf returns the tag of the outermost *Error in err's chain.
func TagOf(err error) (ErrorTag, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag, true
	}
	return "", false
}

func HasTag(err error, tag ErrorTag) bool {
	t, ok := TagOf(err)
	return ok && t == tag
}

// ExceptionOf renders err for JSON output.
func ExceptionOf(err error) any {
	var exception Exception
	if errors.As(err, &exception) {
		return exception.Exception()
	}
	return err.Error()
}
