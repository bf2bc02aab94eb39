package syntax

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile error.
type ErrorKind uint8

const (
	UnbalancedParenthesis ErrorKind = iota + 1
	UnbalancedBracket
	InvalidEscape
	InvalidRange
	InvalidQuantifier
	UnsupportedFeature
	LinearTimeViolation
	InvalidGroupName
	InvalidUTF8
	NestingTooDeep
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnbalancedParenthesis = errors.New("unbalanced parenthesis")
	ErrUnbalancedBracket     = errors.New("unbalanced bracket")
	ErrInvalidEscape         = errors.New("invalid escape sequence")
	ErrInvalidRange          = errors.New("invalid character range")
	ErrInvalidQuantifier     = errors.New("invalid quantifier")
	ErrUnsupportedFeature    = errors.New("unsupported feature")
	ErrLinearTimeViolation   = errors.New("pattern requires backtracking")
	ErrInvalidGroupName      = errors.New("invalid group name")
	ErrInvalidUTF8           = errors.New("invalid UTF-8 in pattern")
	ErrNestingTooDeep        = errors.New("expression nests too deeply")
)

var kindSentinels = [...]error{
	UnbalancedParenthesis: ErrUnbalancedParenthesis,
	UnbalancedBracket:     ErrUnbalancedBracket,
	InvalidEscape:         ErrInvalidEscape,
	InvalidRange:          ErrInvalidRange,
	InvalidQuantifier:     ErrInvalidQuantifier,
	UnsupportedFeature:    ErrUnsupportedFeature,
	LinearTimeViolation:   ErrLinearTimeViolation,
	InvalidGroupName:      ErrInvalidGroupName,
	InvalidUTF8:           ErrInvalidUTF8,
	NestingTooDeep:        ErrNestingTooDeep,
}

var kindNames = [...]string{
	UnbalancedParenthesis: "UnbalancedParenthesis",
	UnbalancedBracket:     "UnbalancedBracket",
	InvalidEscape:         "InvalidEscape",
	InvalidRange:          "InvalidRange",
	InvalidQuantifier:     "InvalidQuantifier",
	UnsupportedFeature:    "UnsupportedFeature",
	LinearTimeViolation:   "LinearTimeViolation",
	InvalidGroupName:      "InvalidGroupName",
	InvalidUTF8:           "InvalidUTF8",
	NestingTooDeep:        "NestingTooDeep",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is a compile error. Offset is the byte offset into Expr of the
// construct that caused it.
type Error struct {
	Kind   ErrorKind
	Offset int
	Expr   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Unwrap().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("pcregex: %s at offset %d in %q", msg, e.Offset, e.Expr)
}

// Unwrap returns the sentinel for the error kind.
func (e *Error) Unwrap() error {
	if int(e.Kind) < len(kindSentinels) && kindSentinels[e.Kind] != nil {
		return kindSentinels[e.Kind]
	}
	return errors.New(e.Kind.String())
}

// NewError builds an *Error; it is used by later compilation stages that
// reject a parsed expression.
func NewError(kind ErrorKind, expr string, offset int, detail string) *Error {
	return &Error{Kind: kind, Offset: offset, Expr: expr, Detail: detail}
}
