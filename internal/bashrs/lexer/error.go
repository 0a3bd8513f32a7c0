package lexer

import (
	"fmt"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

// ErrorKind enumerates lex failure modes (spec.md §4.B).
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota
	UnterminatedHeredoc
	UnmatchedDelimiter
	InvalidEscape
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedHeredoc:
		return "unterminated heredoc"
	case UnmatchedDelimiter:
		return "unmatched delimiter"
	case InvalidEscape:
		return "invalid escape"
	default:
		return "lex error"
	}
}

// Error is a lex failure with the span at which it was detected.
type Error struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newErr(kind ErrorKind, span source.Span, msg string) *Error {
	return &Error{Kind: kind, Span: span, Msg: msg}
}
