// Package lexer turns shell source bytes into a flat token stream.
//
// It is a single left-to-right scan carrying explicit state for quote
// context, command-substitution/expansion nesting depth, and heredoc
// collection — the same state machine shape as aretext's
// editor/syntax/languages/bash.go, generalized from a syntax-highlighting
// token-role classifier into a lexer that feeds a real statement parser.
package lexer

import "github.com/paiml/bashrs/internal/bashrs/source"

// Kind tags the syntactic category of a Token.
type Kind int

const (
	KindEOF Kind = iota
	KindKeyword
	KindIdent    // bare word, possibly containing expansions
	KindString   // '...' or "..." literal, Value holds the raw inner text
	KindNumber
	KindOperator // ; & | && || ( ) { } [[ ]] etc.
	KindRedirect // < > >> << <<- <<< <& >& &> &>>
	KindHeredocBody
	KindNewline
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindKeyword:
		return "keyword"
	case KindIdent:
		return "ident"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindOperator:
		return "operator"
	case KindRedirect:
		return "redirect"
	case KindHeredocBody:
		return "heredoc-body"
	case KindNewline:
		return "newline"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// QuoteKind records which quoting form produced a KindString token, since
// rule behavior (e.g. SC2086) depends on it.
type QuoteKind int

const (
	QuoteNone QuoteKind = iota
	QuoteSingle
	QuoteDouble
	QuoteBackquote
)

// Token is a single lexical unit with its source span.
type Token struct {
	Kind  Kind
	Value string // literal text; for strings, the text WITHOUT surrounding quotes
	Span  source.Span
	Quote QuoteKind // meaningful only for KindString

	// HeredocDelim/HeredocStripTabs/HeredocQuoted are set on the KindRedirect
	// token that opens a heredoc (<<, <<-); the body follows as a
	// KindHeredocBody token once the parser (or lexer look-ahead) has
	// collected it.
	HeredocDelim     string
	HeredocStripTabs bool
	HeredocQuoted    bool
}

var keywords = map[string]bool{
	"if": true, "then": true, "elif": true, "else": true, "fi": true,
	"for": true, "while": true, "until": true, "do": true, "done": true,
	"case": true, "esac": true, "function": true, "select": true,
	"time": true, "coproc": true, "in": true,
	"break": true, "continue": true, "return": true,
}

// IsKeyword reports whether word is one of the bash reserved words the
// lexer recognizes when it is the ENTIRE token text (spec.md §4.C:
// "fi=1" lexes as a single ident, never as the keyword "fi").
func IsKeyword(word string) bool { return keywords[word] }
