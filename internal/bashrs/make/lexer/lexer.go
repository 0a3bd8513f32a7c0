// Package lexer tokenizes GNU Makefile source into a flat token stream,
// generalizing aretext's editor/syntax/languages/makefile.go state machine
// (top-level / rule-prereq / recipe-cmd / assignment-value states,
// backslash-continuation handling, balanced $(...)/${...} scanning) from a
// highlighting tokenizer into a real lexer a parser can consume.
package lexer

import (
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// Kind classifies a Token.
type Kind int

const (
	Word Kind = iota
	Colon
	DoubleColon
	AssignOp
	Pipe
	Semi
	Newline
	Recipe
	// BadIndentRecipe is a recipe-shaped line indented with spaces instead
	// of a tab — GNU make itself rejects this ("missing separator"); this
	// tool surfaces it as MAKE008 instead of failing the whole parse.
	BadIndentRecipe
	Comment
	EOF
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Colon:
		return "colon"
	case DoubleColon:
		return "double-colon"
	case AssignOp:
		return "assign-op"
	case Pipe:
		return "pipe"
	case Semi:
		return "semi"
	case Newline:
		return "newline"
	case Recipe:
		return "recipe"
	case BadIndentRecipe:
		return "recipe-bad-indent"
	case Comment:
		return "comment"
	case EOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Text holds the token's literal source text
// (unescaped line continuations already collapsed out), except for Recipe
// and BadIndentRecipe tokens, whose Text has its leading indent (and,
// once the parser strips them, any `@`/`-`/`+` modifier prefix) removed.
// Start/End bound Text itself; IndentStart is the offset where the
// line's leading tab or (for BadIndentRecipe) offending space run began,
// so a MAKE008 fix can replace exactly [IndentStart, Start) with a tab.
// For every other Kind, IndentStart equals Start.
type Token struct {
	Kind        Kind
	Text        string
	Start       uint32
	End         uint32
	IndentStart uint32
}

func (t Token) Span() source.Span { return source.NewSpan(t.Start, t.End) }

// state mirrors aretext's makefileParseState: the grammar is genuinely
// context sensitive (a line is recipe, prereq, or assignment text
// depending on what came before it), so the lexer must track it the same
// way the highlighter does rather than re-deriving it per line.
type state int

const (
	stateTopLevel state = iota
	stateAfterColon
	stateAssignmentValue
	stateRecipe
)

type lexer struct {
	src   []byte
	pos   uint32
	state state
	toks  []Token
}

// Lex tokenizes f's bytes. It never fails: malformed input degrades to a
// best-effort token stream the parser reports as a syntax error on, the
// same tolerance aretext's parser combinators have (a highlighter must
// never panic on invalid source).
func Lex(f *source.File) []Token {
	l := &lexer{src: f.Data, state: stateTopLevel}
	for l.pos < uint32(len(l.src)) {
		switch l.state {
		case stateRecipe:
			l.lexRecipeOrFallthrough()
		default:
			l.lexStatement()
		}
	}
	l.emit(EOF, "", l.pos, l.pos)
	return l.toks
}

func (l *lexer) emit(k Kind, text string, start, end uint32) {
	l.toks = append(l.toks, Token{Kind: k, Text: text, Start: start, End: end, IndentStart: start})
}

// emitRecipe emits a Recipe/BadIndentRecipe token whose Text starts after
// the line's indent (textStart) but whose indent began at indentStart.
func (l *lexer) emitRecipe(k Kind, text string, indentStart, textStart, end uint32) {
	l.toks = append(l.toks, Token{Kind: k, Text: text, Start: textStart, End: end, IndentStart: indentStart})
}

func (l *lexer) peek() byte {
	if l.pos >= uint32(len(l.src)) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset uint32) byte {
	i := l.pos + offset
	if i >= uint32(len(l.src)) {
		return 0
	}
	return l.src[i]
}

// lexRecipeOrFallthrough consumes one recipe line if the next physical
// line starts with a tab (Recipe) or a space (BadIndentRecipe), otherwise
// hands control back to lexStatement without consuming anything (the line
// belongs to a new top-level construct).
func (l *lexer) lexRecipeOrFallthrough() {
	c := l.peek()
	if c != '\t' && c != ' ' {
		l.state = stateTopLevel
		return
	}
	kind := Recipe
	start := l.pos
	if c == '\t' {
		l.pos++ // consume the tab
	} else {
		// A space-indented line where a recipe was expected: real GNU make
		// rejects this outright ("missing separator"); surface it as
		// MAKE008 instead of failing the whole parse.
		kind = BadIndentRecipe
		for l.peek() == ' ' {
			l.pos++
		}
	}
	textStart := l.pos
	for l.pos < uint32(len(l.src)) && l.src[l.pos] != '\n' {
		// A trailing backslash-newline continues the recipe line onto the
		// next physical line as far as GNU make's shell invocation is
		// concerned; keep both physical lines as separate Recipe tokens
		// rather than re-joining them (spec.md §4.K "multi-line recipe
		// formatting is not fully preserved"), but do not stop early on
		// seeing the backslash itself.
		l.pos++
	}
	text := string(l.src[textStart:l.pos])
	l.emitRecipe(kind, text, start, textStart, l.pos)
	if l.pos < uint32(len(l.src)) {
		l.pos++ // consume the newline
	}
	// stay in stateRecipe; next call re-checks whether the following line
	// is also tab- or space-indented
}

// lexStatement scans one token in the top-level/after-colon/
// assignment-value grammar.
func (l *lexer) lexStatement() {
	// Skip a run of spaces/tabs (not newlines).
	for l.peek() == ' ' || l.peek() == '\t' {
		l.pos++
	}
	if l.pos >= uint32(len(l.src)) {
		return
	}

	switch l.peek() {
	case '\n':
		start := l.pos
		l.pos++
		l.emit(Newline, "\n", start, l.pos)
		if l.state == stateAfterColon && (l.peek() == '\t' || l.peek() == ' ') {
			l.state = stateRecipe
		} else {
			l.state = stateTopLevel
		}
		return
	case '\\':
		if l.peekAt(1) == '\n' {
			l.pos += 2 // swallow the continuation, stay in the same state
			return
		}
	case '#':
		start := l.pos
		for l.pos < uint32(len(l.src)) && l.src[l.pos] != '\n' {
			l.pos++
		}
		l.emit(Comment, string(l.src[start:l.pos]), start, l.pos)
		return
	case ';':
		start := l.pos
		l.pos++
		l.emit(Semi, ";", start, l.pos)
		// Everything after an inline ';' up to the newline is the first
		// recipe command for this rule, emitted directly as a Recipe
		// token (there is no leading tab to strip here, unlike the
		// tab-indented continuation lines stateRecipe handles next).
		recipeStart := l.pos
		for l.pos < uint32(len(l.src)) && l.src[l.pos] != '\n' {
			l.pos++
		}
		text := string(l.src[recipeStart:l.pos])
		for len(text) > 0 && (text[0] == ' ' || text[0] == '\t') {
			text = text[1:]
			recipeStart++
		}
		l.emit(Recipe, text, recipeStart, l.pos)
		if l.pos < uint32(len(l.src)) {
			l.pos++ // consume the newline
		}
		l.state = stateRecipe
		return
	case '|':
		if l.state == stateAfterColon {
			start := l.pos
			l.pos++
			l.emit(Pipe, "|", start, l.pos)
			return
		}
	case ':':
		start := l.pos
		if l.peekAt(1) == ':' && l.peekAt(2) == '=' {
			l.pos += 3
			l.emit(AssignOp, "::=", start, l.pos)
			l.state = stateAssignmentValue
			return
		}
		if l.peekAt(1) == ':' {
			l.pos += 2
			l.emit(DoubleColon, "::", start, l.pos)
			l.state = stateAfterColon
			return
		}
		if l.peekAt(1) == '=' {
			l.pos += 2
			l.emit(AssignOp, ":=", start, l.pos)
			l.state = stateAssignmentValue
			return
		}
		l.pos++
		l.emit(Colon, ":", start, l.pos)
		l.state = stateAfterColon
		return
	case '=':
		start := l.pos
		l.pos++
		l.emit(AssignOp, "=", start, l.pos)
		l.state = stateAssignmentValue
		return
	case '?', '+', '!':
		if l.peekAt(1) == '=' {
			start := l.pos
			op := string(l.src[l.pos : l.pos+2])
			l.pos += 2
			l.emit(AssignOp, op, start, l.pos)
			l.state = stateAssignmentValue
			return
		}
	}

	if l.state == stateAssignmentValue {
		l.lexAssignmentValue()
		return
	}
	l.lexWord()
}

// lexAssignmentValue consumes the rest of the logical line (joining
// backslash-continued physical lines) as a single Word token: an
// assignment's right-hand side is free text except for expansions, never
// re-split on make's statement-level operators.
func (l *lexer) lexAssignmentValue() {
	start := l.pos
	var buf []byte
	for l.pos < uint32(len(l.src)) {
		c := l.src[l.pos]
		if c == '\n' {
			break
		}
		if c == '\\' && l.peekAt(1) == '\n' {
			l.pos += 2
			buf = append(buf, ' ')
			continue
		}
		if c == '#' {
			break
		}
		if c == '$' {
			n := l.consumeExpansion(&buf)
			if n {
				continue
			}
		}
		buf = append(buf, c)
		l.pos++
	}
	l.emit(Word, string(buf), start, l.pos)
}

// lexWord consumes one whitespace-delimited word, treating any
// `$(...)`/`${...}` expansion as opaque to internal whitespace (spec.md
// §4.K "`$(...)` function calls").
func (l *lexer) lexWord() {
	start := l.pos
	var buf []byte
	for l.pos < uint32(len(l.src)) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == ':' || c == ';' || c == '#' {
			break
		}
		if c == '|' && l.state == stateAfterColon {
			break
		}
		if c == '\\' && l.peekAt(1) == '\n' {
			l.pos += 2
			buf = append(buf, ' ')
			continue
		}
		if c == '$' {
			if l.consumeExpansion(&buf) {
				continue
			}
		}
		buf = append(buf, c)
		l.pos++
	}
	if len(buf) == 0 {
		// Nothing consumed (e.g. a lone special char fell through); avoid
		// an infinite loop by eating one byte as a degenerate word.
		buf = append(buf, l.src[l.pos])
		l.pos++
	}
	l.emit(Word, string(buf), start, l.pos)
}

// consumeExpansion appends one `$`-led construct (escaped `$$`, or a
// balanced `$(...)`/`${...}` expansion) to buf and advances l.pos,
// returning true if it consumed anything; for any other `$` (including
// an automatic variable like `$@`) it consumes nothing and returns false. Grounded
// directly on aretext's makefileExpansionParseFunc stack-based balanced
// scan.
func (l *lexer) consumeExpansion(buf *[]byte) bool {
	start := l.pos
	if l.peekAt(1) == '$' {
		*buf = append(*buf, '$', '$')
		l.pos += 2
		return true
	}
	open := l.peekAt(1)
	if open != '(' && open != '{' {
		return false
	}
	close := byte(')')
	if open == '{' {
		close = '}'
	}
	depth := 0
	i := l.pos + 1
	for i < uint32(len(l.src)) {
		c := l.src[i]
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				i++
				break
			}
		}
		i++
	}
	*buf = append(*buf, l.src[start:i]...)
	l.pos = i
	return true
}
