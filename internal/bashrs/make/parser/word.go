package parser

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
)

var automaticSymbols = []string{
	"@D", "@F", "<D", "<F", "^D", "^F", "*D", "*F",
	"@", "<", "^", "?", "*", "%", "+", "|",
}

// parseWord segments raw (the text of one lexer.Word token, already
// joined across backslash continuations) into a Concatenation of
// Text/Automatic/Expansion nodes, recursively re-scanning balanced
// `$(...)`/`${...}` regions the same way aretext's
// makefileExpansionParseFunc does, except building a tree instead of a
// flat highlight token.
// ParseWord exposes parseWord for callers outside this package (the rules
// and purify packages re-scan a RecipeLine's raw Text for expansions,
// since recipe bodies are kept as opaque shell text by the statement
// parser rather than pre-segmented into Expr trees).
func ParseWord(raw string, base uint32) ast.Expr {
	return parseWord(raw, base)
}

func parseWord(raw string, base uint32) ast.Expr {
	parts := scanSegments(raw, base)
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 0 {
		return ast.Text{Base: ast.NewBase(base, base), Value: ""}
	}
	return ast.Concatenation{
		Base:  ast.NewBase(base, base+uint32(len(raw))),
		Parts: parts,
	}
}

func scanSegments(raw string, base uint32) []ast.Expr {
	var out []ast.Expr
	var lit strings.Builder
	litStart := base

	flush := func(end uint32) {
		if lit.Len() > 0 {
			out = append(out, ast.Text{Base: ast.NewBase(litStart, end), Value: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(raw) {
		if raw[i] != '$' {
			if lit.Len() == 0 {
				litStart = base + uint32(i)
			}
			lit.WriteByte(raw[i])
			i++
			continue
		}
		// raw[i] == '$'
		start := i
		if i+1 < len(raw) && raw[i+1] == '$' {
			if lit.Len() == 0 {
				litStart = base + uint32(i)
			}
			lit.WriteString("$$")
			i += 2
			continue
		}
		if i+1 >= len(raw) {
			if lit.Len() == 0 {
				litStart = base + uint32(i)
			}
			lit.WriteByte('$')
			i++
			continue
		}
		open := raw[i+1]
		if open != '(' && open != '{' {
			if sym, n := matchAutomatic(raw[i+1:]); sym != "" {
				flush(base + uint32(start))
				end := i + 1 + n
				out = append(out, ast.Automatic{Base: ast.NewBase(base+uint32(start), base+uint32(end)), Symbol: sym})
				i = end
				continue
			}
			if lit.Len() == 0 {
				litStart = base + uint32(i)
			}
			lit.WriteByte('$')
			i++
			continue
		}
		close := byte(')')
		if open == '{' {
			close = '}'
		}
		depth := 0
		j := i + 1
		for j < len(raw) {
			if raw[j] == open {
				depth++
			} else if raw[j] == close {
				depth--
				if depth == 0 {
					j++
					break
				}
			}
			j++
		}
		flush(base + uint32(start))
		inner := raw[i+2 : j-1]
		out = append(out, parseExpansion(inner, open == '{', base+uint32(start), base+uint32(j)))
		i = j
	}
	flush(base + uint32(len(raw)))
	return out
}

func matchAutomatic(s string) (symbol string, n int) {
	for _, sym := range automaticSymbols {
		if strings.HasPrefix(s, sym) {
			return sym, len(sym)
		}
	}
	return "", 0
}

// parseExpansion builds an Expansion node from the text between an
// expansion's delimiters. If inner's first space-delimited word matches a
// known Make function name, the rest is split on top-level commas into
// Args; otherwise the whole of inner is the (possibly itself nested)
// variable-name expression, as Args[0].
func parseExpansion(inner string, braced bool, start, end uint32) ast.Expansion {
	nameEnd := strings.IndexAny(inner, " \t")
	if nameEnd > 0 && isKnownFunction(inner[:nameEnd]) {
		fn := inner[:nameEnd]
		rest := strings.TrimLeft(inner[nameEnd+1:], " \t")
		argStart := start + uint32(nameEnd+1)
		for len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
			rest = rest[1:]
			argStart++
		}
		return ast.Expansion{
			Base:   ast.NewBase(start, end),
			Braced: braced,
			Func:   fn,
			Args:   splitArgs(rest, argStart),
		}
	}
	// A known function name followed directly by a comma, with no space
	// (e.g. $(firstword,a)), is also read as a call. $(call my-func,a,b)
	// itself is handled by the branch above, with "my-func" as Args[0].
	if commaIdx := strings.IndexByte(inner, ','); commaIdx > 0 && isKnownFunction(inner[:commaIdx]) {
		fn := inner[:commaIdx]
		rest := inner[commaIdx+1:]
		return ast.Expansion{
			Base:   ast.NewBase(start, end),
			Braced: braced,
			Func:   fn,
			Args:   splitArgs(rest, start+uint32(commaIdx+1)),
		}
	}
	return ast.Expansion{
		Base:   ast.NewBase(start, end),
		Braced: braced,
		Func:   "",
		Args:   []ast.Expr{parseWord(inner, start+2)},
	}
}

var makeFunctions = map[string]bool{
	"subst": true, "patsubst": true, "strip": true, "findstring": true,
	"filter": true, "filter-out": true, "sort": true, "word": true,
	"wordlist": true, "words": true, "firstword": true, "lastword": true,
	"dir": true, "notdir": true, "suffix": true, "basename": true,
	"addsuffix": true, "addprefix": true, "join": true, "wildcard": true,
	"realpath": true, "abspath": true, "if": true, "or": true, "and": true,
	"foreach": true, "call": true, "value": true, "eval": true, "origin": true,
	"flavor": true, "shell": true, "error": true, "warning": true, "info": true,
}

func isKnownFunction(name string) bool {
	return makeFunctions[name]
}

// splitArgs splits a function call's argument text on top-level commas
// (commas nested inside a further $(...)/${...} are not separators) and
// parses each piece as a word.
func splitArgs(s string, base uint32) []ast.Expr {
	if s == "" {
		return nil
	}
	var args []ast.Expr
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, parseWord(s[start:i], base+uint32(start)))
				start = i + 1
			}
		}
	}
	args = append(args, parseWord(s[start:], base+uint32(start)))
	return args
}
