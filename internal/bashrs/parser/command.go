package parser

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/lexer"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

var assignmentPrefixes = map[string]int{
	"export":   1,
	"local":    2,
	"readonly": 3,
}

func (p *parser) atCommandStop() bool {
	t := p.peek()
	switch t.Kind {
	case lexer.KindEOF, lexer.KindNewline, lexer.KindComment, lexer.KindHeredocBody:
		return true
	case lexer.KindOperator:
		switch t.Value {
		case ";", "&&", "||", "|", "|&", "&", ")", "}", ";;", ";&", ";;&":
			return true
		}
	case lexer.KindKeyword:
		switch t.Value {
		case "then", "do", "done", "fi", "esac", "elif", "else":
			return true
		}
	}
	return false
}

// parseSimpleCommandOrAssignmentOrFunction handles the default dispatch
// branch: a bare "NAME=VALUE" assignment, "NAME() { ... }" function
// definition, an export/local/readonly-prefixed assignment, or an ordinary
// command with arguments and redirects.
func (p *parser) parseSimpleCommandOrAssignmentOrFunction() (ast.Stmt, error) {
	first := p.peek()

	if (first.Kind == lexer.KindIdent || first.Kind == lexer.KindKeyword) && p.isFuncDefAhead() {
		return p.parseFunctionParenForm()
	}

	if name, val, ok := splitAssignment(first.Value); ok && first.Kind == lexer.KindIdent {
		p.advance()
		valSpan := source.NewSpan(first.Span.Start+uint32(len(name)+1), first.Span.End)
		valExpr := p.wordExprFromRaw(val, lexer.QuoteNone, valSpan)
		return &ast.Assignment{Base: ast.Base{Sp: first.Span}, Name: name, Value: valExpr}, nil
	}

	if kind, ok := assignmentPrefixes[first.Value]; ok && first.Kind == lexer.KindIdent {
		next := p.peekAt(1)
		if name, val, ok2 := splitAssignment(next.Value); ok2 && (next.Kind == lexer.KindIdent) {
			p.advance()
			p.advance()
			valSpan := source.NewSpan(next.Span.Start+uint32(len(name)+1), next.Span.End)
			valExpr := p.wordExprFromRaw(val, lexer.QuoteNone, valSpan)
			return &ast.Assignment{
				Base:     ast.Base{Sp: blockSpan(first.Span, next.Span)},
				Name:     name,
				Value:    valExpr,
				Export:   kind == 1,
				Local:    kind == 2,
				Readonly: kind == 3,
			}, nil
		}
	}

	return p.parseSimpleCommand()
}

// isFuncDefAhead reports whether the upcoming tokens are "NAME ( )", the
// POSIX function-definition form (spec.md §4.C: both "name()" and "function
// name" must be recognized).
func (p *parser) isFuncDefAhead() bool {
	return p.peekAt(1).Kind == lexer.KindOperator && p.peekAt(1).Value == "(" &&
		p.peekAt(2).Kind == lexer.KindOperator && p.peekAt(2).Value == ")"
}

func (p *parser) parseFunctionParenForm() (ast.Stmt, error) {
	nameTok := p.advance()
	p.advance() // "("
	p.advance() // ")"
	p.skipNewlines()
	body, end, err := p.parseBraceBody()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Base:                ast.Base{Sp: blockSpan(nameTok.Span, end.Span)},
		Name:                nameTok.Value,
		Body:                body,
		UsesFunctionKeyword: false,
	}, nil
}

// splitAssignment reports whether raw has the shape NAME=VALUE with NAME a
// valid shell identifier.
func splitAssignment(raw string) (name, value string, ok bool) {
	eq := strings.IndexByte(raw, '=')
	if eq <= 0 {
		return "", "", false
	}
	name = raw[:eq]
	for i, r := range name {
		if i == 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return "", "", false
		}
		if i > 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", "", false
		}
	}
	return name, raw[eq+1:], true
}

// parseSimpleCommand gathers command-name/args words and attached redirects
// until a statement-ending token, queuing any heredoc redirects onto
// p.pendingHD so their bodies (which the lexer places just before the
// line's terminating newline, possibly well after this command) get filled
// in once the parser reaches that point.
func (p *parser) parseSimpleCommand() (ast.Stmt, error) {
	start := p.peek().Span
	var name ast.Expr
	var args []ast.Expr
	var redirects []ast.Redirect
	var heredocIdx []int // indices into redirects awaiting a body

	for !p.atCommandStop() {
		t := p.peek()

		if t.Kind == lexer.KindNumber && p.peekAt(1).Kind == lexer.KindRedirect &&
			p.peekAt(1).Span.Start == t.Span.End {
			p.advance() // fd number
			r, isHeredoc, err := p.parseRedirectWithFd(t.Value)
			if err != nil {
				return nil, err
			}
			redirects = append(redirects, r)
			if isHeredoc {
				heredocIdx = append(heredocIdx, len(redirects)-1)
			}
			continue
		}

		if t.Kind == lexer.KindRedirect {
			r, isHeredoc, err := p.parseRedirectWithFd("")
			if err != nil {
				return nil, err
			}
			redirects = append(redirects, r)
			if isHeredoc {
				heredocIdx = append(heredocIdx, len(redirects)-1)
			}
			continue
		}

		w, err := p.parseWordToken()
		if err != nil {
			return nil, err
		}
		if name == nil {
			name = w
		} else {
			args = append(args, w)
		}
	}

	for _, idx := range heredocIdx {
		p.pendingHD = append(p.pendingHD, &redirects[idx])
	}

	end := start
	if len(args) > 0 {
		end = args[len(args)-1].Span()
	} else if name != nil {
		end = name.Span()
	}
	if len(redirects) > 0 {
		end = redirects[len(redirects)-1].Span()
	}

	if name == nil {
		t := p.peek()
		return nil, unexpected(t.Span, "command", t.Value)
	}

	if nameLit, ok := name.(*ast.Literal); ok && nameLit.Value == "[" {
		if test, stripped := tryBuildBracketTest(args); stripped {
			args = []ast.Expr{test}
		}
	}

	return &ast.Command{
		Base:      ast.Base{Sp: blockSpan(start, end)},
		Name:      name,
		Args:      args,
		Redirects: redirects,
	}, nil
}

var redirectKindByOp = map[string]ast.RedirectKind{
	"<":   ast.InFile,
	">":   ast.OutFile,
	">>":  ast.AppendFile,
	"<<":  ast.HereDoc,
	"<<-": ast.HereDoc,
	"<<<": ast.HereString,
	"<&":  ast.FdDup,
	">&":  ast.FdDup,
	"&>":  ast.OutFile,
	"&>>": ast.AppendFile,
}

func (p *parser) parseRedirectWithFd(fd string) (ast.Redirect, bool, error) {
	op := p.advance()
	kind, ok := redirectKindByOp[op.Value]
	if !ok {
		return ast.Redirect{}, false, unexpected(op.Span, "redirect operator", op.Value)
	}
	fdNum := -1
	if fd != "" {
		for _, r := range fd {
			if fdNum == -1 {
				fdNum = 0
			}
			fdNum = fdNum*10 + int(r-'0')
		}
	}

	if kind == ast.HereDoc {
		r := ast.Redirect{
			Kind:        kind,
			Fd:          fdNum,
			Sp:          op.Span,
			Delim:       op.HeredocDelim,
			StripTabs:   op.HeredocStripTabs,
			QuotedDelim: op.HeredocQuoted,
		}
		return r, true, nil
	}

	target, err := p.parseWordToken()
	if err != nil {
		return ast.Redirect{}, false, err
	}
	return ast.Redirect{
		Kind:   kind,
		Fd:     fdNum,
		Target: target,
		Sp:     source.NewSpan(op.Span.Start, target.Span().End),
	}, false, nil
}

// tryBuildBracketTest normalizes a "[ ... ]" command's argument list (with
// the trailing "]" word already its own argument) into a single TestExpr,
// so single- and double-bracket forms share downstream analysis while the
// parser still records which form was used (spec.md §3 "TestExpr").
func tryBuildBracketTest(args []ast.Expr) (ast.Expr, bool) {
	if len(args) == 0 {
		return nil, false
	}
	last, ok := args[len(args)-1].(*ast.Literal)
	if !ok || last.Value != "]" {
		return nil, false
	}
	operands := args[:len(args)-1]
	return buildTestExprFromOperands(operands, false), true
}

var unaryTestOps = map[string]bool{
	"-n": true, "-z": true, "-f": true, "-d": true, "-r": true, "-w": true,
	"-x": true, "-e": true, "-s": true, "-h": true, "-L": true, "-p": true,
	"-S": true, "-b": true, "-c": true, "-g": true, "-u": true, "-k": true,
	"-O": true, "-G": true, "-t": true,
}

var binaryStringOps = map[string]bool{"=": true, "==": true, "!=": true, "<": true, ">": true}
var binaryIntOps = map[string]bool{"-eq": true, "-ne": true, "-lt": true, "-le": true, "-gt": true, "-ge": true}

func literalText(e ast.Expr) (string, bool) {
	l, ok := e.(*ast.Literal)
	if !ok {
		return "", false
	}
	return l.Value, true
}

// buildTestExprFromOperands recognizes the common unary/binary test shapes
// from an already-parsed operand list. Anything it doesn't recognize is
// still returned as a TestExpr so the node carries every operand rather
// than being dropped.
func buildTestExprFromOperands(operands []ast.Expr, double bool) ast.Expr {
	sp := source.Span{}
	if len(operands) > 0 {
		sp = source.NewSpan(operands[0].Span().Start, operands[len(operands)-1].Span().End)
	}
	switch len(operands) {
	case 2:
		if txt, ok := literalText(operands[0]); ok && unaryTestOps[txt] {
			return &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestUnary, Operator: txt, Operands: operands[1:], DoubleBracket: double}
		}
	case 3:
		if txt, ok := literalText(operands[1]); ok {
			switch {
			case binaryStringOps[txt]:
				return &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestBinaryString, Operator: txt, Operands: []ast.Expr{operands[0], operands[2]}, DoubleBracket: double}
			case binaryIntOps[txt]:
				return &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestBinaryInt, Operator: txt, Operands: []ast.Expr{operands[0], operands[2]}, DoubleBracket: double}
			case txt == "=~":
				return &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestRegex, Operator: txt, Operands: []ast.Expr{operands[0], operands[2]}, DoubleBracket: double}
			}
		}
	}
	return &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestUnary, Operator: "", Operands: operands, DoubleBracket: double}
}

// parseDoubleBracketTest parses "[[ ... ]]" with its own grammar, since
// "&&"/"||"/"!" inside it are test connectives rather than statement
// separators (spec.md §4.C "Test expressions").
func (p *parser) parseDoubleBracketTest() (ast.Stmt, error) {
	start, err := p.expectOp("[[")
	if err != nil {
		return nil, err
	}
	test, err := p.parseTestOr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectOp("]]")
	if err != nil {
		return nil, err
	}
	cmdSpan := blockSpan(start.Span, end.Span)
	return &ast.Command{
		Base: ast.Base{Sp: cmdSpan},
		Name: &ast.Literal{Base: ast.Base{Sp: start.Span}, Value: "[["},
		Args: []ast.Expr{test},
	}, nil
}

func (p *parser) parseTestOr() (ast.Expr, error) {
	left, err := p.parseTestAnd()
	if err != nil {
		return nil, err
	}
	for p.isOp("||") || p.isTestWord("-o") {
		p.advance()
		right, err := p.parseTestAnd()
		if err != nil {
			return nil, err
		}
		sp := source.NewSpan(left.Span().Start, right.Span().End)
		left = &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestOr, Operands: []ast.Expr{left, right}, DoubleBracket: true}
	}
	return left, nil
}

func (p *parser) parseTestAnd() (ast.Expr, error) {
	left, err := p.parseTestNot()
	if err != nil {
		return nil, err
	}
	for p.isOp("&&") || p.isTestWord("-a") {
		p.advance()
		right, err := p.parseTestNot()
		if err != nil {
			return nil, err
		}
		sp := source.NewSpan(left.Span().Start, right.Span().End)
		left = &ast.TestExpr{Base: ast.Base{Sp: sp}, Op: ast.TestAnd, Operands: []ast.Expr{left, right}, DoubleBracket: true}
	}
	return left, nil
}

func (p *parser) isTestWord(v string) bool {
	t := p.peek()
	return t.Kind == lexer.KindIdent && t.Value == v
}

func (p *parser) parseTestNot() (ast.Expr, error) {
	if p.isOp("!") {
		start := p.advance()
		inner, err := p.parseTestNot()
		if err != nil {
			return nil, err
		}
		return &ast.TestExpr{
			Base:          ast.Base{Sp: blockSpan(start.Span, inner.Span())},
			Op:            ast.TestNot,
			Operands:      []ast.Expr{inner},
			DoubleBracket: true,
		}, nil
	}
	return p.parseTestPrimary()
}

func (p *parser) parseTestPrimary() (ast.Expr, error) {
	if p.isOp("(") {
		p.advance()
		inner, err := p.parseTestOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	first, err := p.parseWordToken()
	if err != nil {
		return nil, err
	}
	if txt, ok := literalText(first); ok && unaryTestOps[txt] && !p.atTestStop() {
		operand, err := p.parseWordToken()
		if err != nil {
			return nil, err
		}
		return &ast.TestExpr{
			Base: ast.Base{Sp: blockSpan(first.Span(), operand.Span())},
			Op:   ast.TestUnary, Operator: txt, Operands: []ast.Expr{operand}, DoubleBracket: true,
		}, nil
	}
	if !p.atTestStop() {
		if opTok := p.peek(); opTok.Kind == lexer.KindIdent || opTok.Kind == lexer.KindOperator {
			txt := opTok.Value
			if binaryStringOps[txt] || binaryIntOps[txt] || txt == "=~" {
				p.advance()
				rhs, err := p.parseWordToken()
				if err != nil {
					return nil, err
				}
				op := ast.TestBinaryString
				switch {
				case binaryIntOps[txt]:
					op = ast.TestBinaryInt
				case txt == "=~":
					op = ast.TestRegex
				}
				return &ast.TestExpr{
					Base:     ast.Base{Sp: blockSpan(first.Span(), rhs.Span())},
					Op:       op,
					Operator: txt,
					Operands: []ast.Expr{first, rhs},
					DoubleBracket: true,
				}, nil
			}
		}
	}
	return &ast.TestExpr{Base: ast.Base{Sp: first.Span()}, Op: ast.TestUnary, Operator: "", Operands: []ast.Expr{first}, DoubleBracket: true}, nil
}

func (p *parser) atTestStop() bool {
	t := p.peek()
	if t.Kind == lexer.KindOperator && (t.Value == "]]" || t.Value == "&&" || t.Value == "||" || t.Value == ")") {
		return true
	}
	if t.Kind == lexer.KindIdent && (t.Value == "-a" || t.Value == "-o") {
		return true
	}
	return t.Kind == lexer.KindEOF || t.Kind == lexer.KindNewline
}
