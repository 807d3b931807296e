package ebnf

import (
	"bufio"
	"io"

	verr "github.com/nagi9/ebnfc/error"
)

type tokenKind string

const (
	tokenKindID        = tokenKind("id")
	tokenKindLiteral   = tokenKind("literal")
	tokenKindEqu       = tokenKind("=")
	tokenKindComma     = tokenKind(",")
	tokenKindOr        = tokenKind("|")
	tokenKindSemicolon = tokenKind(";")
	tokenKindLParen    = tokenKind("(")
	tokenKindRParen    = tokenKind(")")
	tokenKindLBracket  = tokenKind("[")
	tokenKindRBracket  = tokenKind("]")
	tokenKindLBrace    = tokenKind("{")
	tokenKindRBrace    = tokenKind("}")
	tokenKindEOF       = tokenKind("eof")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newIDToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindID,
		text: text,
		pos:  pos,
	}
}

func newLiteralToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindLiteral,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

type lexer struct {
	src []rune
	idx int
	row int
	col int
}

func newLexer(src io.Reader) (*lexer, error) {
	var runes []rune
	r := bufio.NewReader(src)
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		runes = append(runes, c)
	}
	return &lexer{
		src: runes,
		row: 1,
		col: 1,
	}, nil
}

func (l *lexer) next() (*token, error) {
	err := l.skipWSsAndComments()
	if err != nil {
		return nil, err
	}

	pos := newPosition(l.row, l.col)
	c, ok := l.peek()
	if !ok {
		return newEOFToken(pos), nil
	}

	switch c {
	case '=':
		l.forward()
		return newSymbolToken(tokenKindEqu, pos), nil
	case ',':
		l.forward()
		return newSymbolToken(tokenKindComma, pos), nil
	case '|':
		l.forward()
		return newSymbolToken(tokenKindOr, pos), nil
	case ';':
		l.forward()
		return newSymbolToken(tokenKindSemicolon, pos), nil
	case '(':
		l.forward()
		return newSymbolToken(tokenKindLParen, pos), nil
	case ')':
		l.forward()
		return newSymbolToken(tokenKindRParen, pos), nil
	case '[':
		l.forward()
		return newSymbolToken(tokenKindLBracket, pos), nil
	case ']':
		l.forward()
		return newSymbolToken(tokenKindRBracket, pos), nil
	case '{':
		l.forward()
		return newSymbolToken(tokenKindLBrace, pos), nil
	case '}':
		l.forward()
		return newSymbolToken(tokenKindRBrace, pos), nil
	case '"', '\'':
		return l.lexLiteral(pos)
	}

	if isIDStart(c) {
		return l.lexID(pos), nil
	}

	return nil, &verr.SpecError{
		Cause:  synErrInvalidChar,
		Detail: string(c),
		Row:    pos.Row,
		Col:    pos.Col,
	}
}

// A comment opens with (* and closes with *), and may nest.
func (l *lexer) skipWSsAndComments() error {
	for {
		c, ok := l.peek()
		if !ok {
			return nil
		}
		if isWhitespace(c) {
			l.forward()
			continue
		}
		if c == '(' && l.peekAt(1) == '*' {
			pos := newPosition(l.row, l.col)
			l.forward()
			l.forward()
			depth := 1
			for depth > 0 {
				c, ok := l.peek()
				if !ok {
					return &verr.SpecError{
						Cause: synErrUnclosedComment,
						Row:   pos.Row,
						Col:   pos.Col,
					}
				}
				switch {
				case c == '(' && l.peekAt(1) == '*':
					depth++
					l.forward()
					l.forward()
				case c == '*' && l.peekAt(1) == ')':
					depth--
					l.forward()
					l.forward()
				default:
					l.forward()
				}
			}
			continue
		}
		return nil
	}
}

func (l *lexer) lexLiteral(pos Position) (*token, error) {
	quote, _ := l.peek()
	l.forward()

	var text []rune
	for {
		c, ok := l.peek()
		if !ok {
			return nil, &verr.SpecError{
				Cause: synErrUnclosedLiteral,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		if c == quote {
			l.forward()
			if len(text) == 0 {
				return nil, &verr.SpecError{
					Cause: synErrEmptyLiteral,
					Row:   pos.Row,
					Col:   pos.Col,
				}
			}
			return newLiteralToken(string(text), pos), nil
		}
		if c == '\\' {
			l.forward()
			e, ok := l.peek()
			if !ok {
				return nil, &verr.SpecError{
					Cause: synErrIncompletedEscSeq,
					Row:   pos.Row,
					Col:   pos.Col,
				}
			}
			sub, ok := escapeCharMap[e]
			if !ok {
				return nil, &verr.SpecError{
					Cause:  synErrInvalidEscSeq,
					Detail: "\\" + string(e),
					Row:    l.row,
					Col:    l.col,
				}
			}
			text = append(text, sub)
			l.forward()
			continue
		}
		text = append(text, c)
		l.forward()
	}
}

var escapeCharMap = map[rune]rune{
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func (l *lexer) lexID(pos Position) *token {
	var text []rune
	for {
		c, ok := l.peek()
		if !ok || !isIDContinue(c) {
			break
		}
		text = append(text, c)
		l.forward()
	}
	return newIDToken(string(text), pos)
}

func (l *lexer) peek() (rune, bool) {
	if l.idx >= len(l.src) {
		return 0, false
	}
	return l.src[l.idx], true
}

func (l *lexer) peekAt(offset int) rune {
	if l.idx+offset >= len(l.src) {
		return 0
	}
	return l.src[l.idx+offset]
}

func (l *lexer) forward() {
	if l.idx >= len(l.src) {
		return
	}
	if l.src[l.idx] == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	l.idx++
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIDStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIDContinue(c rune) bool {
	return isIDStart(c) || (c >= '0' && c <= '9')
}
