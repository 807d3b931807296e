package ebnf

import (
	"io"
	"strings"

	verr "github.com/nagi9/ebnfc/error"
)

type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

// ElementNode is a tagged variant: exactly one of ID, Literal, Group, Option,
// and Repetition is set.
type ElementNode struct {
	ID         string
	Literal    string
	Group      *GroupNode
	Option     *GroupNode
	Repetition *GroupNode
	Pos        Position
}

type GroupNode struct {
	Alternatives []*AlternativeNode
	Pos          Position
}

func raiseSyntaxError(synErr *SyntaxError, pos Position) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

func ParseString(src string) (*RootNode, error) {
	return Parse(strings.NewReader(src))
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			retErr = err.(error)
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	prod := p.parseProduction()
	if prod == nil {
		raiseSyntaxError(synErrNoProduction, p.lastPos())
	}
	root := &RootNode{
		Productions: []*ProductionNode{prod},
	}
	for {
		prod := p.parseProduction()
		if prod == nil {
			break
		}
		root.Productions = append(root.Productions, prod)
	}
	return root
}

func (p *parser) parseProduction() *ProductionNode {
	if p.consume(tokenKindEOF) {
		return nil
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoProductionName, p.peekPos())
	}
	lhs := p.lastTok.text
	pos := p.lastTok.pos
	if !p.consume(tokenKindEqu) {
		raiseSyntaxError(synErrNoEqu, p.peekPos())
	}
	rhs := p.parseAlternatives()
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon, p.peekPos())
	}
	return &ProductionNode{
		LHS: lhs,
		RHS: rhs,
		Pos: pos,
	}
}

func (p *parser) parseAlternatives() []*AlternativeNode {
	alt := p.parseAlternative()
	alts := []*AlternativeNode{alt}
	for {
		if !p.consume(tokenKindOr) {
			break
		}
		alt := p.parseAlternative()
		alts = append(alts, alt)
	}
	return alts
}

// An alternative is a comma-separated sequence of elements. The meta-language
// has no epsilon notation, so an alternative must contain at least one
// element; emptiness is expressed via [ ] or { } only.
func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peekPos()
	elem := p.parseElement()
	if elem == nil {
		raiseSyntaxError(synErrEmptyAlternative, pos)
	}
	elems := []*ElementNode{elem}
	for {
		if !p.consume(tokenKindComma) {
			break
		}
		elem := p.parseElement()
		if elem == nil {
			raiseSyntaxError(synErrNoElement, p.peekPos())
		}
		elems = append(elems, elem)
	}
	return &AlternativeNode{
		Elements: elems,
		Pos:      pos,
	}
}

func (p *parser) parseElement() *ElementNode {
	switch {
	case p.consume(tokenKindID):
		return &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindLiteral):
		return &ElementNode{
			Literal: p.lastTok.text,
			Pos:     p.lastTok.pos,
		}
	case p.consume(tokenKindLParen):
		pos := p.lastTok.pos
		group := p.parseGroup(pos)
		if !p.consume(tokenKindRParen) {
			raiseSyntaxError(synErrUnclosedGroup, p.peekPos())
		}
		return &ElementNode{
			Group: group,
			Pos:   pos,
		}
	case p.consume(tokenKindLBracket):
		pos := p.lastTok.pos
		group := p.parseGroup(pos)
		if !p.consume(tokenKindRBracket) {
			raiseSyntaxError(synErrUnclosedOption, p.peekPos())
		}
		return &ElementNode{
			Option: group,
			Pos:    pos,
		}
	case p.consume(tokenKindLBrace):
		pos := p.lastTok.pos
		group := p.parseGroup(pos)
		if !p.consume(tokenKindRBrace) {
			raiseSyntaxError(synErrUnclosedRepetition, p.peekPos())
		}
		return &ElementNode{
			Repetition: group,
			Pos:        pos,
		}
	}
	return nil
}

func (p *parser) parseGroup(pos Position) *GroupNode {
	return &GroupNode{
		Alternatives: p.parseAlternatives(),
		Pos:          pos,
	}
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	var err error
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		tok, err = p.lex.next()
		if err != nil {
			panic(err)
		}
	}
	p.lastTok = tok
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func (p *parser) peekPos() Position {
	if p.peekedTok != nil {
		return p.peekedTok.pos
	}
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	p.peekedTok = tok
	return tok.pos
}

func (p *parser) lastPos() Position {
	if p.lastTok != nil {
		return p.lastTok.pos
	}
	return newPosition(1, 1)
}
