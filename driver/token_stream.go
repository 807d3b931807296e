package driver

import (
	"strings"

	mldriver "github.com/nihei9/maleeni/driver"

	"github.com/nagi9/ebnfc/ebnf"
)

// Token is one element of the input to a parse. Terminal is the index the
// token matched in the compiled parser's terminal table, or TerminalNil for
// text the lexer could not recognize; positions are 1-based.
type Token struct {
	Text     string
	Terminal int
	Row      int
	Col      int
	EOF      bool
}

// TokenStream is a finite, forward-only token source. The stream ends with a
// token whose EOF flag is set.
type TokenStream interface {
	Next() (*Token, error)
}

type tokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []int
}

// NewStringTokenStream tokenizes src with the lexical specification embedded
// in the compiled parser.
func NewStringTokenStream(cgram *ebnf.CompiledParser, src string) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(cgram.Lexical.Maleeni.Spec), strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: cgram.Lexical.Maleeni.KindToTerminal,
		skip:           cgram.Lexical.Maleeni.Skip,
	}, nil
}

func (s *tokenStream) Next() (*Token, error) {
	for {
		// An invalid token maps to TerminalNil and surfaces as a syntax
		// error during the parse; only skip kinds are consumed here.
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if s.skip[tok.KindID] > 0 {
			continue
		}

		return &Token{
			Text:     string(tok.Lexeme),
			Terminal: s.kindToTerminal[tok.KindID],
			Row:      tok.Row + 1,
			Col:      tok.Col + 1,
			EOF:      tok.EOF,
		}, nil
	}
}
