package grammar

import (
	"testing"

	"github.com/nagi9/ebnfc/ebnf"
)

func buildGrammar(t *testing.T, src string, start string) *Grammar {
	t.Helper()

	g, err := tryBuildGrammar(t, src, start)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func tryBuildGrammar(t *testing.T, src string, start string) (*Grammar, error) {
	t.Helper()

	root, err := ebnf.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	b := &GrammarBuilder{
		AST:   root,
		Start: start,
	}
	return b.Build()
}
