package grammar

import (
	"github.com/nagi9/ebnfc/ebnf"
)

// symbolTable assigns stable integer indices to terminal texts and rule
// names. Rules never own each other; every reference goes through an index.
type symbolTable struct {
	termTexts []string
	text2Term map[string]int
	ruleNames []string
	name2Rule map[string]int
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		termTexts: []string{
			"",                   // Nil
			ebnf.TerminalNameEOF, // EOF
		},
		text2Term: map[string]int{
			ebnf.TerminalNameEOF: ebnf.TerminalEOF,
		},
		ruleNames: []string{},
		name2Rule: map[string]int{},
	}
}

func (t *symbolTable) registerTerminal(text string) int {
	if term, ok := t.text2Term[text]; ok {
		return term
	}
	term := len(t.termTexts)
	t.termTexts = append(t.termTexts, text)
	t.text2Term[text] = term
	return term
}

// registerRule returns false when the name is already taken.
func (t *symbolTable) registerRule(name string) (int, bool) {
	if _, ok := t.name2Rule[name]; ok {
		return 0, false
	}
	id := len(t.ruleNames)
	t.ruleNames = append(t.ruleNames, name)
	t.name2Rule[name] = id
	return id, true
}

func (t *symbolTable) ruleIndex(name string) (int, bool) {
	id, ok := t.name2Rule[name]
	return id, ok
}

func (t *symbolTable) ruleName(id int) string {
	return t.ruleNames[id]
}

func (t *symbolTable) terminalText(term int) string {
	return t.termTexts[term]
}

func (t *symbolTable) terminalCount() int {
	return len(t.termTexts)
}

func (t *symbolTable) ruleCount() int {
	return len(t.ruleNames)
}
