package ebnf

import (
	mlspec "github.com/nihei9/maleeni/spec"
)

// Terminal indices reserved in every CompiledParser.
const (
	TerminalNil = 0
	TerminalEOF = 1
)

// The terminal name contains `<` and `>` to avoid conflicting with literals.
const TerminalNameEOF = "<eof>"

type OpKind string

const (
	OpKindLiteral    = OpKind("literal")
	OpKindRule       = OpKind("rule")
	OpKindSequence   = OpKind("sequence")
	OpKindChoice     = OpKind("choice")
	OpKindRepetition = OpKind("repetition")
	OpKindOption     = OpKind("option")
)

// CompiledParser is an immutable, reusable parsing program. Rules and ops
// reference each other through table indices only, so the structure is flat,
// cycle-free, and JSON round-trippable.
type CompiledParser struct {
	Terminals []string              `json:"terminals"`
	Lexical   *LexicalSpecification `json:"lexical_specification"`
	Rules     []*CompiledRule       `json:"rules"`
	Ops       []*Op                 `json:"ops"`
	Start     int                   `json:"start"`
}

type LexicalSpecification struct {
	Lexer   string   `json:"lexer"`
	Maleeni *Maleeni `json:"maleeni"`
}

// Maleeni carries the lexical specification compiled from the grammar's
// literal texts. KindToTerminal maps the lexer's kind IDs to terminal
// indices; Skip marks the kinds the token stream discards.
type Maleeni struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
	Skip           []int                   `json:"skip"`
}

type CompiledRule struct {
	Name string `json:"name"`
	Root int    `json:"root"`
}

type Op struct {
	Kind OpKind `json:"kind"`

	// Terminal is the terminal index a literal op matches.
	Terminal int `json:"terminal,omitempty"`

	// Rule is the rule index a rule op invokes.
	Rule int `json:"rule,omitempty"`

	// Children are op indices: all elements of a sequence, all alternatives
	// of a choice, or the single body of a repetition or an option.
	Children []int `json:"children,omitempty"`

	// First is the FIRST set of a repetition body, used as the loop guard.
	First []int `json:"first,omitempty"`

	// Predicts holds one lookahead set per choice alternative.
	Predicts [][]int `json:"predicts,omitempty"`

	// Predictive marks a choice whose predict sets are pairwise disjoint;
	// such a choice dispatches on a single lookahead token without
	// backtracking.
	Predictive bool `json:"predictive,omitempty"`
}

func (g *CompiledParser) RuleIndex(name string) (int, bool) {
	for i, r := range g.Rules {
		if r.Name == name {
			return i, true
		}
	}
	return 0, false
}
