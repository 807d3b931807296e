package grammar

import (
	"fmt"
	"strings"

	"github.com/nagi9/ebnfc/ebnf"
	verr "github.com/nagi9/ebnfc/error"
)

type termKind int

const (
	termKindLiteral termKind = iota
	termKindRule
	termKindGroup
	termKindOption
	termKindRepetition
)

// term is a node of a rule body. A term never owns another rule; rule
// references are indices into the production table.
type term struct {
	kind     termKind
	terminal int
	rule     int
	alts     [][]*term
	pos      ebnf.Position
}

type production struct {
	name string
	lhs  int
	alts [][]*term
	pos  ebnf.Position
}

type Grammar struct {
	symTab   *symbolTable
	prods    []*production
	start    int
	nullable []bool
	Warnings []*Warning
}

func (g *Grammar) StartRuleName() string {
	return g.prods[g.start].name
}

type GrammarBuilder struct {
	AST *ebnf.RootNode

	// Start overrides the entry rule; it defaults to the first rule defined.
	Start string

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := newSymbolTable()

	var prods []*production
	for _, prodNode := range b.AST.Productions {
		lhs, ok := symTab.registerRule(prodNode.LHS)
		if !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateRule,
				Detail: prodNode.LHS,
				Row:    prodNode.Pos.Row,
				Col:    prodNode.Pos.Col,
			})
			continue
		}
		prods = append(prods, &production{
			name: prodNode.LHS,
			lhs:  lhs,
			pos:  prodNode.Pos,
		})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	for i, prodNode := range b.AST.Productions {
		prods[i].alts = b.genAlternatives(prods[i], prodNode.RHS, symTab)
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	start := 0
	if b.Start != "" {
		s, ok := symTab.ruleIndex(b.Start)
		if !ok {
			return nil, &verr.SpecError{
				Cause:  semErrNoSuchStartRule,
				Detail: b.Start,
			}
		}
		start = s
	}

	g := &Grammar{
		symTab: symTab,
		prods:  prods,
		start:  start,
	}
	g.nullable = genNullable(prods)

	g.Warnings = append(g.Warnings, findUnreachableRules(g)...)

	err := findLeftRecursion(g)
	if err != nil {
		return nil, err
	}
	err = findInfiniteRepetitions(g)
	if err != nil {
		return nil, err
	}

	return g, nil
}

func (b *GrammarBuilder) genAlternatives(prod *production, rhs []*ebnf.AlternativeNode, symTab *symbolTable) [][]*term {
	alts := make([][]*term, len(rhs))
	for i, altNode := range rhs {
		seq := make([]*term, len(altNode.Elements))
		for j, elem := range altNode.Elements {
			seq[j] = b.genTerm(prod, elem, symTab)
		}
		alts[i] = seq
	}
	return alts
}

func (b *GrammarBuilder) genTerm(prod *production, elem *ebnf.ElementNode, symTab *symbolTable) *term {
	switch {
	case elem.ID != "":
		rule, ok := symTab.ruleIndex(elem.ID)
		if !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUndefinedRule,
				Detail: fmt.Sprintf("'%v' referenced from rule '%v'", elem.ID, prod.name),
				Row:    elem.Pos.Row,
				Col:    elem.Pos.Col,
			})
			return &term{kind: termKindRule, pos: elem.Pos}
		}
		return &term{
			kind: termKindRule,
			rule: rule,
			pos:  elem.Pos,
		}
	case elem.Literal != "":
		return &term{
			kind:     termKindLiteral,
			terminal: symTab.registerTerminal(elem.Literal),
			pos:      elem.Pos,
		}
	case elem.Group != nil:
		return &term{
			kind: termKindGroup,
			alts: b.genAlternatives(prod, elem.Group.Alternatives, symTab),
			pos:  elem.Pos,
		}
	case elem.Option != nil:
		return &term{
			kind: termKindOption,
			alts: b.genAlternatives(prod, elem.Option.Alternatives, symTab),
			pos:  elem.Pos,
		}
	default:
		return &term{
			kind: termKindRepetition,
			alts: b.genAlternatives(prod, elem.Repetition.Alternatives, symTab),
			pos:  elem.Pos,
		}
	}
}

func genNullable(prods []*production) []bool {
	nullable := make([]bool, len(prods))
	for {
		more := false
		for _, prod := range prods {
			if nullable[prod.lhs] {
				continue
			}
			for _, alt := range prod.alts {
				if seqNullable(alt, nullable) {
					nullable[prod.lhs] = true
					more = true
					break
				}
			}
		}
		if !more {
			break
		}
	}
	return nullable
}

func seqNullable(seq []*term, nullable []bool) bool {
	for _, t := range seq {
		if !termNullable(t, nullable) {
			return false
		}
	}
	return true
}

func termNullable(t *term, nullable []bool) bool {
	switch t.kind {
	case termKindLiteral:
		return false
	case termKindRule:
		return nullable[t.rule]
	case termKindOption, termKindRepetition:
		return true
	default:
		for _, alt := range t.alts {
			if seqNullable(alt, nullable) {
				return true
			}
		}
		return false
	}
}

func findUnreachableRules(g *Grammar) []*Warning {
	reached := make([]bool, len(g.prods))
	var visit func(rule int)
	visit = func(rule int) {
		if reached[rule] {
			return
		}
		reached[rule] = true
		walkRuleTerms(g.prods[rule], func(t *term) {
			if t.kind == termKindRule {
				visit(t.rule)
			}
		})
	}
	visit(g.start)

	var warns []*Warning
	for i, prod := range g.prods {
		if !reached[i] {
			warns = append(warns, &Warning{
				Cause: semWarnUnreachableRule,
				Rule:  prod.name,
			})
		}
	}
	return warns
}

// findLeftRecursion computes the leftmost-reachable relation between rules: an
// edge from R to S means some derivation of R reaches S as the leftmost term
// without consuming a token. Any cycle makes recursive descent diverge.
func findLeftRecursion(g *Grammar) error {
	edges := make([][]int, len(g.prods))
	for i, prod := range g.prods {
		edges[i] = leftRefs(prod.alts, g.nullable)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.prods))
	var stack []int

	var visit func(rule int) []int
	visit = func(rule int) []int {
		color[rule] = gray
		stack = append(stack, rule)
		for _, next := range edges[rule] {
			switch color[next] {
			case gray:
				i := 0
				for stack[i] != next {
					i++
				}
				return append(stack[i:], next)
			case white:
				cycle := visit(next)
				if cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[rule] = black
		return nil
	}

	for i := range g.prods {
		if color[i] != white {
			continue
		}
		cycle := visit(i)
		if cycle != nil {
			names := make([]string, len(cycle))
			for j, rule := range cycle {
				names[j] = g.prods[rule].name
			}
			return &verr.SpecError{
				Cause:  semErrLeftRecursion,
				Detail: strings.Join(names, " -> "),
				Row:    g.prods[cycle[0]].pos.Row,
				Col:    g.prods[cycle[0]].pos.Col,
			}
		}
	}
	return nil
}

func leftRefs(alts [][]*term, nullable []bool) []int {
	var refs []int
	seen := map[int]struct{}{}
	add := func(rule int) {
		if _, ok := seen[rule]; ok {
			return
		}
		seen[rule] = struct{}{}
		refs = append(refs, rule)
	}

	var termRefs func(t *term)
	var seqRefs func(seq []*term)
	termRefs = func(t *term) {
		switch t.kind {
		case termKindRule:
			add(t.rule)
		case termKindGroup, termKindOption, termKindRepetition:
			for _, alt := range t.alts {
				seqRefs(alt)
			}
		}
	}
	seqRefs = func(seq []*term) {
		for _, t := range seq {
			termRefs(t)
			if !termNullable(t, nullable) {
				break
			}
		}
	}

	for _, alt := range alts {
		seqRefs(alt)
	}
	return refs
}

func findInfiniteRepetitions(g *Grammar) error {
	for _, prod := range g.prods {
		var repErr error
		walkRuleTerms(prod, func(t *term) {
			if repErr != nil || t.kind != termKindRepetition {
				return
			}
			for _, alt := range t.alts {
				if seqNullable(alt, g.nullable) {
					repErr = &verr.SpecError{
						Cause:  semErrInfiniteRepetition,
						Detail: fmt.Sprintf("in rule '%v'", prod.name),
						Row:    t.pos.Row,
						Col:    t.pos.Col,
					}
					return
				}
			}
		})
		if repErr != nil {
			return repErr
		}
	}
	return nil
}

func walkRuleTerms(prod *production, fn func(t *term)) {
	var walkSeq func(seq []*term)
	walkSeq = func(seq []*term) {
		for _, t := range seq {
			fn(t)
			for _, alt := range t.alts {
				walkSeq(alt)
			}
		}
	}
	for _, alt := range prod.alts {
		walkSeq(alt)
	}
}
