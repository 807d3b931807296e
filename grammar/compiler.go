package grammar

import (
	"fmt"
	"sort"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/nagi9/ebnfc/ebnf"
)

// Compile lowers a validated grammar to its executable form: a flat op table
// annotated with the lookahead sets the runtime needs for predictive
// dispatch and repetition guards. Warnings carry over from validation and
// gain one entry per ambiguous choice.
func Compile(g *Grammar) (*ebnf.CompiledParser, []*Warning, error) {
	c := &compiler{
		g:   g,
		fst: genFirstSet(g),
	}
	c.flw = genFollowSet(g, c.fst)

	rules := make([]*ebnf.CompiledRule, len(g.prods))
	for i, prod := range g.prods {
		ctx := newFollowEntry()
		ctx.merge(nil, c.flw.findByRule(prod.lhs))

		rules[i] = &ebnf.CompiledRule{
			Name: prod.name,
			Root: c.compileAlts(prod, prod.alts, ctx),
		}
	}

	terminals := make([]string, g.symTab.terminalCount())
	copy(terminals, g.symTab.termTexts)

	maleeni, err := genLexicalSpec(g.symTab)
	if err != nil {
		return nil, nil, err
	}

	warns := make([]*Warning, 0, len(g.Warnings)+len(c.warnings))
	warns = append(warns, g.Warnings...)
	warns = append(warns, c.warnings...)

	return &ebnf.CompiledParser{
		Terminals: terminals,
		Lexical: &ebnf.LexicalSpecification{
			Lexer:   "maleeni",
			Maleeni: maleeni,
		},
		Rules: rules,
		Ops:   c.ops,
		Start: g.start,
	}, warns, nil
}

const lexKindWhitespace = "white_space"

// genLexicalSpec derives a lexical specification from the terminal alphabet:
// one entry per literal text, with the pattern escaped so the text is matched
// verbatim, plus a skipped whitespace entry. The lexer matches the longest
// candidate at every position, so a text like "->" arrives as one token
// rather than two.
func genLexicalSpec(symTab *symbolTable) (*ebnf.Maleeni, error) {
	kind2Term := map[string]int{
		lexKindWhitespace: ebnf.TerminalNil,
	}
	entries := []*mlspec.LexEntry{
		{
			Kind:    mlspec.LexKindName(lexKindWhitespace),
			Pattern: mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`),
		},
	}
	for term := ebnf.TerminalEOF + 1; term < symTab.terminalCount(); term++ {
		// Literal texts are rarely valid kind names, so kinds are synthetic.
		kind := fmt.Sprintf("x_%v", term)
		kind2Term[kind] = term
		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(kind),
			Pattern: mlspec.LexPattern(mlspec.EscapePattern(symTab.terminalText(term))),
		})
	}

	lexSpec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    "ebnfc",
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeLexCompileError(&b, cErrs[0])
			for _, cErr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeLexCompileError(&b, cErr)
			}
			return nil, fmt.Errorf(b.String())
		}
		return nil, err
	}

	kindToTerminal := make([]int, len(lexSpec.KindNames))
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kindToTerminal[mlspec.LexKindIDNil] = ebnf.TerminalNil
			continue
		}
		term, ok := kind2Term[k.String()]
		if !ok {
			return nil, fmt.Errorf("lex kind '%v' was not derived from a terminal", k)
		}
		kindToTerminal[i] = term
		if k.String() == lexKindWhitespace {
			skip[i] = 1
		}
	}

	return &ebnf.Maleeni{
		Spec:           lexSpec,
		KindToTerminal: kindToTerminal,
		Skip:           skip,
	}, nil
}

func writeLexCompileError(w *strings.Builder, cErr *mlcompiler.CompileError) {
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

type compiler struct {
	g        *Grammar
	fst      *firstSet
	flw      *followSet
	ops      []*ebnf.Op
	warnings []*Warning
}

func (c *compiler) addOp(op *ebnf.Op) int {
	c.ops = append(c.ops, op)
	return len(c.ops) - 1
}

// compileAlts lowers a choice point. The predict set of an alternative is its
// FIRST set, extended with the surrounding context's follow set when the
// alternative is nullable. Pairwise-disjoint predict sets let the runtime
// commit on one token of lookahead; otherwise the choice falls back to
// ordered attempt-and-backtrack.
func (c *compiler) compileAlts(prod *production, alts [][]*term, ctx *followEntry) int {
	if len(alts) == 1 {
		return c.compileSeq(prod, alts[0], ctx)
	}

	children := make([]int, len(alts))
	predicts := make([][]int, len(alts))
	firsts := make([]*firstEntry, len(alts))
	for i, alt := range alts {
		children[i] = c.compileSeq(prod, alt, ctx)
		firsts[i] = c.fst.seqFirst(alt)

		predict := newFollowEntry()
		predict.merge(firsts[i], nil)
		if firsts[i].empty {
			predict.merge(nil, ctx)
		}
		predicts[i] = terminalList(predict)
	}

	predictive := true
	for i := 0; i < len(alts) && predictive; i++ {
		for j := i + 1; j < len(alts); j++ {
			if overlapping(predicts[i], predicts[j]) {
				predictive = false
				break
			}
		}
	}

	for i := 0; i < len(alts); i++ {
		for j := i + 1; j < len(alts); j++ {
			if firsts[i].overlaps(firsts[j]) {
				c.warnings = append(c.warnings, &Warning{
					Cause:  semWarnAmbiguousChoice,
					Detail: fmt.Sprintf("alternatives %v and %v", i+1, j+1),
					Rule:   prod.name,
				})
			}
		}
	}

	return c.addOp(&ebnf.Op{
		Kind:       ebnf.OpKindChoice,
		Children:   children,
		Predicts:   predicts,
		Predictive: predictive,
	})
}

func (c *compiler) compileSeq(prod *production, seq []*term, ctx *followEntry) int {
	if len(seq) == 1 {
		return c.compileTerm(prod, seq[0], ctx)
	}

	children := make([]int, len(seq))
	for i, t := range seq {
		rest := seq[i+1:]
		restFirst := c.fst.seqFirst(rest)

		termCtx := newFollowEntry()
		termCtx.merge(restFirst, nil)
		if restFirst.empty {
			termCtx.merge(nil, ctx)
		}

		children[i] = c.compileTerm(prod, t, termCtx)
	}
	return c.addOp(&ebnf.Op{
		Kind:     ebnf.OpKindSequence,
		Children: children,
	})
}

func (c *compiler) compileTerm(prod *production, t *term, ctx *followEntry) int {
	switch t.kind {
	case termKindLiteral:
		return c.addOp(&ebnf.Op{
			Kind:     ebnf.OpKindLiteral,
			Terminal: t.terminal,
		})
	case termKindRule:
		return c.addOp(&ebnf.Op{
			Kind: ebnf.OpKindRule,
			Rule: t.rule,
		})
	case termKindGroup:
		return c.compileAlts(prod, t.alts, ctx)
	case termKindOption:
		return c.addOp(&ebnf.Op{
			Kind:     ebnf.OpKindOption,
			Children: []int{c.compileAlts(prod, t.alts, ctx)},
		})
	default:
		bodyFirst := newFirstEntry()
		for _, alt := range t.alts {
			bodyFirst.mergeExceptEmpty(c.fst.seqFirst(alt))
		}

		// The body may be followed by another iteration of itself.
		bodyCtx := newFollowEntry()
		bodyCtx.merge(bodyFirst, nil)
		bodyCtx.merge(nil, ctx)

		first := make([]int, 0, len(bodyFirst.terminals))
		for term := range bodyFirst.terminals {
			first = append(first, term)
		}
		sort.Ints(first)

		return c.addOp(&ebnf.Op{
			Kind:     ebnf.OpKindRepetition,
			Children: []int{c.compileAlts(prod, t.alts, bodyCtx)},
			First:    first,
		})
	}
}

func terminalList(e *followEntry) []int {
	terms := make([]int, 0, len(e.terminals)+1)
	for term := range e.terminals {
		terms = append(terms, term)
	}
	if e.eof {
		terms = append(terms, ebnf.TerminalEOF)
	}
	sort.Ints(terms)
	return terms
}

func overlapping(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}
