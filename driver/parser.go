package driver

import (
	"fmt"
	"io"
	"sort"

	"github.com/nagi9/ebnfc/ebnf"
)

// Node is a syntax tree node. Rule matches carry the rule name in KindName;
// literal matches are leaves carrying the matched text and its position.
type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

// Leaves returns the literal leaves of the tree in source order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	var walk func(node *Node)
	walk = func(node *Node) {
		if node.Text != "" {
			leaves = append(leaves, node)
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(n)
	return leaves
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             *Token
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	s := fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
	if len(e.ExpectedTerminals) > 0 {
		s += fmt.Sprintf("; expected: %v", e.ExpectedTerminals[0])
		for _, t := range e.ExpectedTerminals[1:] {
			s += fmt.Sprintf(", %v", t)
		}
	}
	return s
}

// DepthLimitError reports that a parse exceeded the recursion depth limit
// before completing. It protects against stack exhaustion on pathologically
// nested inputs.
type DepthLimitError struct {
	Limit int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("recursion depth limit exceeded; limit: %v", e.Limit)
}

const defaultDepthLimit = 4096

type ParserOption func(p *Parser) error

// StartRule overrides the entry rule for this parse.
func StartRule(name string) ParserOption {
	return func(p *Parser) error {
		rule, ok := p.gram.RuleIndex(name)
		if !ok {
			return fmt.Errorf("the grammar doesn't define a rule named '%v'", name)
		}
		p.start = rule
		return nil
	}
}

// DepthLimit sets the maximum rule invocation depth.
func DepthLimit(limit int) ParserOption {
	return func(p *Parser) error {
		if limit <= 0 {
			return fmt.Errorf("a depth limit must be greater than 0; passed: %v", limit)
		}
		p.depthLimit = limit
		return nil
	}
}

// Parser executes one parse of one token stream. The compiled parser it
// interprets is immutable and may back any number of concurrent Parsers;
// each Parser owns its own cursor and tree.
type Parser struct {
	gram       *ebnf.CompiledParser
	toks       []*Token
	start      int
	depthLimit int

	cursor   int
	depth    int
	furthest *failure
}

type failure struct {
	pos      int
	expected map[int]struct{}
}

func NewParser(gram *ebnf.CompiledParser, ts TokenStream, opts ...ParserOption) (*Parser, error) {
	// A backtracking parser revisits earlier positions, so the stream is
	// drained up front. The EOF token is kept as a sentinel.
	var toks []*Token
	for {
		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.EOF {
			break
		}
	}

	p := &Parser{
		gram:       gram,
		toks:       toks,
		start:      gram.Start,
		depthLimit: defaultDepthLimit,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse runs the entry rule against the token stream. It returns either a
// complete tree or an error, never both and never a partial tree.
func (p *Parser) Parse() (root *Node, retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err, ok := v.(*DepthLimitError)
		if !ok {
			panic(v)
		}
		root = nil
		retErr = err
	}()

	node, ok := p.callRule(p.start)
	if !ok {
		return nil, p.syntaxError()
	}

	if !p.toks[p.cursor].EOF {
		// A longer attempt that failed deeper in the input explains the
		// outcome better than the bare trailing-input position.
		if p.furthest != nil && p.furthest.pos > p.cursor {
			return nil, p.syntaxError()
		}
		tok := p.toks[p.cursor]
		return nil, &SyntaxError{
			Row:               tok.Row,
			Col:               tok.Col,
			Message:           "trailing input remains after a complete parse",
			Token:             tok,
			ExpectedTerminals: []string{ebnf.TerminalNameEOF},
		}
	}

	return node, nil
}

func (p *Parser) callRule(rule int) (*Node, bool) {
	p.depth++
	if p.depth > p.depthLimit {
		panic(&DepthLimitError{
			Limit: p.depthLimit,
		})
	}
	defer func() {
		p.depth--
	}()

	children, ok := p.execOp(p.gram.Rules[rule].Root)
	if !ok {
		return nil, false
	}
	return &Node{
		KindName: p.gram.Rules[rule].Name,
		Children: children,
	}, true
}

func (p *Parser) execOp(op int) ([]*Node, bool) {
	o := p.gram.Ops[op]
	switch o.Kind {
	case ebnf.OpKindLiteral:
		tok := p.toks[p.cursor]
		if !tok.EOF && tok.Terminal == o.Terminal {
			p.cursor++
			return []*Node{
				{
					KindName: p.gram.Terminals[o.Terminal],
					Text:     tok.Text,
					Row:      tok.Row,
					Col:      tok.Col,
				},
			}, true
		}
		p.fail(p.cursor, o.Terminal)
		return nil, false
	case ebnf.OpKindRule:
		node, ok := p.callRule(o.Rule)
		if !ok {
			return nil, false
		}
		return []*Node{node}, true
	case ebnf.OpKindSequence:
		start := p.cursor
		var children []*Node
		for _, child := range o.Children {
			nodes, ok := p.execOp(child)
			if !ok {
				p.cursor = start
				return nil, false
			}
			children = append(children, nodes...)
		}
		return children, true
	case ebnf.OpKindChoice:
		if o.Predictive {
			la := p.lookaheadTerminal()
			for i, child := range o.Children {
				if containsTerminal(o.Predicts[i], la) {
					return p.execOp(child)
				}
			}
			var expected []int
			for _, predict := range o.Predicts {
				expected = append(expected, predict...)
			}
			p.fail(p.cursor, expected...)
			return nil, false
		}

		// Ordered choice: alternatives are tried in declared order and the
		// first success is committed to.
		start := p.cursor
		for _, child := range o.Children {
			nodes, ok := p.execOp(child)
			if ok {
				return nodes, true
			}
			p.cursor = start
		}
		return nil, false
	case ebnf.OpKindRepetition:
		body := o.Children[0]
		var children []*Node
		for {
			if !containsTerminal(o.First, p.lookaheadTerminal()) {
				break
			}
			mark := p.cursor
			nodes, ok := p.execOp(body)
			if !ok {
				p.cursor = mark
				break
			}
			if p.cursor == mark {
				break
			}
			children = append(children, nodes...)
		}
		return children, true
	default: // ebnf.OpKindOption
		mark := p.cursor
		nodes, ok := p.execOp(o.Children[0])
		if !ok {
			p.cursor = mark
			return nil, true
		}
		return nodes, true
	}
}

func (p *Parser) lookaheadTerminal() int {
	tok := p.toks[p.cursor]
	if tok.EOF {
		return ebnf.TerminalEOF
	}
	return tok.Terminal
}

// fail records a failure for the furthest-fail diagnostic: the failure that
// consumed the most tokens wins; ties merge their expected sets.
func (p *Parser) fail(pos int, expected ...int) {
	if p.furthest == nil || pos > p.furthest.pos {
		p.furthest = &failure{
			pos:      pos,
			expected: map[int]struct{}{},
		}
	}
	if pos < p.furthest.pos {
		return
	}
	for _, term := range expected {
		p.furthest.expected[term] = struct{}{}
	}
}

func (p *Parser) syntaxError() *SyntaxError {
	pos := p.cursor
	var expected []string
	if p.furthest != nil {
		pos = p.furthest.pos
		for term := range p.furthest.expected {
			expected = append(expected, p.gram.Terminals[term])
		}
		sort.Strings(expected)
	}

	tok := p.toks[pos]
	return &SyntaxError{
		Row:               tok.Row,
		Col:               tok.Col,
		Message:           "unexpected token",
		Token:             tok,
		ExpectedTerminals: expected,
	}
}

func containsTerminal(terms []int, term int) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}
