package grammar

type followEntry struct {
	terminals map[int]struct{}
	eof       bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		terminals: map[int]struct{}{},
		eof:       false,
	}
}

func (e *followEntry) add(term int) bool {
	if _, ok := e.terminals[term]; ok {
		return false
	}
	e.terminals[term] = struct{}{}
	return true
}

func (e *followEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for term := range fst.terminals {
			added := e.add(term)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for term := range flw.terminals {
			added := e.add(term)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

type followSet struct {
	set map[int]*followEntry
}

func newFollowSet(prods []*production) *followSet {
	flw := &followSet{
		set: map[int]*followEntry{},
	}
	for _, prod := range prods {
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) findByRule(rule int) *followEntry {
	return flw.set[rule]
}

// genFollowSet computes the FOLLOW set of every rule by fixed-point
// iteration. For each rule reference inside a body, the FIRST set of the
// remainder of its sequence flows into the referenced rule's FOLLOW set; when
// the remainder is nullable, the enclosing context's follow flows in as well.
// Inside a repetition the body may be followed by another iteration of
// itself, so the body's own FIRST set joins the context.
func genFollowSet(g *Grammar, fst *firstSet) *followSet {
	flw := newFollowSet(g.prods)
	flw.findByRule(g.start).addEOF()

	for {
		more := false
		for _, prod := range g.prods {
			ctx := flw.findByRule(prod.lhs)
			for _, alt := range prod.alts {
				if flw.walkSeq(alt, ctx, fst) {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return flw
}

func (flw *followSet) walkSeq(seq []*term, ctx *followEntry, fst *firstSet) bool {
	changed := false
	for i, t := range seq {
		rest := seq[i+1:]
		restFirst := fst.seqFirst(rest)

		termCtx := newFollowEntry()
		termCtx.merge(restFirst, nil)
		if restFirst.empty {
			termCtx.merge(nil, ctx)
		}

		if flw.walkTerm(t, termCtx, fst) {
			changed = true
		}
	}
	return changed
}

func (flw *followSet) walkTerm(t *term, ctx *followEntry, fst *firstSet) bool {
	changed := false
	switch t.kind {
	case termKindRule:
		if flw.findByRule(t.rule).merge(nil, ctx) {
			changed = true
		}
	case termKindGroup, termKindOption:
		for _, alt := range t.alts {
			if flw.walkSeq(alt, ctx, fst) {
				changed = true
			}
		}
	case termKindRepetition:
		bodyCtx := newFollowEntry()
		bodyCtx.merge(nil, ctx)
		for _, alt := range t.alts {
			bodyCtx.merge(fst.seqFirst(alt), nil)
		}
		for _, alt := range t.alts {
			if flw.walkSeq(alt, bodyCtx, fst) {
				changed = true
			}
		}
	}
	return changed
}
