package grammar

type firstEntry struct {
	terminals map[int]struct{}
	empty     bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		terminals: map[int]struct{}{},
		empty:     false,
	}
}

func (e *firstEntry) add(term int) bool {
	if _, ok := e.terminals[term]; ok {
		return false
	}
	e.terminals[term] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for term := range target.terminals {
		added := e.add(term)
		if added {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) overlaps(target *firstEntry) bool {
	for term := range e.terminals {
		if _, ok := target.terminals[term]; ok {
			return true
		}
	}
	return false
}

type firstSet struct {
	set map[int]*firstEntry
}

func newFirstSet(prods []*production) *firstSet {
	fst := &firstSet{
		set: map[int]*firstEntry{},
	}
	for _, prod := range prods {
		fst.set[prod.lhs] = newFirstEntry()
	}
	return fst
}

func (fst *firstSet) findByRule(rule int) *firstEntry {
	return fst.set[rule]
}

// genFirstSet computes the FIRST set of every rule by fixed-point iteration:
// the per-rule entries grow monotonically until a full pass changes nothing.
func genFirstSet(g *Grammar) *firstSet {
	fst := newFirstSet(g.prods)
	for {
		more := false
		for _, prod := range g.prods {
			acc := fst.findByRule(prod.lhs)
			for _, alt := range prod.alts {
				if fst.seqFirstInto(acc, alt) {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return fst
}

// seqFirst computes the FIRST set of a term sequence against the current
// per-rule entries.
func (fst *firstSet) seqFirst(seq []*term) *firstEntry {
	entry := newFirstEntry()
	fst.seqFirstInto(entry, seq)
	return entry
}

func (fst *firstSet) seqFirstInto(acc *firstEntry, seq []*term) bool {
	changed := false
	for _, t := range seq {
		e := fst.termFirst(t)
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed
}

func (fst *firstSet) termFirst(t *term) *firstEntry {
	entry := newFirstEntry()
	switch t.kind {
	case termKindLiteral:
		entry.add(t.terminal)
	case termKindRule:
		entry.mergeExceptEmpty(fst.findByRule(t.rule))
		if fst.findByRule(t.rule).empty {
			entry.addEmpty()
		}
	default:
		for _, alt := range t.alts {
			e := fst.seqFirst(alt)
			entry.mergeExceptEmpty(e)
			if e.empty {
				entry.addEmpty()
			}
		}
		if t.kind == termKindOption || t.kind == termKindRepetition {
			entry.addEmpty()
		}
	}
	return entry
}
