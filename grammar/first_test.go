package grammar

import (
	"testing"
)

type expectedFirstEntry struct {
	terminals []string
	empty     bool
}

func TestGenFirstSet(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		first   map[string]expectedFirstEntry
	}{
		{
			caption: "the FIRST set of a literal sequence is its leading literal",
			src: `
dec = "val" , var ;
var = letter ;
letter = "a" | "b" ;
`,
			first: map[string]expectedFirstEntry{
				"dec":    {terminals: []string{"val"}},
				"var":    {terminals: []string{"a", "b"}},
				"letter": {terminals: []string{"a", "b"}},
			},
		},
		{
			caption: "a nullable prefix exposes the following term",
			src: `
int = [ "-" ] , num ;
num = "0" | "1" ;
`,
			first: map[string]expectedFirstEntry{
				"int": {terminals: []string{"-", "0", "1"}},
				"num": {terminals: []string{"0", "1"}},
			},
		},
		{
			caption: "an option and a repetition are nullable",
			src: `
s = opt , rep ;
opt = [ "x" ] ;
rep = { "y" } ;
`,
			first: map[string]expectedFirstEntry{
				"s":   {terminals: []string{"x", "y"}, empty: true},
				"opt": {terminals: []string{"x"}, empty: true},
				"rep": {terminals: []string{"y"}, empty: true},
			},
		},
		{
			caption: "FIRST propagates through rule references",
			src: `
typ = ( var , "->" , typ ) | var ;
var = "v" | "w" ;
`,
			first: map[string]expectedFirstEntry{
				"typ": {terminals: []string{"v", "w"}},
				"var": {terminals: []string{"v", "w"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src, "")
			fst := genFirstSet(g)
			for name, want := range tt.first {
				rule, ok := g.symTab.ruleIndex(name)
				if !ok {
					t.Fatalf("rule '%v' is not registered", name)
				}
				e := fst.findByRule(rule)
				if e == nil {
					t.Fatalf("a FIRST entry of rule '%v' is not found", name)
				}
				testFirstEntry(t, g, name, e, want)
			}
		})
	}
}

func testFirstEntry(t *testing.T, g *Grammar, rule string, e *firstEntry, want expectedFirstEntry) {
	t.Helper()

	if e.empty != want.empty {
		t.Fatalf("unexpected emptiness of FIRST(%v); want: %v, got: %v", rule, want.empty, e.empty)
	}
	if len(e.terminals) != len(want.terminals) {
		t.Fatalf("unexpected size of FIRST(%v); want: %v, got: %v", rule, len(want.terminals), len(e.terminals))
	}
	for _, text := range want.terminals {
		term, ok := g.symTab.text2Term[text]
		if !ok {
			t.Fatalf("terminal '%v' is not registered", text)
		}
		if _, ok := e.terminals[term]; !ok {
			t.Fatalf("FIRST(%v) does not contain '%v'", rule, text)
		}
	}
}
