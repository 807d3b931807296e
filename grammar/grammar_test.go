package grammar

import (
	"errors"
	"testing"

	verr "github.com/nagi9/ebnfc/error"
)

func TestGrammarBuilder_StartRule(t *testing.T) {
	src := `a = "x" ; b = "y" ;`

	t.Run("the start rule defaults to the first rule defined", func(t *testing.T) {
		g := buildGrammar(t, src, "")
		if g.StartRuleName() != "a" {
			t.Fatalf("unexpected start rule; want: a, got: %v", g.StartRuleName())
		}
	})

	t.Run("the start rule can be overridden", func(t *testing.T) {
		g := buildGrammar(t, src, "b")
		if g.StartRuleName() != "b" {
			t.Fatalf("unexpected start rule; want: b, got: %v", g.StartRuleName())
		}
	})

	t.Run("overriding with an undefined rule fails", func(t *testing.T) {
		_, err := tryBuildGrammar(t, src, "z")
		if err == nil {
			t.Fatal("an error didn't occur")
		}
		specErr := &verr.SpecError{}
		if !errors.As(err, &specErr) {
			t.Fatalf("unexpected error type: %T: %v", err, err)
		}
		if specErr.Cause != semErrNoSuchStartRule || specErr.Detail != "z" {
			t.Fatalf("unexpected error: %v", specErr)
		}
	})
}

func TestGrammarBuilder_SemanticErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		start   string
		causes  []error
		details []string
	}{
		{
			caption: "a rule must not be defined twice",
			src:     `a = "x" ; a = "y" ;`,
			causes:  []error{semErrDuplicateRule},
			details: []string{"a"},
		},
		{
			caption: "a referenced rule must be defined",
			src:     `a = b ;`,
			causes:  []error{semErrUndefinedRule},
			details: []string{"'b' referenced from rule 'a'"},
		},
		{
			caption: "all undefined references are reported at once",
			src:     `a = b , c ;`,
			causes:  []error{semErrUndefinedRule, semErrUndefinedRule},
			details: []string{"'b' referenced from rule 'a'", "'c' referenced from rule 'a'"},
		},
		{
			caption: "an undefined reference inside a group is reported",
			src:     `a = ( "x" | b ) ;`,
			causes:  []error{semErrUndefinedRule},
			details: []string{"'b' referenced from rule 'a'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := tryBuildGrammar(t, tt.src, tt.start)
			if err == nil {
				t.Fatal("an error didn't occur")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if len(specErrs) != len(tt.causes) {
				t.Fatalf("unexpected number of errors; want: %v, got: %v: %v", len(tt.causes), len(specErrs), specErrs)
			}
			for i, specErr := range specErrs {
				if specErr.Cause != tt.causes[i] {
					t.Fatalf("unexpected cause\nwant: %v\ngot: %v", tt.causes[i], specErr.Cause)
				}
				if specErr.Detail != tt.details[i] {
					t.Fatalf("unexpected detail\nwant: %v\ngot: %v", tt.details[i], specErr.Detail)
				}
			}
		})
	}
}

func TestGrammarBuilder_LeftRecursion(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		detail  string
	}{
		{
			caption: "direct left recursion is rejected",
			src:     `a = a , "x" | "y" ;`,
			detail:  "a -> a",
		},
		{
			caption: "indirect left recursion is rejected",
			src:     `a = b , "x" ; b = c ; c = a | "t" ;`,
			detail:  "a -> b -> c -> a",
		},
		{
			caption: "a nullable prefix does not hide left recursion",
			src:     `a = [ "x" ] , a , "y" | "z" ;`,
			detail:  "a -> a",
		},
		{
			caption: "a nullable leading rule does not hide left recursion",
			src:     `a = b , a , "y" | "z" ; b = [ "x" ] ;`,
			detail:  "a -> a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := tryBuildGrammar(t, tt.src, "")
			if err == nil {
				t.Fatal("an error didn't occur")
			}
			specErr := &verr.SpecError{}
			if !errors.As(err, &specErr) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if specErr.Cause != semErrLeftRecursion {
				t.Fatalf("unexpected cause\nwant: %v\ngot: %v", semErrLeftRecursion, specErr.Cause)
			}
			if specErr.Detail != tt.detail {
				t.Fatalf("unexpected cycle\nwant: %v\ngot: %v", tt.detail, specErr.Detail)
			}
		})
	}

	t.Run("recursion behind a token is allowed", func(t *testing.T) {
		buildGrammar(t, `a = "x" , a | "y" ;`, "")
	})
}

func TestGrammarBuilder_InfiniteRepetition(t *testing.T) {
	tests := []struct {
		caption string
		src     string
	}{
		{
			caption: "a repetition body must not be an option",
			src:     `a = { [ "x" ] } ;`,
		},
		{
			caption: "a repetition body must not be a nullable rule",
			src:     `a = { b } ; b = [ "x" ] ;`,
		},
		{
			caption: "a repetition body with a nullable alternative is rejected",
			src:     `a = { "x" | { "y" } } ;`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := tryBuildGrammar(t, tt.src, "")
			if err == nil {
				t.Fatal("an error didn't occur")
			}
			specErr := &verr.SpecError{}
			if !errors.As(err, &specErr) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if specErr.Cause != semErrInfiniteRepetition {
				t.Fatalf("unexpected cause\nwant: %v\ngot: %v", semErrInfiniteRepetition, specErr.Cause)
			}
		})
	}
}

func TestGrammarBuilder_UnreachableRules(t *testing.T) {
	t.Run("rules unreachable from the start rule yield warnings", func(t *testing.T) {
		g := buildGrammar(t, `a = b ; b = "x" ; c = "y" ; d = c ;`, "")
		if len(g.Warnings) != 2 {
			t.Fatalf("unexpected number of warnings; want: 2, got: %v: %v", len(g.Warnings), g.Warnings)
		}
		for i, rule := range []string{"c", "d"} {
			w := g.Warnings[i]
			if w.Cause != semWarnUnreachableRule || w.Rule != rule {
				t.Fatalf("unexpected warning: %v", w)
			}
		}
	})

	t.Run("overriding the start rule changes reachability", func(t *testing.T) {
		g := buildGrammar(t, `a = "x" ; b = "y" ;`, "b")
		if len(g.Warnings) != 1 {
			t.Fatalf("unexpected number of warnings; want: 1, got: %v: %v", len(g.Warnings), g.Warnings)
		}
		if g.Warnings[0].Rule != "a" {
			t.Fatalf("unexpected warning: %v", g.Warnings[0])
		}
	})
}

func TestGenNullable(t *testing.T) {
	g := buildGrammar(t, `
a = b , c ;
b = [ "x" ] ;
c = "y" ;
d = { "z" } ;
e = b , d ;
`, "a")

	expected := map[string]bool{
		"a": false,
		"b": true,
		"c": false,
		"d": true,
		"e": true,
	}
	for name, want := range expected {
		rule, ok := g.symTab.ruleIndex(name)
		if !ok {
			t.Fatalf("rule '%v' is not registered", name)
		}
		if g.nullable[rule] != want {
			t.Fatalf("unexpected nullability of rule '%v'; want: %v, got: %v", name, want, g.nullable[rule])
		}
	}
}
