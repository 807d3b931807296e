package ebnf

import (
	"errors"
	"testing"

	verr "github.com/nagi9/ebnfc/error"
)

func TestParse(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		checkFn func(t *testing.T, root *RootNode)
	}{
		{
			caption: "a production is a sequence of comma-separated elements",
			src:     `int = [ "-" ] , num ; num = "0" ;`,
			checkFn: func(t *testing.T, root *RootNode) {
				if len(root.Productions) != 2 {
					t.Fatalf("unexpected number of productions; want: 2, got: %v", len(root.Productions))
				}
				prod := root.Productions[0]
				if prod.LHS != "int" {
					t.Fatalf("unexpected LHS; want: int, got: %v", prod.LHS)
				}
				if len(prod.RHS) != 1 {
					t.Fatalf("unexpected number of alternatives; want: 1, got: %v", len(prod.RHS))
				}
				elems := prod.RHS[0].Elements
				if len(elems) != 2 {
					t.Fatalf("unexpected number of elements; want: 2, got: %v", len(elems))
				}
				if elems[0].Option == nil {
					t.Fatalf("the first element must be an option")
				}
				optElems := elems[0].Option.Alternatives[0].Elements
				if len(optElems) != 1 || optElems[0].Literal != "-" {
					t.Fatalf("unexpected option body: %+v", optElems)
				}
				if elems[1].ID != "num" {
					t.Fatalf("unexpected element; want: num, got: %+v", elems[1])
				}
			},
		},
		{
			caption: "alternative order is preserved exactly as written",
			src:     `letter = "c" | "a" | "b" ;`,
			checkFn: func(t *testing.T, root *RootNode) {
				alts := root.Productions[0].RHS
				if len(alts) != 3 {
					t.Fatalf("unexpected number of alternatives; want: 3, got: %v", len(alts))
				}
				want := []string{"c", "a", "b"}
				for i, w := range want {
					if alts[i].Elements[0].Literal != w {
						t.Fatalf("unexpected alternative #%v; want: %v, got: %v", i, w, alts[i].Elements[0].Literal)
					}
				}
			},
		},
		{
			caption: "groups, options, and repetitions nest",
			src:     `var = letter , { letter | digit } ; letter = "a" ; digit = "0" ;`,
			checkFn: func(t *testing.T, root *RootNode) {
				elems := root.Productions[0].RHS[0].Elements
				rep := elems[1].Repetition
				if rep == nil {
					t.Fatalf("the second element must be a repetition")
				}
				if len(rep.Alternatives) != 2 {
					t.Fatalf("unexpected number of body alternatives; want: 2, got: %v", len(rep.Alternatives))
				}
			},
		},
		{
			caption: "a group contains full alternation",
			src:     `typ = ( var , "->" , typ ) | var ; var = "v" ;`,
			checkFn: func(t *testing.T, root *RootNode) {
				alts := root.Productions[0].RHS
				if len(alts) != 2 {
					t.Fatalf("unexpected number of alternatives; want: 2, got: %v", len(alts))
				}
				group := alts[0].Elements[0].Group
				if group == nil {
					t.Fatalf("the first alternative must be a group")
				}
				if len(group.Alternatives[0].Elements) != 3 {
					t.Fatalf("unexpected group body: %+v", group.Alternatives[0].Elements)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			root, err := ParseString(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			tt.checkFn(t, root)
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		cause   error
		row     int
		col     int
	}{
		{
			caption: "a grammar must have at least one production",
			src:     `(* nothing here *)`,
			cause:   synErrNoProduction,
		},
		{
			caption: "a production name is missing",
			src:     `= "a" ;`,
			cause:   synErrNoProductionName,
			row:     1,
			col:     1,
		},
		{
			caption: "the definition symbol is missing",
			src:     `a "x" ;`,
			cause:   synErrNoEqu,
			row:     1,
			col:     3,
		},
		{
			caption: "the semicolon is missing",
			src:     `a = "x"`,
			cause:   synErrNoSemicolon,
		},
		{
			caption: "an alternative must not be empty",
			src:     `a = "x" | ;`,
			cause:   synErrEmptyAlternative,
			row:     1,
			col:     11,
		},
		{
			caption: "an empty right-hand side is not allowed",
			src:     `a = ;`,
			cause:   synErrEmptyAlternative,
		},
		{
			caption: "an element must follow a comma",
			src:     `a = "x" , ;`,
			cause:   synErrNoElement,
		},
		{
			caption: "a group must be closed",
			src:     `a = ( "x" ;`,
			cause:   synErrUnclosedGroup,
		},
		{
			caption: "an option must be closed",
			src:     `a = [ "x" ;`,
			cause:   synErrUnclosedOption,
		},
		{
			caption: "a repetition must be closed",
			src:     `a = { "x" ;`,
			cause:   synErrUnclosedRepetition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := ParseString(tt.src)
			if err == nil {
				t.Fatal("an error didn't occur")
			}
			specErr := &verr.SpecError{}
			if !errors.As(err, &specErr) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if specErr.Cause != tt.cause {
				t.Fatalf("unexpected cause\nwant: %v\ngot: %v", tt.cause, specErr.Cause)
			}
			if tt.row != 0 && (specErr.Row != tt.row || specErr.Col != tt.col) {
				t.Fatalf("unexpected position\nwant: %v:%v\ngot: %v:%v", tt.row, tt.col, specErr.Row, specErr.Col)
			}
		})
	}
}
