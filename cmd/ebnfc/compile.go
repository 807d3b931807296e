package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nagi9/ebnfc/ebnf"
	verr "github.com/nagi9/ebnfc/error"
	"github.com/nagi9/ebnfc/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output *string
	start  *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar into a parsing program",
		Example: `  ebnfc compile grammar.ebnf -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.start = cmd.Flags().String("start", "", "start rule name (default the first rule)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	grmPath := ""
	if len(args) > 0 {
		grmPath = args[0]
	}

	cgram, warns, err := compileGrammar(grmPath, *compileFlags.start)
	if err != nil {
		return err
	}
	for _, w := range warns {
		fmt.Fprintln(os.Stderr, w)
	}

	var w io.Writer = os.Stdout
	if *compileFlags.output != "" {
		f, err := os.OpenFile(*compileFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the output file %s: %w", *compileFlags.output, err)
		}
		defer f.Close()
		w = f
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))

	return nil
}

func compileGrammar(path string, start string) (*ebnf.CompiledParser, []*grammar.Warning, error) {
	gram, err := readGrammar(path, start)
	if err != nil {
		return nil, nil, err
	}
	return grammar.Compile(gram)
}

func readGrammar(path string, start string) (*grammar.Grammar, error) {
	src := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	ast, err := ebnf.Parse(src)
	if err != nil {
		return nil, annotateSpecErrors(err, path)
	}

	b := grammar.GrammarBuilder{
		AST:   ast,
		Start: start,
	}
	gram, err := b.Build()
	if err != nil {
		return nil, annotateSpecErrors(err, path)
	}
	return gram, nil
}

func annotateSpecErrors(err error, path string) error {
	annotate := func(e *verr.SpecError) {
		e.FilePath = path
		if path != "" {
			e.SourceName = filepath.Base(path)
		}
	}
	switch e := err.(type) {
	case *verr.SpecError:
		annotate(e)
	case verr.SpecErrors:
		for _, specErr := range e {
			annotate(specErr)
		}
	}
	return err
}
