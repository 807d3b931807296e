package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nagi9/ebnfc/driver"
	"github.com/nagi9/ebnfc/ebnf"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source     *string
	start      *string
	depthLimit *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a text stream",
		Long: `parse compiles the grammar (or loads an already-compiled parsing program
when the path ends in .json), tokenizes the source, and prints the syntax tree.`,
		Example: `  cat src | ebnfc parse grammar.ebnf`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.start = cmd.Flags().String("start", "", "start rule name (default the grammar's entry rule)")
	parseFlags.depthLimit = cmd.Flags().Int("depth-limit", 0, "maximum rule recursion depth (default 4096)")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledParser(args[0])
	if err != nil {
		return err
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}
	text, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	var opts []driver.ParserOption
	if *parseFlags.start != "" {
		opts = append(opts, driver.StartRule(*parseFlags.start))
	}
	if *parseFlags.depthLimit > 0 {
		opts = append(opts, driver.DepthLimit(*parseFlags.depthLimit))
	}

	ts, err := driver.NewStringTokenStream(cgram, string(text))
	if err != nil {
		return err
	}
	p, err := driver.NewParser(cgram, ts, opts...)
	if err != nil {
		return err
	}

	tree, err := p.Parse()
	if err != nil {
		return err
	}
	driver.PrintTree(os.Stdout, tree)

	return nil
}

func readCompiledParser(path string) (*ebnf.CompiledParser, error) {
	if filepath.Ext(path) != ".json" {
		cgram, warns, err := compileGrammar(path, *parseFlags.start)
		if err != nil {
			return nil, err
		}
		for _, w := range warns {
			fmt.Fprintln(os.Stderr, w)
		}
		return cgram, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the compiled parser %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cgram := &ebnf.CompiledParser{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
