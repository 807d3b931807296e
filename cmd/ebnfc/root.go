package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ebnfc",
	Short: "Compile an EBNF grammar into an executable parser",
	Long: `ebnfc provides three features:
- Validates an EBNF grammar and reports its structural defects.
- Compiles an EBNF grammar into a portable parsing program.
- Parses a text stream according to the grammar and prints the syntax tree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}
