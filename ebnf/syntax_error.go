package ebnf

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrUnclosedComment   = newSyntaxError("unclosed comment")
	synErrUnclosedLiteral   = newSyntaxError("unclosed literal")
	synErrEmptyLiteral      = newSyntaxError("a literal must not be empty")
	synErrInvalidEscSeq     = newSyntaxError("invalid escape sequence")
	synErrIncompletedEscSeq = newSyntaxError("incompleted escape sequence; unexpected EOF following \\")
	synErrInvalidChar       = newSyntaxError("invalid character")

	// syntax errors
	synErrNoProduction       = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName   = newSyntaxError("a production name is missing")
	synErrNoEqu              = newSyntaxError("the definition symbol '=' must follow a production name")
	synErrNoSemicolon        = newSyntaxError("the semicolon is missing at the end of a production")
	synErrEmptyAlternative   = newSyntaxError("an alternative must have at least one element; use [ ] or { } to express emptiness")
	synErrNoElement          = newSyntaxError("an element is missing after a comma")
	synErrUnclosedGroup      = newSyntaxError("unclosed group; ')' is missing")
	synErrUnclosedOption     = newSyntaxError("unclosed option; ']' is missing")
	synErrUnclosedRepetition = newSyntaxError("unclosed repetition; '}' is missing")
)
