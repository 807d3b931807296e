package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrDuplicateRule      = newSemanticError("duplicate rule")
	semErrUndefinedRule      = newSemanticError("undefined rule")
	semErrLeftRecursion      = newSemanticError("left recursion is not allowed")
	semErrInfiniteRepetition = newSemanticError("a repetition body must not match the empty string")
	semErrNoSuchStartRule    = newSemanticError("the start rule is not defined")
)

// Warning causes. Warnings never abort compilation; ordered choice resolves
// ambiguity deterministically at run time.
var (
	semWarnUnreachableRule = newSemanticError("the rule is unreachable from the start rule")
	semWarnAmbiguousChoice = newSemanticError("alternatives have overlapping FIRST sets; the earlier-declared alternative wins")
)

type Warning struct {
	Cause  *SemanticError
	Detail string
	Rule   string
}

func (w *Warning) String() string {
	s := "warning"
	if w.Rule != "" {
		s += ": rule '" + w.Rule + "'"
	}
	s += ": " + w.Cause.Error()
	if w.Detail != "" {
		s += ": " + w.Detail
	}
	return s
}
