package rules

import "errors"

// Sentinel errors for rule compilation, list handling and evaluation.
var (
	// ErrInvalidRule indicates a malformed modifier, prefix or rule syntax.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrPatternCompile indicates the regexp engine rejected a translated
	// or raw pattern.
	ErrPatternCompile = errors.New("pattern does not compile")
	// ErrInvalidListFormat indicates a corrupt rule-list header on load.
	ErrInvalidListFormat = errors.New("invalid rule list format")
	// ErrInvalidRange indicates an out-of-bounds insertion index.
	ErrInvalidRange = errors.New("insertion index out of range")
	// ErrMatchEngine indicates a matcher invocation failure at evaluation
	// time; it means a corrupted compiled rule and is fatal for the walk.
	ErrMatchEngine = errors.New("match engine failure")
)
