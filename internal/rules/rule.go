// Package rules implements the compiled ignore/take rule engine: a small
// pattern language (path globs, raw regular expressions, device-number and
// inode predicates) compiled once into matchers, kept in a stable ordered
// list and evaluated against newly discovered filesystem entries.
package rules

import "regexp"

// Kind identifies the pattern language of one rule.
type Kind uint8

const (
	// KindPathGlob is a shell-like glob anchored at the tree root ("./...").
	KindPathGlob Kind = iota
	// KindRawRegex is a raw regular expression ("PCRE:...").
	KindRawRegex
	// KindDevice is a device-number predicate ("DEVICE:...").
	KindDevice
	// KindInode is an exact device/inode predicate ("INODE:...").
	KindInode
)

// String returns the user-facing name of the rule kind.
func (k Kind) String() string {
	switch k {
	case KindPathGlob:
		return "glob"
	case KindRawRegex:
		return "regex"
	case KindDevice:
		return "device"
	case KindInode:
		return "inode"
	}
	return "unknown"
}

// Sense is the decision a matching rule produces.
type Sense uint8

const (
	// SenseIgnore excludes the entry from version control.
	SenseIgnore Sense = iota
	// SenseTake explicitly includes the entry, overriding ignore rules
	// that appear later in the list.
	SenseTake
)

// CompareOp is the comparison operator of a device rule, built as a bitmask
// from the leading "<", "=" and ">" characters.
type CompareOp uint8

const (
	CmpLess CompareOp = 1 << iota
	CmpEqual
	CmpGreater
)

// Rule is one compiled ignore/take directive.
//
// PathDepth and Unbounded are derived once at compile time: PathDepth is the
// number of path separators in the matchable pattern text (a trailing
// separator, being only an anchor variant, does not count) and gives the
// minimum directory depth at which the rule can start matching. Unbounded
// marks rules containing a "**" wildcard, active at PathDepth and deeper.
type Rule struct {
	// Raw is the original rule text including leading modifiers; this is
	// what dumps show and what Save persists.
	Raw string
	// Pattern is the matchable suffix of Raw, after the modifier letters.
	Pattern string

	Kind      Kind
	Sense     Sense
	CaseFold  bool
	PathDepth int
	Unbounded bool

	// re is the compiled matcher for KindPathGlob and KindRawRegex.
	re *regexp.Regexp

	// Device predicate state.
	cmp      CompareOp
	major    uint64
	minor    uint64
	hasMinor bool

	// Inode predicate state: combined device number plus inode.
	dev   uint64
	inode uint64

	// builtin rules are never persisted or dumped.
	builtin bool
}

// IsBuiltin reports whether the rule is a fixed built-in (never persisted).
func (r *Rule) IsBuiltin() bool {
	return r.builtin
}

// String returns the original rule text.
func (r *Rule) String() string {
	return r.Raw
}

// eligibleAt reports whether the rule can apply to entries at or below the
// given directory depth. Eligibility is monotone: once a rule qualified at
// some depth it stays eligible below, so per-directory views only ever grow.
func (r *Rule) eligibleAt(depth int) bool {
	return r.PathDepth <= depth
}
