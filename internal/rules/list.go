package rules

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Logger is the minimal logging interface the rule list consumes for
// load-time diagnostics.
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// Position selects where Insert places new user rules. PositionStart means
// "immediately after the last built-in rule", PositionEnd appends, and any
// other non-negative value k inserts before the k-th user rule.
type Position int

const (
	PositionStart Position = 0
	PositionEnd   Position = -1
)

// reserveSlack is extra headroom added when the backing storage grows.
const reserveSlack = 4

// List is the ordered rule store: a contiguous prefix of built-in rules
// followed by user rules. Evaluation order equals list order. The list is
// mutated only at startup (load plus explicit inserts) and is treated as
// immutable while a tree walk runs.
type List struct {
	rules []*Rule
	log   Logger
}

// Option configures a List.
type Option func(*List)

// WithLogger routes list diagnostics to the given logger.
func WithLogger(log Logger) Option {
	return func(l *List) {
		if log != nil {
			l.log = log
		}
	}
}

// NewList creates an empty rule list.
func NewList(opts ...Option) *List {
	l := &List{log: nopLogger{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the total number of rules, built-ins included.
func (l *List) Len() int {
	return len(l.rules)
}

// UserLen returns the number of user rules.
func (l *List) UserLen() int {
	return len(l.rules) - l.firstUserIndex()
}

// Reserve grows the backing storage to hold at least n more rules, so a
// bulk load reallocates at most once.
func (l *List) Reserve(n int) {
	if cap(l.rules)-len(l.rules) >= n {
		return
	}
	grown := make([]*Rule, len(l.rules), len(l.rules)+n+reserveSlack)
	copy(grown, l.rules)
	l.rules = grown
}

func (l *List) firstUserIndex() int {
	for i, r := range l.rules {
		if !r.builtin {
			return i
		}
	}
	return len(l.rules)
}

// AddBuiltins compiles and adds fixed built-in rules. Built-ins always stay
// in front of user rules and are never persisted or dumped.
func (l *List) AddBuiltins(patterns ...string) error {
	for _, p := range patterns {
		r, err := Compile(p)
		if err != nil {
			return err
		}
		r.builtin = true
		at := l.firstUserIndex()
		l.rules = append(l.rules, nil)
		copy(l.rules[at+1:], l.rules[at:])
		l.rules[at] = r
	}
	return nil
}

// Insert compiles the given pattern texts and inserts them as user rules at
// the given position, shifting later user rules down. Compilation is
// all-or-nothing: on any error the list is left unchanged.
func (l *List) Insert(patterns []string, pos Position) error {
	if len(patterns) == 0 {
		return nil
	}

	first := l.firstUserIndex()
	user := len(l.rules) - first
	var at int
	switch {
	case pos == PositionEnd:
		at = len(l.rules)
	case pos < 0:
		return fmt.Errorf("%w: position %d", ErrInvalidRange, pos)
	case int(pos) > user:
		return fmt.Errorf("%w: position %d with only %d user rules",
			ErrInvalidRange, pos, user)
	default:
		at = first + int(pos)
	}

	compiled := make([]*Rule, 0, len(patterns))
	for _, p := range patterns {
		r, err := Compile(p)
		if err != nil {
			return err
		}
		compiled = append(compiled, r)
	}

	l.Reserve(len(compiled))
	l.rules = append(l.rules, compiled...)
	copy(l.rules[at+len(compiled):], l.rules[at:len(l.rules)-len(compiled)])
	copy(l.rules[at:], compiled)
	return nil
}

// Load reads a persisted rule list: a decimal user-rule count terminated by
// a newline, then that many NUL-terminated rule strings. A header count
// exceeding the strings actually present is tolerated with a diagnostic;
// loading stops at the fewer of the two. A rule that fails to compile
// aborts the whole load and leaves the list unchanged.
func (l *List) Load(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read rule list: %w", err)
	}

	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		l.log.Debug("rule list has no header line, treating as empty")
		return 0, nil
	}
	header := strings.TrimSpace(string(data[:nl]))
	count64, rest, ok := scanUint(header)
	if !ok || rest != "" {
		return 0, fmt.Errorf("%w: bad header %q", ErrInvalidListFormat, header)
	}
	count := int(count64)

	l.Reserve(count)
	keep := len(l.rules)
	body := data[nl+1:]
	n := 0
	for n < count {
		z := bytes.IndexByte(body, 0)
		if z < 0 {
			break
		}
		// The cosmetic newline written after each NUL ends up as leading
		// whitespace of the next string and is stripped by Compile.
		rule, err := Compile(string(body[:z]))
		if err != nil {
			l.rules = l.rules[:keep]
			return 0, err
		}
		l.rules = append(l.rules, rule)
		body = body[z+1:]
		n++
	}

	if n != count {
		l.log.Warn("rule list header announces %d patterns but only %d are stored",
			count, n)
	} else if len(bytes.Trim(body, "\n")) > 0 {
		l.log.Debug("rule list has trailing data after %d counted patterns", count)
	}
	return n, nil
}

// Save writes the user rules in the persisted list format. Built-in rules
// are never written. The NUL is the authoritative terminator on reload; the
// newline after it only keeps dumps readable.
func (l *List) Save(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d\n", l.UserLen()); err != nil {
		return fmt.Errorf("write rule list header: %w", err)
	}
	for _, r := range l.rules {
		if r.builtin {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\x00\n", r.Raw); err != nil {
			return fmt.Errorf("write rule %q: %w", r.Raw, err)
		}
	}
	return nil
}

// Dump returns the user rules' raw texts in list order, for display.
func (l *List) Dump() []string {
	out := make([]string, 0, l.UserLen())
	for _, r := range l.rules {
		if !r.builtin {
			out = append(out, r.Raw)
		}
	}
	return out
}
