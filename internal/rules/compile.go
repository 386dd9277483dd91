package rules

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Rule prefixes, checked in this order.
const (
	prefixDevice = "DEVICE:"
	prefixInode  = "INODE:"
	prefixRegex  = "PCRE:"
	prefixGlob   = "./"
)

// Compile parses one rule string and compiles it into a matcher.
//
// A rule consists of optional modifier letters ("t" take, "i" ignore case)
// followed by the pattern itself, which must start with "DEVICE:", "INODE:",
// "PCRE:" or "./". Leading whitespace is skipped, so NUL-terminated strings
// with cosmetic newlines between them can be fed in directly.
func Compile(text string) (*Rule, error) {
	s := strings.TrimLeft(text, " \t\r\n\v\f")
	if s == "" {
		return nil, fmt.Errorf("%w: %q has no pattern", ErrInvalidRule, text)
	}

	r := &Rule{Raw: s, Sense: SenseIgnore}

mods:
	for s != "" {
		switch s[0] {
		case 't':
			r.Sense = SenseTake
		case 'i':
			r.CaseFold = true
		default:
			break mods
		}
		s = s[1:]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: %q ends after its modifiers", ErrInvalidRule, r.Raw)
	}
	r.Pattern = s

	switch {
	case strings.HasPrefix(s, prefixDevice):
		r.Kind = KindDevice
		return r, r.parseDevice(s[len(prefixDevice):])
	case strings.HasPrefix(s, prefixInode):
		r.Kind = KindInode
		return r, r.parseInode(s[len(prefixInode):])
	case strings.HasPrefix(s, prefixRegex):
		r.Kind = KindRawRegex
		return r, r.compileRegex(s[len(prefixRegex):])
	case strings.HasPrefix(s, prefixGlob):
		r.Kind = KindPathGlob
		return r, r.compileGlob(s)
	}
	return nil, fmt.Errorf(`%w: %q must start with "./", "PCRE:", "DEVICE:" or "INODE:"`,
		ErrInvalidRule, r.Raw)
}

// parseDevice parses "[<=>]*major[:minor]" after the DEVICE: prefix.
func (r *Rule) parseDevice(s string) error {
ops:
	for s != "" {
		switch s[0] {
		case '<':
			r.cmp |= CmpLess
		case '=':
			r.cmp |= CmpEqual
		case '>':
			r.cmp |= CmpGreater
		default:
			break ops
		}
		s = s[1:]
	}
	if r.cmp == 0 {
		r.cmp = CmpEqual
	}

	major, rest, ok := scanUint(s)
	if !ok {
		return fmt.Errorf("%w: no major number in %q", ErrInvalidRule, r.Raw)
	}
	r.major = major

	if rest == "" {
		return nil
	}
	if rest[0] != ':' {
		return fmt.Errorf("%w: expected ':' between major and minor number in %q",
			ErrInvalidRule, r.Raw)
	}
	minor, rest, ok := scanUint(rest[1:])
	if !ok {
		return fmt.Errorf("%w: no minor number in %q", ErrInvalidRule, r.Raw)
	}
	if rest != "" {
		return fmt.Errorf("%w: trailing garbage after minor number in %q",
			ErrInvalidRule, r.Raw)
	}
	r.minor = minor
	r.hasMinor = true
	return nil
}

// parseInode parses "major:minor:inode" after the INODE: prefix.
func (r *Rule) parseInode(s string) error {
	major, rest, ok := scanUint(s)
	if !ok || rest == "" || rest[0] != ':' {
		return fmt.Errorf("%w: no major number in %q", ErrInvalidRule, r.Raw)
	}
	minor, rest, ok := scanUint(rest[1:])
	if !ok || rest == "" || rest[0] != ':' {
		return fmt.Errorf("%w: no minor number in %q", ErrInvalidRule, r.Raw)
	}
	inode, rest, ok := scanUint(rest[1:])
	if !ok || rest != "" {
		return fmt.Errorf("%w: garbage after inode in %q", ErrInvalidRule, r.Raw)
	}
	r.dev = unix.Mkdev(uint32(major), uint32(minor))
	r.inode = inode
	return nil
}

// compileRegex uses the text after PCRE: verbatim as matcher source.
func (r *Rule) compileRegex(src string) error {
	if len(src) < 3 {
		return fmt.Errorf("%w: pattern %q too short", ErrInvalidRule, r.Raw)
	}
	r.PathDepth = strings.Count(src, "/")
	return r.compileMatcher(src)
}

// compileGlob translates a shell-like glob (including its leading "./",
// which is needed for anchoring) into a regular expression.
func (r *Rule) compileGlob(src string) error {
	if len(src) < 3 {
		return fmt.Errorf("%w: pattern %q too short", ErrInvalidRule, r.Raw)
	}
	r.PathDepth = strings.Count(src, "/")
	if strings.HasSuffix(src, "/") {
		// A trailing separator is an anchor variant, not a path level.
		r.PathDepth--
	}
	translated, unbounded := translateGlob(src)
	r.Unbounded = unbounded
	return r.compileMatcher(translated)
}

// compileMatcher compiles the matcher source with the fixed semantics every
// rule relies on: anchored at the start, dot matches line separators,
// prefer-shorter quantifiers, case folding per the "i" modifier.
func (r *Rule) compileMatcher(source string) error {
	flags := "sU"
	if r.CaseFold {
		flags = "isU"
	}
	re, err := regexp.Compile("(?" + flags + `)\A` + source)
	if err != nil {
		offset := -1
		var serr *syntax.Error
		if errors.As(err, &serr) {
			offset = strings.Index(source, serr.Expr)
		}
		return fmt.Errorf("%w: %q (as %q): %v at offset %d",
			ErrPatternCompile, r.Raw, source, err, offset)
	}
	r.re = re
	return nil
}

// translateGlob turns glob syntax into regexp source:
//
//	**  ->  .*        (any number of directory levels; extra stars collapse)
//	*   ->  [^/]*     (within one directory level)
//	?   ->  .
//	[…] ->  bracket expression, with glob negation mapped to "^"
//
// A backslash escapes the next character. Alphanumerics, "/" and "-" pass
// through; everything else is escaped so stray metacharacters in file names
// stay literal. The result is end-anchored; a pattern written with a
// trailing separator instead gets "(?:$|/)" so it covers the directory
// entry itself as well as everything below it.
func translateGlob(src string) (string, bool) {
	var b strings.Builder
	unbounded := false
	escaped := false

	for i := 0; i < len(src); {
		c := src[i]
		if escaped {
			b.WriteByte(c)
			i++
			escaped = false
			continue
		}
		switch {
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				unbounded = true
				b.WriteString(".*")
				for i < len(src) && src[i] == '*' {
					i++
				}
			} else {
				b.WriteString("[^/]*")
				i++
			}
		case c == '?':
			b.WriteByte('.')
			i++
		case c == '[':
			i = translateBracket(src, i, &b)
		case c == '\\':
			escaped = true
			b.WriteByte(c)
			i++
		case c == '/' || c == '-' || isAlnum(c):
			b.WriteByte(c)
			i++
		default:
			if c >= utf8.RuneSelf {
				// Bytes of multibyte runes are literal anyway; escaping
				// them would corrupt the UTF-8 matcher source.
				b.WriteByte(c)
			} else {
				b.WriteByte('\\')
				b.WriteByte(c)
			}
			i++
		}
	}

	out := b.String()
	if strings.HasSuffix(src, "/") && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1] + "(?:$|/)"
	} else {
		out += "$"
	}
	return out, unbounded
}

// translateBracket copies a bracket expression starting at src[i],
// converting a leading "!" or "^" into regexp negation. A "]" only closes
// the expression once at least one content character was consumed, and a
// backslash escapes the following character. Returns the index just past
// the copied expression; an unterminated expression is copied as-is and
// left for the regexp engine to reject.
func translateBracket(src string, i int, b *strings.Builder) int {
	pos := -1 // zero-based position inside the expression, -1 = outside
	escaped := false

	for i < len(src) {
		c := src[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case pos == 0 && (c == '!' || c == '^'):
			// Negation does not count as a content character.
			b.WriteByte('^')
			i++
			continue
		default:
			if c == ']' && pos > 0 {
				pos = -1
			} else {
				pos++
			}
			escaped = c == '\\'
			b.WriteByte(c)
		}
		i++
		if pos < 0 {
			break
		}
	}
	return i
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// scanUint consumes an unsigned integer prefix of s and returns the value,
// the remaining text and whether any digits were found. Like strtoul(3)
// with base 0 it accepts decimal, hexadecimal ("0x") and octal (leading
// "0") notation.
func scanUint(s string) (uint64, string, bool) {
	base := 10
	start := 0
	digit := func(c byte) bool { return c >= '0' && c <= '9' }

	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		start = 2
		digit = func(c byte) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		}
	} else if len(s) >= 2 && s[0] == '0' && s[1] >= '0' && s[1] <= '7' {
		base = 8
		digit = func(c byte) bool { return c >= '0' && c <= '7' }
	}

	end := start
	for end < len(s) && digit(s[end]) {
		end++
	}
	if end == start {
		return 0, s, false
	}
	v, err := strconv.ParseUint(s[start:end], base, 64)
	if err != nil {
		return 0, s, false
	}
	return v, s[end:], true
}
