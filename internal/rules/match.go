package rules

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FileType classifies a filesystem entry for rule evaluation.
type FileType uint8

const (
	TypeRegular FileType = iota
	TypeDirectory
	TypeSymlink
	TypeBlockDevice
	TypeCharDevice
	// TypeUnsupported covers entries that cannot be versioned (sockets,
	// fifos, unknown kinds); they are ignored without consulting any rule.
	TypeUnsupported
)

// Entry is one filesystem object under classification: its root-relative
// path (starting with "./"), resolved type, device and inode numbers, and
// the parent directory's device. Device rules test the parent's device for
// directories, so a mount point itself stays versionable while its
// contents can be excluded.
type Entry struct {
	Path      string
	Type      FileType
	Dev       uint64
	Inode     uint64
	ParentDev uint64
}

// Outcome is the verdict of rule evaluation for one entry.
type Outcome uint8

const (
	// OutcomeUnclassified means no rule decided; the caller applies its
	// default new-entry handling.
	OutcomeUnclassified Outcome = iota
	OutcomeIgnored
	OutcomeTaken
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeTaken:
		return "taken"
	}
	return "unclassified"
}

// Classify tests the entry against the view's active rules in list order
// and returns the first decisive outcome. List order, not rule
// specificity, determines precedence: an early take rule carves an entry
// out of a later, broader ignore rule. Evaluation errors indicate a
// corrupted compiled matcher and are fatal for the walk.
func Classify(e *Entry, v *View) (Outcome, error) {
	if e.Type == TypeUnsupported {
		return OutcomeIgnored, nil
	}
	for _, ref := range v.active {
		matched, err := ref.rule.matches(e)
		if err != nil {
			return OutcomeUnclassified, err
		}
		if !matched {
			continue
		}
		if ref.rule.Sense == SenseTake {
			return OutcomeTaken, nil
		}
		return OutcomeIgnored, nil
	}
	return OutcomeUnclassified, nil
}

func (r *Rule) matches(e *Entry) (bool, error) {
	switch r.Kind {
	case KindPathGlob, KindRawRegex:
		if r.re == nil {
			return false, fmt.Errorf("%w: rule %q has no compiled matcher",
				ErrMatchEngine, r.Raw)
		}
		return r.re.MatchString(e.Path), nil

	case KindDevice:
		dev := e.Dev
		if e.Type == TypeDirectory {
			dev = e.ParentDev
		}
		c := r.compareDev(dev)
		switch r.cmp {
		case CmpLess:
			return c < 0, nil
		case CmpLess | CmpEqual:
			return c <= 0, nil
		case CmpEqual:
			return c == 0, nil
		case CmpEqual | CmpGreater:
			return c >= 0, nil
		case CmpGreater:
			return c > 0, nil
		}
		return false, nil

	case KindInode:
		return e.Dev == r.dev && e.Inode == r.inode, nil
	}
	return false, fmt.Errorf("%w: unknown rule kind %d in %q",
		ErrMatchEngine, r.Kind, r.Raw)
}

// compareDev orders the entry's device number against the rule's major and
// optional minor; major differences dominate, and a rule without a minor
// compares on the major alone.
func (r *Rule) compareDev(dev uint64) int {
	major := uint64(unix.Major(dev))
	minor := uint64(unix.Minor(dev))
	switch {
	case major > r.major:
		return 2
	case major < r.major:
		return -2
	}
	if !r.hasMinor {
		return 0
	}
	switch {
	case minor > r.minor:
		return 1
	case minor < r.minor:
		return -1
	}
	return 0
}
