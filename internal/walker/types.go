// Package walker drives the depth-first directory walk and classifies every
// entry it discovers against the compiled rule list.
package walker

import "github.com/treeward/treeward/internal/rules"

// Status is the walk-level classification of one entry.
type Status uint8

const (
	// StatusNew means no rule decided the entry; it is subject to the
	// default new-entry policy.
	StatusNew Status = iota
	// StatusIgnored means an ignore rule matched (or the entry type is
	// unsupported).
	StatusIgnored
	// StatusTaken means a take rule matched, overriding later ignores.
	StatusTaken
	// StatusTracked means the entry is already under version control and
	// never entered rule evaluation.
	StatusTracked
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusTaken:
		return "taken"
	case StatusTracked:
		return "tracked"
	}
	return "new"
}

// Item is one classified entry handed to the walk callback.
type Item struct {
	// Path is root-relative and starts with "./".
	Path string `json:"path"`
	// AbsPath is the absolute filesystem path.
	AbsPath string         `json:"-"`
	Type    rules.FileType `json:"-"`
	IsDir   bool           `json:"is_dir"`
	Depth   int            `json:"-"`
	Status  Status         `json:"status"`
}

// WalkFunc is called once per classified entry, in depth-first,
// parent-before-children order. Returning an error aborts the walk.
type WalkFunc func(item Item) error

// SkippedReason clarifies why an entry could not be classified.
type SkippedReason string

const (
	ReasonPermError SkippedReason = "permission error"
	ReasonWalkError SkippedReason = "walk error"
	ReasonInfoError SkippedReason = "file info error"
	ReasonPathError SkippedReason = "path calculation error"
)

// SkippedItem records one entry the walk had to pass over.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
}

// Logger is the minimal logging interface the walker consumes.
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// node is one directory in the walked tree. Nodes live in an arena indexed
// by position; parent is an index into the same arena (lookup only, no
// ownership), as are the children.
type node struct {
	parent   int
	children []int
	path     string
	depth    int
	dev      uint64
	view     *rules.View
}

// tree is the arena of directory nodes built during one walk.
type tree struct {
	nodes  []node
	byPath map[string]int
}

func newTree() *tree {
	return &tree{byPath: make(map[string]int)}
}

// add appends a node, registers it under its path and links it to its
// parent; returns its index.
func (t *tree) add(n node) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.byPath[n.path] = idx
	if n.parent >= 0 {
		t.nodes[n.parent].children = append(t.nodes[n.parent].children, idx)
	}
	return idx
}
