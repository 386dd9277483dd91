package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/treeward/treeward/internal/rules"
)

// Walk traverses the tree under rootDir depth-first, parent before
// children, classifies every entry against the rule list and calls fn for
// each one. The rule list must not be mutated while the walk runs.
//
// Each directory node gets its own rule view derived from its parent's via
// the depth propagation in the rules package, so entries near the leaves
// are only tested against the rules that can still apply there. Ignored
// directories are not descended into unless a take rule could still fire
// below them.
//
// It returns the entries it had to skip and the first fatal error.
func Walk(rootDir string, list *rules.List, fn WalkFunc, opts ...Option) ([]SkippedItem, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: absolute path for %q: %w", rootDir, err)
	}

	var rootView *rules.View
	if o.BruteForce {
		rootView = rules.NewFullView(list)
	} else {
		rootView = rules.NewRootView(list).Child(1)
	}
	o.Logger.Debug("walker: starting walk at %s (%d rules active at root, brute force %v)",
		absRoot, rootView.ActiveLen(), o.BruteForce)

	var skipped []SkippedItem
	t := newTree()

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-o.Context.Done():
			return o.Context.Err()
		default:
		}

		isDir := d != nil && d.IsDir()

		if err != nil {
			reason := ReasonWalkError
			if os.IsPermission(err) {
				reason = ReasonPermError
			}
			o.Logger.Warn("walker: %q: %v", path, err)
			skipped = append(skipped, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
			if isDir && reason == ReasonPermError {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			o.Logger.Error("walker: relative path for %q: %v", path, relErr)
			skipped = append(skipped, SkippedItem{Path: path, Reason: ReasonPathError, IsDir: isDir})
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			o.Logger.Warn("walker: stat %q: %v", rel, infoErr)
			skipped = append(skipped, SkippedItem{Path: rel, Reason: ReasonInfoError, IsDir: isDir})
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		dev, ino := statNumbers(info)

		// The root itself is never classified; it only seeds the arena.
		if rel == "." {
			t.add(node{parent: -1, path: ".", dev: dev, view: rootView})
			return nil
		}

		relPath := "./" + filepath.ToSlash(rel)
		depth := strings.Count(relPath, "/")

		parentIdx, ok := t.byPath[parentKey(rel)]
		if !ok {
			// The parent directory was skipped, so no view exists here.
			skipped = append(skipped, SkippedItem{Path: relPath, Reason: ReasonWalkError, IsDir: isDir})
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		parent := t.nodes[parentIdx]

		entry := rules.Entry{
			Path:      relPath,
			Type:      fileTypeOf(d.Type()),
			Dev:       dev,
			Inode:     ino,
			ParentDev: parent.dev,
		}

		status := StatusNew
		if o.Tracked != nil && o.Tracked(relPath) {
			status = StatusTracked
		} else {
			outcome, cerr := rules.Classify(&entry, parent.view)
			if cerr != nil {
				return fmt.Errorf("walker: classify %q: %w", relPath, cerr)
			}
			switch outcome {
			case rules.OutcomeIgnored:
				status = StatusIgnored
			case rules.OutcomeTaken:
				status = StatusTaken
			}
		}

		var childView *rules.View
		if isDir {
			if o.BruteForce {
				childView = parent.view
			} else {
				childView = parent.view.Child(depth + 1)
			}
			t.add(node{
				parent: parentIdx,
				path:   relPath,
				depth:  depth,
				dev:    dev,
				view:   childView,
			})
		}

		if fn != nil {
			item := Item{
				Path:    relPath,
				AbsPath: path,
				Type:    entry.Type,
				IsDir:   isDir,
				Depth:   depth,
				Status:  status,
			}
			if cbErr := fn(item); cbErr != nil {
				return cbErr
			}
		}

		if isDir && status == StatusIgnored && !childView.HasTake() {
			o.Logger.Debug("walker: not descending into ignored directory %q", relPath)
			return filepath.SkipDir
		}
		return nil
	})

	return skipped, walkErr
}

// parentKey maps a relative path to the arena key of its parent directory.
func parentKey(rel string) string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return "."
	}
	return "./" + filepath.ToSlash(dir)
}

// statNumbers extracts device and inode numbers from the stat result.
func statNumbers(info fs.FileInfo) (uint64, uint64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return uint64(st.Dev), uint64(st.Ino)
}

// fileTypeOf maps a directory entry's mode bits to the rule engine's entry
// types. Anything not versionable is unsupported and thus always ignored.
func fileTypeOf(m fs.FileMode) rules.FileType {
	switch {
	case m&fs.ModeType == 0:
		return rules.TypeRegular
	case m&fs.ModeDir != 0:
		return rules.TypeDirectory
	case m&fs.ModeSymlink != 0:
		return rules.TypeSymlink
	case m&fs.ModeCharDevice != 0:
		return rules.TypeCharDevice
	case m&fs.ModeDevice != 0:
		return rules.TypeBlockDevice
	}
	return rules.TypeUnsupported
}
