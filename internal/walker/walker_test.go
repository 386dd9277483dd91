package walker

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/treeward/treeward/internal/rules"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newList(t *testing.T, patterns ...string) *rules.List {
	t.Helper()
	l := rules.NewList()
	if err := l.Insert(patterns, rules.PositionEnd); err != nil {
		t.Fatalf("Insert(%v): %v", patterns, err)
	}
	return l
}

func walkStatuses(t *testing.T, root string, l *rules.List, opts ...Option) map[string]Status {
	t.Helper()
	seen := make(map[string]Status)
	skipped, err := Walk(root, l, func(item Item) error {
		seen[item.Path] = item.Status
		return nil
	}, opts...)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("Walk skipped %v, want none", skipped)
	}
	return seen
}

func TestWalkClassifies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"))
	writeFile(t, filepath.Join(root, "a", "keep"))
	writeFile(t, filepath.Join(root, "a", "x.tmp"))
	writeFile(t, filepath.Join(root, "a", "b", "y"))

	l := newList(t, "t./a/keep", "./a/**")

	want := map[string]Status{
		"./top.txt": StatusNew,
		"./a":       StatusNew,
		"./a/keep":  StatusTaken,
		"./a/x.tmp": StatusIgnored,
		"./a/b":     StatusIgnored,
		"./a/b/y":   StatusIgnored,
	}
	got := walkStatuses(t, root, l)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk statuses = %v, want %v", got, want)
	}
}

func TestWalkSkipsIgnoredDirWithoutTake(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "skipme", "child"))
	writeFile(t, filepath.Join(root, "visible"))

	got := walkStatuses(t, root, newList(t, "./skipme/"))
	if _, ok := got["./skipme/child"]; ok {
		t.Error("walk descended into an ignored directory with no take rule in reach")
	}
	if got["./skipme"] != StatusIgnored {
		t.Errorf("./skipme = %v, want ignored", got["./skipme"])
	}
	if got["./visible"] != StatusNew {
		t.Errorf("./visible = %v, want new", got["./visible"])
	}
}

func TestWalkDescendsIntoIgnoredDirForTake(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proc", "stat"))
	writeFile(t, filepath.Join(root, "proc", "noise"))

	got := walkStatuses(t, root, newList(t, "t./proc/stat", "./proc/"))

	want := map[string]Status{
		"./proc":       StatusIgnored,
		"./proc/stat":  StatusTaken,
		"./proc/noise": StatusIgnored,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk statuses = %v, want %v", got, want)
	}
}

func TestWalkTracked(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tracked.txt"))
	writeFile(t, filepath.Join(root, "new.txt"))

	l := newList(t, "./tracked.txt")
	got := walkStatuses(t, root, l, WithTracked(func(path string) bool {
		return path == "./tracked.txt"
	}))

	// Tracked entries bypass rule evaluation entirely, even when an ignore
	// rule would match them.
	if got["./tracked.txt"] != StatusTracked {
		t.Errorf("./tracked.txt = %v, want tracked", got["./tracked.txt"])
	}
	if got["./new.txt"] != StatusNew {
		t.Errorf("./new.txt = %v, want new", got["./new.txt"])
	}
}

func TestWalkBruteForceAgrees(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "keep"))
	writeFile(t, filepath.Join(root, "a", "junk"))
	writeFile(t, filepath.Join(root, "a", "b", "deep"))
	writeFile(t, filepath.Join(root, "c", "file.tmp"))

	l := newList(t, "t./a/keep", "./a/**", "./c/*.tmp")

	fast := walkStatuses(t, root, l)
	brute := walkStatuses(t, root, l, WithBruteForce(true))
	if !reflect.DeepEqual(fast, brute) {
		t.Errorf("propagated walk %v differs from brute force %v", fast, brute)
	}
}

func TestWalkCallbackErrorAborts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f1"))
	writeFile(t, filepath.Join(root, "f2"))

	boom := errors.New("boom")
	_, err := Walk(root, newList(t), func(Item) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Walk err=%v, want callback error", err)
	}
}

func TestClassifyPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "junk.log"))
	writeFile(t, filepath.Join(root, "sub", "keep"))

	l := newList(t, "t./sub/keep", "./sub/*")

	tests := []struct {
		path string
		want Status
	}{
		{"sub/junk.log", StatusIgnored},
		{"sub/keep", StatusTaken},
		{"sub", StatusNew},
		{".", StatusNew},
	}
	for _, tc := range tests {
		got, err := ClassifyPath(root, tc.path, l)
		if err != nil {
			t.Fatalf("ClassifyPath(%q): %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("ClassifyPath(%q)=%v, want %v", tc.path, got, tc.want)
		}
	}

	if _, err := ClassifyPath(root, "../outside", l); err == nil {
		t.Error("ClassifyPath accepted a path outside the root")
	}
}
