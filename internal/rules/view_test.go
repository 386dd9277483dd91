package rules

import (
	"reflect"
	"testing"
)

func listOf(t *testing.T, patterns ...string) *List {
	t.Helper()
	l := NewList()
	if err := l.Insert(patterns, PositionEnd); err != nil {
		t.Fatalf("Insert(%v): %v", patterns, err)
	}
	return l
}

func activeRaw(v *View) []string {
	out := make([]string, 0, len(v.active))
	for _, ref := range v.active {
		out = append(out, ref.rule.Raw)
	}
	return out
}

func TestRootViewSplit(t *testing.T) {
	t.Parallel()

	l := listOf(t, "DEVICE:0", "./a", "./a/b/**")
	root := NewRootView(l)

	if got := activeRaw(root); !reflect.DeepEqual(got, []string{"DEVICE:0"}) {
		t.Errorf("root active=%v, want only the depth-zero rule", got)
	}
	if len(root.pending) != 2 {
		t.Errorf("root pending=%d rules, want 2", len(root.pending))
	}
}

func TestChildActivatesByDepth(t *testing.T) {
	t.Parallel()

	l := listOf(t, "./a/b", "DEVICE:0", "./c")
	root := NewRootView(l)

	v1 := root.Child(1)
	if got := activeRaw(v1); !reflect.DeepEqual(got, []string{"DEVICE:0", "./c"}) {
		t.Errorf("depth-1 active=%v, want [DEVICE:0 ./c]", got)
	}

	v2 := v1.Child(2)
	if got := activeRaw(v2); !reflect.DeepEqual(got, []string{"./a/b", "DEVICE:0", "./c"}) {
		t.Errorf("depth-2 active=%v, want original list order restored", got)
	}
	if len(v2.pending) != 0 {
		t.Errorf("depth-2 pending=%d rules, want 0", len(v2.pending))
	}
}

func TestChildAliasesWhenNothingQualifies(t *testing.T) {
	t.Parallel()

	l := listOf(t, "./a", "t./b")
	v1 := NewRootView(l).Child(1)
	v2 := v1.Child(2)
	v3 := v2.Child(3)

	if !v2.SharesActiveWith(v1) || !v3.SharesActiveWith(v1) {
		t.Error("deeper views should alias the parent's active slice when no rule newly qualifies")
	}
	if v3.Depth() != 3 {
		t.Errorf("Depth()=%d, want 3", v3.Depth())
	}
}

func TestTrailingSlashRuleActiveAtDirectoryDepth(t *testing.T) {
	t.Parallel()

	// "./a/" must already be active when "./a" itself (depth 1) is
	// classified; the trailing separator is an anchor, not a level.
	l := listOf(t, "./a/")
	v1 := NewRootView(l).Child(1)
	if got := activeRaw(v1); !reflect.DeepEqual(got, []string{"./a/"}) {
		t.Errorf("depth-1 active=%v, want [./a/]", got)
	}
}

func TestFullView(t *testing.T) {
	t.Parallel()

	l := listOf(t, "./a/b/c", "DEVICE:0", "./x/**")
	v := NewFullView(l)
	if v.ActiveLen() != l.Len() {
		t.Errorf("ActiveLen()=%d, want %d", v.ActiveLen(), l.Len())
	}
	if got := activeRaw(v); !reflect.DeepEqual(got, []string{"./a/b/c", "DEVICE:0", "./x/**"}) {
		t.Errorf("full view active=%v, want list order", got)
	}
}

func TestHasTake(t *testing.T) {
	t.Parallel()

	without := NewRootView(listOf(t, "./a", "./b/**"))
	if without.HasTake() {
		t.Error("HasTake()=true for a list without take rules")
	}

	// The take rule is still pending at the root; HasTake must see it.
	with := NewRootView(listOf(t, "./a", "t./b/keep"))
	if !with.HasTake() {
		t.Error("HasTake()=false although a pending take rule exists")
	}
}
