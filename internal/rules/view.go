package rules

// ruleRef ties a rule to its list position so per-directory views can merge
// newly eligible rules back into original list order.
type ruleRef struct {
	rule *Rule
	pos  int
}

// View is the subset of the rule list relevant at one directory node during
// a tree walk: active holds the rules testable at this depth or below,
// pending the rules still awaiting a greater depth. Views are read-only
// once built; a child aliases its parent's active slice when no pending
// rule qualified at its depth.
type View struct {
	depth   int
	active  []ruleRef
	pending []ruleRef
}

// NewRootView builds the depth-zero view over the whole list: active are
// the rules applicable from the root down (device and inode predicates,
// and any pattern without a directory prefix), pending the rest.
func NewRootView(l *List) *View {
	v := &View{}
	for i, r := range l.rules {
		if r.eligibleAt(0) {
			v.active = append(v.active, ruleRef{r, i})
		} else {
			v.pending = append(v.pending, ruleRef{r, i})
		}
	}
	return v
}

// NewFullView builds a view with every rule active regardless of depth.
// This is the brute-force evaluation mode: observably the same
// classifications as propagation, at the cost of testing the whole list
// against every entry.
func NewFullView(l *List) *View {
	v := &View{}
	for i, r := range l.rules {
		v.active = append(v.active, ruleRef{r, i})
	}
	return v
}

// Depth returns the directory depth this view was built for.
func (v *View) Depth() int {
	return v.depth
}

// ActiveLen returns the number of rules testable through this view.
func (v *View) ActiveLen() int {
	return len(v.active)
}

// Child derives the view for a directory at the given depth. Rules whose
// minimum depth is now reached move from pending to active; the merged
// active sequence preserves original list order, since order determines
// precedence. When nothing newly qualifies the child shares the parent's
// slices instead of copying them.
func (v *View) Child(depth int) *View {
	moved := 0
	for _, ref := range v.pending {
		if ref.rule.eligibleAt(depth) {
			moved++
		}
	}
	if moved == 0 {
		return &View{depth: depth, active: v.active, pending: v.pending}
	}

	merged := make([]ruleRef, 0, len(v.active)+moved)
	still := make([]ruleRef, 0, len(v.pending)-moved)
	i := 0
	for _, ref := range v.pending {
		if !ref.rule.eligibleAt(depth) {
			still = append(still, ref)
			continue
		}
		for i < len(v.active) && v.active[i].pos < ref.pos {
			merged = append(merged, v.active[i])
			i++
		}
		merged = append(merged, ref)
	}
	merged = append(merged, v.active[i:]...)

	return &View{depth: depth, active: merged, pending: still}
}

// SharesActiveWith reports whether both views use the same backing storage
// for their active list (the aliasing optimization, not a content compare).
func (v *View) SharesActiveWith(other *View) bool {
	if len(v.active) != len(other.active) {
		return false
	}
	if len(v.active) == 0 {
		return true
	}
	return &v.active[0] == &other.active[0]
}

// HasTake reports whether any rule reachable through this view, active or
// pending, is a take rule. Walkers use it to decide whether an ignored
// directory still needs descending so a deeper take rule can fire.
func (v *View) HasTake() bool {
	for _, ref := range v.active {
		if ref.rule.Sense == SenseTake {
			return true
		}
	}
	for _, ref := range v.pending {
		if ref.rule.Sense == SenseTake {
			return true
		}
	}
	return false
}
