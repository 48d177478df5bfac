package scanline

import (
	"testing"
)

func keyedBox(key string, children ...Element) Element {
	return Box("box", ElementStyle{}, nil, children...).WithKey(key)
}

func TestReconciler_MinimalFirstFrameIsAllInserts(t *testing.T) {
	r := NewReconciler()
	result := r.Reconcile(keyedBox("root", Text("a"), Text("b")))

	for _, p := range result.Patches {
		if p.Kind != PatchInsert {
			t.Errorf("first frame should only produce inserts, got %s at %s", p.Kind, p.Key)
		}
	}
	if len(result.Patches) == 0 {
		t.Error("first frame should produce at least one insert")
	}
}

// P3: a frame in which no element's props or structure changed produces
// zero patches.
func TestReconciler_NoChangeProducesZeroPatches(t *testing.T) {
	r := NewReconciler()
	tree := keyedBox("root", Text("a"), Text("b"))

	r.Reconcile(tree)
	result := r.Reconcile(tree)

	if len(result.Patches) != 0 {
		t.Errorf("unchanged frame should produce zero patches, got %v", result.Patches)
	}
}

// P2: for two consecutive frames in which author keys on every keyed list
// are preserved, every surviving element keeps the same NodeKey.
func TestReconciler_NodeKeyStableAcrossFrames(t *testing.T) {
	r := NewReconciler()

	first := r.Reconcile(Box("list", ElementStyle{}, nil,
		Text("a").WithKey("x"),
		Text("b").WithKey("y"),
	))
	xKey := first.Tree.Children[0].NodeKey
	yKey := first.Tree.Children[1].NodeKey

	second := r.Reconcile(Box("list", ElementStyle{}, nil,
		Text("a!").WithKey("x"),
		Text("b").WithKey("y"),
	))

	if second.Tree.Children[0].NodeKey != xKey {
		t.Errorf("key x NodeKey changed: %s -> %s", xKey, second.Tree.Children[0].NodeKey)
	}
	if second.Tree.Children[1].NodeKey != yKey {
		t.Errorf("key y NodeKey changed: %s -> %s", yKey, second.Tree.Children[1].NodeKey)
	}
}

// Scenario 2: [A,B,C] then [C,A,B] produces one Reorder patch and zero
// Insert/Remove; each element's NodeKey (and therefore layout identity) is
// preserved across the permutation.
func TestReconciler_KeyedReorderProducesSingleReorderPatch(t *testing.T) {
	r := NewReconciler()

	list := func(order ...string) Element {
		children := make([]Element, len(order))
		for i, k := range order {
			children[i] = Text(k).WithKey(k)
		}
		return Box("list", ElementStyle{}, nil, children...)
	}

	r.Reconcile(list("A", "B", "C"))
	result := r.Reconcile(list("C", "A", "B"))

	var reorders, inserts, removes int
	for _, p := range result.Patches {
		switch p.Kind {
		case PatchReorder:
			reorders++
		case PatchInsert:
			inserts++
		case PatchRemove:
			removes++
		}
	}

	if reorders != 1 {
		t.Errorf("expected exactly one Reorder patch, got %d (%v)", reorders, result.Patches)
	}
	if inserts != 0 || removes != 0 {
		t.Errorf("pure permutation should produce zero Insert/Remove, got %d/%d", inserts, removes)
	}

	for i, k := range []string{"C", "A", "B"} {
		if result.Tree.Children[i].Element.Text != k {
			t.Errorf("child %d = %q, want %q", i, result.Tree.Children[i].Element.Text, k)
		}
	}
}

func TestReconciler_AppendingDoesNotReportReorder(t *testing.T) {
	r := NewReconciler()

	list := func(order ...string) Element {
		children := make([]Element, len(order))
		for i, k := range order {
			children[i] = Text(k).WithKey(k)
		}
		return Box("list", ElementStyle{}, nil, children...)
	}

	r.Reconcile(list("A", "B"))
	result := r.Reconcile(list("A", "B", "C"))

	for _, p := range result.Patches {
		if p.Kind == PatchReorder {
			t.Errorf("appending a new keyed child should not be reported as a reorder: %v", result.Patches)
		}
	}
}

// Scenario 3: two sibling containers each contain a child keyed "x" but
// with different type tags. No NodeKey collision occurs; both coexist.
func TestReconciler_CrossBranchKeyReuseDoesNotCollide(t *testing.T) {
	r := NewReconciler()

	tree := Box("root", ElementStyle{}, nil,
		Box("left", ElementStyle{}, nil, Text("leaf").WithKey("x")),
		Box("right", ElementStyle{}, nil,
			Box("widget", ElementStyle{}, nil).WithKey("x"),
		),
	)

	result := r.Reconcile(tree)

	leftChildKey := result.Tree.Children[0].Children[0].NodeKey
	rightChildKey := result.Tree.Children[1].Children[0].NodeKey
	if leftChildKey == rightChildKey {
		t.Errorf("different type tags sharing a user key collided: both got %s", leftChildKey)
	}
}

// Duplicate keys at the same position are an internal inconsistency: the
// reconciler must not alias both siblings onto one NodeKey, and must record
// the recovery via FallbackCount.
func TestReconciler_DuplicateKeyFallsBackAndCountsRecovery(t *testing.T) {
	r := NewReconciler()

	tree := Box("root", ElementStyle{}, nil,
		Text("one").WithKey("dup"),
		Text("two").WithKey("dup"),
	)

	result := r.Reconcile(tree)

	if r.FallbackCount() != 1 {
		t.Errorf("FallbackCount() = %d, want 1", r.FallbackCount())
	}
	if result.Tree.Children[0].NodeKey == result.Tree.Children[1].NodeKey {
		t.Errorf("duplicate-keyed siblings must not alias the same NodeKey, both got %s",
			result.Tree.Children[0].NodeKey)
	}

	var replaces int
	for _, p := range result.Patches {
		if p.Kind == PatchReplace {
			replaces++
		}
	}
	if replaces == 0 {
		t.Error("duplicate key recovery should be reported as a Replace patch")
	}
}

// A type change reusing the same key is the same class of recovery as a
// duplicate key: the previous occupant's NodeKey cannot be reused as-is.
func TestReconciler_TypeChangeAtSameKeyFallsBack(t *testing.T) {
	r := NewReconciler()

	r.Reconcile(Box("root", ElementStyle{}, nil, Text("a").WithKey("slot")))
	result := r.Reconcile(Box("root", ElementStyle{}, nil,
		Box("box", ElementStyle{}, nil).WithKey("slot"),
	))

	if r.FallbackCount() != 1 {
		t.Errorf("FallbackCount() = %d, want 1", r.FallbackCount())
	}

	var replaces int
	for _, p := range result.Patches {
		if p.Kind == PatchReplace {
			replaces++
		}
	}
	if replaces != 1 {
		t.Errorf("expected exactly one Replace patch for the type change, got %d", replaces)
	}
}

func TestReconciler_RemovedElementProducesRemovePatch(t *testing.T) {
	r := NewReconciler()

	r.Reconcile(keyedBox("root", Text("a").WithKey("x"), Text("b").WithKey("y")))
	result := r.Reconcile(keyedBox("root", Text("a").WithKey("x")))

	var removes int
	for _, p := range result.Patches {
		if p.Kind == PatchRemove {
			removes++
		}
	}
	if removes != 1 {
		t.Errorf("expected exactly one Remove patch, got %d (%v)", removes, result.Patches)
	}
}
