package scanline

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKey is a path-stable identity for one position in the element tree,
// used to match this frame's elements against last frame's so that hook
// slots, focus registration and layout boxes survive a re-render. It is
// built as parent_key + "/" + (author key or sibling index) + ":" + type tag,
// the same sibling/key/type-tag composition the teacher's reconciliation
// reference (see DESIGN.md, lotus.renderContext) uses to avoid
// key collisions between differently-typed siblings that share an index.
type NodeKey string

// RootNodeKey is the key of the tree's root element.
const RootNodeKey NodeKey = "root"

func childNodeKey(parent NodeKey, el Element, siblingIndex int) NodeKey {
	segment := strconv.Itoa(siblingIndex)
	if el.Key != "" {
		segment = el.Key
	}
	typeTag := el.TypeTag
	if typeTag == "" {
		typeTag = "text"
	}
	return NodeKey(string(parent) + "/" + segment + ":" + typeTag)
}

// PatchKind enumerates the ways one frame's tree can differ from the last.
type PatchKind int

const (
	PatchNone PatchKind = iota
	PatchInsert
	PatchRemove
	PatchUpdateText
	PatchUpdateStyle
	PatchUpdateProps
	PatchReplace
	PatchReorder
)

func (k PatchKind) String() string {
	switch k {
	case PatchInsert:
		return "insert"
	case PatchRemove:
		return "remove"
	case PatchUpdateText:
		return "update-text"
	case PatchUpdateStyle:
		return "update-style"
	case PatchUpdateProps:
		return "update-props"
	case PatchReplace:
		return "replace"
	case PatchReorder:
		return "reorder"
	default:
		return "none"
	}
}

// Patch describes one change the reconciler found at a given NodeKey.
type Patch struct {
	Key  NodeKey
	Kind PatchKind
	Node KeyedElement // the new node (zero value for PatchRemove)
}

// ReconcileResult is the output of diffing one frame's element tree against
// the previous one: a keyed tree the layout engine can consume, plus the
// patch list describing what changed (for tests and debugging; the App
// Runner itself uses only the tree).
type ReconcileResult struct {
	Tree    KeyedElement
	Patches []Patch
}

// Reconciler holds the previous frame's keyed tree to diff the next one
// against. It is owned by a single RuntimeContext (see runtime.go) - never
// shared across independently-running apps, per I1.
type Reconciler struct {
	previous      map[NodeKey]Element
	previousOrder map[NodeKey][]NodeKey // parent key -> its children's keys, in render order
	previousSet   bool

	// fallbackCount counts "internal inconsistency" recoveries: a duplicate
	// key among siblings, or a type change reusing the same key. Both fall
	// back to treating the node as a whole-subtree replacement rather than
	// aliasing the previous occupant's NodeKey (and therefore its hook
	// frame and focus registration).
	fallbackCount int
}

// NewReconciler creates an empty reconciler with no prior frame.
func NewReconciler() *Reconciler {
	return &Reconciler{
		previous:      make(map[NodeKey]Element),
		previousOrder: make(map[NodeKey][]NodeKey),
	}
}

// FallbackCount returns how many whole-subtree-replacement recoveries this
// reconciler has performed across its lifetime.
func (r *Reconciler) FallbackCount() int { return r.fallbackCount }

// Reconcile assigns NodeKeys to root's subtree and diffs it against the
// keys recorded on the previous call, returning both the keyed tree (for
// layout) and the patch list (for callers that want to see exactly what
// changed).
func (r *Reconciler) Reconcile(root Element) ReconcileResult {
	current := make(map[NodeKey]Element)
	currentOrder := make(map[NodeKey][]NodeKey)
	var patches []Patch

	keyed := r.reconcileNode(root, RootNodeKey, &patches, current, currentOrder)

	for key := range r.previous {
		if _, ok := current[key]; !ok {
			patches = append(patches, Patch{Key: key, Kind: PatchRemove})
		}
	}

	r.previous = current
	r.previousOrder = currentOrder
	r.previousSet = true
	return ReconcileResult{Tree: keyed, Patches: patches}
}

func (r *Reconciler) reconcileNode(el Element, key NodeKey, patches *[]Patch, current map[NodeKey]Element, currentOrder map[NodeKey][]NodeKey) KeyedElement {
	if _, dup := current[key]; dup {
		// Two siblings rendered with the same author key and type tag at
		// this position: aliasing the NodeKey would hand them the same
		// hook frame. Recover by disambiguating and treating the loser as
		// a freshly-inserted whole subtree instead.
		r.fallbackCount++
		key = NodeKey(fmt.Sprintf("%s#dup%d", key, r.fallbackCount))
		*patches = append(*patches, Patch{Key: key, Kind: PatchReplace})
		current[key] = el
		children := r.reconcileChildren(el, key, patches, current, currentOrder)
		return KeyedElement{Element: el, NodeKey: key, Children: children}
	}
	current[key] = el

	prev, existed := r.previous[key]
	switch {
	case !existed:
		kind := PatchInsert
		if cut := strings.LastIndex(string(key), ":"); cut >= 0 {
			// A previous node of another type under the same author key or
			// sibling index has a different NodeKey (the type tag is part
			// of it), so a type change shows up here rather than below.
			prefix := string(key[:cut+1])
			for prevKey, prevEl := range r.previous {
				rest, ok := strings.CutPrefix(string(prevKey), prefix)
				if ok && !strings.Contains(rest, "/") && prevEl.TypeTag != el.TypeTag {
					r.fallbackCount++
					kind = PatchReplace
					break
				}
			}
		}
		*patches = append(*patches, Patch{Key: key, Kind: kind})
	case prev.TypeTag != el.TypeTag:
		// Same key, different kind of node: the previous occupant's hook
		// frame and layout box cannot be reused, so this is also a
		// whole-subtree-replacement recovery, not an ordinary update.
		r.fallbackCount++
		*patches = append(*patches, Patch{Key: key, Kind: PatchReplace})
	case prev.IsText && el.IsText && prev.Text != el.Text:
		*patches = append(*patches, Patch{Key: key, Kind: PatchUpdateText})
	default:
		if prev.PropsHash() != el.PropsHash() {
			*patches = append(*patches, Patch{Key: key, Kind: PatchUpdateProps})
		}
	}

	children := r.reconcileChildren(el, key, patches, current, currentOrder)

	if existed {
		if reordered := r.childOrderChanged(key, children); reordered {
			*patches = append(*patches, Patch{Key: key, Kind: PatchReorder})
		}
	}

	result := KeyedElement{Element: el, NodeKey: key, Children: children}
	return result
}

func (r *Reconciler) reconcileChildren(el Element, key NodeKey, patches *[]Patch, current map[NodeKey]Element, currentOrder map[NodeKey][]NodeKey) []KeyedElement {
	children := make([]KeyedElement, len(el.Children))
	childKeys := make([]NodeKey, len(el.Children))
	for i, child := range el.Children {
		childKey := childNodeKey(key, child, i)
		children[i] = r.reconcileNode(child, childKey, patches, current, currentOrder)
		childKeys[i] = children[i].NodeKey
	}
	currentOrder[key] = childKeys
	return children
}

// childOrderChanged compares this frame's child key order against the
// previous frame's, restricted to keys present in both (newly inserted or
// just-removed children don't count as a reorder by themselves - see
// Scenario 2, "one Reorder patch and zero Insert/Remove" for a pure
// permutation).
func (r *Reconciler) childOrderChanged(key NodeKey, children []KeyedElement) bool {
	prevOrder := r.previousOrder[key]
	if len(prevOrder) == 0 {
		return false
	}

	currentSet := make(map[NodeKey]bool, len(children))
	for _, c := range children {
		currentSet[c.NodeKey] = true
	}
	prevSet := make(map[NodeKey]bool, len(prevOrder))
	for _, k := range prevOrder {
		prevSet[k] = true
	}

	filteredPrev := make([]NodeKey, 0, len(prevOrder))
	for _, k := range prevOrder {
		if currentSet[k] {
			filteredPrev = append(filteredPrev, k)
		}
	}
	filteredCurrent := make([]NodeKey, 0, len(children))
	for _, c := range children {
		if prevSet[c.NodeKey] {
			filteredCurrent = append(filteredCurrent, c.NodeKey)
		}
	}

	if len(filteredPrev) != len(filteredCurrent) || len(filteredPrev) < 2 {
		return false
	}
	for i := range filteredPrev {
		if filteredPrev[i] != filteredCurrent[i] {
			return true
		}
	}
	return false
}

// PatchesString renders a patch list for debugging/tests.
func PatchesString(patches []Patch) string {
	var b strings.Builder
	for _, p := range patches {
		fmt.Fprintf(&b, "%s %s\n", p.Kind, p.Key)
	}
	return b.String()
}
