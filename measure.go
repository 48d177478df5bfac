// Measure answers use_measure queries with the rect a node occupied in the
// previous completed frame - the one-frame-lag measurement API named in
// spec 4.4 ("the rect from the previous completed frame... to avoid
// re-entering layout during render") and surfaced to components as the
// Focus/Input/Measure/Theme sub-manager named in spec 4.8.
package scanline

import "sync"

// Rect is the screen-space geometry for one laid-out node.
type Rect struct {
	X, Y, Width, Height int
}

// MeasureManager snapshots one frame's layout tree so the next frame's
// components can query it. It is rebuilt wholesale once per completed
// frame rather than updated incrementally - layout already produces the
// full tree, so there is nothing to gain from finer-grained bookkeeping.
type MeasureManager struct {
	mu          sync.RWMutex
	byNodeKey   map[NodeKey]Rect
	byElementId map[int64]Rect
	byUserKey   map[string]Rect
}

// NewMeasureManager creates an empty measure manager.
func NewMeasureManager() *MeasureManager {
	return &MeasureManager{
		byNodeKey:   make(map[NodeKey]Rect),
		byElementId: make(map[int64]Rect),
		byUserKey:   make(map[string]Rect),
	}
}

// Record replaces the manager's snapshot with the geometry of a just-
// completed frame's layout tree. The App Runner calls this once per frame,
// right after ComputeLayout and before the next frame's components run, so
// that use_measure's "previous frame" guarantee holds.
func (m *MeasureManager) Record(root *LayoutBox) {
	nodeKeys := make(map[NodeKey]Rect)
	elementIds := make(map[int64]Rect)
	userKeys := make(map[string]Rect)

	var walk func(box *LayoutBox)
	walk = func(box *LayoutBox) {
		if box == nil {
			return
		}
		rect := Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
		if box.NodeKey != "" {
			nodeKeys[box.NodeKey] = rect
		}
		elementIds[box.Element.ElementId] = rect
		if box.Element.Key != "" {
			userKeys[box.Element.Key] = rect
		}
		for _, c := range box.Children {
			walk(c)
		}
	}
	walk(root)

	m.mu.Lock()
	m.byNodeKey = nodeKeys
	m.byElementId = elementIds
	m.byUserKey = userKeys
	m.mu.Unlock()
}

// ByNodeKey returns the previous frame's rect for an exact NodeKey - the
// stable cross-frame identity every other query ultimately resolves to.
func (m *MeasureManager) ByNodeKey(key NodeKey) (Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byNodeKey[key]
	return r, ok
}

// ByElementId returns the previous frame's rect for a frame-local
// ElementId. Only useful within the frame that minted the id (e.g. from a
// ref captured during that same render): ElementId is not stable across
// frames (see element.go's NextElementId), unlike NodeKey.
func (m *MeasureManager) ByElementId(id int64) (Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byElementId[id]
	return r, ok
}

// ByUserKey returns the previous frame's rect for the element that carried
// the given author-supplied Key - the "by_user_key" query named in spec
// 4.8. Ambiguous if the same key string is reused across unrelated
// subtrees; callers that need disambiguation should use ByNodeKey instead.
func (m *MeasureManager) ByUserKey(key string) (Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byUserKey[key]
	return r, ok
}

// UseMeasure returns the calling component's own rect from the previous
// completed frame, and whether it has been measured yet (false before the
// first layout pass that includes this node, e.g. on the frame it mounts).
func UseMeasure(ctx *RuntimeContext) (Rect, bool) {
	key := ctx.currentFrame().key
	return ctx.measure.ByNodeKey(key)
}

// UseMeasureByKey is UseMeasure's by_user_key counterpart: it measures
// whatever element in the tree carries the given author-supplied Key,
// rather than the calling component itself.
func UseMeasureByKey(ctx *RuntimeContext, userKey string) (Rect, bool) {
	return ctx.measure.ByUserKey(userKey)
}
