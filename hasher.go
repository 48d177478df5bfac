package scanline

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// structHasher builds a cheap, order-stable structural hash used by the
// reconciler to decide whether an element's props changed between frames
// (PatchUpdateProps) without keeping a full copy of the previous element
// around for reflect.DeepEqual.
type structHasher struct {
	h uint64
}

func newHasher() *structHasher {
	return &structHasher{h: fnvOffset}
}

const fnvOffset = uint64(14695981039346656037)
const fnvPrime = uint64(1099511628211)

func (s *structHasher) writeBytes(b []byte) {
	for _, c := range b {
		s.h ^= uint64(c)
		s.h *= fnvPrime
	}
}

func (s *structHasher) writeString(v string) {
	s.writeBytes([]byte(v))
	s.writeBytes([]byte{0})
}

func (s *structHasher) writeBool(v bool) {
	if v {
		s.writeBytes([]byte{1})
	} else {
		s.writeBytes([]byte{0})
	}
}

func (s *structHasher) writeInt(v int) {
	s.writeString(fmt.Sprintf("%d", v))
}

func (s *structHasher) writeStyle(style ElementStyle) {
	l := style.Layout
	s.writeString(string(l.Direction))
	s.writeString(string(l.Justify))
	s.writeString(string(l.Align))
	s.writeString(string(l.Position))
	s.writeInt(l.Width)
	s.writeInt(l.Height)
	s.writeInt(l.MinWidth)
	s.writeInt(l.MinHeight)
	s.writeInt(l.Grow)
	s.writeInt(l.Gap)
	s.writeInt(l.Padding.Top)
	s.writeInt(l.Padding.Right)
	s.writeInt(l.Padding.Bottom)
	s.writeInt(l.Padding.Left)
	s.writeInt(l.Margin.Top)
	s.writeInt(l.Margin.Right)
	s.writeInt(l.Margin.Bottom)
	s.writeInt(l.Margin.Left)
	s.writeInt(l.X)
	s.writeInt(l.Y)
	s.writeInt(l.ZIndex)

	v := style.Visual
	s.writeInt(int(v.Color))
	s.writeInt(int(v.Background))
	s.writeBool(v.Bold)
	s.writeBool(v.Dim)
	s.writeBool(v.Italic)
	s.writeBool(v.Underline)
	s.writeBool(v.Inverse)
	s.writeBool(v.Strikethrough)
	if v.ColorRGB != nil {
		s.writeInt(int(v.ColorRGB.R)<<16 | int(v.ColorRGB.G)<<8 | int(v.ColorRGB.B))
	}
	if v.BackgroundRGB != nil {
		s.writeInt(int(v.BackgroundRGB.R)<<16 | int(v.BackgroundRGB.G)<<8 | int(v.BackgroundRGB.B))
	}

	s.writeString(string(style.Border.Style))
	s.writeInt(int(style.Border.Color))
	s.writeString(style.Border.Label)
	s.writeBool(style.Internal.Static)
}

// writeProps hashes the subset of a Props map that is cheaply comparable:
// strings, numbers, bools. Callbacks, pointers, and focus primitives
// (*Input, *Select) are intentionally excluded - they are identity-carrying
// widgets that manage their own change detection, not plain data props.
func (s *structHasher) writeProps(props map[string]any) {
	if len(props) == 0 {
		return
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.writeString(k)
		switch v := props[k].(type) {
		case string:
			s.writeString(v)
		case int:
			s.writeInt(v)
		case bool:
			s.writeBool(v)
		case float64:
			s.writeString(fmt.Sprintf("%v", v))
		default:
			// Not structurally comparable; mark present so a swap of a
			// non-comparable value (e.g. pointer identity) still counts
			// as a change if the holder's address changes.
			s.writeString(fmt.Sprintf("%p", v))
		}
	}
}

func (s *structHasher) sum() uint64 {
	return s.h
}

// stableStringHash returns an FNV-1a fingerprint of text content. Nothing
// in the package calls it at present.
func stableStringHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
