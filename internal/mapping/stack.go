// Package mapping turns image coordinates into simulation inputs: a
// [Layer] drives two chosen dimensions from the unit square, a [Basis]
// fills in the rest, and a [Stack] chains pinned points and layers into
// a zoom history. Tiles, sessions, probes and tests all come through
// here, so there is exactly one answer to "what does this pixel mean".
package mapping

import (
	"errors"
	"fmt"
)

// ErrStackUnderflow rejects mutations that would leave the stack
// without a base point and a top layer.
var ErrStackUnderflow = errors.New("mapping: stack needs a base point and a top layer")

// SampledPoint is a fully derived basis pinned from a parent layer.
// U and V record where in that layer it was sampled.
type SampledPoint struct {
	Basis Basis
	U, V  float64
}

type Kind uint8

const (
	PointItem Kind = iota
	LayerItem
)

// Item is one stack entry: a pinned point or a layer, by Kind.
type Item struct {
	Kind  Kind
	Point SampledPoint
	Layer Layer
}

// Stack is an alternating sequence of pinned points and layers. It
// always starts with a point, ends with a layer, and strictly
// alternates; every mutation rebalances to restore that shape. The
// effective basis is the most recent point, the active view the most
// recent layer.
type Stack struct {
	items []Item
}

func NewStack(base SampledPoint, top Layer) *Stack {
	return &Stack{items: []Item{
		{Kind: PointItem, Point: base},
		{Kind: LayerItem, Layer: top},
	}}
}

func (s *Stack) Len() int { return len(s.items) }

// Items returns a copy; stack contents change only through mutations.
func (s *Stack) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Basis returns the effective basis: the last pinned point.
func (s *Stack) Basis() Basis {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Kind == PointItem {
			return s.items[i].Point.Basis
		}
	}
	return Basis{}
}

// Top returns the active layer.
func (s *Stack) Top() Layer {
	return s.items[len(s.items)-1].Layer
}

// At derives the basis for unit point (u, v) under the active view.
func (s *Stack) At(u, v float64) Basis {
	return s.Top().At(u, v, s.Basis())
}

// Pin samples (u, v) in the active view and pushes it together with a
// new layer on top, the zoom operation.
func (s *Stack) Pin(u, v float64, next Layer) error {
	if err := next.Validate(); err != nil {
		return err
	}
	pt := SampledPoint{Basis: s.At(u, v), U: u, V: v}
	s.items = append(s.items,
		Item{Kind: PointItem, Point: pt},
		Item{Kind: LayerItem, Layer: next},
	)
	s.rebalance()
	return nil
}

// Remove deletes the item at index i and rebalances. The base point
// and terminal layer requirement is enforced before committing.
func (s *Stack) Remove(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("mapping: item index %d out of range", i)
	}
	next := make([]Item, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	next = rebalanced(next)
	if len(next) < 2 {
		return ErrStackUnderflow
	}
	s.items = next
	return nil
}

// SetLayer replaces the layer at item index i.
func (s *Stack) SetLayer(i int, l Layer) error {
	if i < 0 || i >= len(s.items) || s.items[i].Kind != LayerItem {
		return fmt.Errorf("mapping: item %d is not a layer", i)
	}
	if err := l.Validate(); err != nil {
		return err
	}
	s.items[i].Layer = l
	s.rebalance()
	return nil
}

// SetPoint replaces the pinned point at item index i.
func (s *Stack) SetPoint(i int, pt SampledPoint) error {
	if i < 0 || i >= len(s.items) || s.items[i].Kind != PointItem {
		return fmt.Errorf("mapping: item %d is not a point", i)
	}
	s.items[i].Point = pt
	s.rebalance()
	return nil
}

func (s *Stack) rebalance() {
	s.items = rebalanced(s.items)
}

// rebalanced restores the point/layer alternation. Leading layers are
// dropped, the later of two same-kind neighbors wins, and a trailing
// point is discarded.
func rebalanced(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if len(out) == 0 {
			if it.Kind == PointItem {
				out = append(out, it)
			}
			continue
		}
		if out[len(out)-1].Kind == it.Kind {
			out[len(out)-1] = it
		} else {
			out = append(out, it)
		}
	}
	if len(out) > 0 && out[len(out)-1].Kind == PointItem {
		out = out[:len(out)-1]
	}
	return out
}
