// Package graph implements the network's blob table and layer list (spec.md
// §3, §4.5), the producer/consumer bookkeeping invariants, and the
// forward/backward chain-matching primitives the rewrite passes build on.
// Grounded on the teacher's internal/onnx topological-sort/compile style
// (model.go's sortedNodes bookkeeping) but rebuilt around an arena of
// plain indices instead of pointer-linked nodes, since the layer list here
// never needs pointer identity beyond its slice position.
package graph

import (
	"fmt"

	"github.com/nnopt/netopt/internal/layer"
)

// Blob is a network edge: a named value with the index of the layer that
// produces it, or -1 if it is a graph input with no producer layer.
type Blob struct {
	Name     string
	Producer int
}

// Graph is the ordered layer list plus its blob table (spec.md §3).
type Graph struct {
	Layers []layer.Layer
	Blobs  []Blob
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// BlobIndex looks up a blob by name, creating it (with Producer -1) if it
// has not been seen yet. This matches how the text codec discovers blob
// names lazily while scanning bottom/top tokens in layer order.
func (g *Graph) BlobIndex(name string) int {
	for i, b := range g.Blobs {
		if b.Name == name {
			return i
		}
	}
	g.Blobs = append(g.Blobs, Blob{Name: name, Producer: -1})
	return len(g.Blobs) - 1
}

// AddLayer appends l to the layer list and returns its index.
func (g *Graph) AddLayer(l layer.Layer) int {
	g.Layers = append(g.Layers, l)
	return len(g.Layers) - 1
}

// CheckInvariants verifies the universal invariants spec.md §8 requires to
// hold after every rewrite pass: every non-Fused layer's declared tops point
// back to it as producer, and every bottom's producer is a non-Fused layer
// earlier in the list.
func (g *Graph) CheckInvariants() error {
	for i, l := range g.Layers {
		h := l.Base()
		if h.Kind == layer.KindFused {
			continue
		}
		for _, t := range h.Tops {
			if g.Blobs[t].Producer != i {
				return fmt.Errorf("graph: blob %q producer mismatch: want %d, have %d", g.Blobs[t].Name, i, g.Blobs[t].Producer)
			}
		}
		for _, b := range h.Bottoms {
			p := g.Blobs[b].Producer
			if p < 0 {
				continue
			}
			if p >= i {
				return fmt.Errorf("graph: blob %q producer %d not before consumer %d", g.Blobs[b].Name, p, i)
			}
			if g.Layers[p].Base().Kind == layer.KindFused {
				return fmt.Errorf("graph: blob %q producer %d is Fused", g.Blobs[b].Name, p)
			}
		}
	}
	return nil
}

// ForwardMatch looks for a single-bottom successor of layer i's sole top
// blob: the smallest j > i such that layer j is of kind k, has exactly one
// bottom, and that bottom is layer i's top[0]. Other consumers of that blob
// are not counted or checked. Fused layers are transparent
// to the walk since their Kind never equals a real target kind.
func (g *Graph) ForwardMatch(i int, k layer.Kind) (int, bool) {
	h := g.Layers[i].Base()
	if len(h.Tops) != 1 {
		return 0, false
	}
	top := h.Tops[0]
	for j := i + 1; j < len(g.Layers); j++ {
		hj := g.Layers[j].Base()
		if hj.Kind != k {
			continue
		}
		if len(hj.Bottoms) == 1 && hj.Bottoms[0] == top {
			return j, true
		}
	}
	return 0, false
}

// BackwardMatch looks for the single-producer predecessor feeding layer i's
// sole bottom blob: the layer j < i whose single top is that bottom blob,
// skipping Fused layers and producers with more than one top (the producer
// must have exactly one output for a caller to safely redirect it).
func (g *Graph) BackwardMatch(i int) (int, bool) {
	h := g.Layers[i].Base()
	if len(h.Bottoms) != 1 {
		return 0, false
	}
	bottom := h.Bottoms[0]
	p := g.Blobs[bottom].Producer
	if p < 0 || p >= i {
		return 0, false
	}
	ph := g.Layers[p].Base()
	if ph.Kind == layer.KindFused {
		return 0, false
	}
	if len(ph.Tops) != 1 {
		return 0, false
	}
	return p, true
}

// Fuse absorbs consumer into producer: producer's sole top is redirected to
// consumer's sole top (so anything downstream of consumer now reads from
// producer directly), the blob's producer pointer is updated, and consumer
// is marked Fused. Per spec.md §9, no check is made for other consumers of
// producer's original top blob — that is a caller obligation, not a runtime
// check this function performs.
func (g *Graph) Fuse(producer, consumer int) {
	ph := g.Layers[producer].Base()
	ch := g.Layers[consumer].Base()
	newTop := ch.Tops[0]
	ph.Tops[0] = newTop
	g.Blobs[newTop].Producer = producer
	ch.Kind = layer.KindFused
}

// Replace swaps the layer at index i for a different concrete layer,
// preserving its position in the list (spec.md §8 invariant 3: "never
// insert or remove... only mutate kind or replace in place with a
// same-indexed substitute"). repl's header bottoms/tops must already be set
// by the caller to match the graph's expectations for that slot.
func (g *Graph) Replace(i int, repl layer.Layer) {
	g.Layers[i] = repl
}
