package rewrite

import (
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// eliminateDropout absorbs any scale==1 Dropout into the single non-Fused
// producer feeding it, found via the backward-match primitive (spec.md
// §4.5 "Dropout elimination", §8 scenario E).
func eliminateDropout(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		dr, ok := g.Layers[i].(*layer.Dropout)
		if !ok || dr.Kind == layer.KindFused || dr.Scale != 1 {
			continue
		}
		p, ok := g.BackwardMatch(i)
		if !ok {
			continue
		}
		audit("eliminate_dropout", g.Layers[p].Base().Name, dr.Name)
		g.Fuse(p, i)
	}
}

// eliminateFlattenAfterGlobalPooling drops a Flatten immediately following a
// global Pooling: a (1,1,C) tensor is already "flat" (spec.md §4.5).
func eliminateFlattenAfterGlobalPooling(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		p, ok := g.Layers[i].(*layer.Pooling)
		if !ok || p.Kind == layer.KindFused || p.GlobalPooling == 0 {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindFlatten)
		if !ok {
			continue
		}
		audit("eliminate_flatten_after_global_pooling", p.Name, g.Layers[j].Base().Name)
		g.Fuse(i, j)
	}
}

// eliminateFlattenAfterInnerProduct drops a Flatten immediately following an
// InnerProduct, whose output is already rank-1 per channel.
func eliminateFlattenAfterInnerProduct(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		ip, ok := g.Layers[i].(*layer.InnerProduct)
		if !ok || ip.Kind == layer.KindFused {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindFlatten)
		if !ok {
			continue
		}
		audit("eliminate_flatten_after_innerproduct", ip.Name, g.Layers[j].Base().Name)
		g.Fuse(i, j)
	}
}
